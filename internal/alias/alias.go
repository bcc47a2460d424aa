// 包 alias：会场别名表，为已知地理编码不准的会场手工指定地区编码或坐标
package alias

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"venue-vacancy/internal/geo"
)

// Entry：单个会场的覆盖项
// 约束：编码覆盖需同时给出 middle 与 small；坐标覆盖需同时给出 lat 与 lng；二者可并存
type Entry struct {
	Middle string   `yaml:"middle"`
	Small  string   `yaml:"small"`
	Detail string   `yaml:"detail"`
	Lat    *float64 `yaml:"lat"`
	Lng    *float64 `yaml:"lng"`
}

// HasCodes：是否为编码覆盖
func (e Entry) HasCodes() bool { return e.Middle != "" && e.Small != "" }

// Coordinate：坐标覆盖，未设置时返回 nil
func (e Entry) Coordinate() *geo.Coordinate {
	if e.Lat == nil || e.Lng == nil {
		return nil
	}
	return &geo.Coordinate{Lat: *e.Lat, Lng: *e.Lng}
}

// Table：会场名 → 覆盖项，只读
type Table map[string]Entry

// Lookup：按去除首尾空白后的会场名查找
func (t Table) Lookup(venue string) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	e, ok := t[strings.TrimSpace(venue)]
	return e, ok
}

// Read：解析 YAML 别名表
func Read(r io.Reader) (Table, error) {
	var raw map[string]Entry
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return Table{}, nil
		}
		return nil, fmt.Errorf("decode alias table: %w", err)
	}
	t := make(Table, len(raw))
	for name, e := range raw {
		partial := (e.Middle != "" || e.Small != "" || e.Detail != "") && !e.HasCodes()
		if partial {
			return nil, fmt.Errorf("alias %q: middle and small are both required", name)
		}
		if (e.Lat == nil) != (e.Lng == nil) {
			return nil, fmt.Errorf("alias %q: lat and lng are both required", name)
		}
		if c := e.Coordinate(); c != nil && !c.Valid() {
			return nil, fmt.Errorf("alias %q: coordinate out of range %v", name, *c)
		}
		if !e.HasCodes() && e.Coordinate() == nil {
			return nil, fmt.Errorf("alias %q: neither codes nor coordinate", name)
		}
		t[strings.TrimSpace(name)] = e
	}
	return t, nil
}

// Load：path 为空时返回空表
func Load(path string) (Table, error) {
	if path == "" {
		return Table{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open alias table: %w", err)
	}
	defer f.Close()
	return Read(f)
}
