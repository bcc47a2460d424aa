// 包 gazetteer：地名 → 坐标对照表，进程启动时加载一次，之后只读
package gazetteer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"venue-vacancy/internal/geo"
	"venue-vacancy/internal/logger"
)

// Entry：对照表的一行
type Entry struct {
	Name string
	Lat  float64
	Lng  float64
}

// Gazetteer：只读对照表；同名条目以加载顺序中的首条为准
type Gazetteer struct {
	idx     map[string]geo.Coordinate
	entries int
}

// New：按顺序构建对照表；坐标非法的条目不入表
func New(entries []Entry) *Gazetteer {
	g := &Gazetteer{idx: make(map[string]geo.Coordinate, len(entries))}
	for _, e := range entries {
		c := geo.Coordinate{Lat: e.Lat, Lng: e.Lng}
		if !c.Valid() {
			continue
		}
		g.entries++
		if _, ok := g.idx[e.Name]; ok {
			continue
		}
		g.idx[e.Name] = c
	}
	return g
}

// Empty：空对照表，加载失败时的降级结果
func Empty() *Gazetteer { return New(nil) }

// Lookup：按原文精确匹配
func (g *Gazetteer) Lookup(name string) (geo.Coordinate, bool) {
	if g == nil || name == "" {
		return geo.Coordinate{}, false
	}
	c, ok := g.idx[name]
	return c, ok
}

// Len：去重后的地名数
func (g *Gazetteer) Len() int {
	if g == nil {
		return 0
	}
	return len(g.idx)
}

// Entries：加载的原始行数（含同名）
func (g *Gazetteer) Entries() int {
	if g == nil {
		return 0
	}
	return g.entries
}

// 默认列名
const (
	DefaultNameColumn = "kanji"
	latColumn         = "lat"
	lngColumn         = "lng"
)

// 文档注释：读取 CSV 对照表
// 背景：原始表含多列，这里只按表头取名称/纬度/经度三列。
// 约束：缺列为错误；单行坐标无法解析、非有限值或超出范围时跳过该行并计数告警，不影响其余行。
func ReadCSV(r io.Reader, nameColumn string) ([]Entry, error) {
	if nameColumn == "" {
		nameColumn = DefaultNameColumn
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read gazetteer header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	ni, li, gi := -1, -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case nameColumn:
			ni = i
		case latColumn:
			li = i
		case lngColumn:
			gi = i
		}
	}
	if ni < 0 || li < 0 || gi < 0 {
		return nil, fmt.Errorf("gazetteer header missing columns %q/%q/%q", nameColumn, latColumn, lngColumn)
	}
	var out []Entry
	skipped := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read gazetteer row: %w", err)
		}
		if ni >= len(rec) || li >= len(rec) || gi >= len(rec) {
			skipped++
			continue
		}
		lat, e1 := strconv.ParseFloat(strings.TrimSpace(rec[li]), 64)
		lng, e2 := strconv.ParseFloat(strings.TrimSpace(rec[gi]), 64)
		if e1 != nil || e2 != nil || rec[ni] == "" || !(geo.Coordinate{Lat: lat, Lng: lng}).Valid() {
			skipped++
			continue
		}
		out = append(out, Entry{Name: rec[ni], Lat: lat, Lng: lng})
	}
	if skipped > 0 {
		logger.L().Warn("gazetteer_rows_skipped", "count", skipped)
	}
	return out, nil
}

// LoadCSV：从文件加载；任何错误都降级为空表并记录告警，不中断运行
func LoadCSV(path, nameColumn string) *Gazetteer {
	f, err := os.Open(path)
	if err != nil {
		logger.L().Warn("gazetteer_load_error", "path", path, "err", err)
		return Empty()
	}
	defer f.Close()
	entries, err := ReadCSV(f, nameColumn)
	if err != nil {
		logger.L().Warn("gazetteer_load_error", "path", path, "err", err)
		return Empty()
	}
	g := New(entries)
	logger.L().Info("gazetteer_loaded", "source", "csv", "path", path, "rows", g.Entries(), "names", g.Len())
	return g
}
