// 包 taxonomy：解析服务商四级地区分类（大/中/小/详细）并展开为扁平地区表
package taxonomy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"venue-vacancy/internal/logger"
)

// ErrMalformed：分类文档缺少必需键或结构不符
// 约束：该文档为构建期资产，出现即视为致命错误
var ErrMalformed = errors.New("malformed area taxonomy")

// Node：分类树节点；未声明子级与声明了但为空均表现为 Children 为空
type Node struct {
	Code     string
	Name     string
	Children []Node
}

// Record：展开后的叶子记录；无详细层级时 DetailCode 为空、DetailName 取小地区名
type Record struct {
	LargeCode  string
	MiddleCode string
	SmallCode  string
	DetailCode string
	LargeName  string
	MiddleName string
	SmallName  string
	DetailName string
}

// Key：四级编码组合，表内唯一
func (r Record) Key() string {
	return r.LargeCode + "/" + r.MiddleCode + "/" + r.SmallCode + "/" + r.DetailCode
}

// Path：便于日志阅读的层级路径
func (r Record) Path() string {
	return fmt.Sprintf("%s - %s - %s (%s)", r.LargeName, r.MiddleName, r.SmallName, r.DetailName)
}

type level struct {
	entry    string
	code     string
	name     string
	children string
}

// 各层级在文档中的键名；详细层无子级
var levels = [...]level{
	{"largeClass", "largeClassCode", "largeClassName", "middleClasses"},
	{"middleClass", "middleClassCode", "middleClassName", "smallClasses"},
	{"smallClass", "smallClassCode", "smallClassName", "detailClasses"},
	{"detailClass", "detailClassCode", "detailClassName", ""},
}

const detailDepth = 3

// Load：读取并展开分类文件
func Load(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open taxonomy: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read：解析分类文档并按文档顺序展开为记录
func Read(r io.Reader) ([]Record, error) {
	tree, err := Parse(r)
	if err != nil {
		return nil, err
	}
	return Flatten(tree), nil
}

// 文档注释：解析分类文档为树
// 背景：原始格式中每个节点为“两槽”数组，槽0为自身编码/名称，槽1（可缺省）为子级列表；
// 这里只在解析时处理该形状，对外只暴露普通树结构。
// 约束：大/中/小层缺少编码或名称视为 ErrMalformed；详细层缺少编码的条目跳过并告警，
// 缺少名称时名称置空（坐标解析回退到小地区名）。
func Parse(r io.Reader) ([]Node, error) {
	var doc struct {
		AreaClasses *struct {
			LargeClasses json.RawMessage `json:"largeClasses"`
		} `json:"areaClasses"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if doc.AreaClasses == nil || isNull(doc.AreaClasses.LargeClasses) {
		return nil, fmt.Errorf("%w: missing areaClasses.largeClasses", ErrMalformed)
	}
	return parseNodes(doc.AreaClasses.LargeClasses, 0, "areaClasses")
}

func parseNodes(raw json.RawMessage, depth int, path string) ([]Node, error) {
	lv := levels[depth]
	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	out := make([]Node, 0, len(entries))
	for i, e := range entries {
		p := fmt.Sprintf("%s/%s[%d]", path, lv.entry, i)
		body, ok := e[lv.entry]
		if !ok || isNull(body) {
			if depth == detailDepth {
				logger.L().Warn("taxonomy_detail_skip", "path", p, "reason", "missing_entry")
				continue
			}
			return nil, fmt.Errorf("%w: %s: missing %q", ErrMalformed, p, lv.entry)
		}
		info, kids, err := splitSlots(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, p, err)
		}
		n, err := parseInfo(info, lv)
		if err != nil {
			if depth == detailDepth {
				logger.L().Warn("taxonomy_detail_skip", "path", p, "err", err)
				continue
			}
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, p, err)
		}
		if kids != nil && lv.children != "" {
			var m map[string]json.RawMessage
			if err := json.Unmarshal(kids, &m); err != nil {
				return nil, fmt.Errorf("%w: %s: children slot: %v", ErrMalformed, p, err)
			}
			if c, ok := m[lv.children]; ok && !isNull(c) {
				n.Children, err = parseNodes(c, depth+1, p)
				if err != nil {
					return nil, err
				}
			}
		}
		out = append(out, n)
	}
	return out, nil
}

// splitSlots：两槽数组拆分为自身信息与子级槽；详细层常以普通对象出现，此时无子级槽
func splitSlots(body json.RawMessage) (json.RawMessage, json.RawMessage, error) {
	b := bytes.TrimSpace(body)
	if len(b) == 0 {
		return nil, nil, errors.New("empty node")
	}
	if b[0] == '{' {
		return b, nil, nil
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(b, &arr); err != nil {
		return nil, nil, err
	}
	if len(arr) == 0 {
		return nil, nil, errors.New("empty node")
	}
	if len(arr) == 1 || isNull(arr[1]) {
		return arr[0], nil, nil
	}
	return arr[0], arr[1], nil
}

func parseInfo(raw json.RawMessage, lv level) (Node, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return Node{}, err
	}
	code, err := str(m, lv.code)
	if err != nil {
		return Node{}, err
	}
	if lv.children == "" {
		if v, ok := m[lv.name]; !ok || isNull(v) {
			return Node{Code: code}, nil
		}
	}
	name, err := str(m, lv.name)
	if err != nil {
		return Node{}, err
	}
	return Node{Code: code, Name: name}, nil
}

// str：读取字符串字段；编码偶见数字形式，按文本保留
func str(m map[string]json.RawMessage, k string) (string, error) {
	v, ok := m[k]
	if !ok || isNull(v) {
		return "", fmt.Errorf("missing %q", k)
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("%q is not a string", k)
}

func isNull(b json.RawMessage) bool {
	t := strings.TrimSpace(string(b))
	return t == "" || t == "null"
}

// 文档注释：深度优先展开分类树
// 背景：大/中层未声明子级时该分支不产生记录；小地区无详细子级（未声明或为空）时，
// 以小地区自身作为详细层替身产生一条记录。
// 约束：输出顺序即文档顺序，最近匹配的并列选择依赖该顺序；重复的四级编码仅保留首条。
func Flatten(large []Node) []Record {
	var out []Record
	seen := make(map[string]struct{})
	add := func(r Record) {
		k := r.Key()
		if _, dup := seen[k]; dup {
			logger.L().Warn("taxonomy_duplicate_skip", "key", k)
			return
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	for _, l := range large {
		for _, m := range l.Children {
			for _, s := range m.Children {
				base := Record{
					LargeCode: l.Code, MiddleCode: m.Code, SmallCode: s.Code,
					LargeName: l.Name, MiddleName: m.Name, SmallName: s.Name,
				}
				if len(s.Children) == 0 {
					base.DetailName = s.Name
					add(base)
					continue
				}
				for _, d := range s.Children {
					r := base
					r.DetailCode = d.Code
					r.DetailName = d.Name
					add(r)
				}
			}
		}
	}
	return out
}
