// 包 area：为分类叶子补充坐标，并按坐标查找最近的服务商地区
package area

import (
	"strings"

	"venue-vacancy/internal/geo"
	"venue-vacancy/internal/taxonomy"
)

// NameSeparator：地区名中并列多个地名时使用的分隔符
const NameSeparator = "・"

// 坐标来源层级
const (
	SourceNone   = ""
	SourceDetail = "detail"
	SourceSmall  = "small"
)

// Area：带坐标的地区记录；Coord 为空表示任何名称变体都未在对照表中命中
type Area struct {
	taxonomy.Record
	Coord  *geo.Coordinate
	Source string
	// MatchedName 为命中的地名片段
	MatchedName string
}

// Resolved：是否已有坐标
func (a Area) Resolved() bool { return a.Coord != nil }

// Table：按分类文档顺序排列的地区表，构建后只读
type Table []Area

// ResolvedCount：已解析坐标的记录数
func (t Table) ResolvedCount() int {
	n := 0
	for _, a := range t {
		if a.Resolved() {
			n++
		}
	}
	return n
}

// Lookup：地名对照接口，由 gazetteer.Gazetteer 实现
type Lookup interface {
	Lookup(name string) (geo.Coordinate, bool)
}

// 文档注释：为每条记录解析坐标
// 背景：详细地区往往比对照表更细，小地区名更粗但更容易命中，因此先试详细名、再试小地区名。
// 约束：未解析的记录保留在表中（Coord 为空），以区分“不存在的地区”与“无法定位的地区”。
func Resolve(recs []taxonomy.Record, g Lookup) Table {
	out := make(Table, 0, len(recs))
	for _, r := range recs {
		a := Area{Record: r}
		if c, name, ok := lookupNames(g, r.DetailName); ok {
			a.Coord, a.Source, a.MatchedName = &c, SourceDetail, name
		} else if c, name, ok := lookupNames(g, r.SmallName); ok {
			a.Coord, a.Source, a.MatchedName = &c, SourceSmall, name
		}
		out = append(out, a)
	}
	return out
}

// lookupNames：按分隔符拆分后依次查询，首个命中即返回；不查询未拆分的整串
func lookupNames(g Lookup, name string) (geo.Coordinate, string, bool) {
	if g == nil || name == "" {
		return geo.Coordinate{}, "", false
	}
	for _, part := range strings.Split(name, NameSeparator) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if c, ok := g.Lookup(part); ok {
			return c, part, true
		}
	}
	return geo.Coordinate{}, "", false
}
