package area

import (
	"errors"
	"math"

	"venue-vacancy/internal/geo"
)

// ErrNoMatch：地区表中没有任何已解析坐标的记录
var ErrNoMatch = errors.New("no resolved area")

// Match：最近地区及其距离（千米）
type Match struct {
	Area       Area
	DistanceKm float64
}

// Matcher：最近地区查询器，构建时只保留已解析的记录
// 约束：线性扫描 O(n)；若对照表规模增长到需要索引（网格/KD-Tree），必须保持“严格最小、并列取表内先出现者”的语义
type Matcher struct {
	areas    []Area
	distance func(a, b geo.Coordinate) float64
}

// NewMatcher：基于只读地区表构建查询器
func NewMatcher(t Table) *Matcher {
	m := &Matcher{distance: geo.DistanceKm}
	for _, a := range t {
		if a.Resolved() {
			m.areas = append(m.areas, a)
		}
	}
	return m
}

// Len：参与匹配的记录数
func (m *Matcher) Len() int { return len(m.areas) }

// Nearest：返回与目标大地线距离最小的地区；无候选时返回 ErrNoMatch
func (m *Matcher) Nearest(target geo.Coordinate) (Match, error) {
	best := -1
	bestD := math.Inf(1)
	for i := range m.areas {
		d := m.distance(target, *m.areas[i].Coord)
		if d < bestD {
			best, bestD = i, d
		}
	}
	if best < 0 {
		return Match{}, ErrNoMatch
	}
	return Match{Area: m.areas[best], DistanceKm: bestD}, nil
}
