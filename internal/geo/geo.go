// 包 geo：坐标与大地线距离
package geo

import (
	"fmt"

	"github.com/tidwall/geodesic"
)

// Coordinate：WGS-84 经纬度（度）
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Valid：经纬度在合法范围内且非 NaN
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

func (c Coordinate) String() string { return fmt.Sprintf("(%.6f, %.6f)", c.Lat, c.Lng) }

// 文档注释：WGS-84 椭球大地线距离，返回千米
// 背景：候选地区彼此可能相距数百千米，球面近似的误差会改变最近结果的排序。
// 约束：Karney 反算对近对跖点同样收敛，不存在球面回退；重合点返回 0。
func DistanceKm(a, b Coordinate) float64 {
	if a == b {
		return 0
	}
	var s12 float64
	geodesic.WGS84.Inverse(a.Lat, a.Lng, b.Lat, b.Lng, &s12, nil, nil)
	return s12 / 1000
}
