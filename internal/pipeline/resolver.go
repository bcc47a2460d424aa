// 包 pipeline：会场解析流水线（地理编码 → 最近地区 → 检索参数）与批处理
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"venue-vacancy/internal/alias"
	"venue-vacancy/internal/area"
	"venue-vacancy/internal/geo"
	"venue-vacancy/internal/geocode"
	"venue-vacancy/internal/logger"
	"venue-vacancy/internal/metrics"
	"venue-vacancy/internal/vacancy"
)

// State：单个会场的解析状态
type State string

const (
	StatePending         State = "PENDING"
	StateGeocoding       State = "GEOCODING"
	StateGeocodeFailed   State = "GEOCODE_FAILED"
	StateAreaMatching    State = "AREA_MATCHING"
	StateAreaMatchFailed State = "AREA_MATCH_FAILED"
	StateResolved        State = "RESOLVED"
)

// Terminal：是否为终止状态
func (s State) Terminal() bool {
	return s == StateGeocodeFailed || s == StateAreaMatchFailed || s == StateResolved
}

// ErrInvalidCoordinate：地理编码返回了超出范围的坐标
var ErrInvalidCoordinate = errors.New("geocoded coordinate out of range")

// Resolution：解析结果；失败时 Err 记录原因
type Resolution struct {
	State  State
	Params vacancy.Params
	Coord  *geo.Coordinate
	Match  *area.Match
	// Alias 表示命中了别名表
	Alias bool
	Err   error
}

// Resolver：持有只读的地区匹配器与别名表，可被多个会场并行共享
type Resolver struct {
	Geocoder geocode.Geocoder
	Matcher  *area.Matcher
	Aliases  alias.Table
	Mode     vacancy.Mode
	RadiusKm float64
	// Suffix 追加到会场名之后用于约束地理编码范围（如 ", Japan"）
	Suffix string
	Lang   string
}

// 文档注释：解析单个会场
// 背景：别名表中的编码覆盖直接得到检索参数；坐标覆盖跳过地理编码；其余走地理编码，
// 地区编码模式再匹配最近地区。
// 约束：所有失败都以终止状态返回而不是 panic/中断，由批处理决定后续。
func (r *Resolver) Resolve(ctx context.Context, venue string) Resolution {
	res := Resolution{State: StatePending}
	mode := r.Mode
	if mode == "" {
		mode = vacancy.ModeArea
	}
	l := logger.L().With("venue", venue)

	var coord *geo.Coordinate
	if e, ok := r.Aliases.Lookup(venue); ok {
		res.Alias = true
		if mode == vacancy.ModeArea && e.HasCodes() {
			res.State = StateResolved
			res.Params = vacancy.Params{Mode: vacancy.ModeArea, MiddleCode: e.Middle, SmallCode: e.Small, DetailCode: e.Detail}
			l.Info("venue_alias_codes", "middle", e.Middle, "small", e.Small, "detail", e.Detail)
			return res
		}
		if c := e.Coordinate(); c != nil {
			coord = c
			l.Info("venue_alias_coord", "lat", c.Lat, "lng", c.Lng)
		} else {
			l.Warn("venue_alias_unusable", "mode", mode, "reason", "codes_only_in_radius_mode")
		}
	}

	if coord == nil {
		res.State = StateGeocoding
		c, err := r.geocode(ctx, venue)
		if err != nil {
			res.State = StateGeocodeFailed
			res.Err = err
			l.Warn("geocode_fail", "err", err)
			return res
		}
		coord = &c
		l.Info("geocode_ok", "lat", c.Lat, "lng", c.Lng)
	}
	res.Coord = coord

	if mode == vacancy.ModeRadius {
		res.State = StateResolved
		res.Params = vacancy.Params{Mode: vacancy.ModeRadius, Lat: coord.Lat, Lng: coord.Lng, RadiusKm: r.RadiusKm}
		return res
	}

	res.State = StateAreaMatching
	if r.Matcher == nil {
		res.State = StateAreaMatchFailed
		res.Err = area.ErrNoMatch
		l.Warn("area_match_fail", "err", res.Err)
		return res
	}
	m, err := r.Matcher.Nearest(*coord)
	if err != nil {
		res.State = StateAreaMatchFailed
		res.Err = err
		l.Warn("area_match_fail", "err", err)
		return res
	}
	metrics.AreaMatchDistanceKm.Observe(m.DistanceKm)
	l.Info("area_match_ok", "area", m.Area.Path(), "distance_km", fmt.Sprintf("%.2f", m.DistanceKm), "source", m.Area.Source)
	res.Match = &m
	res.State = StateResolved
	res.Params = vacancy.Params{Mode: vacancy.ModeArea, MiddleCode: m.Area.MiddleCode, SmallCode: m.Area.SmallCode, DetailCode: m.Area.DetailCode}
	return res
}

func (r *Resolver) geocode(ctx context.Context, venue string) (geo.Coordinate, error) {
	if r.Geocoder == nil {
		return geo.Coordinate{}, errors.New("no geocoder configured")
	}
	c, err := r.Geocoder.Geocode(ctx, venue+r.Suffix, r.Lang)
	if err != nil {
		return geo.Coordinate{}, err
	}
	if !c.Valid() {
		return geo.Coordinate{}, fmt.Errorf("%w: %v", ErrInvalidCoordinate, c)
	}
	return c, nil
}
