// 包 geocode：地名 → 坐标的外部地理编码
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"venue-vacancy/internal/geo"
	"venue-vacancy/internal/logger"
	"venue-vacancy/internal/metrics"
	"venue-vacancy/internal/throttle"
)

// ErrNotFound：地理编码无结果
var ErrNotFound = errors.New("geocode: no result")

// Geocoder：调用方对“无结果”与“出错”一视同仁，均视为无法定位
type Geocoder interface {
	Geocode(ctx context.Context, query, lang string) (geo.Coordinate, error)
}

// Place：Nominatim search 接口的返回项，仅解析需要的字段
type Place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Nominatim：OSM Nominatim 客户端
type Nominatim struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
	Throttle  throttle.Throttle
	Timeout   time.Duration
}

// DefaultBaseURL：公共 Nominatim 实例
const DefaultBaseURL = "https://nominatim.openstreetmap.org/search"

// 文档注释：查询地名坐标（取首个结果）
// 参数：
// - query：已附加国家/地区限定词的地名；
// - lang：accept-language，可空。
// 返回：首个结果的坐标；无结果返回 ErrNotFound。
// 约束：公共实例要求 User-Agent 且限制约 1 次/秒，由 Throttle 控制；单次调用超时默认 10s。
func (n *Nominatim) Geocode(ctx context.Context, query, lang string) (geo.Coordinate, error) {
	if query == "" {
		return geo.Coordinate{}, ErrNotFound
	}
	if n.Throttle != nil {
		if err := n.Throttle.Wait(ctx); err != nil {
			return geo.Coordinate{}, err
		}
	}
	timeout := n.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	base := n.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", "1")
	if lang != "" {
		q.Set("accept-language", lang)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
	if err != nil {
		return geo.Coordinate{}, err
	}
	if n.UserAgent != "" {
		req.Header.Set("User-Agent", n.UserAgent)
	}
	client := n.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	t0 := time.Now()
	metrics.GeocodeRequestsTotal.Inc()
	logger.L().Debug("geocode_req", "query", query, "lang", lang)
	resp, err := client.Do(req)
	if err != nil {
		metrics.GeocodeFailTotal.Inc()
		return geo.Coordinate{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()
	metrics.GeocodeDurationMs.Observe(float64(time.Since(t0).Milliseconds()))
	if resp.StatusCode != http.StatusOK {
		metrics.GeocodeFailTotal.Inc()
		return geo.Coordinate{}, fmt.Errorf("geocode status %d", resp.StatusCode)
	}
	var places []Place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		metrics.GeocodeFailTotal.Inc()
		return geo.Coordinate{}, fmt.Errorf("geocode decode: %w", err)
	}
	if len(places) == 0 {
		metrics.GeocodeFailTotal.Inc()
		return geo.Coordinate{}, ErrNotFound
	}
	c, err := places[0].Coordinate()
	if err != nil {
		metrics.GeocodeFailTotal.Inc()
		return geo.Coordinate{}, err
	}
	logger.L().Debug("geocode_resp", "query", query, "lat", c.Lat, "lng", c.Lng, "display_name", places[0].DisplayName)
	return c, nil
}

// Coordinate：Nominatim 以字符串返回经纬度
func (p Place) Coordinate() (geo.Coordinate, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("geocode lat %q: %w", p.Lat, err)
	}
	lng, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("geocode lon %q: %w", p.Lon, err)
	}
	c := geo.Coordinate{Lat: lat, Lng: lng}
	if !c.Valid() {
		return geo.Coordinate{}, fmt.Errorf("geocode coordinate out of range %v", c)
	}
	return c, nil
}
