package vacancy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"venue-vacancy/internal/logger"
	"venue-vacancy/internal/metrics"
	"venue-vacancy/internal/throttle"
)

// DefaultBaseURL：楽天トラベル空室検索 API
const DefaultBaseURL = "https://app.rakuten.co.jp/services/api/Travel/VacantHotelSearch/20170426"

// Searcher：检索接口，流水线只依赖该契约
type Searcher interface {
	Search(ctx context.Context, q Query) ([]Plan, error)
}

// Client：空房检索 REST 客户端
type Client struct {
	BaseURL  string
	AppID    string
	Hits     int
	Client   *http.Client
	Throttle throttle.Throttle
	Timeout  time.Duration
}

// 文档注释：执行一次空房检索
// 返回：展开后的方案；非 200 时返回 *APIError（可用 errors.Is 判定分类），并附带服务商的错误描述。
// 约束：单次调用超时默认 10s；请求前经过节流。
func (c *Client) Search(ctx context.Context, q Query) ([]Plan, error) {
	if c.Throttle != nil {
		if err := c.Throttle.Wait(ctx); err != nil {
			return nil, err
		}
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	v, err := c.values(q)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+v.Encode(), nil)
	if err != nil {
		return nil, err
	}
	hc := c.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	t0 := time.Now()
	metrics.SearchRequestsTotal.Inc()
	resp, err := hc.Do(req)
	if err != nil {
		metrics.SearchFailTotal.WithLabelValues("transport").Inc()
		return nil, fmt.Errorf("vacancy request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	metrics.SearchDurationMs.Observe(float64(time.Since(t0).Milliseconds()))
	if err != nil {
		metrics.SearchFailTotal.WithLabelValues("transport").Inc()
		return nil, fmt.Errorf("vacancy read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		apiErr := decodeError(resp.StatusCode, body)
		metrics.SearchFailTotal.WithLabelValues(Reason(apiErr)).Inc()
		return nil, apiErr
	}
	plans, err := ParseHotels(body)
	if err != nil {
		metrics.SearchFailTotal.WithLabelValues("decode").Inc()
		return nil, err
	}
	logger.L().Debug("vacancy_resp", "mode", q.Params.Mode, "plans", len(plans), "duration_ms", time.Since(t0).Milliseconds())
	return plans, nil
}

// values：按检索模式组装查询参数
func (c *Client) values(q Query) (url.Values, error) {
	v := url.Values{}
	v.Set("applicationId", c.AppID)
	v.Set("format", "json")
	v.Set("checkinDate", q.Checkin)
	v.Set("checkoutDate", q.Checkout)
	hits := c.Hits
	if hits <= 0 {
		hits = 30
	}
	v.Set("hits", strconv.Itoa(hits))
	if q.Squeeze != "" {
		v.Set("squeezeCondition", q.Squeeze)
	}
	p := q.Params
	switch p.Mode {
	case ModeArea, "":
		if p.MiddleCode == "" || p.SmallCode == "" {
			return nil, fmt.Errorf("%w: area mode requires middle and small codes", ErrBadRequest)
		}
		v.Set("largeClassCode", "japan")
		v.Set("middleClassCode", p.MiddleCode)
		v.Set("smallClassCode", p.SmallCode)
		if p.DetailCode != "" {
			v.Set("detailClassCode", p.DetailCode)
		}
	case ModeRadius:
		v.Set("latitude", strconv.FormatFloat(p.Lat, 'f', 6, 64))
		v.Set("longitude", strconv.FormatFloat(p.Lng, 'f', 6, 64))
		v.Set("searchRadius", strconv.FormatFloat(p.RadiusKm, 'f', -1, 64))
		// 1: WGS84 十进制度
		v.Set("datumType", "1")
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrBadRequest, p.Mode)
	}
	return v, nil
}

func decodeError(status int, body []byte) *APIError {
	e := &APIError{Status: status}
	var m struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &m); err == nil {
		e.Code = m.Error
		e.Description = m.Description
	}
	if e.Description == "" {
		e.Description = "Unknown Error"
	}
	return e
}
