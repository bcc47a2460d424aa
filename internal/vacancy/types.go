// 包 vacancy：空房检索请求构造与响应展开
package vacancy

import (
	"errors"
	"fmt"
)

// Mode：检索策略，地区编码与坐标半径互斥
type Mode string

const (
	ModeArea   Mode = "area"
	ModeRadius Mode = "radius"
)

// ParseMode：空串按地区编码模式处理
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeArea:
		return ModeArea, nil
	case ModeRadius:
		return ModeRadius, nil
	}
	return "", fmt.Errorf("unknown resolve mode %q", s)
}

// Params：解析流水线的产出
// 地区编码模式使用 Middle/Small/Detail，半径模式使用 Lat/Lng/RadiusKm
type Params struct {
	Mode       Mode    `json:"mode"`
	MiddleCode string  `json:"middle_code,omitempty"`
	SmallCode  string  `json:"small_code,omitempty"`
	DetailCode string  `json:"detail_code,omitempty"`
	Lat        float64 `json:"lat,omitempty"`
	Lng        float64 `json:"lng,omitempty"`
	RadiusKm   float64 `json:"radius_km,omitempty"`
}

// Query：一次检索请求
type Query struct {
	Params   Params
	Checkin  string
	Checkout string
	// Squeeze 为已翻译的条件关键字，逗号分隔
	Squeeze string
}

// Plan：可预订方案（一家酒店的一组房型/价格）
type Plan struct {
	HotelName  string
	PlanName   string
	Price      int
	ReserveURL string
}

// 错误分类：便于运维区分“无空房”“请求错误”“配额超限”
var (
	ErrNoVacancy     = errors.New("vacancy: no vacancy")
	ErrBadRequest    = errors.New("vacancy: bad request")
	ErrQuotaExceeded = errors.New("vacancy: quota exceeded")
	ErrUnavailable   = errors.New("vacancy: service unavailable")
)

// APIError：服务商返回的非 200 响应
type APIError struct {
	Status      int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vacancy api status %d: %s: %s", e.Status, e.Code, e.Description)
}

// Unwrap：映射到错误分类
func (e *APIError) Unwrap() error {
	switch {
	case e.Code == "not_found" || e.Status == 404:
		return ErrNoVacancy
	case e.Code == "too_many_requests" || e.Status == 429:
		return ErrQuotaExceeded
	case e.Code == "wrong_parameter" || e.Status == 400:
		return ErrBadRequest
	}
	return ErrUnavailable
}

// Reason：指标与日志中使用的简短原因
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoVacancy):
		return "no_vacancy"
	case errors.Is(err, ErrQuotaExceeded):
		return "quota"
	case errors.Is(err, ErrBadRequest):
		return "bad_request"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	}
	return "transport"
}
