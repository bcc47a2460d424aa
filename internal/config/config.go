// 包 config：从环境变量读取批处理配置；命令行参数在入口处覆盖
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"venue-vacancy/internal/gazetteer"
	"venue-vacancy/internal/geocode"
	"venue-vacancy/internal/pipeline"
	"venue-vacancy/internal/vacancy"
)

// Config：一次运行的全部参数
type Config struct {
	Venues    string
	Condition string
	AppID     string

	AreaClassPath   string
	GazetteerPath   string
	GazetteerColumn string
	GazetteerSource string
	GazetteerTable  string
	AliasPath       string

	Mode     vacancy.Mode
	RadiusKm float64

	GeocodeURL       string
	GeocodeUserAgent string
	GeocodeSuffix    string
	GeocodeLang      string
	GeocodeRPS       float64

	VacancyURL  string
	VacancyHits int
	VacancyRPS  float64

	HTTPTimeout time.Duration
	Workers     int
	ResultCSV   string

	PushgatewayURL string
	ThrottleRedis  bool
}

// 检索半径上下限（千米），超出时截断
const (
	minRadiusKm = 0.1
	maxRadiusKm = 3.0
)

// FromEnv：读取环境变量并填充默认值
func FromEnv() (Config, error) {
	c := Config{
		Venues:           os.Getenv("SEARCH_VENUE"),
		Condition:        envOr("SEARCH_COND", "禁煙,朝食付き"),
		AppID:            os.Getenv("RAKUTEN_APP_ID"),
		AreaClassPath:    envOr("AREA_CLASS_PATH", "rakuten_area_class.json"),
		GazetteerPath:    envOr("GAZETTEER_PATH", "gazetteer-of-japan.csv"),
		GazetteerColumn:  envOr("GAZETTEER_NAME_COLUMN", gazetteer.DefaultNameColumn),
		GazetteerSource:  strings.ToLower(envOr("GAZETTEER_SOURCE", "csv")),
		GazetteerTable:   envOr("GAZETTEER_TABLE", "_gazetteer"),
		AliasPath:        os.Getenv("VENUE_ALIAS_PATH"),
		GeocodeURL:       envOr("GEOCODE_URL", geocode.DefaultBaseURL),
		GeocodeUserAgent: envOr("GEOCODE_USER_AGENT", "rakuten_search_bot"),
		GeocodeSuffix:    envOr("GEOCODE_SUFFIX", ", Japan"),
		GeocodeLang:      envOr("GEOCODE_LANG", "ja"),
		VacancyURL:       envOr("VACANCY_URL", vacancy.DefaultBaseURL),
		ResultCSV:        envOr("RESULT_CSV", "result.csv"),
		PushgatewayURL:   os.Getenv("PUSHGATEWAY_URL"),
		ThrottleRedis:    os.Getenv("THROTTLE_REDIS") == "true",
	}
	mode, err := vacancy.ParseMode(strings.ToLower(os.Getenv("RESOLVE_MODE")))
	if err != nil {
		return c, err
	}
	c.Mode = mode
	c.RadiusKm = floatOr("SEARCH_RADIUS_KM", 3)
	c.GeocodeRPS = floatOr("GEOCODE_RPS", 1)
	c.VacancyRPS = floatOr("VACANCY_RPS", 1)
	c.VacancyHits = intOr("VACANCY_HITS", 30)
	c.HTTPTimeout = time.Duration(intOr("HTTP_TIMEOUT_S", 10)) * time.Second
	c.Workers = intOr("WORKERS", 1)
	return c, nil
}

// Normalize：截断半径、修正非法数值
func (c *Config) Normalize() {
	if c.RadiusKm < minRadiusKm {
		c.RadiusKm = minRadiusKm
	}
	if c.RadiusKm > maxRadiusKm {
		c.RadiusKm = maxRadiusKm
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.VacancyHits < 1 || c.VacancyHits > 30 {
		c.VacancyHits = 30
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 10 * time.Second
	}
}

// 文档注释：解析会场列表
// 格式：条目以换行或分号分隔，每条为 “会场名[|入住[|退房]]”，日期为 YYYY-MM-DD（兼容 YYYY/MM/DD）。
// 约束：空条目忽略；日期格式错误或退房不晚于入住时返回错误。
func ParseVenues(s string) ([]pipeline.Venue, error) {
	var out []pipeline.Venue
	for _, item := range strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == ';' || r == '；' }) {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.Split(item, "|")
		v := pipeline.Venue{Name: strings.TrimSpace(parts[0])}
		if v.Name == "" {
			return nil, fmt.Errorf("venue entry %q has no name", item)
		}
		var err error
		if len(parts) > 1 {
			if v.Checkin, err = normDate(parts[1]); err != nil {
				return nil, fmt.Errorf("venue %q checkin: %w", v.Name, err)
			}
		}
		if len(parts) > 2 {
			if v.Checkout, err = normDate(parts[2]); err != nil {
				return nil, fmt.Errorf("venue %q checkout: %w", v.Name, err)
			}
		}
		if v.Checkin != "" && v.Checkout != "" && v.Checkout <= v.Checkin {
			return nil, fmt.Errorf("venue %q: checkout %s not after checkin %s", v.Name, v.Checkout, v.Checkin)
		}
		out = append(out, v)
	}
	return out, nil
}

func normDate(s string) (string, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "/", "-")
	if s == "" {
		return "", nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return "", err
	}
	return t.Format("2006-01-02"), nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// ignore parse error silently, keep default
func floatOr(k string, def float64) float64 {
	if s := os.Getenv(k); s != "" {
		if f, e := strconv.ParseFloat(s, 64); e == nil {
			return f
		}
	}
	return def
}

func intOr(k string, def int) int {
	if s := os.Getenv(k); s != "" {
		if n, e := strconv.Atoi(s); e == nil {
			return n
		}
	}
	return def
}
