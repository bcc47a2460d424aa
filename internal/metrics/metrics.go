package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	VenuesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vacancy_venues_total",
		Help: "Venues processed by terminal state",
	}, []string{"state"})
	GeocodeRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vacancy_geocode_requests_total",
		Help: "Total geocoder requests",
	})
	GeocodeFailTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vacancy_geocode_fail_total",
		Help: "Total geocoder failures (error or empty result)",
	})
	GeocodeDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "vacancy_geocode_duration_ms",
		Help:    "Geocoder call duration in milliseconds",
		Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000, 10000},
	})
	AreaMatchDistanceKm = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "vacancy_area_match_distance_km",
		Help:    "Distance between geocoded venue and matched area",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 50, 100, 200},
	})
	SearchRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vacancy_search_requests_total",
		Help: "Total vacancy search requests",
	})
	SearchFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vacancy_search_fail_total",
		Help: "Vacancy search failures by reason",
	}, []string{"reason"})
	SearchDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "vacancy_search_duration_ms",
		Help:    "Vacancy search call duration in milliseconds",
		Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000, 10000},
	})
	PlansTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vacancy_plans_total",
		Help: "Bookable plans collected",
	})
)

func init() {
	prometheus.MustRegister(VenuesTotal)
	prometheus.MustRegister(GeocodeRequestsTotal)
	prometheus.MustRegister(GeocodeFailTotal)
	prometheus.MustRegister(GeocodeDurationMs)
	prometheus.MustRegister(AreaMatchDistanceKm)
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchFailTotal)
	prometheus.MustRegister(SearchDurationMs)
	prometheus.MustRegister(PlansTotal)
}

// 文档注释：批处理结束时推送指标到 Pushgateway
// 背景：单次运行的进程不常驻，无法被抓取；url 为空时不推送。
func Push(url, job, runID string) error {
	if url == "" {
		return nil
	}
	return push.New(url, job).
		Gatherer(prometheus.DefaultGatherer).
		Grouping("run_id", runID).
		Push()
}
