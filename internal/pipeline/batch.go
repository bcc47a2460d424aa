package pipeline

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"venue-vacancy/internal/logger"
	"venue-vacancy/internal/metrics"
	"venue-vacancy/internal/vacancy"
)

const dateLayout = "2006-01-02"

// VenueResolver：会场 → 解析结果；*Resolver 为默认实现
type VenueResolver interface {
	Resolve(ctx context.Context, venue string) Resolution
}

// Venue：待检索的会场与入住/退房日期（可空）
type Venue struct {
	Name     string
	Checkin  string
	Checkout string
}

// Row：最终输出的一行
type Row struct {
	Venue      string
	Checkin    string
	HotelName  string
	Price      int
	ReserveURL string
}

// Outcome：单个会场的处理结果
type Outcome struct {
	Venue      Venue
	Resolution Resolution
	SearchErr  error
	Rows       []Row
}

// Label：指标标签，检索失败单独区分
func (o Outcome) Label() string {
	if o.Resolution.State == StateResolved && o.SearchErr != nil {
		return "SEARCH_FAILED"
	}
	return string(o.Resolution.State)
}

// Report：批处理结果；Rows 已按价格升序
type Report struct {
	Rows     []Row
	Outcomes []Outcome
}

// Batch：按输入顺序处理会场；Workers>1 时有界并行，输出顺序仍与输入一致
type Batch struct {
	Resolver VenueResolver
	Searcher vacancy.Searcher
	Squeeze  string
	Workers  int
	Now      func() time.Time
}

// 文档注释：执行批处理
// 背景：单个会场的失败（地理编码、地区匹配、检索）只让该会场产出零行，不影响其他会场；
// 全部失败时仍正常返回空结果。
// 约束：在会场之间检查 ctx，取消时返回已收集的部分结果与 ctx.Err()。
func (b *Batch) Run(ctx context.Context, venues []Venue) (*Report, error) {
	outcomes := make([]Outcome, len(venues))
	done := make([]bool, len(venues))
	workers := b.Workers
	if workers <= 1 {
		for i, v := range venues {
			if ctx.Err() != nil {
				break
			}
			outcomes[i] = b.process(ctx, v)
			done[i] = true
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i, v := range venues {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if gctx.Err() != nil {
					return nil
				}
				outcomes[i] = b.process(gctx, v)
				done[i] = true
				return nil
			})
		}
		_ = g.Wait()
	}

	rep := &Report{}
	for i, o := range outcomes {
		if !done[i] {
			continue
		}
		rep.Outcomes = append(rep.Outcomes, o)
		rep.Rows = append(rep.Rows, o.Rows...)
	}
	SortRows(rep.Rows)
	if err := ctx.Err(); err != nil {
		logger.L().Warn("batch_cancelled", "processed", len(rep.Outcomes), "total", len(venues), "err", err)
		return rep, err
	}
	return rep, nil
}

// SortRows：价格升序，同价保持拼接顺序
func SortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Price < rows[j].Price })
}

func (b *Batch) process(ctx context.Context, v Venue) Outcome {
	v = b.withDates(v)
	l := logger.L().With("venue", v.Name, "checkin", v.Checkin, "checkout", v.Checkout)
	l.Info("venue_search_begin")
	o := Outcome{Venue: v}
	o.Resolution = b.Resolver.Resolve(ctx, v.Name)
	if o.Resolution.State != StateResolved {
		metrics.VenuesTotal.WithLabelValues(o.Label()).Inc()
		return o
	}
	plans, err := b.Searcher.Search(ctx, vacancy.Query{
		Params:   o.Resolution.Params,
		Checkin:  v.Checkin,
		Checkout: v.Checkout,
		Squeeze:  b.Squeeze,
	})
	if err != nil {
		o.SearchErr = err
		l.Warn("vacancy_search_fail", "reason", vacancy.Reason(err), "err", err)
		metrics.VenuesTotal.WithLabelValues(o.Label()).Inc()
		return o
	}
	for _, p := range plans {
		o.Rows = append(o.Rows, Row{
			Venue:      v.Name,
			Checkin:    v.Checkin,
			HotelName:  p.HotelName,
			Price:      p.Price,
			ReserveURL: p.ReserveURL,
		})
	}
	metrics.PlansTotal.Add(float64(len(o.Rows)))
	metrics.VenuesTotal.WithLabelValues(o.Label()).Inc()
	l.Info("venue_search_done", "plans", len(o.Rows))
	return o
}

// withDates：入住默认今天，退房默认入住次日
func (b *Batch) withDates(v Venue) Venue {
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	today := now()
	if v.Checkin == "" {
		v.Checkin = today.Format(dateLayout)
	}
	if v.Checkout == "" {
		if t, err := time.Parse(dateLayout, v.Checkin); err == nil {
			v.Checkout = t.AddDate(0, 0, 1).Format(dateLayout)
		} else {
			v.Checkout = today.AddDate(0, 0, 1).Format(dateLayout)
		}
	}
	return v
}
