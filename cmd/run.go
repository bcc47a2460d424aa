package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"venue-vacancy/internal/alias"
	"venue-vacancy/internal/area"
	"venue-vacancy/internal/condition"
	"venue-vacancy/internal/config"
	"venue-vacancy/internal/gazetteer"
	"venue-vacancy/internal/geocode"
	"venue-vacancy/internal/logger"
	"venue-vacancy/internal/metrics"
	"venue-vacancy/internal/output"
	"venue-vacancy/internal/pipeline"
	"venue-vacancy/internal/taxonomy"
	"venue-vacancy/internal/throttle"
	"venue-vacancy/internal/utils"
	"venue-vacancy/internal/vacancy"
)

// 文档注释：一次完整批处理
// 约束：地区表与地名表只构建一次，之后只读；单会场失败不会让 run 返回错误，
// 仅配置错误、地区分类表加载失败、结果写出失败与取消会返回错误。
func run(ctx context.Context, cfg config.Config, stdout io.Writer) error {
	runID := uuid.NewString()
	l := logger.Setup().With("run_id", runID)
	logger.Use(l)

	venues, err := config.ParseVenues(cfg.Venues)
	if err != nil {
		return err
	}
	if len(venues) == 0 {
		return errors.New("no venues: set SEARCH_VENUE or --venue")
	}
	if cfg.AppID == "" {
		return errors.New("RAKUTEN_APP_ID is not set")
	}
	l.Info("run_begin", "venues", len(venues), "mode", cfg.Mode, "workers", cfg.Workers)

	recs, err := taxonomy.Load(cfg.AreaClassPath)
	if err != nil {
		l.Error("taxonomy_load_error", "path", cfg.AreaClassPath, "err", err)
		return err
	}
	g := loadGazetteer(ctx, cfg)
	table := area.Resolve(recs, g)
	l.Info("area_table_ready", "areas", len(table), "resolved", table.ResolvedCount())

	aliases, err := alias.Load(cfg.AliasPath)
	if err != nil {
		l.Error("alias_load_error", "path", cfg.AliasPath, "err", err)
		return err
	}

	var rc *redis.Client
	if cfg.ThrottleRedis {
		rc = utils.OpenRedisFromEnv()
		defer rc.Close()
	}
	hc := logger.NewClient(l, cfg.HTTPTimeout)
	b := &pipeline.Batch{
		Resolver: &pipeline.Resolver{
			Geocoder: &geocode.Nominatim{
				BaseURL:   cfg.GeocodeURL,
				UserAgent: cfg.GeocodeUserAgent,
				Client:    hc,
				Throttle:  throttleFor(rc, "geocode", cfg.GeocodeRPS),
				Timeout:   cfg.HTTPTimeout,
			},
			Matcher:  area.NewMatcher(table),
			Aliases:  aliases,
			Mode:     cfg.Mode,
			RadiusKm: cfg.RadiusKm,
			Suffix:   cfg.GeocodeSuffix,
			Lang:     cfg.GeocodeLang,
		},
		Searcher: &vacancy.Client{
			BaseURL:  cfg.VacancyURL,
			AppID:    cfg.AppID,
			Hits:     cfg.VacancyHits,
			Client:   hc,
			Throttle: throttleFor(rc, "vacancy", cfg.VacancyRPS),
			Timeout:  cfg.HTTPTimeout,
		},
		Squeeze: condition.Translate(cfg.Condition),
		Workers: cfg.Workers,
	}

	start := time.Now()
	rep, runErr := b.Run(ctx, venues)
	summarize(rep, time.Since(start))

	if err := writeResults(stdout, cfg.ResultCSV, rep.Rows); err != nil {
		l.Error("result_write_error", "path", cfg.ResultCSV, "err", err)
		return err
	}
	if cfg.PushgatewayURL != "" {
		if err := metrics.Push(cfg.PushgatewayURL, "vacancy", runID); err != nil {
			l.Warn("metrics_push_error", "err", err)
		}
	}
	return runErr
}

func loadGazetteer(ctx context.Context, cfg config.Config) *gazetteer.Gazetteer {
	if cfg.GazetteerSource != "db" {
		return gazetteer.LoadCSV(cfg.GazetteerPath, cfg.GazetteerColumn)
	}
	db, err := utils.OpenPostgresFromEnv(ctx)
	if err != nil {
		logger.L().Warn("db_open_error", "err", err)
		return gazetteer.Empty()
	}
	defer db.Close()
	return gazetteer.LoadDB(ctx, db, cfg.GazetteerTable)
}

// throttleFor：本地令牌桶，配置 Redis 时再叠加跨进程窗口
func throttleFor(rc *redis.Client, name string, rps float64) throttle.Throttle {
	c := throttle.Chain{throttle.NewLocal(rps)}
	if r := throttle.NewRedisRate(rc, name, rps); r != nil {
		c = append(c, r)
	}
	return c
}

func summarize(rep *pipeline.Report, took time.Duration) {
	states := map[string]int{}
	for _, o := range rep.Outcomes {
		states[o.Label()]++
	}
	args := []any{"venues", len(rep.Outcomes), "rows", len(rep.Rows), "took_ms", took.Milliseconds()}
	for k, n := range states {
		args = append(args, k, n)
	}
	logger.L().Info("run_done", args...)
}

func writeResults(stdout io.Writer, path string, rows []pipeline.Row) error {
	if len(rows) == 0 {
		fmt.Fprintln(stdout, "空室は見つかりませんでした")
	} else if err := output.WriteMarkdown(stdout, rows); err != nil {
		return err
	}
	return output.SaveCSV(path, rows)
}
