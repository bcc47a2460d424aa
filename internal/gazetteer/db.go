package gazetteer

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"venue-vacancy/internal/geo"
	"venue-vacancy/internal/logger"
)

// 文档注释：从数据库读取对照表
// 背景：由 cmd/gazetteer-ingest 导入后，运行时可直接读表，省去分发大体积 CSV。
// 约束：按 id 升序读取以保持与导入时相同的“首条优先”顺序；坐标非法的行跳过。
func ReadDB(ctx context.Context, db *sql.DB, table string) ([]Entry, error) {
	q := fmt.Sprintf("SELECT name, lat, lng FROM %s ORDER BY id", pq.QuoteIdentifier(table))
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query gazetteer: %w", err)
	}
	defer rows.Close()
	var out []Entry
	skipped := 0
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.Lat, &e.Lng); err != nil {
			return nil, fmt.Errorf("scan gazetteer: %w", err)
		}
		if e.Name == "" || !(geo.Coordinate{Lat: e.Lat, Lng: e.Lng}).Valid() {
			skipped++
			continue
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if skipped > 0 {
		logger.L().Warn("gazetteer_rows_skipped", "source", "db", "count", skipped)
	}
	return out, nil
}

// LoadDB：读表失败时同样降级为空表
func LoadDB(ctx context.Context, db *sql.DB, table string) *Gazetteer {
	if db == nil {
		logger.L().Warn("gazetteer_load_error", "source", "db", "err", "no database")
		return Empty()
	}
	entries, err := ReadDB(ctx, db, table)
	if err != nil {
		logger.L().Warn("gazetteer_load_error", "source", "db", "table", table, "err", err)
		return Empty()
	}
	g := New(entries)
	logger.L().Info("gazetteer_loaded", "source", "db", "table", table, "rows", g.Entries(), "names", g.Len())
	return g
}

// 文档注释：批量写入对照表（COPY）
// 背景：全国地名表行数较多，逐行 INSERT 过慢；整体在单个事务内替换，失败即回滚。
func Replace(ctx context.Context, db *sql.DB, table string, entries []Entry) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, "TRUNCATE "+pq.QuoteIdentifier(table)+" RESTART IDENTITY"); err != nil {
		return fmt.Errorf("truncate gazetteer: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(table, "name", "lat", "lng"))
	if err != nil {
		return fmt.Errorf("prepare copy: %w", err)
	}
	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.Name, e.Lat, e.Lng); err != nil {
			_ = stmt.Close()
			return fmt.Errorf("copy row %q: %w", e.Name, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		return fmt.Errorf("flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return err
	}
	return tx.Commit()
}
