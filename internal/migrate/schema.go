package migrate

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"venue-vacancy/internal/logger"
)

// 背景：导入前自动建表，保障 gazetteer-ingest 首次运行即可写入
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；id 递增顺序即 CSV 原始行序
func EnsureSchema(ctx context.Context, db *sql.DB, table string) error {
	t := pq.QuoteIdentifier(table)
	stmts := Statements(t)
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done", "table", table)
	return nil
}

// Statements：建表语句，表名需已转义
func Statements(quoted string) []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS ` + quoted + ` (
            id SERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            lat DOUBLE PRECISION NOT NULL,
            lng DOUBLE PRECISION NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS ` + pq.QuoteIdentifier("idx_"+trimQuotes(quoted)+"_name") + ` ON ` + quoted + `(name)`,
	}
}

func trimQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
