// 地名表导入工具：读取 CSV 对照表，整体替换数据库中的地名表
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"venue-vacancy/internal/gazetteer"
	"venue-vacancy/internal/logger"
	"venue-vacancy/internal/migrate"
	"venue-vacancy/internal/utils"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	if err := newCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newCmd() *cobra.Command {
	var path, table, column string
	cmd := &cobra.Command{
		Use:          "gazetteer-ingest",
		Short:        "Import the gazetteer CSV into Postgres",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return ingest(ctx, path, table, column)
		},
	}
	cmd.Flags().StringVar(&path, "csv", envOr("GAZETTEER_PATH", "gazetteer-of-japan.csv"), "gazetteer CSV path")
	cmd.Flags().StringVar(&table, "table", envOr("GAZETTEER_TABLE", "_gazetteer"), "target table")
	cmd.Flags().StringVar(&column, "column", envOr("GAZETTEER_NAME_COLUMN", gazetteer.DefaultNameColumn), "name column in the CSV header")
	return cmd
}

func ingest(ctx context.Context, path, table, column string) error {
	l := logger.Setup()
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	entries, err := gazetteer.ReadCSV(f, column)
	if err != nil {
		l.Error("gazetteer_read_error", "path", path, "err", err)
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("%s: no rows", path)
	}
	l.Info("gazetteer_read_ok", "path", path, "rows", len(entries))

	db, err := utils.OpenPostgresFromEnv(ctx)
	if err != nil {
		l.Error("db_open_error", "err", err)
		return err
	}
	defer db.Close()
	if err := migrate.EnsureSchema(ctx, db, table); err != nil {
		l.Error("schema_error", "err", err)
		return err
	}
	if err := gazetteer.Replace(ctx, db, table, entries); err != nil {
		l.Error("gazetteer_ingest_error", "table", table, "err", err)
		return err
	}
	l.Info("gazetteer_ingest_ok", "table", table, "rows", len(entries))
	return nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
