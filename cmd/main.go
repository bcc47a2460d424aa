// 程序入口：读取配置、构建一次性的地区表与地名表，逐个会场检索空房并输出结果
package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"venue-vacancy/internal/config"
	"venue-vacancy/internal/vacancy"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// flags：命令行参数，仅在显式给出时覆盖环境变量
type flags struct {
	venue   string
	cond    string
	mode    string
	radius  float64
	out     string
	workers int
	alias   string
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:          "vacancy",
		Short:        "Search hotel vacancies near event venues",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if err := applyFlags(cmd, &cfg, f); err != nil {
				return err
			}
			cfg.Normalize()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, cmd.OutOrStdout())
		},
	}
	bindFlags(cmd.Flags(), &f)
	return cmd
}

func bindFlags(fs *pflag.FlagSet, f *flags) {
	fs.StringVar(&f.venue, "venue", "", "venue list, entries separated by newline or ';', each name[|checkin[|checkout]]")
	fs.StringVar(&f.cond, "cond", "", "condition keywords, e.g. 禁煙,朝食付き")
	fs.StringVar(&f.mode, "mode", "", "resolve mode: area or radius")
	fs.Float64Var(&f.radius, "radius", 0, "search radius in km for radius mode (0.1-3)")
	fs.StringVar(&f.out, "out", "", "result CSV path")
	fs.IntVar(&f.workers, "workers", 0, "venues processed concurrently")
	fs.StringVar(&f.alias, "alias", "", "venue alias YAML file")
}

func applyFlags(cmd *cobra.Command, cfg *config.Config, f flags) error {
	fs := cmd.Flags()
	if fs.Changed("venue") {
		cfg.Venues = f.venue
	}
	if fs.Changed("cond") {
		cfg.Condition = f.cond
	}
	if fs.Changed("mode") {
		m, err := vacancy.ParseMode(f.mode)
		if err != nil {
			return err
		}
		cfg.Mode = m
	}
	if fs.Changed("radius") {
		cfg.RadiusKm = f.radius
	}
	if fs.Changed("out") {
		cfg.ResultCSV = f.out
	}
	if fs.Changed("workers") {
		cfg.Workers = f.workers
	}
	if fs.Changed("alias") {
		cfg.AliasPath = f.alias
	}
	return nil
}
