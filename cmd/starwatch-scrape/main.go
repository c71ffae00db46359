package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"starwatch/internal/modkit"
	"starwatch/internal/platform/config"
	"starwatch/internal/platform/logger"
	"starwatch/internal/platform/store"

	scrapemod "starwatch/internal/services/scrape/module"
)

func main() {
	root := config.New()
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")

	logger.Init(logger.Options{
		Level:   root.MayString("LOG_LEVEL", "info"),
		Format:  root.MayString("LOG_FORMAT", "console"),
		Service: "starwatch-scrape",
	})
	l := logger.Get()

	var (
		fQty   = flag.Int("qty", 0, "how many repositories to snapshot (default CORE_SCRAPE_QTY)")
		fLimit = flag.Int("limit", 0, "search page size, max 100 (default CORE_SCRAPE_LIMIT)")
		fBatch = flag.Int("batch", 0, "insert batch size (default CORE_SCRAPE_BATCH_SIZE)")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Config{
		AppName: "starwatch",
		CH: store.CHConfig{
			Enabled:     true,
			Host:        chCfg.MayString("HOST", "localhost"),
			Port:        chCfg.MayInt("PORT", 9000),
			User:        chCfg.MayString("USER", "default"),
			Password:    chCfg.MayString("PASSWORD", ""),
			Database:    chCfg.MayString("DB", "default"),
			DialTimeout: chCfg.MayDuration("DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout: chCfg.MayDuration("READ_TIMEOUT", 30*time.Second),
			ClientTag:   "scrape",
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	if err := st.Guard(ctx); err != nil {
		l.Panic().Err(err).Msg("store not ready")
	}

	deps := modkit.Deps{
		Cfg: root,
		Log: *l,
		CH:  st.CH,
	}

	mod := scrapemod.New(deps, scrapemod.Options{
		Qty:       *fQty,
		Limit:     *fLimit,
		BatchSize: *fBatch,
	})
	defer func() {
		if err := mod.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close scrape module")
		}
	}()

	opts := mod.Options()
	l.Info().Int("qty", opts.Qty).Int("limit", opts.Limit).Msg("starting scrape run")

	if err := mod.Ports().Runner.Run(ctx, opts.Qty, opts.Limit); err != nil {
		l.Error().Err(err).Msg("scrape run failed")
		_ = mod.Close(context.Background())
		_ = st.Close(context.Background())
		os.Exit(1)
	}
	l.Info().Msg("scrape run finished")
}
