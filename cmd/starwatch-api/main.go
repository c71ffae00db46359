package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"starwatch/internal/modkit"
	"starwatch/internal/platform/config"
	"starwatch/internal/platform/logger"
	phttp "starwatch/internal/platform/net/http"
	"starwatch/internal/platform/net/middleware"
	"starwatch/internal/platform/store"

	campaignmod "starwatch/internal/services/campaign/module"
	"starwatch/internal/services/health"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")

	logger.Init(logger.Options{
		Level:   root.MayString("LOG_LEVEL", "info"),
		Format:  root.MayString("LOG_FORMAT", "console"),
		Service: "starwatch-api",
	})
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Config{
		AppName: "starwatch",
		PG: store.PGConfig{
			Enabled:     pgCfg.MayBool("ENABLED", true),
			URL:         pgCfg.MayString("DBURL", ""),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", true),
		},
		CH: store.CHConfig{
			Enabled:     true,
			Host:        chCfg.MayString("HOST", "localhost"),
			Port:        chCfg.MayInt("PORT", 9000),
			User:        chCfg.MayString("USER", "default"),
			Password:    chCfg.MayString("PASSWORD", ""),
			Database:    chCfg.MayString("DB", "default"),
			DialTimeout: chCfg.MayDuration("DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout: chCfg.MayDuration("READ_TIMEOUT", 30*time.Second),
			ClientTag:   "api",
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

	deps := modkit.Deps{
		Cfg: root,
		Log: *l,
		PG:  st.PG,
		CH:  st.CH,
	}

	campaigns := campaignmod.New(deps)

	srv := phttp.NewServer(root, func(m *chi.Mux) {
		m.Use(middleware.RequestID)
		m.Use(middleware.RecoverJSON)
		m.Use(middleware.AccessLog(middleware.AccessLogOptions{
			Slow: root.MayDuration("CORE_API_SLOW", time.Second),
		}))
		m.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{root.MayString("CORE_API_CORS_ORIGIN", "*")},
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			MaxAge:         300,
		}))

		health.Mount(m, deps.PG)
		campaigns.MountRoutes(m)
		m.Handle("/metrics", promhttp.Handler())
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil {
			l.Error().Err(err).Msg("shutdown failed")
		}
		<-errCh
	case err := <-errCh:
		if err != nil {
			l.Panic().Err(err).Msg("http server stopped")
		}
	}
}
