// @title         Immiwatch API
// @version       0.1.0
// @description   Monthly Express Entry draw aggregates and feed polling

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"immiwatch/internal/modkit/repokit"
	"immiwatch/internal/platform/config"
	"immiwatch/internal/platform/logger"
	"immiwatch/internal/platform/metrics"
	phttp "immiwatch/internal/platform/net/http"
	"immiwatch/internal/platform/store"

	"immiwatch/internal/services/api"
)

func main() {
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// postgres and clickhouse are both optional (SERVICE_PGSQL_ENABLED, SERVICE_CLICKHOUSE_ENABLED)
	st, err := store.Open(ctx, store.FromEnv(root, "api"), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, st)

	var m *metrics.Metrics
	if apiCfg.MayBool("METRICS", true) {
		m = metrics.New()
	}

	// CORE_API_PORT, CORE_API_READ_HEADER_TIMEOUT, CORE_API_SHUTDOWN_TIMEOUT
	srv := phttp.NewServer(apiCfg)

	mounted := api.Mount(srv.Router(), api.Options{
		Config:         root,
		Store:          st,
		Logger:         l,
		Metrics:        m,
		EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
		EnableProfiler: apiCfg.MayBool("PROFILER", false),
	})

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
	// let in-flight notifications finish before the store closes
	mounted.Wait()
	l.Info().Msg("bye")
}
