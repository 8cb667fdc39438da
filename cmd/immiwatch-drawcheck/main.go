package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"immiwatch/internal/modkit"
	"immiwatch/internal/platform/config"
	"immiwatch/internal/platform/logger"
	"immiwatch/internal/platform/store"

	drawcheckmod "immiwatch/internal/services/drawcheck/module"
	monthlymod "immiwatch/internal/services/monthly/module"
)

func main() {
	var (
		fOnce  = flag.Bool("once", false, "check the feed once and exit")
		fEvery = flag.Duration("every", 0, "poll interval (default CORE_INGEST_EVERY or 1h)")
	)
	flag.Parse()

	l := logger.Get()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := config.New()
	st, err := store.Open(ctx, store.FromEnv(root, "drawcheck"), store.WithLogger(*l))
	if err != nil {
		l.Fatal().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	deps := modkit.Deps{Cfg: root, PG: st.PG, CH: st.CH, Log: *l}
	monthly, err := monthlymod.Build(ctx, deps, monthlymod.FromConfig(root))
	if err != nil {
		l.Fatal().Err(err).Msg("monthly build failed")
	}
	defer monthly.Wait()

	o := drawcheckmod.FromConfig(root)
	checker, err := drawcheckmod.Build(ctx, deps, o, monthly)
	if err != nil {
		l.Fatal().Err(err).Msg("drawcheck build failed")
	}

	if *fOnce {
		res, err := checker.Check(ctx)
		if err != nil {
			monthly.Wait()
			l.Fatal().Err(err).Msg("draw check failed")
		}
		l.Info().Str("kind", string(res.Kind)).Int("draw", res.Round.Number).Int("previous", res.Previous).Msg("draw check done")
		return
	}

	every := o.Every
	if *fEvery > 0 {
		every = *fEvery
	}
	l.Info().Dur("every", every).Str("feed", o.FeedURL).Msg("drawcheck polling")
	if err := checker.Run(ctx, every); err != nil && ctx.Err() == nil {
		l.Error().Err(err).Msg("drawcheck stopped")
	}
	l.Info().Msg("bye")
}
