package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"immiwatch/internal/modkit"
	"immiwatch/internal/platform/config"
	perr "immiwatch/internal/platform/errors"
	"immiwatch/internal/platform/logger"
	"immiwatch/internal/platform/net/http/bind"
	"immiwatch/internal/platform/store"

	"immiwatch/internal/services/monthly/domain"
	monthlymod "immiwatch/internal/services/monthly/module"
	"immiwatch/internal/services/monthly/normalize"
)

// modes accepted by -mode
const (
	modeCreate     = "create-current"
	modeGet        = "get-current"
	modeUpdate     = "update-current"
	modeTransition = "check-transition"
	modeStatus     = "status"
	modeIngest     = "ingest"
)

type cliArgs struct {
	mode string
	data string
	at   string
}

func main() {
	var a cliArgs
	flag.StringVar(&a.mode, "mode", "", "create-current | get-current | update-current | check-transition | status | ingest")
	flag.StringVar(&a.data, "data", "", "JSON input file for update-current and ingest (default stdin)")
	flag.StringVar(&a.at, "at", "", "RFC3339 time for check-transition (default now)")
	flag.Parse()

	l := logger.Get()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := config.New()
	st, err := store.Open(ctx, store.FromEnv(root, "monthly"), store.WithLogger(*l))
	if err != nil {
		l.Fatal().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	svc, err := monthlymod.Build(ctx, modkit.Deps{Cfg: root, PG: st.PG, CH: st.CH, Log: *l}, monthlymod.FromConfig(root))
	if err != nil {
		l.Fatal().Err(err).Msg("monthly build failed")
	}

	code := run(ctx, svc, a, os.Stdin, os.Stdout, time.Now)
	svc.Wait()
	if code != 0 {
		os.Exit(code)
	}
}

// run executes one mode and returns the process exit code. Results go to
// out as indented JSON; errors are logged
func run(ctx context.Context, svc domain.ServicePort, a cliArgs, stdin io.Reader, out io.Writer, now func() time.Time) int {
	l := logger.C(ctx).With().Str("mode", a.mode).Logger()

	res, err := dispatch(ctx, svc, a, stdin, now)
	if err != nil {
		var pe *perr.Error
		if errors.As(err, &pe) {
			l.Error().Err(err).Int("code", int(pe.Code())).Msg("monthly command failed")
		} else {
			l.Error().Err(err).Msg("monthly command failed")
		}
		return 1
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		l.Error().Err(err).Msg("write result")
		return 1
	}
	return 0
}

func dispatch(ctx context.Context, svc domain.ServicePort, a cliArgs, stdin io.Reader, now func() time.Time) (any, error) {
	switch a.mode {
	case modeCreate:
		res, err := svc.CreateCurrent(ctx)
		if err == nil && res.AlreadyCurrent {
			logger.C(ctx).Info().Str("bucket", res.Pointer.BucketID).Msg("already current")
		}
		return res, err
	case modeGet:
		return svc.GetCurrent(ctx)
	case modeStatus:
		return svc.Status(ctx)
	case modeTransition:
		at := now()
		if a.at != "" {
			t, err := time.Parse(time.RFC3339, a.at)
			if err != nil {
				return nil, perr.WithField(perr.Wrap(err, perr.ErrorCodeValidation, "bad -at"), "at")
			}
			at = t
		}
		res, err := svc.CheckTransition(ctx, at)
		if err == nil && res.Kind != domain.TransitionApplied {
			logger.C(ctx).Info().Str("kind", string(res.Kind)).Msg("no transition needed")
		}
		return res, err
	case modeUpdate:
		b, err := readInput(a.data, stdin)
		if err != nil {
			return nil, err
		}
		var u domain.ManualUpdate
		if err := json.Unmarshal(b, &u); err != nil {
			return nil, perr.JSONErrf("invalid JSON: %v", err)
		}
		if err := bind.Validate(u); err != nil {
			return nil, err
		}
		return svc.UpdateCurrent(ctx, u)
	case modeIngest:
		b, err := readInput(a.data, stdin)
		if err != nil {
			return nil, err
		}
		raw, err := normalize.DecodePayload(b)
		if err != nil {
			return nil, err
		}
		return svc.Ingest(ctx, raw, domain.SourceCLI)
	default:
		return nil, perr.Newf(perr.ErrorCodeValidation, "unknown -mode %q", a.mode)
	}
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeJSON, "read stdin")
		}
		return b, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeValidation, "read %s", path)
	}
	return b, nil
}
