package main

import (
	"context"
	"log/slog"
	"time"

	"heavymetal-notifier/lib/serviceutil"
	"heavymetal-notifier/lib/telemetry"
)

func InitTelemetry(ctx context.Context, verbose bool) {
	telemetry.InitSlog(verbose)

	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	t, err := telemetry.SetupFromEnv(ctx, "heavymetal-notifier")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		err := t.Shutdown(context.Background())
		if err != nil {
			slog.Warn("shutdown telemetry", "err", err)
		}
	}()

	err = telemetry.InstrumentPerfStats(ctx, time.Second*30)
	if err != nil {
		serviceutil.Fatal("instrument perf stats", err)
	}
}
