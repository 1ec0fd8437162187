package telemetry

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

type perfStats struct {
	cpu         metric.Float64Gauge
	memory      metric.Int64Gauge
	liveObjects metric.Int64Gauge
	goroutines  metric.Int64Gauge
}

func newPerfStats() (perfStats, error) {
	meter := otel.Meter("heavymetal.perf_stats")

	var stats perfStats
	var err error
	stats.cpu, err = meter.Float64Gauge("cpu_usage")
	if err != nil {
		return perfStats{}, err
	}
	stats.memory, err = meter.Int64Gauge("allocated_mb")
	if err != nil {
		return perfStats{}, err
	}
	stats.liveObjects, err = meter.Int64Gauge("live_objects")
	if err != nil {
		return perfStats{}, err
	}
	stats.goroutines, err = meter.Int64Gauge("goroutine_count")
	if err != nil {
		return perfStats{}, err
	}
	return stats, nil
}

func (s perfStats) record(ctx context.Context, memStats *runtime.MemStats) {
	runtime.ReadMemStats(memStats)

	cpuUsage, err := cpu.PercentWithContext(ctx, time.Second*5, false)
	if err == nil && len(cpuUsage) > 0 {
		s.cpu.Record(ctx, cpuUsage[0])
	} else if err != nil {
		slog.DebugContext(ctx, "failed to read cpu usage", "err", err)
	}

	s.memory.Record(ctx, int64(memStats.Alloc/1_000_000))
	s.liveObjects.Record(ctx, int64(memStats.Mallocs)-int64(memStats.Frees))
	s.goroutines.Record(ctx, int64(runtime.NumGoroutine()))
}

// InstrumentPerfStats records process stats every interval until ctx is
// done. It must be called after Setup so the gauges use the configured
// meter provider.
func InstrumentPerfStats(ctx context.Context, interval time.Duration) error {
	stats, err := newPerfStats()
	if err != nil {
		return err
	}

	go func() {
		var memStats runtime.MemStats
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				stats.record(ctx, &memStats)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}
