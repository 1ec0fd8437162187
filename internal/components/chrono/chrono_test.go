package chrono

import (
	"testing"
	"time"
	_ "time/tzdata"

	"heavymetal-notifier/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

func TestStandardImpl(t *testing.T) {
	clock, err := NewStandardImpl("")
	require.NoError(t, err)
	require.Equal(t, time.UTC, clock.Location())
	require.Equal(t, time.UTC, clock.Now().Location())

	clock, err = NewStandardImpl("Europe/Berlin")
	require.NoError(t, err)
	require.Equal(t, "Europe/Berlin", clock.Location().String())
	require.Equal(t, "Europe/Berlin", clock.Now().Location().String())

	_, err = NewStandardImpl("Middle/Earth")
	require.Error(t, err)
}

func TestFixedImpl(t *testing.T) {
	at := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	clock := FixedImpl{At: at}
	require.Equal(t, at, clock.Now())
	require.Equal(t, time.UTC, clock.Location())
}

func TestStandardCron(t *testing.T) {
	tel := telemetry.NewRecordingAPI()
	cron := NewStandardCron(tel, FixedImpl{At: time.Now().UTC()})
	defer cron.Stop()

	require.NoError(t, cron.Cron("0 0 1 * *", func() {}))
	require.Error(t, cron.Cron("every other tuesday", func() {}))
}

func TestCronLoggerParams(t *testing.T) {
	tel := telemetry.NewRecordingAPI()
	logger := cronLogger{tel: tel}

	logger.Info("schedule", "entry", 1, "next", "tomorrow")
	debug := tel.Reports("debug", "cron: schedule")
	require.Len(t, debug, 1)
	require.Equal(t, []any{"entry: 1", "next: tomorrow"}, debug[0].Params)
}
