package timezone_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombook/shared/timezone"
)

func TestTimezoneInit(t *testing.T) {
	assert.False(t, timezone.Now().IsZero())
	assert.NotNil(t, timezone.GetLocation())
}

func TestLoadOrDefault(t *testing.T) {
	t.Run("empty name", func(t *testing.T) {
		assert.Equal(t, timezone.GetLocation(), timezone.LoadOrDefault(""))
	})

	t.Run("unknown name", func(t *testing.T) {
		assert.Equal(t, timezone.GetLocation(), timezone.LoadOrDefault("Mars/Olympus_Mons"))
	})

	t.Run("known name", func(t *testing.T) {
		assert.Equal(t, "UTC", timezone.LoadOrDefault("UTC").String())
	})
}

func TestParseDate(t *testing.T) {
	day, err := timezone.ParseDate("2024-01-15", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), day)

	_, err = timezone.ParseDate("15/01/2024", time.UTC)
	assert.Error(t, err)

	_, err = timezone.ParseDate("2024-02-30", time.UTC)
	assert.Error(t, err)
}

func TestClockOn(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	open, err := timezone.ClockOn(day, "09:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC), open)

	_, err = timezone.ClockOn(day, "9am")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	testTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.NotEmpty(t, timezone.Format(testTime, "2006-01-02 15:04:05 MST"))

	parsed, err := timezone.Parse("2006-01-02", "2024-01-01")
	require.NoError(t, err)
	assert.False(t, parsed.IsZero())
}
