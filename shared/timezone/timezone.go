package timezone

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"roombook/config"
	"roombook/shared/constant"
)

var (
	appLocation *time.Location
)

func init() {
	cfg := config.Get()

	if cfg.App.Timezone == "" {
		log.Warn().Msg("No timezone configured, using UTC as default")
		cfg.App.Timezone = "UTC"
	}

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		log.Error().
			Err(err).
			Str("timezone", cfg.App.Timezone).
			Msg("Failed to load timezone, falling back to UTC")

		appLocation = time.UTC

		return
	}

	appLocation = loc
	log.Info().
		Str("timezone", cfg.App.Timezone).
		Msg("Application timezone initialized")
}

// Now returns the current time in the application timezone.
func Now() time.Time {
	return time.Now().In(GetLocation())
}

func ToAppTime(t time.Time) time.Time {
	return t.In(GetLocation())
}

func GetLocation() *time.Location {
	if appLocation == nil {
		return time.UTC
	}

	return appLocation
}

// LoadOrDefault resolves an IANA name, returning the application location when name is empty or unknown.
func LoadOrDefault(name string) *time.Location {
	if name == "" {
		return GetLocation()
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warn().Err(err).Str("timezone", name).Msg("Unknown timezone, using application timezone")

		return GetLocation()
	}

	return loc
}

// Parse parses a time string in the application timezone.
func Parse(layout, value string) (time.Time, error) {
	t, err := time.ParseInLocation(layout, value, GetLocation())
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse time %q: %w", value, err)
	}

	return t, nil
}

// ParseDate parses a YYYY-MM-DD calendar date as midnight in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(constant.DateOnlyFormat, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", value, err)
	}

	return t, nil
}

// ClockOn places an HH:MM wall clock on the calendar day of date, in date's location.
func ClockOn(date time.Time, clock string) (time.Time, error) {
	c, err := time.Parse(constant.ClockFormat, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid clock %q, expected HH:MM: %w", clock, err)
	}

	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour(), c.Minute(), 0, 0, date.Location()), nil
}

func Format(t time.Time, layout string) string {
	return ToAppTime(t).Format(layout)
}
