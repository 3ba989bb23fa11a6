// Package timezone holds the application location and small helpers around it.
//
// The location is read from APP_TIMEZONE on import and falls back to UTC. Booking
// calendars may run in a different zone; LoadOrDefault resolves those lazily:
//
//	loc := timezone.LoadOrDefault(cfg.Booking.Timezone)
//	day, err := timezone.ParseDate("2024-01-15", loc)
//
// Use IANA names ("UTC", "Asia/Jakarta", "Europe/London").
package timezone
