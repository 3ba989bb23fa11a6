// Package slot splits an opening window into contiguous fixed-length booking windows.
package slot

import (
	"errors"
	"iter"
	"time"
)

var ErrInvalidInterval = errors.New("slot interval must be positive")

// Window is the half-open range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Generate yields windows of exactly interval length starting at opensAt. A trailing window that would
// end after closesAt is dropped, and opensAt >= closesAt yields nothing. The sequence can be ranged repeatedly.
func Generate(opensAt, closesAt time.Time, interval time.Duration) (iter.Seq[Window], error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}

	return func(yield func(Window) bool) {
		for start := opensAt; start.Before(closesAt); start = start.Add(interval) {
			end := start.Add(interval)
			if end.After(closesAt) {
				return
			}

			if !yield(Window{Start: start, End: end}) {
				return
			}
		}
	}, nil
}
