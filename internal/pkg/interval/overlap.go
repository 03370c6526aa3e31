// Package interval decides conflicts between half-open time intervals.
package interval

import "time"

// Overlaps reports whether [existingStart, existingEnd) and
// [requestedStart, requestedEnd) share any instant. Back-to-back intervals,
// where one ends exactly when the other starts, do not overlap.
func Overlaps(existingStart, existingEnd, requestedStart, requestedEnd time.Time) bool {
	return existingStart.Before(requestedEnd) && requestedStart.Before(existingEnd)
}
