// Package audit implements the append-only trail shared by feedback and report
// aggregates. Records are positioned by a 1-based sequence and a timestamp that
// never goes backwards along the sequence.
package audit

import "time"

// Entry is implemented by pointers to audit rows.
type Entry[T any] interface {
	*T
	Position() (seq int, at time.Time)
	Stamp(seq int, at time.Time)
}

// Append stamps rec as the next record of trail and returns the extended trail.
// Existing records are never touched.
func Append[T any, P Entry[T]](trail []T, rec T, now time.Time) []T {
	seq, at := 1, now
	if n := len(trail); n > 0 {
		lastSeq, lastAt := P(&trail[n-1]).Position()
		seq = lastSeq + 1
		if at.Before(lastAt) {
			at = lastAt
		}
	}
	P(&rec).Stamp(seq, at)
	return append(trail, rec)
}

// Ordered reports whether trail is contiguous from 1 with non-decreasing timestamps.
func Ordered[T any, P Entry[T]](trail []T) bool {
	var prev time.Time
	for i := range trail {
		seq, at := P(&trail[i]).Position()
		if seq != i+1 {
			return false
		}
		if i > 0 && at.Before(prev) {
			return false
		}
		prev = at
	}
	return true
}

// Last returns a pointer to the newest record, or nil for an empty trail.
func Last[T any](trail []T) *T {
	if len(trail) == 0 {
		return nil
	}
	return &trail[len(trail)-1]
}
