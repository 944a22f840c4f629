// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package clock

import "time"

type Countdown struct {
	Now       time.Time
	Target    time.Time
	Remaining time.Duration
	Ended     bool
}

// NewCountdown counts down to closesAt, or to the next midnight in loc when
// no close time is set.
func NewCountdown(now, closesAt time.Time, loc *time.Location) Countdown {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)

	if !closesAt.IsZero() {
		target := closesAt.In(loc)
		remaining := target.Sub(now)
		if remaining <= 0 {
			return Countdown{Now: now, Target: target, Ended: true}
		}
		return Countdown{Now: now, Target: target, Remaining: remaining}
	}

	y, m, d := now.Date()
	target := time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	return Countdown{Now: now, Target: target, Remaining: target.Sub(now)}
}

// Parts splits the remaining time into whole hours, minutes and seconds.
func (c Countdown) Parts() (hours, minutes, seconds int64) {
	total := int64(c.Remaining / time.Second)
	return total / 3600, (total % 3600) / 60, total % 60
}
