// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

package crontab

import "time"

// yearHorizon bounds the search: an expression that cannot fire within four
// years of the starting instant is reported as never firing.
const yearHorizon = 4

// Next returns the smallest instant strictly after t whose second, minute,
// hour, day-of-month, month and day-of-week are all accepted by the
// expression. The zero time is returned when no such instant exists within
// the year horizon.
//
// The computation is a descending-field fixpoint: whenever a higher field is
// advanced, every lower field is reset to its minimum and matching restarts,
// since the lower-field answers depend on the new upper-field values.
func (e *Expression) Next(t time.Time) time.Time {
	loc := t.Location()
	yearLimit := t.Year() + yearHorizon

	// Start at the next whole second; sub-second remainders are dropped.
	t = t.Truncate(time.Second).Add(time.Second)

	for {
		if t.Year() > yearLimit {
			return time.Time{}
		}

		if !bit(e.months, uint(t.Month())-1) {
			t = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, 1, 0)
			continue
		}

		if !e.dayMatches(t) {
			t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
			continue
		}

		if !bit(e.hours, uint(t.Hour())) {
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, loc).Add(time.Hour)
			continue
		}

		if !bit(e.minutes, uint(t.Minute())) {
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, loc).Add(time.Minute)
			continue
		}

		if !bit(e.seconds, uint(t.Second())) {
			t = t.Add(time.Second)
			continue
		}

		return t
	}
}

// dayMatches requires the candidate day to satisfy both the day-of-month and
// the day-of-week bit-sets.
func (e *Expression) dayMatches(t time.Time) bool {
	return bit(e.daysOfMonth, uint(t.Day())) && bit(e.daysOfWeek, uint(t.Weekday()))
}
