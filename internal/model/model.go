package model

import (
	"fmt"
	"time"
)

// Status tags an Activity with the collection its source belongs to
// (active or former members of the Conseil des ministres). It is supplied
// by the caller per source and never inferred from row content.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Activity is the canonical record produced by one surviving agenda row.
// Activities are built once during a parse pass and are never mutated
// afterwards; the emitter and the summary generator only read them.
type Activity struct {
	// Type is the free-text activity category ("Type d'activité" column).
	Type string

	// Description is the HTML-cleaned description. May be empty.
	Description string

	// Location is the HTML-cleaned location ("Lieu" column).
	Location string

	// Date is the calendar date of the activity, always set: rows whose
	// date cannot be parsed are dropped during building, never kept with
	// a zero date. Only the Y/M/D components are meaningful; the value is
	// anchored at midnight UTC.
	Date time.Time

	// Time is the optional time of day. Nil means the activity has no
	// scheduled time and is treated as all-day.
	Time *TimeOfDay

	// Participants is a newline-joined list of cleaned participant lines
	// with no empty lines. May be empty.
	Participants string

	// Minister identifies the originating source (derived from the source
	// file identity, not from row content).
	Minister string

	// Status records which collection the source came from.
	Status Status
}

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// String renders the time as zero-padded "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Before reports whether t sorts before u within a day.
func (t TimeOfDay) Before(u TimeOfDay) bool {
	if t.Hour != u.Hour {
		return t.Hour < u.Hour
	}
	return t.Minute < u.Minute
}

// StartIn combines the activity date with its time of day in the given
// timezone. For all-day activities it returns midnight of the date in loc.
func (a Activity) StartIn(loc *time.Location) time.Time {
	h, m := 0, 0
	if a.Time != nil {
		h, m = a.Time.Hour, a.Time.Minute
	}
	return time.Date(a.Date.Year(), a.Date.Month(), a.Date.Day(), h, m, 0, 0, loc)
}

// AllDay reports whether the activity has no scheduled time.
func (a Activity) AllDay() bool {
	return a.Time == nil
}

// Summary returns the event summary for this activity: the description,
// falling back to the activity type. Empty when both are empty, in which
// case no calendar event is emitted.
func (a Activity) Summary() string {
	if a.Description != "" {
		return a.Description
	}
	return a.Type
}
