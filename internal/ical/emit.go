// Package ical projects canonical Activity records into iCalendar files,
// one calendar per source.
package ical

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"agendacal/internal/model"
)

const (
	// ProductID identifies the generated calendars.
	ProductID = "-//Agenda Membres CM//FR"

	// DefaultTimezone is the portal's locale timezone; timed events are
	// localized into it before serialization.
	DefaultTimezone = "America/Montreal"

	// DefaultEventDuration is assigned to timed events, which carry no
	// end time in the exports.
	DefaultEventDuration = time.Hour
)

// Emitter converts activities into calendar events.
type Emitter struct {
	loc      *time.Location
	duration time.Duration
}

// NewEmitter creates an Emitter rendering timed events in loc with the
// given fixed duration. A nil loc falls back to UTC; a non-positive
// duration falls back to DefaultEventDuration.
func NewEmitter(loc *time.Location, duration time.Duration) *Emitter {
	if loc == nil {
		loc = time.UTC
	}
	if duration <= 0 {
		duration = DefaultEventDuration
	}
	return &Emitter{loc: loc, duration: duration}
}

// Emit builds a VCALENDAR from one source's activities and reports how many
// events it holds. Activities whose summary is empty (no description and no
// type) produce no event; the caller must not write an artifact when the
// count is zero.
func (e *Emitter) Emit(activities []model.Activity, sourceID string) (*ics.Calendar, int) {
	cal := ics.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetVersion("2.0")
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ics.MethodPublish)
	cal.SetXWRTimezone(e.loc.String())

	count := 0
	for i, act := range activities {
		summary := act.Summary()
		if summary == "" {
			continue
		}

		event := cal.AddEvent(eventUID(sourceID, act, i))
		event.SetSummary(summary)

		if act.AllDay() {
			event.SetAllDayStartAt(act.Date)
		} else {
			event.SetStartAt(act.StartIn(e.loc))
			// No DTEND: the fixed duration implies it.
			event.SetProperty(ics.ComponentProperty("DURATION"), durationValue(e.duration))
		}

		if act.Location != "" {
			event.SetLocation(act.Location)
		}

		event.SetDescription(eventBody(act))
		count++
	}

	return cal, count
}

// eventUID derives a stable identifier from the source and row identity so
// that re-emitting the same export yields byte-identical calendars.
func eventUID(sourceID string, act model.Activity, index int) string {
	timePart := ""
	if act.Time != nil {
		timePart = act.Time.String()
	}
	seed := fmt.Sprintf("%s|%d|%s|%s|%s", sourceID, index, act.Date.Format("2006-01-02"), timePart, act.Summary())
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:8]) + "@agenda-membres-cm"
}

// eventBody assembles the structured multi-line event description: the type
// line, the description line, then a participant list with one bullet per
// non-empty line.
func eventBody(act model.Activity) string {
	var lines []string
	if act.Type != "" {
		lines = append(lines, "Type: "+act.Type)
	}
	if act.Description != "" {
		lines = append(lines, "Description: "+act.Description)
	}
	if act.Participants != "" {
		var participants []string
		for _, p := range strings.Split(act.Participants, "\n") {
			p = strings.TrimSpace(p)
			if p != "" {
				participants = append(participants, "- "+p)
			}
		}
		if len(participants) > 0 {
			lines = append(lines, "Participants:")
			lines = append(lines, participants...)
		}
	}
	return strings.Join(lines, "\n")
}

// durationValue renders a duration in the iCalendar DURATION syntax.
func durationValue(d time.Duration) string {
	minutes := int(d.Minutes())
	if minutes <= 0 {
		minutes = 60
	}
	if minutes%60 == 0 {
		return fmt.Sprintf("PT%dH", minutes/60)
	}
	return fmt.Sprintf("PT%dM", minutes)
}
