// Package summary aggregates activities into day-level views: the JSON
// event lists consumed by the dashboard and the human-readable daily
// documents.
package summary

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"agendacal/internal/model"
)

// UnspecifiedTime is the literal marker used in place of a time-as-string
// for activities with no scheduled time.
const UnspecifiedTime = "Heure non spécifiée"

// DayEvent is the JSON projection of one activity, with the field names the
// dashboard layer expects.
type DayEvent struct {
	Time           string `json:"time"`
	Minister       string `json:"minister"`
	MinisterStatus string `json:"minister_status"`
	Description    string `json:"description"`
	Location       string `json:"location"`
	Participants   string `json:"participants"`
}

// DaySummary is the per-day artifact: all events of one calendar day in
// display order.
type DaySummary struct {
	Date   string     `json:"date"`
	Events []DayEvent `json:"events"`
}

// frenchMonths maps time.Month to the fr-CA month name for the daily
// documents. The system is single-locale, so a fixed table suffices.
var frenchMonths = [...]string{
	time.January:   "janvier",
	time.February:  "février",
	time.March:     "mars",
	time.April:     "avril",
	time.May:       "mai",
	time.June:      "juin",
	time.July:      "juillet",
	time.August:    "août",
	time.September: "septembre",
	time.October:   "octobre",
	time.November:  "novembre",
	time.December:  "décembre",
}

// Sort orders activities for display: timed activities ascending by time of
// day, all-day activities last. The sort is stable, so activities with
// equal keys keep their original encounter order.
func Sort(activities []model.Activity) {
	slices.SortStableFunc(activities, func(a, b model.Activity) int {
		switch {
		case a.Time == nil && b.Time == nil:
			return 0
		case a.Time == nil:
			return 1
		case b.Time == nil:
			return -1
		case a.Time.Before(*b.Time):
			return -1
		case b.Time.Before(*a.Time):
			return 1
		default:
			return 0
		}
	})
}

// ForDay collects the activities falling on the given calendar day, sorted
// for display, as a DaySummary. It returns nil when the day has no
// activities: days without activities produce no artifact.
func ForDay(activities []model.Activity, day time.Time) *DaySummary {
	var dayActivities []model.Activity
	for _, act := range activities {
		if sameDay(act.Date, day) {
			dayActivities = append(dayActivities, act)
		}
	}
	if len(dayActivities) == 0 {
		return nil
	}

	Sort(dayActivities)

	events := make([]DayEvent, 0, len(dayActivities))
	for _, act := range dayActivities {
		events = append(events, DayEvent{
			Time:           timeLabel(act),
			Minister:       act.Minister,
			MinisterStatus: string(act.Status),
			Description:    act.Summary(),
			Location:       act.Location,
			Participants:   act.Participants,
		})
	}

	return &DaySummary{
		Date:   day.Format("2006-01-02"),
		Events: events,
	}
}

// Markdown renders the day's activities as the daily agenda document, or ""
// when the day has none.
func Markdown(activities []model.Activity, day time.Time) string {
	s := ForDay(activities, day)
	if s == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Agenda des ministres - %s\n\n", FrenchDate(day))

	for _, ev := range s.Events {
		fmt.Fprintf(&b, "## %s - %s\n", ev.Time, ev.Minister)
		fmt.Fprintf(&b, "**%s**\n", ev.Description)
		fmt.Fprintf(&b, "*Lieu: %s*\n", ev.Location)
		if ev.Participants != "" {
			b.WriteString("\nParticipants:\n")
			b.WriteString(ev.Participants)
			b.WriteString("\n")
		}
		b.WriteString("\n---\n\n")
	}

	return b.String()
}

// FrenchDate formats a date as "5 mars 2024".
func FrenchDate(day time.Time) string {
	return fmt.Sprintf("%d %s %d", day.Day(), frenchMonths[day.Month()], day.Year())
}

func timeLabel(act model.Activity) string {
	if act.Time == nil {
		return UnspecifiedTime
	}
	return act.Time.String()
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
