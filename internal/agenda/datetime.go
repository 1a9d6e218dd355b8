package agenda

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"agendacal/internal/model"
)

// dateLayout is the fixed day-month-year pattern used by the exports.
const dateLayout = "02-01-2006"

var (
	leadingDate = regexp.MustCompile(`^(\d{2}-\d{2}-\d{4})`)
	timePattern = regexp.MustCompile(`^(\d{1,2})h(\d{2})$`)
	clockShape  = regexp.MustCompile(`^\d{1,2}:\d{2}$`)
)

// ParseDate parses a strict "DD-MM-YYYY" date. The whole input must match;
// impossible dates (e.g. 31-02) are rejected by the layout parse.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// ParseTime parses the exports' "HHhMM" time-of-day notation. The empty
// string means the activity has no scheduled time and yields (nil, nil).
// The minute component must be exactly two digits: "14h30" is accepted,
// "9h5" is rejected.
func ParseTime(s string) (*model.TimeOfDay, error) {
	if s == "" {
		return nil, nil
	}
	m := timePattern.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("time %q does not match HHhMM", s)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return nil, fmt.Errorf("time %q out of range", s)
	}
	return &model.TimeOfDay{Hour: hour, Minute: minute}, nil
}

// ParseDateTime combines a date field and an optional time field into a
// date plus optional time of day.
//
// The date side is strict: only the leading DD-MM-YYYY run of dateStr is
// considered (any trailing text is ignored), and ok is false when no valid
// run exists, in which case the caller drops the row. The time side is
// lenient: the "h"
// marker is normalized to a colon, a missing minute component defaults to
// ":00", and anything that still fails the hour:minute shape or its ranges
// degrades to date-only rather than discarding the row. A corrupt time must
// not cost an otherwise valid date.
func ParseDateTime(dateStr, timeStr string) (date time.Time, tod *model.TimeOfDay, ok bool) {
	m := leadingDate.FindStringSubmatch(dateStr)
	if m == nil {
		return time.Time{}, nil, false
	}
	date, err := time.Parse(dateLayout, m[1])
	if err != nil {
		return time.Time{}, nil, false
	}

	if timeStr == "" {
		return date, nil, true
	}

	normalized := strings.ReplaceAll(timeStr, "h", ":")
	if !strings.Contains(normalized, ":") {
		normalized += ":00"
	}
	if !clockShape.MatchString(normalized) {
		return date, nil, true
	}

	parts := strings.SplitN(normalized, ":", 2)
	hour, _ := strconv.Atoi(parts[0])
	minute, _ := strconv.Atoi(parts[1])
	if hour > 23 || minute > 59 {
		return date, nil, true
	}

	return date, &model.TimeOfDay{Hour: hour, Minute: minute}, true
}
