package agenda

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"agendacal/internal/htmltext"
	appLog "agendacal/internal/log"
	"agendacal/internal/model"
)

// Positional column layout of the exports. The builder reads fields by
// position, so a row needs at least the first five columns to survive;
// participants are optional.
const (
	colType = iota
	colDescription
	colLocation
	colDate
	colTime
	colParticipants

	minFields = 5
)

// Skip reasons recorded in Diagnostics.
const (
	SkipTooFewFields = "too_few_fields"
	SkipBadDate      = "bad_date"
)

// SkippedRow records one dropped row and why it was dropped.
type SkippedRow struct {
	Source string
	Index  int // zero-based position in the parsed row list
	Reason string
	Detail string
}

// Diagnostics collects skipped-row records across a build pass. Row-level
// failures are absorbed here instead of being surfaced as errors, so tests
// and callers can still assert on what was skipped and why. A nil
// *Diagnostics is valid and records nothing.
type Diagnostics struct {
	Skipped []SkippedRow
}

func (d *Diagnostics) record(source string, index int, reason, detail string) {
	if d == nil {
		return
	}
	d.Skipped = append(d.Skipped, SkippedRow{
		Source: source,
		Index:  index,
		Reason: reason,
		Detail: detail,
	})
}

// BuildActivities converts parsed rows from one source into canonical
// Activity records. sourcePath identifies the originating export file (the
// minister name is derived from it), and status tags every resulting
// activity with the source's collection.
//
// Malformed rows (fewer than five fields, unparseable date) are skipped
// silently per the ingestion contract; skips land in diag.
func BuildActivities(rows []Row, sourcePath string, status model.Status, diag *Diagnostics) []model.Activity {
	minister := MinisterName(sourcePath)
	source := filepath.Base(sourcePath)

	activities := make([]model.Activity, 0, len(rows))

	for i, row := range rows {
		if len(row.Fields) < minFields {
			diag.record(source, i, SkipTooFewFields, "")
			appLog.Debug("agenda row skipped", "source", source, "row", i, "reason", SkipTooFewFields)
			continue
		}

		dateStr := strings.TrimSpace(row.Fields[colDate])
		timeStr := strings.TrimSpace(row.Fields[colTime])

		date, tod, ok := ParseDateTime(dateStr, timeStr)
		if !ok {
			diag.record(source, i, SkipBadDate, dateStr)
			appLog.Debug("agenda row skipped", "source", source, "row", i, "reason", SkipBadDate, "date", dateStr)
			continue
		}

		participants := ""
		if len(row.Fields) > colParticipants {
			participants = normalizeParticipants(row.Fields[colParticipants])
		}

		activities = append(activities, model.Activity{
			Type:         strings.TrimSpace(row.Fields[colType]),
			Description:  cleanDescription(row.Fields[colDescription]),
			Location:     strings.TrimSpace(row.Fields[colLocation]),
			Date:         date,
			Time:         tod,
			Participants: participants,
			Minister:     minister,
			Status:       status,
		})
	}

	return activities
}

// cleanDescription strips the paragraph markers the portal wraps
// descriptions in, then applies the full cleaner.
func cleanDescription(s string) string {
	s = strings.ReplaceAll(s, "<p>", "")
	s = strings.ReplaceAll(s, "</p>", "")
	return htmltext.Clean(strings.TrimSpace(s))
}

// normalizeParticipants re-joins participant text as newline-separated
// trimmed lines with no empty lines.
func normalizeParticipants(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// MinisterName derives the minister's display name from an export file
// path: basename with the extension removed, hyphens replaced by spaces,
// each word title-cased. "francois-legault.csv" becomes "Francois Legault".
func MinisterName(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	name = strings.ReplaceAll(name, "-", " ")

	words := strings.Fields(name)
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

func titleWord(w string) string {
	first, size := utf8.DecodeRuneInString(w)
	if first == utf8.RuneError {
		return w
	}
	return string(unicode.ToUpper(first)) + strings.ToLower(w[size:])
}
