// Package agenda turns the portal's semicolon-delimited agenda exports into
// canonical Activity records. The exports are not RFC 4180 CSV: a single
// logical row can span several physical lines (extra participant lines are
// emitted bare, without delimiters), fields carry HTML markup and entities,
// and column counts vary between rows. The parser here recovers rows on a
// best-effort basis and never fails; an unparseable source simply yields no
// rows.
//
// The first logical row of a source defines the header set for every
// following row. A mid-file schema change is not recoverable: later rows are
// still padded or truncated against the first header set.
package agenda

import (
	"strings"

	"agendacal/internal/htmltext"
)

// OverflowHeader names the column that absorbs continuation lines. The
// observed exports spill extra participant lines onto bare physical lines
// below their row.
const OverflowHeader = "Participants"

// overflowFallbackIndex is the positional slot for participants when a
// source's header row does not name the overflow column.
const overflowFallbackIndex = 5

// Row is one logical data row: field values in column order, padded with
// empty strings up to the header count, with header names kept for access
// by column name.
type Row struct {
	headers []string
	Fields  []string
}

// Get returns the named column's value, or "" when the column is absent.
func (r Row) Get(name string) string {
	for i, h := range r.headers {
		if h == name && i < len(r.Fields) {
			return r.Fields[i]
		}
	}
	return ""
}

// ParseContent splits one source's full text into a header list and logical
// data rows. It never returns an error: malformed input degrades to
// best-effort field recovery, and the only signal for "nothing usable" is an
// empty row slice.
func ParseContent(content string) (headers []string, rows []Row) {
	content = strings.TrimPrefix(content, "\uFEFF")

	var current *Row

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if !startsLogicalRow(line) {
			// Continuation of the open row's overflow field. A
			// continuation arriving before any row is open is
			// discarded.
			if current != nil {
				current.appendOverflow(cleanField(line))
			}
			continue
		}

		// New logical row: close out the one being accumulated.
		if current != nil {
			rows = append(rows, *current)
			current = nil
		}

		fields := splitFields(line)

		// The first logical row is the header set; it never becomes a
		// data row.
		if headers == nil {
			headers = fields
			continue
		}

		current = newRow(headers, fields)
	}

	if current != nil {
		rows = append(rows, *current)
	}

	return headers, rows
}

// startsLogicalRow decides whether a physical line opens a new logical row
// or continues the previous one. The heuristic is reverse-engineered from
// observed exports: a complete row is quoted and delimited, a spill-over
// participant line is neither. A continuation line that happens to contain
// two quotes and a semicolon will be misclassified; this function is the
// single place to swap in a stricter state machine if that ever bites.
func startsLogicalRow(line string) bool {
	return strings.Count(line, `"`) >= 2 && strings.Contains(line, ";")
}

// splitFields splits a logical-row line on semicolons, honoring quoting:
// a quote character toggles the in-quotes flag, and a semicolon is a field
// boundary only outside quotes. Each field is trimmed of surrounding
// whitespace and one layer of quotes, then HTML-cleaned.
func splitFields(line string) []string {
	var fields []string
	var field strings.Builder
	inQuotes := false

	for _, ch := range line {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ';' && !inQuotes:
			fields = append(fields, cleanField(field.String()))
			field.Reset()
		default:
			field.WriteRune(ch)
		}
	}
	// A trailing empty field is dropped; row padding restores it.
	if field.Len() > 0 {
		fields = append(fields, cleanField(field.String()))
	}

	return fields
}

func cleanField(s string) string {
	return htmltext.Clean(strings.Trim(s, ` "`))
}

// newRow pads fields with empty strings up to the header count and ignores
// any extras beyond it.
func newRow(headers, fields []string) *Row {
	if len(fields) > len(headers) {
		fields = fields[:len(headers)]
	}
	for len(fields) < len(headers) {
		fields = append(fields, "")
	}
	return &Row{headers: headers, Fields: fields}
}

// appendOverflow joins a cleaned continuation line onto the overflow field,
// newline-separated.
func (r *Row) appendOverflow(text string) {
	idx := r.overflowIndex()
	for len(r.Fields) <= idx {
		r.Fields = append(r.Fields, "")
	}

	existing := strings.TrimSpace(r.Fields[idx])
	if existing != "" {
		r.Fields[idx] = existing + "\n" + text
	} else {
		r.Fields[idx] = text
	}
}

func (r *Row) overflowIndex() int {
	for i, h := range r.headers {
		if h == OverflowHeader {
			return i
		}
	}
	return overflowFallbackIndex
}
