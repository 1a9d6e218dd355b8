package agenda

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHeader = `"Type d'activité";"Description";"Lieu";"Date";"Heure";"Participants"`

func TestParseContent_SingleRow(t *testing.T) {
	content := sampleHeader + "\n" +
		`"Réunion";"<p>Conseil des ministres</p>";"Québec";"05-03-2024";"9h30";"Premier ministre"`

	headers, rows := ParseContent(content)

	require.Len(t, headers, 6)
	assert.Equal(t, "Type d'activité", headers[0])
	assert.Equal(t, "Participants", headers[5])

	require.Len(t, rows, 1)
	assert.Equal(t, "Réunion", rows[0].Fields[0])
	assert.Equal(t, "Conseil des ministres", rows[0].Fields[1])
	assert.Equal(t, "05-03-2024", rows[0].Fields[3])
	assert.Equal(t, "Premier ministre", rows[0].Get("Participants"))
}

func TestParseContent_HeaderOnly(t *testing.T) {
	headers, rows := ParseContent(sampleHeader + "\n")

	assert.Len(t, headers, 6)
	assert.Empty(t, rows)
}

func TestParseContent_Empty(t *testing.T) {
	headers, rows := ParseContent("")

	assert.Nil(t, headers)
	assert.Empty(t, rows)
}

func TestParseContent_ContinuationLines(t *testing.T) {
	content := sampleHeader + "\n" +
		`"Rencontre";"";"Montréal";"06-03-2024";"14h30";"Ministre des Finances"` + "\n" +
		"Ministre de la Santé\n" +
		"Ministre de l'Éducation\n"

	_, rows := ParseContent(content)

	require.Len(t, rows, 1)
	assert.Equal(t,
		"Ministre des Finances\nMinistre de la Santé\nMinistre de l'Éducation",
		rows[0].Get("Participants"))
}

func TestParseContent_ContinuationIntoEmptyOverflow(t *testing.T) {
	content := sampleHeader + "\n" +
		`"Rencontre";"";"Montréal";"06-03-2024";"14h30";""` + "\n" +
		"Ministre de la Santé\n"

	_, rows := ParseContent(content)

	require.Len(t, rows, 1)
	assert.Equal(t, "Ministre de la Santé", rows[0].Get("Participants"))
}

func TestParseContent_ContinuationBeforeAnyRowDiscarded(t *testing.T) {
	content := "ligne orpheline\n" + sampleHeader + "\n"

	headers, rows := ParseContent(content)

	assert.Len(t, headers, 6)
	assert.Empty(t, rows)
}

func TestParseContent_ShortRowPadded(t *testing.T) {
	content := sampleHeader + "\n" +
		`"Réunion";"Description";"Québec";"05-03-2024"`

	_, rows := ParseContent(content)

	require.Len(t, rows, 1)
	assert.Len(t, rows[0].Fields, 6)
	assert.Equal(t, "", rows[0].Fields[4])
	assert.Equal(t, "", rows[0].Fields[5])
}

func TestParseContent_ExtraFieldsIgnored(t *testing.T) {
	content := sampleHeader + "\n" +
		`"a";"b";"c";"05-03-2024";"9h30";"p";"extra";"more"`

	_, rows := ParseContent(content)

	require.Len(t, rows, 1)
	assert.Len(t, rows[0].Fields, 6)
	assert.Equal(t, "p", rows[0].Fields[5])
}

func TestParseContent_QuotedDelimiter(t *testing.T) {
	content := sampleHeader + "\n" +
		`"Réunion";"Budget; suivi";"Québec";"05-03-2024";"";""`

	_, rows := ParseContent(content)

	require.Len(t, rows, 1)
	assert.Equal(t, "Budget; suivi", rows[0].Fields[1])
}

func TestParseContent_SkipsBlankLines(t *testing.T) {
	content := sampleHeader + "\n\n\n" +
		`"a";"b";"c";"05-03-2024";"";""` + "\n\n"

	_, rows := ParseContent(content)
	assert.Len(t, rows, 1)
}

func TestParseContent_StripsBOM(t *testing.T) {
	content := "\uFEFF" + sampleHeader + "\n" +
		`"a";"b";"c";"05-03-2024";"";""`

	headers, rows := ParseContent(content)

	assert.Equal(t, "Type d'activité", headers[0])
	assert.Len(t, rows, 1)
}

func TestParseContent_HTMLCleanedInFields(t *testing.T) {
	content := sampleHeader + "\n" +
		`"Réunion";"<p>Ligne 1</p><p>Ligne 2</p>";"<strong>Québec</strong>";"05-03-2024";"";""`

	_, rows := ParseContent(content)

	require.Len(t, rows, 1)
	assert.Equal(t, "Ligne 1\nLigne 2", rows[0].Fields[1])
	assert.Equal(t, "Québec", rows[0].Fields[2])
}

func TestParseContent_Idempotent(t *testing.T) {
	content := sampleHeader + "\n" +
		`"Rencontre";"";"Montréal";"06-03-2024";"14h30";"A"` + "\n" +
		"B\n" +
		`"Réunion";"Desc";"Québec";"05-03-2024";"";""`

	h1, r1 := ParseContent(content)
	h2, r2 := ParseContent(content)

	assert.Equal(t, h1, h2)
	assert.Equal(t, r1, r2)
}

func TestStartsLogicalRow(t *testing.T) {
	assert.True(t, startsLogicalRow(`"a";"b"`))
	assert.False(t, startsLogicalRow(`"a" "b"`))   // no delimiter
	assert.False(t, startsLogicalRow(`a;b`))       // no quotes
	assert.False(t, startsLogicalRow(`"a;b`))      // single quote
	assert.False(t, startsLogicalRow("Jean Tremblay"))
}

func TestRowGet_UnknownHeader(t *testing.T) {
	_, rows := ParseContent(sampleHeader + "\n" + `"a";"b";"c";"05-03-2024";"";""`)
	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0].Get("Inconnu"))
}
