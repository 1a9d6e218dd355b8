package agenda

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agendacal/internal/model"
)

func buildFromContent(t *testing.T, content, sourcePath string, status model.Status) ([]model.Activity, *Diagnostics) {
	t.Helper()
	_, rows := ParseContent(content)
	diag := &Diagnostics{}
	return BuildActivities(rows, sourcePath, status, diag), diag
}

func TestBuildActivities_Complete(t *testing.T) {
	content := sampleHeader + "\n" +
		`"Réunion";"<p>Conseil des ministres</p>";"Québec";"05-03-2024";"9h30";"Premier ministre"`

	acts, diag := buildFromContent(t, content, "minister_agendas/active/francois-legault.csv", model.StatusActive)

	require.Len(t, acts, 1)
	assert.Empty(t, diag.Skipped)

	act := acts[0]
	assert.Equal(t, "Réunion", act.Type)
	assert.Equal(t, "Conseil des ministres", act.Description)
	assert.Equal(t, "Québec", act.Location)
	assert.Equal(t, "2024-03-05", act.Date.Format("2006-01-02"))
	require.NotNil(t, act.Time)
	assert.Equal(t, "09:30", act.Time.String())
	assert.Equal(t, "Premier ministre", act.Participants)
	assert.Equal(t, "Francois Legault", act.Minister)
	assert.Equal(t, model.StatusActive, act.Status)
}

func TestBuildActivities_TooFewFields(t *testing.T) {
	// A 4-column header set caps every row below the positional minimum.
	content := `"Type d'activité";"Description";"Lieu";"Date"` + "\n" +
		`"Réunion";"Desc";"Québec";"05-03-2024"`

	acts, diag := buildFromContent(t, content, "x.csv", model.StatusActive)

	assert.Empty(t, acts)
	require.Len(t, diag.Skipped, 1)
	assert.Equal(t, SkipTooFewFields, diag.Skipped[0].Reason)
}

func TestBuildActivities_BadDateSkipped(t *testing.T) {
	content := sampleHeader + "\n" +
		`"Réunion";"Desc";"Québec";"pas-une-date";"9h30";""` + "\n" +
		`"Réunion";"Desc";"Québec";"05-03-2024";"9h30";""`

	acts, diag := buildFromContent(t, content, "x.csv", model.StatusActive)

	require.Len(t, acts, 1)
	require.Len(t, diag.Skipped, 1)
	assert.Equal(t, SkipBadDate, diag.Skipped[0].Reason)
	assert.Equal(t, "pas-une-date", diag.Skipped[0].Detail)
	assert.Equal(t, 0, diag.Skipped[0].Index)
}

func TestBuildActivities_CorruptTimeKeepsRow(t *testing.T) {
	content := sampleHeader + "\n" +
		`"Réunion";"Desc";"Québec";"05-03-2024";"9h5";""`

	acts, diag := buildFromContent(t, content, "x.csv", model.StatusActive)

	require.Len(t, acts, 1)
	assert.Nil(t, acts[0].Time)
	assert.True(t, acts[0].AllDay())
	assert.Empty(t, diag.Skipped)
}

func TestBuildActivities_NeverMoreThanRows(t *testing.T) {
	content := sampleHeader + "\n" +
		`"a";"b";"c";"05-03-2024";"";""` + "\n" +
		`"a";"b";"c";"bad";"";""` + "\n" +
		`"a";"b";"c";"06-03-2024";"";""`

	_, rows := ParseContent(content)
	acts := BuildActivities(rows, "x.csv", model.StatusActive, nil)

	assert.Less(t, len(acts), len(rows))
	assert.Len(t, acts, 2)
}

func TestBuildActivities_ParticipantsNormalized(t *testing.T) {
	content := sampleHeader + "\n" +
		`"Rencontre";"";"Montréal";"06-03-2024";"";"Ministre A"` + "\n" +
		"  Ministre B  \n" +
		"Ministre C\n"

	acts, _ := buildFromContent(t, content, "x.csv", model.StatusInactive)

	require.Len(t, acts, 1)
	assert.Equal(t, "Ministre A\nMinistre B\nMinistre C", acts[0].Participants)
	assert.Equal(t, model.StatusInactive, acts[0].Status)
}

func TestBuildActivities_NilDiagnostics(t *testing.T) {
	content := sampleHeader + "\n" +
		`"a";"b";"c";"bad";"";""`

	_, rows := ParseContent(content)
	acts := BuildActivities(rows, "x.csv", model.StatusActive, nil)
	assert.Empty(t, acts)
}

func TestBuildActivities_Deterministic(t *testing.T) {
	content := sampleHeader + "\n" +
		`"a";"b";"c";"05-03-2024";"9h30";"p"` + "\n" +
		`"d";"e";"f";"06-03-2024";"";""`

	first, _ := buildFromContent(t, content, "x.csv", model.StatusActive)
	second, _ := buildFromContent(t, content, "x.csv", model.StatusActive)

	assert.Equal(t, first, second)
}

func TestMinisterName(t *testing.T) {
	assert.Equal(t, "Francois Legault", MinisterName("minister_agendas/active/francois-legault.csv"))
	assert.Equal(t, "Marie Claude Nichols", MinisterName("marie-claude-nichols.csv"))
	assert.Equal(t, "Tremblay", MinisterName("/tmp/TREMBLAY.csv"))
}
