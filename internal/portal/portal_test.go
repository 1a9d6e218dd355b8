package portal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const indexFixture = `
<html><body>
<div id="ministres-actifs">
  <ul class="ministres-list">
    <li class="ministre-item"><a href="/gouvernement/agenda/francois-legault">François Legault</a></li>
    <li class="ministre-item"><a href="/gouvernement/agenda/eric-girard">Éric Girard</a></li>
  </ul>
</div>
<div id="anciens-membres">
  <ul class="ministres-list">
    <li class="ministre-item"><a href="/gouvernement/agenda/ancien-ministre">Ancien Ministre</a></li>
  </ul>
</div>
</body></html>`

func TestMinisterPaths_ActiveSection(t *testing.T) {
	paths := MinisterPaths(indexFixture, "ministres-actifs")
	assert.Equal(t, []string{"francois-legault", "eric-girard"}, paths)
}

func TestMinisterPaths_InactiveSection(t *testing.T) {
	paths := MinisterPaths(indexFixture, "anciens-membres")
	assert.Equal(t, []string{"ancien-ministre"}, paths)
}

func TestMinisterPaths_MissingSection(t *testing.T) {
	assert.Nil(t, MinisterPaths(indexFixture, "introuvable"))
	assert.Nil(t, MinisterPaths("", "ministres-actifs"))
}

func TestMinisterPaths_SectionsDoNotLeak(t *testing.T) {
	active := MinisterPaths(indexFixture, "ministres-actifs")
	assert.NotContains(t, active, "ancien-ministre")
}

func TestAgendaExportLink(t *testing.T) {
	page := `
<a href="/autre">Autre document</a>
<a href="/fichiers/agenda-legault.csv">Agenda public (format CSV)</a>`

	url, ok := AgendaExportLink(page, "https://www.quebec.ca/gouvernement/agenda/francois-legault")
	require.True(t, ok)
	assert.Equal(t, "https://www.quebec.ca/fichiers/agenda-legault.csv", url)
}

func TestAgendaExportLink_TextSpansMarkup(t *testing.T) {
	page := `<a href="telecharger.csv"><span>Agenda</span> <strong>CSV</strong></a>`

	url, ok := AgendaExportLink(page, "https://www.quebec.ca/gouvernement/agenda/x")
	require.True(t, ok)
	assert.Equal(t, "https://www.quebec.ca/gouvernement/agenda/telecharger.csv", url)
}

func TestAgendaExportLink_NotFound(t *testing.T) {
	page := `<a href="/a">Agenda complet</a><a href="/b">Export CSV des dépenses</a>`

	_, ok := AgendaExportLink(page, "https://www.quebec.ca/x")
	assert.False(t, ok)
}

func TestAnchorText(t *testing.T) {
	assert.Equal(t, "Agenda CSV", anchorText("<span>Agenda</span>\n  <strong>CSV</strong>"))
	assert.Equal(t, "a & b", anchorText("a &amp; b"))
}

func TestLastSegment(t *testing.T) {
	assert.Equal(t, "francois-legault", lastSegment("/gouvernement/agenda/francois-legault"))
	assert.Equal(t, "x.csv", lastSegment("https://ex.org/files/x.csv"))
	assert.Equal(t, "seul", lastSegment("seul"))
	assert.Equal(t, "fin", lastSegment("/a/fin/"))
}
