package htmltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean_Paragraphs(t *testing.T) {
	assert.Equal(t, "A\nB", Clean("<p>A</p><p>B</p>"))
}

func TestClean_Empty(t *testing.T) {
	assert.Equal(t, "", Clean(""))
}

func TestClean_LineBreakVariants(t *testing.T) {
	assert.Equal(t, "a\nb", Clean("a<br>b"))
	assert.Equal(t, "a\nb", Clean("a<br/>b"))
	assert.Equal(t, "a\nb", Clean("a<br />b"))
}

func TestClean_RemovedTags(t *testing.T) {
	assert.Equal(t, "1er ministre", Clean("1<sup>er</sup> ministre"))
	assert.Equal(t, "important", Clean("<strong>important</strong>"))
}

func TestClean_Entities(t *testing.T) {
	assert.Equal(t, "Conseil & comité", Clean("Conseil &amp; comit&eacute;"))
}

func TestClean_EncodedMarkupIsStripped(t *testing.T) {
	// Entities decode before tag stripping, so encoded tags vanish too.
	assert.Equal(t, "texte", Clean("&lt;p&gt;texte&lt;/p&gt;"))
}

func TestClean_UnknownTagsDropped(t *testing.T) {
	assert.Equal(t, "lien", Clean(`<a href="https://example.org">lien</a>`))
	assert.Equal(t, "texte", Clean("<span class=\"x\">texte</span>"))
}

func TestClean_CollapsesBlankLines(t *testing.T) {
	assert.Equal(t, "a\nb", Clean("a\n\n\nb"))
	assert.Equal(t, "a\nb", Clean("a\n   \nb"))
}

func TestClean_TrimsWhitespace(t *testing.T) {
	assert.Equal(t, "texte", Clean("  <p>texte</p>  "))
}
