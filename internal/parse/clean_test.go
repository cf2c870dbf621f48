package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveSelectors(t *testing.T) {
	html := `<div><p class="keep">a</p><p class="rm">b</p><div class="rm">c</div></div>`
	doc, err := NewDocument([]byte(html), "")
	require.NoError(t, err)
	assert.Equal(t, 2, RemoveSelectors(doc, ".rm"))
	assert.Zero(t, RemoveSelectors(nil, ".rm"))

	out, err := doc.Html()
	require.NoError(t, err)
	assert.NotContains(t, out, `class="rm"`)
	assert.Contains(t, out, `class="keep"`)
}

func TestRemoveNoise(t *testing.T) {
	html := `<div><p>Texte<sup class="reference">[1]</sup></p>
		<h2>Histoire<span class="mw-editsection">[modifier]</span></h2>
		<div class="noprint">portail</div><style>p{}</style><script>x()</script></div>`
	doc, err := NewDocument([]byte(html), "")
	require.NoError(t, err)
	RemoveNoise(doc)

	text := strings.Join(strings.Fields(doc.Text()), " ")
	assert.Equal(t, "Texte Histoire", text)
}

func TestStripSiteSuffix(t *testing.T) {
	assert.Equal(t, "Avion", stripSiteSuffix("Avion — Wikipédia"))
	assert.Equal(t, "Airplane", stripSiteSuffix("Airplane - Wikipedia"))
	assert.Equal(t, "A - B", stripSiteSuffix("A - B"))
}

func TestTooSmall(t *testing.T) {
	assert.False(t, tooSmall(""))
	assert.True(t, tooSmall("99"))
	assert.False(t, tooSmall("100"))
	assert.True(t, tooSmall("40px"))
	assert.False(t, tooSmall("auto"))
}
