package parse_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikiscrap/internal/fetch"
	"wikiscrap/internal/parse"
)

const articleHTML = `<!DOCTYPE html>
<html><head><title>Avion — Wikipédia</title></head>
<body>
<h1 id="firstHeading" class="firstHeading"><span class="mw-page-title-main">Avion</span></h1>
<div id="mw-content-text"><div class="mw-parser-output">
  <div class="hatnote">Pour les articles homonymes, voir Avion (homonymie).</div>
  <p class="mw-empty-elt"> </p>
  <p>Un <b>avion</b> est un <a href="/wiki/A%C3%A9ronef">aéronef</a> plus lourd que l'air<sup class="reference"><a href="#cite_note-1">[1]</a></sup>.
     Il vole grâce à ses <a href="/wiki/Aile">ailes</a>.</p>
  <p>Deuxième paragraphe.</p>
  <div class="mw-heading mw-heading2"><h2 id="Histoire">Histoire</h2><span class="mw-editsection">[modifier]</span></div>
  <p>Texte <a href="/wiki/Cl%C3%A9ment_Ader">Clément Ader</a>, <a href="/wiki/Aile">encore</a>, <a href="/wiki/Fichier:Avion.jpg">fichier</a>,
     <a href="/wiki/Cat%C3%A9gorie%3AAvion">cat</a>, <a href="/wiki/Aile#Profil">ancre</a>, <a href="https://en.wikipedia.org/wiki/Airplane">en</a>,
     <a href="/w/index.php?title=Avion&action=edit">edit</a>, <a href="https://fr.wikipedia.org/wiki/Moteur">moteur</a></p>
  <div class="mw-heading mw-heading3"><h3 id="Pionniers">Pionniers</h3></div>
  <h2> </h2>
  <img src="//upload.wikimedia.org/wikipedia/commons/thumb/a/a0/A380.jpg/220px-A380.jpg" width="220" height="147">
  <img src="//upload.wikimedia.org/wikipedia/commons/thumb/a/a0/A380.jpg/220px-A380.jpg" width="220" height="147">
  <img src="//upload.wikimedia.org/wikipedia/commons/b/b0/Small.png" width="40" height="40">
  <img src="/static/images/footer/wikimedia-button.png" width="120" height="120">
  <img src="https://upload.wikimedia.org/wikipedia/commons/c/c0/Icon_plane.svg">
  <img src="https://upload.wikimedia.org/wikipedia/commons/thumb/d/d0/Wing.svg/20px-Wing.svg.png">
  <img src="https://upload.wikimedia.org/wikipedia/commons/e/e0/Diagram.svg">
  <img src="https://upload.wikimedia.org/wikipedia/commons/f/f0/readme.txt">
  <script>var x = "<p>not text</p>";</script>
</div></div>
</body></html>`

func extract(t *testing.T, html string) parse.Page {
	t.Helper()
	page, err := parse.ExtractBytes([]byte(html), "text/html; charset=utf-8", "https://fr.wikipedia.org/wiki/Avion")
	require.NoError(t, err)
	return page
}

func TestExtractArticle(t *testing.T) {
	page := extract(t, articleHTML)

	assert.Equal(t, "Avion", page.Title)
	assert.Equal(t, "https://fr.wikipedia.org/wiki/Avion", page.URL)
	assert.Equal(t, "Un avion est un aéronef plus lourd que l'air. Il vole grâce à ses ailes.", page.Summary)
	assert.Contains(t, page.SummaryHTML, `href="https://fr.wikipedia.org/wiki/A%C3%A9ronef"`)
	assert.NotContains(t, page.SummaryHTML, "cite_note")
	assert.Equal(t, []string{"Histoire", "Pionniers"}, page.Sections)
	assert.Equal(t, []string{
		"https://fr.wikipedia.org/wiki/A%C3%A9ronef",
		"https://fr.wikipedia.org/wiki/Aile",
		"https://fr.wikipedia.org/wiki/Cl%C3%A9ment_Ader",
		"https://fr.wikipedia.org/wiki/Moteur",
	}, page.Links)
	assert.Equal(t, []string{
		"https://upload.wikimedia.org/wikipedia/commons/thumb/a/a0/A380.jpg/220px-A380.jpg",
		"https://upload.wikimedia.org/wikipedia/commons/e/e0/Diagram.svg",
	}, page.Images)
}

func TestExtractNoParagraphBeforeHeading(t *testing.T) {
	page := extract(t, `<html><body><div class="mw-parser-output">
		<div class="infobox">box</div>
		<h2>Histoire</h2><p>Later paragraph.</p>
		<h2>Usages</h2></div></body></html>`)

	assert.Equal(t, "", page.Summary)
	assert.Equal(t, "", page.SummaryHTML)
	assert.Equal(t, []string{"Histoire", "Usages"}, page.Sections)
}

func TestExtractLinksDeduplicated(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<html><body><div id="mw-content-text">`)
	for i := 0; i < 10; i++ {
		b.WriteString(`<a href="/wiki/Aile">aile</a> `)
	}
	b.WriteString(`</div></body></html>`)

	page := extract(t, b.String())
	assert.Equal(t, []string{"https://fr.wikipedia.org/wiki/Aile"}, page.Links)
}

func TestExtractCaps(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<html><body><div id="mw-content-text">`)
	for i := 0; i < 80; i++ {
		fmt.Fprintf(&b, `<a href="/wiki/Page_%d">p</a><img src="https://upload.wikimedia.org/img/Photo_%d.jpg">`, i, i)
	}
	b.WriteString(`</div></body></html>`)

	page := extract(t, b.String())
	require.Len(t, page.Links, parse.MaxLinks)
	require.Len(t, page.Images, parse.MaxImages)
	assert.Equal(t, "https://fr.wikipedia.org/wiki/Page_0", page.Links[0])
	assert.Equal(t, "https://upload.wikimedia.org/img/Photo_19.jpg", page.Images[19])
}

func TestExtractTitleFallbacks(t *testing.T) {
	t.Run("first h1", func(t *testing.T) {
		page := extract(t, `<html><body><h1> Plain   title </h1></body></html>`)
		assert.Equal(t, "Plain title", page.Title)
	})
	t.Run("document title", func(t *testing.T) {
		page := extract(t, `<html><head><title>Aile — Wikipédia</title></head><body><p>x</p></body></html>`)
		assert.Equal(t, "Aile", page.Title)
	})
	t.Run("document title without site suffix", func(t *testing.T) {
		page := extract(t, `<html><head><title>Rock - Roll</title></head><body></body></html>`)
		assert.Equal(t, "Rock - Roll", page.Title)
	})
	t.Run("none", func(t *testing.T) {
		page := extract(t, `<html><body><p>only text</p></body></html>`)
		assert.Equal(t, "", page.Title)
		assert.Equal(t, "only text", page.Summary)
	})
}

func TestExtractSkipsMaintenanceParagraph(t *testing.T) {
	page := extract(t, `<html><body><div class="mw-parser-output">
		<p>Cet article ne cite pas suffisamment ses sources.</p>
		<p>Le vrai résumé.</p></div></body></html>`)
	assert.Equal(t, "Le vrai résumé.", page.Summary)
}

func TestExtractImagesKeepsWordsContainingIconOrLogo(t *testing.T) {
	page := extract(t, `<html><body><div id="mw-content-text"><div class="mw-parser-output">
  <img src="https://upload.wikimedia.org/wikipedia/commons/1/10/Technologie_spatiale.jpg">
  <img src="https://upload.wikimedia.org/wikipedia/commons/2/20/Biologie.png">
  <img src="https://upload.wikimedia.org/wikipedia/commons/3/30/Silicon_wafer.jpg">
  <img src="https://upload.wikimedia.org/wikipedia/commons/4/40/Logo_SNCF.svg">
  <img src="https://upload.wikimedia.org/wikipedia/commons/thumb/5/50/Logo-Airbus.svg/120px-Logo-Airbus.svg.png">
  <img src="https://upload.wikimedia.org/wikipedia/commons/6/60/icon.png">
  <img src="https://upload.wikimedia.org/wikipedia/commons/7/70/Icon_train.svg">
</div></div></body></html>`)

	assert.Equal(t, []string{
		"https://upload.wikimedia.org/wikipedia/commons/1/10/Technologie_spatiale.jpg",
		"https://upload.wikimedia.org/wikipedia/commons/2/20/Biologie.png",
		"https://upload.wikimedia.org/wikipedia/commons/3/30/Silicon_wafer.jpg",
	}, page.Images)
}

func TestNewDocumentErrors(t *testing.T) {
	_, err := parse.NewDocument([]byte("  \n\t "), "text/html")
	assert.True(t, errors.Is(err, parse.ErrHTMLParse))

	_, err = parse.ExtractBytes(nil, "", "https://fr.wikipedia.org/wiki/Avion")
	assert.True(t, errors.Is(err, parse.ErrHTMLParse))
}

func TestNewDocumentDecodesCharset(t *testing.T) {
	// "Été" in ISO-8859-1
	body := []byte("<html><body><h1>\xc9t\xe9</h1></body></html>")
	page, err := parse.ExtractBytes(body, "text/html; charset=iso-8859-1", "https://fr.wikipedia.org/wiki/%C3%89t%C3%A9")
	require.NoError(t, err)
	assert.Equal(t, "Été", page.Title)
}

func TestExtractDirect(t *testing.T) {
	doc, err := parse.NewDocument([]byte(`<html><body><main><p>Main text <a href="Aile">aile</a></p></main></body></html>`), "")
	require.NoError(t, err)
	source, err := fetch.ParseURL("https://fr.wikipedia.org/wiki/Avion")
	require.NoError(t, err)

	page := parse.Extract(doc, source)
	assert.Equal(t, "Main text aile", page.Summary)
	assert.Equal(t, []string{"https://fr.wikipedia.org/wiki/Aile"}, page.Links)
	assert.Empty(t, page.Images)
	assert.NotNil(t, page.Sections)
}
