package output_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikiscrap/internal/fetch"
	"wikiscrap/internal/output"
	"wikiscrap/internal/parse"
	"wikiscrap/internal/report"
)

var fixedTime = time.Date(2026, 10, 18, 14, 30, 5, 0, time.UTC)

func samplePage() parse.Page {
	return parse.Page{
		Title:       "Avion",
		URL:         "https://fr.wikipedia.org/wiki/Avion",
		Summary:     "Un avion est un aéronef.",
		SummaryHTML: `Un <b>avion</b> est un <a href="https://fr.wikipedia.org/wiki/A%C3%A9ronef">aéronef</a>.`,
		Sections:    []string{"Histoire", "Usages"},
		Links:       []string{"https://fr.wikipedia.org/wiki/A%C3%A9ronef", "https://fr.wikipedia.org/wiki/Aile"},
		Images:      []string{"https://upload.wikimedia.org/a/A380.jpg"},
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestSessionDirName(t *testing.T) {
	assert.Equal(t, "Tour Eiffel_20261018_143005", output.SessionDirName("Tour Eiffel", fixedTime))
	assert.Equal(t, "batch_20261018_143005", output.SessionDirName("", fixedTime))
	assert.Equal(t, "a_b_20261018_143005", output.SessionDirName("a/b", fixedTime))
}

func TestCreateSessionDirCollision(t *testing.T) {
	w := output.NewWriter(nil)
	root := t.TempDir()

	first, err := w.CreateSessionDir(root, "Avion", fixedTime)
	require.NoError(t, err)
	second, err := w.CreateSessionDir(root, "Avion", fixedTime)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "Avion_20261018_143005"), first)
	assert.Equal(t, filepath.Join(root, "Avion_20261018_143005_1"), second)
	assert.DirExists(t, second)
}

func TestWriteArticle(t *testing.T) {
	w := output.NewWriter(nil)
	dir := t.TempDir()

	art, err := w.WriteArticle(dir, samplePage(), fixedTime)
	require.NoError(t, err)
	assert.Equal(t, "Avion", art.Folder)
	assert.Len(t, art.Files, 6)

	var decoded map[string]any
	raw := readFile(t, filepath.Join(art.Dir, output.DataFile))
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, "Avion", decoded["title"])
	assert.NotContains(t, decoded, "SummaryHTML")
	assert.Less(t, strings.Index(raw, `"title"`), strings.Index(raw, `"url"`))
	assert.Less(t, strings.Index(raw, `"links"`), strings.Index(raw, `"images"`))

	md := readFile(t, filepath.Join(art.Dir, output.ArticleFile))
	assert.True(t, strings.HasPrefix(md, "# Avion\n"))
	assert.Contains(t, md, "2026-10-18 14:30:05")
	assert.Contains(t, md, "## Résumé")
	assert.Contains(t, md, "[aéronef](https://fr.wikipedia.org/wiki/A%C3%A9ronef)")
	assert.Contains(t, md, "### Histoire")
	assert.Contains(t, md, "### Usages")
	assert.Contains(t, md, "## Liens internes (2)")
	assert.Contains(t, md, "- [https://fr.wikipedia.org/wiki/Aile](https://fr.wikipedia.org/wiki/Aile)")
	assert.Contains(t, md, "## Images (1)")

	assert.Equal(t, "Histoire\nUsages\n", readFile(t, filepath.Join(art.Dir, output.SectionsFile)))
	assert.Equal(t, "https://upload.wikimedia.org/a/A380.jpg\n", readFile(t, filepath.Join(art.Dir, output.ImagesFile)))
	assert.Contains(t, readFile(t, filepath.Join(art.Dir, output.LinksFile)), "https://fr.wikipedia.org/wiki/Aile\n")
	assert.Equal(t, "Titre : Avion\nURL : https://fr.wikipedia.org/wiki/Avion\n\nUn avion est un aéronef.\n",
		readFile(t, filepath.Join(art.Dir, output.ResumeFile)))
}

func TestWriteArticleEmptyFieldsAndCollision(t *testing.T) {
	w := output.NewWriter(nil)
	dir := t.TempDir()
	page := parse.Page{Title: "Avion", URL: "https://fr.wikipedia.org/wiki/Avion_(homonymie)", Sections: []string{}, Links: []string{}, Images: []string{}}

	_, err := w.WriteArticle(dir, samplePage(), fixedTime)
	require.NoError(t, err)
	art, err := w.WriteArticle(dir, page, fixedTime)
	require.NoError(t, err)
	assert.Equal(t, "Avion_1", art.Folder)

	assert.Equal(t, "", readFile(t, filepath.Join(art.Dir, output.LinksFile)))
	assert.Contains(t, readFile(t, filepath.Join(art.Dir, output.ArticleFile)), "Aucun résumé disponible.")
	assert.Contains(t, readFile(t, filepath.Join(art.Dir, output.ResumeFile)), "(aucun résumé)")
}

func TestSummaryMarkdown(t *testing.T) {
	w := output.NewWriter(nil)
	long := samplePage()
	long.Title = "Aile"
	long.Summary = strings.Repeat("mot ", 100)
	long.Sections = []string{"s1", "s2", "s3", "s4", "s5", "s6"}

	articles := []output.Article{
		{Page: samplePage(), Folder: "Avion"},
		{Page: long, Folder: "Aile d'avion"},
	}
	pages := []parse.Page{articles[0].Page, articles[1].Page}
	doc, err := w.SummaryMarkdown(output.Summary{
		Keyword:  "Avion",
		At:       fixedTime,
		Articles: articles,
		Report:   report.Analyze(pages, 1),
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(doc, "# Résumé de recherche : Avion\n"))
	assert.Contains(t, doc, "**Articles extraits :** 2")
	assert.Contains(t, doc, "| 1 | [Avion](https://fr.wikipedia.org/wiki/Avion) | 2 | 2 | 1 | [Avion](./Avion/) |")
	assert.Contains(t, doc, "(./Aile%20d%27avion/)")
	assert.Contains(t, doc, "**Sections :** s1, s2, s3, s4, s5\n")
	assert.NotContains(t, doc, "s6")
	assert.Contains(t, doc, "...")
	assert.Contains(t, doc, "Liens (total)         : 4 (moyenne 2.0)")
	assert.Contains(t, doc, "Échecs                : 1")
}

func TestWriteSummaryBatchHeading(t *testing.T) {
	w := output.NewWriter(nil)
	dir := t.TempDir()
	path, err := w.WriteSummary(dir, output.Summary{At: fixedTime, Articles: []output.Article{{Page: samplePage(), Folder: "Avion"}}})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, output.SummaryFile), path)
	assert.True(t, strings.HasPrefix(readFile(t, path), "# Résumé du lot d'URLs"))
}

func TestManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	art := output.Article{Page: samplePage(), Folder: "Avion"}
	m := output.Manifest{
		ID:          "0192f0c8-0000-7000-8000-000000000000",
		Keyword:     "Avion",
		Mode:        "keyword",
		StartedAt:   fixedTime,
		CompletedAt: fixedTime.Add(3 * time.Second),
		State:       "done",
		Targets:     []output.ManifestTarget{{Title: "Avion", URL: "https://fr.wikipedia.org/wiki/Avion"}},
		Articles:    []output.ManifestArticle{output.ArticleEntry(art, 1)},
		Failures:    []output.ManifestFailure{{URL: "https://fr.wikipedia.org/wiki/X", Reason: "404"}},
	}
	_, err := output.WriteManifest(dir, m)
	require.NoError(t, err)

	got, err := output.ReadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
	assert.Equal(t, 2, got.Articles[0].Sections)
	assert.Equal(t, 1, got.Articles[0].ImagesSaved)
	assert.True(t, got.CompletedAt.Equal(m.CompletedAt))
	assert.Equal(t, "404", got.Failures[0].Reason)
}

func TestWriteIndex(t *testing.T) {
	dir := t.TempDir()
	arts := []output.Article{{Page: samplePage(), Folder: "Avion"}, {Page: parse.Page{Title: "Aile", URL: "https://fr.wikipedia.org/wiki/Aile"}, Folder: "Aile"}}
	path, err := output.WriteIndex(dir, arts)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(readFile(t, path)), "\n")
	require.Len(t, lines, 2)
	var rec output.IndexRecord
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, output.StableID("https://fr.wikipedia.org/wiki/Avion"), rec.ID)
	assert.Len(t, rec.ID, 16)
	assert.Equal(t, []string{"Histoire", "Usages"}, rec.Sections)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteIndexReportsWriteErrors(t *testing.T) {
	arts := []output.Article{{Page: samplePage(), Folder: "Avion"}}
	assert.EqualError(t, output.EncodeIndex(failingWriter{}, arts), "disk full")

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, output.IndexFile), 0755))
	_, err := output.WriteIndex(dir, arts)
	assert.Error(t, err)
}

type imageGetter struct {
	calls []string
}

func (g *imageGetter) Get(_ context.Context, rawURL string, _ map[string]string) (*fetch.Response, error) {
	g.calls = append(g.calls, rawURL)
	switch {
	case strings.Contains(rawURL, "missing"):
		return &fetch.Response{StatusCode: 404, Reason: "Not Found"}, nil
	case strings.Contains(rawURL, "down"):
		return nil, &fetch.ConnectionError{Op: "dial", Err: errors.New("refused")}
	}
	return &fetch.Response{StatusCode: 200, Body: []byte("\x89PNG")}, nil
}

func TestDownloadImages(t *testing.T) {
	w := output.NewWriter(nil)
	dir := t.TempDir()
	g := &imageGetter{}
	images := []string{
		"https://upload.wikimedia.org/a/A380.png",
		"https://upload.wikimedia.org/a/missing.png",
		"https://down.example.org/b.jpg",
		"not a url",
	}

	saved, err := w.DownloadImages(context.Background(), g, dir, images)
	require.NoError(t, err)
	assert.Equal(t, 1, saved)

	entries, err := os.ReadDir(filepath.Join(dir, output.ImagesDir))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".png"))

	// already on disk: no second request
	saved, err = w.DownloadImages(context.Background(), g, dir, images[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, saved)
	assert.Len(t, g.calls, 3)
}
