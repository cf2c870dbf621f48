package output

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"wikiscrap/internal/parse"
)

// Article is one page as written under the session directory.
type Article struct {
	Page   parse.Page
	Folder string
	Dir    string
	Files  []string
}

// WriteArticle writes every per-article file into a fresh folder named after the title.
func (w *Writer) WriteArticle(sessionDir string, page parse.Page, at time.Time) (Article, error) {
	name := page.Title
	if strings.TrimSpace(name) == "" {
		name = page.URL
	}
	dir := uniqueDir(sessionDir, SanitizeFilename(name))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Article{}, err
	}
	art := Article{Page: page, Dir: dir, Folder: filepath.Base(dir)}

	doc, err := w.ArticleMarkdown(page, at)
	if err != nil {
		return Article{}, fmt.Errorf("render %s: %w", page.URL, err)
	}

	writes := []func() (string, error){
		func() (string, error) { return WriteJSON(dir, DataFile, page) },
		func() (string, error) { return WriteText(dir, ArticleFile, doc) },
		func() (string, error) { return WriteText(dir, ResumeFile, resumeText(page)) },
		func() (string, error) { return WriteLines(dir, SectionsFile, page.Sections) },
		func() (string, error) { return WriteLines(dir, LinksFile, page.Links) },
		func() (string, error) { return WriteLines(dir, ImagesFile, page.Images) },
	}
	for _, write := range writes {
		path, err := write()
		if err != nil {
			return Article{}, err
		}
		art.Files = append(art.Files, path)
	}

	w.log.Debug("article written", zap.String("title", page.Title), zap.String("dir", dir))
	return art, nil
}

// ArticleMarkdown renders the formatted view: header, summary, sections, links and images.
func (w *Writer) ArticleMarkdown(page parse.Page, at time.Time) (string, error) {
	title := page.Title
	if title == "" {
		title = page.URL
	}
	href := html.EscapeString(page.URL)
	header := fmt.Sprintf(`<p><strong>Source :</strong> <a href="%s">%s</a><br><strong>Extrait le :</strong> %s</p>`,
		href, href, at.Format(DateLayout))

	summaryHTML := page.SummaryHTML
	switch {
	case summaryHTML != "":
		summaryHTML = "<p>" + summaryHTML + "</p>"
	case page.Summary != "":
		summaryHTML = "<p>" + html.EscapeString(page.Summary) + "</p>"
	default:
		summaryHTML = "<p><em>Aucun résumé disponible.</em></p>"
	}

	blocks := []mdBlock{
		{title, 1, header},
		{"Résumé", 2, summaryHTML},
		{fmt.Sprintf("Sections (%d)", len(page.Sections)), 2, ""},
	}
	for _, s := range page.Sections {
		blocks = append(blocks, mdBlock{s, 3, ""})
	}
	blocks = append(blocks,
		mdBlock{fmt.Sprintf("Liens internes (%d)", len(page.Links)), 2, linkList(page.Links)},
		mdBlock{fmt.Sprintf("Images (%d)", len(page.Images)), 2, linkList(page.Images)},
	)

	var b strings.Builder
	for _, blk := range blocks {
		md, err := w.conv.SectionToMarkdown(blk.heading, blk.level, blk.body)
		if err != nil {
			return "", err
		}
		b.WriteString(md)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n", nil
}

type mdBlock struct {
	heading string
	level   int
	body    string
}

func linkList(urls []string) string {
	if len(urls) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<ul>")
	for _, u := range urls {
		e := html.EscapeString(u)
		fmt.Fprintf(&b, `<li><a href="%s">%s</a></li>`, e, e)
	}
	b.WriteString("</ul>")
	return b.String()
}

func resumeText(page parse.Page) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Titre : %s\n", page.Title)
	fmt.Fprintf(&b, "URL : %s\n\n", page.URL)
	if page.Summary == "" {
		b.WriteString("(aucun résumé)\n")
	} else {
		b.WriteString(page.Summary + "\n")
	}
	return b.String()
}
