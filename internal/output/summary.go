package output

import (
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"wikiscrap/internal/report"
)

const (
	shortSummaryRunes = 300
	summarySections   = 5
)

// Summary is the input of the cross-article summary document.
type Summary struct {
	Keyword  string
	At       time.Time
	Articles []Article
	Report   report.Report
}

// WriteSummary renders RESUME_RECHERCHE.md in the session directory.
func (w *Writer) WriteSummary(sessionDir string, s Summary) (string, error) {
	doc, err := w.SummaryMarkdown(s)
	if err != nil {
		return "", err
	}
	return WriteText(sessionDir, SummaryFile, doc)
}

func (w *Writer) SummaryMarkdown(s Summary) (string, error) {
	var b strings.Builder
	if s.Keyword != "" {
		fmt.Fprintf(&b, "# Résumé de recherche : %s\n\n", s.Keyword)
	} else {
		b.WriteString("# Résumé du lot d'URLs\n\n")
	}
	fmt.Fprintf(&b, "**Date :** %s  \n", s.At.Format(DateLayout))
	fmt.Fprintf(&b, "**Articles extraits :** %d\n\n", len(s.Articles))

	table, err := w.conv.SectionToMarkdown("Articles", 2, summaryTable(s.Articles))
	if err != nil {
		return "", err
	}
	b.WriteString(table)
	b.WriteString("\n")

	b.WriteString("## Aperçus\n\n")
	for i, a := range s.Articles {
		fmt.Fprintf(&b, "### %d. %s\n\n", i+1, displayTitle(a))
		if a.Page.Summary != "" {
			b.WriteString(shorten(a.Page.Summary, shortSummaryRunes) + "\n\n")
		} else {
			b.WriteString("_Aucun résumé disponible._\n\n")
		}
		if len(a.Page.Sections) > 0 {
			secs := a.Page.Sections
			if len(secs) > summarySections {
				secs = secs[:summarySections]
			}
			fmt.Fprintf(&b, "**Sections :** %s\n\n", strings.Join(secs, ", "))
		}
	}

	b.WriteString("## Statistiques\n\n```text\n")
	for _, line := range s.Report.Lines() {
		b.WriteString(line + "\n")
	}
	b.WriteString("```\n")
	return b.String(), nil
}

// summaryTable builds the article table as HTML so the converter's table rule renders it.
func summaryTable(articles []Article) string {
	var b strings.Builder
	b.WriteString(`<table><tr><th>N°</th><th align="left">Titre</th>` +
		`<th align="right">Sections</th><th align="right">Liens</th><th align="right">Images</th>` +
		`<th align="left">Dossier</th></tr>`)
	for i, a := range articles {
		fmt.Fprintf(&b, `<tr><td>%d</td><td><a href="%s">%s</a></td><td>%d</td><td>%d</td><td>%d</td><td><a href="./%s/">%s</a></td></tr>`,
			i+1,
			html.EscapeString(a.Page.URL), html.EscapeString(displayTitle(a)),
			len(a.Page.Sections), len(a.Page.Links), len(a.Page.Images),
			html.EscapeString(url.PathEscape(a.Folder)), html.EscapeString(a.Folder),
		)
	}
	b.WriteString("</table>")
	return b.String()
}

func displayTitle(a Article) string {
	if a.Page.Title != "" {
		return a.Page.Title
	}
	return a.Page.URL
}

func shorten(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:max])) + "..."
}
