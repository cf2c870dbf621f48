package report

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"wikiscrap/internal/parse"
)

// Report aggregates counts across the pages of one session.
type Report struct {
	Articles       int      `json:"articles"`
	Failures       int      `json:"failures"`
	TotalSections  int      `json:"total_sections"`
	TotalLinks     int      `json:"total_links"`
	TotalImages    int      `json:"total_images"`
	SummaryChars   int      `json:"summary_chars"`
	AvgSections    float64  `json:"avg_sections"`
	AvgLinks       float64  `json:"avg_links"`
	AvgImages      float64  `json:"avg_images"`
	EmptySummaries []string `json:"empty_summaries"`
	NoSections     []string `json:"no_sections"`
}

func Analyze(pages []parse.Page, failures int) Report {
	rep := Report{
		Articles:       len(pages),
		Failures:       failures,
		EmptySummaries: []string{},
		NoSections:     []string{},
	}
	for _, p := range pages {
		rep.TotalSections += len(p.Sections)
		rep.TotalLinks += len(p.Links)
		rep.TotalImages += len(p.Images)
		rep.SummaryChars += utf8.RuneCountInString(p.Summary)
		if strings.TrimSpace(p.Summary) == "" {
			rep.EmptySummaries = append(rep.EmptySummaries, label(p))
		}
		if len(p.Sections) == 0 {
			rep.NoSections = append(rep.NoSections, label(p))
		}
	}
	if n := float64(len(pages)); n > 0 {
		rep.AvgSections = float64(rep.TotalSections) / n
		rep.AvgLinks = float64(rep.TotalLinks) / n
		rep.AvgImages = float64(rep.TotalImages) / n
	}
	sort.Strings(rep.EmptySummaries)
	sort.Strings(rep.NoSections)
	return rep
}

func label(p parse.Page) string {
	if p.Title != "" {
		return p.Title
	}
	return p.URL
}

// Lines renders the statistics block of the session summary.
func (r Report) Lines() []string {
	return []string{
		fmt.Sprintf("Articles extraits     : %d", r.Articles),
		fmt.Sprintf("Échecs                : %d", r.Failures),
		fmt.Sprintf("Sections (total)      : %d (moyenne %.1f)", r.TotalSections, r.AvgSections),
		fmt.Sprintf("Liens (total)         : %d (moyenne %.1f)", r.TotalLinks, r.AvgLinks),
		fmt.Sprintf("Images (total)        : %d (moyenne %.1f)", r.TotalImages, r.AvgImages),
		fmt.Sprintf("Caractères de résumé  : %d", r.SummaryChars),
		fmt.Sprintf("Résumés vides         : %d", len(r.EmptySummaries)),
		fmt.Sprintf("Articles sans section : %d", len(r.NoSections)),
	}
}
