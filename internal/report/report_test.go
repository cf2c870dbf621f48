package report_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"wikiscrap/internal/parse"
	"wikiscrap/internal/report"
)

func TestAnalyze_Totals(t *testing.T) {
	pages := []parse.Page{
		{Title: "Avion", Summary: "Un avion.", Sections: []string{"Histoire", "Usages"}, Links: []string{"a", "b", "c"}, Images: []string{"i"}},
		{Title: "Aile", Summary: "Été", Sections: []string{"Forme"}, Links: []string{"d"}},
		{Title: "Moteur", Links: []string{}, Images: []string{"j", "k"}},
	}

	rep := report.Analyze(pages, 2)
	assert.Equal(t, 3, rep.Articles)
	assert.Equal(t, 2, rep.Failures)
	assert.Equal(t, 3, rep.TotalSections)
	assert.Equal(t, 4, rep.TotalLinks)
	assert.Equal(t, 3, rep.TotalImages)
	assert.Equal(t, 12, rep.SummaryChars)
	assert.InDelta(t, 1.0, rep.AvgSections, 0.001)
	assert.InDelta(t, 4.0/3.0, rep.AvgLinks, 0.001)
	assert.Equal(t, []string{"Moteur"}, rep.EmptySummaries)
	assert.Equal(t, []string{"Moteur"}, rep.NoSections)
}

func TestAnalyze_Empty(t *testing.T) {
	rep := report.Analyze(nil, 0)
	assert.Equal(t, 0, rep.Articles)
	assert.Zero(t, rep.AvgLinks)
	assert.NotNil(t, rep.EmptySummaries)
}

func TestAnalyze_LabelsUntitledByURL(t *testing.T) {
	rep := report.Analyze([]parse.Page{{URL: "https://fr.wikipedia.org/wiki/X"}}, 0)
	assert.Equal(t, []string{"https://fr.wikipedia.org/wiki/X"}, rep.EmptySummaries)
}

func TestReportLines(t *testing.T) {
	rep := report.Analyze([]parse.Page{{Title: "A", Summary: "abc", Links: []string{"x", "y"}}}, 1)
	lines := rep.Lines()
	assert.Contains(t, lines, "Articles extraits     : 1")
	assert.Contains(t, lines, "Liens (total)         : 2 (moyenne 2.0)")
	assert.Contains(t, lines, "Échecs                : 1")
}
