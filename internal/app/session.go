package app

import (
	"time"

	"github.com/google/uuid"

	"wikiscrap/internal/output"
	"wikiscrap/internal/parse"
	"wikiscrap/internal/report"
)

type State string

const (
	StateInit        State = "init"
	StateResolving   State = "resolving_targets"
	StateFetching    State = "fetching"
	StateAggregating State = "aggregating"
	StateWriting     State = "writing"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

type Target struct {
	Title string
	URL   string
}

func (t Target) label() string {
	if t.Title != "" {
		return t.Title + " (" + t.URL + ")"
	}
	return t.URL
}

type Failure struct {
	URL    string
	Reason string
}

// Session is the state of one invocation, from target resolution to the written files.
type Session struct {
	ID          string
	Mode        Mode
	Keyword     string
	State       State
	StartedAt   time.Time
	CompletedAt time.Time

	Targets    []Target
	Pages      []parse.Page
	Failures   []Failure
	Duplicates []Target
	// Interrupted is set when cancellation stopped the fetch loop early.
	Interrupted bool

	Report      report.Report
	OutputRoot  string
	Dir         string
	Articles    []output.Article
	SummaryPath string
}

func newSessionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (s *Session) manifest(entries []output.ManifestArticle) output.Manifest {
	m := output.Manifest{
		ID:          s.ID,
		Keyword:     s.Keyword,
		Mode:        string(s.Mode),
		StartedAt:   s.StartedAt,
		CompletedAt: s.CompletedAt,
		State:       string(StateDone),
		Articles:    entries,
		Report:      s.Report,
	}
	for _, t := range s.Targets {
		m.Targets = append(m.Targets, output.ManifestTarget{Title: t.Title, URL: t.URL})
	}
	for _, f := range s.Failures {
		m.Failures = append(m.Failures, output.ManifestFailure{URL: f.URL, Reason: f.Reason})
	}
	return m
}
