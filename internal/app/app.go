package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"wikiscrap/internal/fetch"
	"wikiscrap/internal/report"
	"wikiscrap/internal/search"
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrNoResults     = errors.New("no article extracted")
)

// Deps are the collaborators a Runner talks to. Nil Pause and Clock fall back to
// fetch.Pause and time.Now.
type Deps struct {
	Getter   fetch.Getter
	Searcher search.Searcher
	Pause    func(ctx context.Context, d time.Duration) error
	Clock    func() time.Time
}

type Runner struct {
	opts Options
	deps Deps
	log  *zap.Logger
}

func NewRunner(opts Options, deps Deps) *Runner {
	if deps.Pause == nil {
		deps.Pause = fetch.Pause
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{opts: opts, deps: deps, log: logger}
}

// Run builds the raw transport and the search client from opts and runs one session.
func Run(ctx context.Context, opts Options) (*Session, error) {
	transport := newTransport(opts)
	searcher, err := search.NewClient(transport, opts.SearchEndpoint, opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return NewRunner(opts, Deps{Getter: transport, Searcher: searcher}).Run(ctx)
}

func newTransport(opts Options) *fetch.Transport {
	return fetch.New(fetch.Options{
		UserAgent:    opts.UserAgent,
		Timeout:      opts.Timeout,
		MaxRedirects: opts.MaxRedirects,
		Logger:       opts.Logger,
	})
}

// Run drives the session through its states. The returned session is never nil and
// carries whatever was collected before a failure.
func (r *Runner) Run(ctx context.Context) (*Session, error) {
	s := &Session{
		ID:        newSessionID(),
		State:     StateInit,
		StartedAt: r.deps.Clock(),
	}
	r.log = r.log.With(zap.String("session", s.ID))
	r.log.Info("session state", zap.String("state", string(s.State)))

	if err := r.run(ctx, s); err != nil {
		r.transition(s, StateFailed)
		r.log.Error("session failed", zap.Error(err))
		return s, err
	}
	r.transition(s, StateDone)
	printSessionSummary(r.opts.Out, s)
	return s, nil
}

func (r *Runner) run(ctx context.Context, s *Session) error {
	opts, mode, err := normalizeOptions(r.opts)
	if err != nil {
		return err
	}
	r.opts = opts
	s.Mode = mode
	s.Keyword = opts.Keyword
	s.OutputRoot = opts.OutputRoot

	r.transition(s, StateResolving)
	targets, err := r.resolveTargets(ctx, mode)
	if err != nil {
		return err
	}
	s.Targets = targets

	r.transition(s, StateFetching)
	r.fetchAll(ctx, s)

	r.transition(s, StateAggregating)
	if len(s.Pages) == 0 {
		return fmt.Errorf("%w: %d target(s), %d failure(s)", ErrNoResults, len(s.Targets), len(s.Failures))
	}
	s.Report = report.Analyze(s.Pages, len(s.Failures))

	r.transition(s, StateWriting)
	return r.writeSession(ctx, s)
}

func (r *Runner) transition(s *Session, next State) {
	r.log.Info("session state", zap.String("from", string(s.State)), zap.String("state", string(next)))
	s.State = next
}

// fetchAll visits every target in order. Failures are recorded, never returned.
func (r *Runner) fetchAll(ctx context.Context, s *Session) {
	out := r.opts.Out
	seen := map[string]string{}
	for i, t := range s.Targets {
		if i > 0 {
			if err := r.deps.Pause(ctx, r.opts.Pause); err != nil {
				r.interrupt(s, i, err)
				return
			}
		}
		if err := ctx.Err(); err != nil {
			r.interrupt(s, i, err)
			return
		}

		fmt.Fprintf(out, "[%d/%d] Scraping %s\n", i+1, len(s.Targets), t.label())
		page, err := r.scrape(ctx, t.URL)
		if err != nil {
			r.log.Warn("target failed", zap.String("url", t.URL), zap.Error(err))
			fmt.Fprintf(out, "  failed: %v\n", err)
			s.Failures = append(s.Failures, Failure{URL: t.URL, Reason: err.Error()})
			continue
		}

		key := strings.ToLower(strings.TrimSpace(page.Title))
		if first, dup := seen[key]; dup && key != "" {
			r.log.Info("duplicate article skipped",
				zap.String("title", page.Title), zap.String("url", t.URL), zap.String("first", first))
			fmt.Fprintf(out, "  duplicate of %s, skipped\n", first)
			s.Duplicates = append(s.Duplicates, t)
			continue
		}
		seen[key] = page.URL
		s.Pages = append(s.Pages, page)
		fmt.Fprintf(out, "  %q: %d sections, %d links, %d images\n",
			page.Title, len(page.Sections), len(page.Links), len(page.Images))
	}
}

func (r *Runner) interrupt(s *Session, done int, err error) {
	s.Interrupted = true
	r.log.Warn("session interrupted", zap.Int("processed", done), zap.Int("targets", len(s.Targets)), zap.Error(err))
	fmt.Fprintf(r.opts.Out, "Interrupted after %d of %d target(s)\n", done, len(s.Targets))
}
