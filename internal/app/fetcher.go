package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"wikiscrap/internal/fetch"
	"wikiscrap/internal/parse"
)

var retryBackoffs = []time.Duration{0, time.Second, 2 * time.Second}

func backoff(attempt int) time.Duration {
	if attempt < len(retryBackoffs) {
		return retryBackoffs[attempt]
	}
	return retryBackoffs[len(retryBackoffs)-1]
}

// scrape fetches one article and extracts its record.
func (r *Runner) scrape(ctx context.Context, rawURL string) (parse.Page, error) {
	resp, err := r.fetchWithRetry(ctx, rawURL)
	if err != nil {
		return parse.Page{}, err
	}
	if err := resp.CheckStatus(); err != nil {
		return parse.Page{}, err
	}
	source := rawURL
	if resp.URL.Host != "" {
		source = resp.URL.String()
	}
	return parse.ExtractBytes(resp.Body, resp.ContentType(), source)
}

// fetchWithRetry retries connection failures only; protocol and status errors
// are returned on the first attempt.
func (r *Runner) fetchWithRetry(ctx context.Context, rawURL string) (*fetch.Response, error) {
	var (
		resp *fetch.Response
		err  error
	)
	for attempt := 0; attempt <= r.opts.Retries; attempt++ {
		if attempt > 0 {
			r.log.Warn("fetch attempt failed, retrying",
				zap.String("url", rawURL), zap.Int("attempt", attempt), zap.Error(err))
			if perr := r.deps.Pause(ctx, backoff(attempt)); perr != nil {
				return nil, err
			}
		}
		resp, err = r.deps.Getter.Get(ctx, rawURL, nil)
		if err == nil || !errors.Is(err, fetch.ErrConnection) || ctx.Err() != nil {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Inspect fetches and extracts a single page without writing anything.
func Inspect(ctx context.Context, opts Options, rawURL string) (parse.Page, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Retries < 0 {
		return parse.Page{}, fmt.Errorf("%w: negative retries %d", ErrConfiguration, opts.Retries)
	}
	r := NewRunner(opts, Deps{Getter: newTransport(opts)})
	return r.scrape(ctx, rawURL)
}
