package app

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"wikiscrap/internal/fetch"
)

func (r *Runner) resolveTargets(ctx context.Context, mode Mode) ([]Target, error) {
	var urls []string
	switch mode {
	case ModeKeyword:
		return r.searchTargets(ctx, r.opts.Keyword)
	case ModeFile:
		lines, err := ReadURLFile(r.opts.URLFile)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		urls = lines
	default:
		urls = r.opts.URLs
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: no target url", ErrConfiguration)
	}
	targets := make([]Target, 0, len(urls))
	for _, u := range urls {
		targets = append(targets, Target{URL: u})
	}
	return targets, nil
}

func (r *Runner) searchTargets(ctx context.Context, keyword string) ([]Target, error) {
	results, err := r.deps.Searcher.Search(ctx, keyword, r.opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", keyword, err)
	}
	fmt.Fprintf(r.opts.Out, "Search %q: %d result(s)\n", keyword, len(results))

	if len(results) == 0 {
		direct, err := r.directArticleURL(keyword)
		if err != nil {
			return nil, err
		}
		r.log.Info("no search result, trying the article directly", zap.String("url", direct))
		return []Target{{Title: keyword, URL: direct}}, nil
	}

	targets := make([]Target, 0, len(results))
	for _, res := range results {
		targets = append(targets, Target{Title: res.Title, URL: res.URL})
	}
	return targets, nil
}

// directArticleURL points at /wiki/<keyword> on the wiki behind the search endpoint.
func (r *Runner) directArticleURL(keyword string) (string, error) {
	endpoint, err := fetch.ParseURL(r.opts.SearchEndpoint)
	if err != nil {
		return "", fmt.Errorf("%w: search endpoint: %w", ErrConfiguration, err)
	}
	endpoint.Path = fetch.ArticlePath(keyword)
	return endpoint.String(), nil
}

// ReadURLFile returns the URLs listed in path, one per line. Blank lines and
// lines starting with # are skipped.
func ReadURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return cleanLines(lines), nil
}
