package app

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"wikiscrap/internal/fetch"
	"wikiscrap/internal/output"
	"wikiscrap/internal/search"
)

const (
	DefaultLimit      = 5
	DefaultOutputRoot = output.DefaultRoot
	DefaultPause      = time.Second
	DefaultRetries    = 2
)

// Mode says where the session's targets come from.
type Mode string

const (
	ModeURLs    Mode = "urls"
	ModeFile    Mode = "file"
	ModeKeyword Mode = "keyword"
)

type Options struct {
	URLs    []string
	URLFile string
	Keyword string
	Limit   int

	OutputRoot string
	Timeout    time.Duration
	UserAgent  string
	// Pause separates successive targets. Zero disables it.
	Pause time.Duration
	// Retries applies to connection failures only.
	Retries        int
	MaxRedirects   int
	SearchEndpoint string
	DownloadImages bool

	Out    io.Writer
	Logger *zap.Logger
}

func normalizeOptions(opts Options) (Options, Mode, error) {
	opts.Keyword = strings.TrimSpace(opts.Keyword)
	opts.URLFile = strings.TrimSpace(opts.URLFile)
	opts.URLs = cleanLines(opts.URLs)

	var modes []Mode
	if len(opts.URLs) > 0 {
		modes = append(modes, ModeURLs)
	}
	if opts.URLFile != "" {
		modes = append(modes, ModeFile)
	}
	if opts.Keyword != "" {
		modes = append(modes, ModeKeyword)
	}
	if len(modes) != 1 {
		return opts, "", fmt.Errorf("%w: exactly one of urls, url file or keyword is required (got %d)", ErrConfiguration, len(modes))
	}

	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	opts.Limit = search.ClampLimit(opts.Limit)
	if opts.OutputRoot == "" {
		opts.OutputRoot = DefaultOutputRoot
	}
	if opts.Timeout <= 0 {
		opts.Timeout = fetch.DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = fetch.DefaultUserAgent
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = fetch.DefaultMaxRedirects
	}
	if opts.Pause < 0 {
		return opts, "", fmt.Errorf("%w: negative pause %s", ErrConfiguration, opts.Pause)
	}
	if opts.Retries < 0 {
		return opts, "", fmt.Errorf("%w: negative retries %d", ErrConfiguration, opts.Retries)
	}
	if opts.SearchEndpoint == "" {
		opts.SearchEndpoint = search.DefaultEndpoint
	}
	if _, err := fetch.ParseURL(opts.SearchEndpoint); err != nil {
		return opts, "", fmt.Errorf("%w: search endpoint: %w", ErrConfiguration, err)
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return opts, modes[0], nil
}

// cleanLines trims each entry and drops blanks and # comments.
func cleanLines(lines []string) []string {
	var out []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
