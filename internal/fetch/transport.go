package fetch

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultTimeout      = 20 * time.Second
	DefaultMaxRedirects = 5
	DefaultUserAgent    = "wikiscrap/1.0 (+https://github.com/wikiscrap)"
)

// Getter is what the search client, the orchestrator and the image downloader need.
type Getter interface {
	Get(ctx context.Context, rawURL string, headers map[string]string) (*Response, error)
}

type Options struct {
	Dialer       Dialer
	UserAgent    string
	Timeout      time.Duration
	MaxRedirects int
	Logger       *zap.Logger
}

// Transport performs one GET exchange per hop, each over its own stream.
type Transport struct {
	dialer       Dialer
	userAgent    string
	maxRedirects int
	log          *zap.Logger
}

func New(opts Options) *Transport {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = DefaultMaxRedirects
	}
	if opts.Dialer == nil {
		opts.Dialer = NetDialer{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Transport{
		dialer:       opts.Dialer,
		userAgent:    opts.UserAgent,
		maxRedirects: opts.MaxRedirects,
		log:          opts.Logger,
	}
}

func (t *Transport) Get(ctx context.Context, rawURL string, headers map[string]string) (*Response, error) {
	target, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	return t.Do(ctx, target, headers)
}

// Do follows redirects up to the configured hop count. A redirect without a
// Location header is returned to the caller unchanged.
func (t *Transport) Do(ctx context.Context, target ParsedURL, headers map[string]string) (*Response, error) {
	for hop := 0; ; hop++ {
		resp, err := t.exchange(ctx, target, headers)
		if err != nil {
			return nil, err
		}
		if !isRedirect(resp.StatusCode) {
			return resp, nil
		}
		location := resp.Header.Get("Location")
		if location == "" {
			return resp, nil
		}
		if hop >= t.maxRedirects {
			return nil, fmt.Errorf("%w: more than %d hops from %s", ErrTooManyRedirects, t.maxRedirects, target.String())
		}
		next, err := target.Resolve(location)
		if err != nil {
			return nil, fmt.Errorf("redirect location %q: %w", location, err)
		}
		t.log.Debug("following redirect",
			zap.Int("status", resp.StatusCode),
			zap.String("from", target.String()),
			zap.String("to", next.String()),
		)
		target = next
	}
}

func (t *Transport) exchange(ctx context.Context, target ParsedURL, headers map[string]string) (*Response, error) {
	conn, err := t.dialer.Dial(ctx, target)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	start := time.Now()
	if _, err := conn.Write(BuildRequest(target, t.userAgent, headers)); err != nil {
		return nil, &ConnectionError{Op: "write", Addr: target.Address(), Err: err}
	}

	resp, err := ReadResponse(bufio.NewReader(conn))
	if err != nil {
		var ce *ConnectionError
		if errors.As(err, &ce) && ce.Addr == "" {
			ce.Addr = target.Address()
		}
		return nil, err
	}
	resp.URL = target
	t.log.Debug("fetched",
		zap.String("url", target.String()),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(resp.Body)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return resp, nil
}

var mandatoryHeaders = map[string]bool{
	"host":       true,
	"user-agent": true,
	"connection": true,
	"accept":     true,
}

// BuildRequest renders the exact request bytes. Caller headers follow the
// mandatory ones in name order and never replace them.
func BuildRequest(target ParsedURL, userAgent string, headers map[string]string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "GET %s HTTP/1.1\r\n", target.Path)
	fmt.Fprintf(&b, "Host: %s\r\n", target.HostHeader())
	fmt.Fprintf(&b, "User-Agent: %s\r\n", userAgent)
	b.WriteString("Connection: close\r\n")
	b.WriteString("Accept: */*\r\n")

	names := make([]string, 0, len(headers))
	for name := range headers {
		if mandatoryHeaders[strings.ToLower(name)] {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "%s: %s\r\n", name, headers[name])
	}
	b.WriteString("\r\n")
	return b.Bytes()
}

func isRedirect(code int) bool {
	switch code {
	case 301, 302, 303, 307, 308:
		return true
	}
	return false
}
