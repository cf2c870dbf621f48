package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"wikiscrap/internal/fetch"
)

const (
	DefaultEndpoint = "https://fr.wikipedia.org/w/api.php"
	MinLimit        = 1
	MaxLimit        = 20
)

var ErrResponseMalformed = errors.New("search response malformed")

// Result is one page returned by the phrase search.
type Result struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// Searcher is the dependency the orchestrator holds.
type Searcher interface {
	Search(ctx context.Context, keyword string, limit int) ([]Result, error)
}

// Client queries a MediaWiki OpenSearch endpoint through the raw transport.
type Client struct {
	getter   fetch.Getter
	endpoint fetch.ParsedURL
	log      *zap.Logger
}

func NewClient(getter fetch.Getter, endpoint string, logger *zap.Logger) (*Client, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	parsed, err := fetch.ParseURL(endpoint)
	if err != nil {
		return nil, fmt.Errorf("search endpoint: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{getter: getter, endpoint: parsed, log: logger}, nil
}

// Host is the wiki the endpoint belongs to.
func (c *Client) Host() string {
	return c.endpoint.HostHeader()
}

// ClampLimit keeps limit inside the range the API accepts.
func ClampLimit(limit int) int {
	if limit < MinLimit {
		return MinLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// QueryURL builds the request URL for keyword.
func (c *Client) QueryURL(keyword string, limit int) string {
	u := c.endpoint
	path := u.Path
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}
	u.Path = path + "?action=opensearch&search=" + fetch.EncodeQuerySegment(keyword) +
		"&limit=" + strconv.Itoa(ClampLimit(limit)) + "&format=json"
	return u.String()
}

func (c *Client) Search(ctx context.Context, keyword string, limit int) ([]Result, error) {
	queryURL := c.QueryURL(keyword, limit)
	c.log.Debug("searching", zap.String("keyword", keyword), zap.String("url", queryURL))

	resp, err := c.getter.Get(ctx, queryURL, map[string]string{"Accept-Language": "fr"})
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", keyword, err)
	}
	if err := resp.CheckStatus(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseMalformed, err)
	}

	results, err := Decode(resp.Body)
	if err != nil {
		return nil, err
	}
	c.log.Debug("search results", zap.String("keyword", keyword), zap.Int("count", len(results)))
	return results, nil
}

// Decode reads the [query, [titles], [descriptions], [urls]] array. Results
// are deduplicated by URL ignoring case, keeping the first occurrence.
func Decode(body []byte) ([]Result, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseMalformed, err)
	}
	if len(raw) < 4 {
		return nil, fmt.Errorf("%w: expected 4 elements, got %d", ErrResponseMalformed, len(raw))
	}

	var titles, urls []string
	if err := json.Unmarshal(raw[1], &titles); err != nil {
		return nil, fmt.Errorf("%w: titles: %v", ErrResponseMalformed, err)
	}
	if err := json.Unmarshal(raw[3], &urls); err != nil {
		return nil, fmt.Errorf("%w: urls: %v", ErrResponseMalformed, err)
	}
	if len(titles) != len(urls) {
		return nil, fmt.Errorf("%w: %d titles for %d urls", ErrResponseMalformed, len(titles), len(urls))
	}

	// descriptions are often empty strings; a wrong shape there is tolerated
	var descs []string
	_ = json.Unmarshal(raw[2], &descs)

	seen := make(map[string]bool, len(urls))
	results := make([]Result, 0, len(urls))
	for i, u := range urls {
		key := strings.ToLower(strings.TrimSpace(u))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		r := Result{Title: strings.TrimSpace(titles[i]), URL: strings.TrimSpace(u)}
		if i < len(descs) {
			r.Description = strings.TrimSpace(descs[i])
		}
		results = append(results, r)
	}
	return results, nil
}
