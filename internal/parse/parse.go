package parse

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"wikiscrap/internal/fetch"
)

var ErrHTMLParse = errors.New("html parse error")

// Page is the record extracted from one article. Field order is the JSON order.
type Page struct {
	Title    string   `json:"title"`
	URL      string   `json:"url"`
	Summary  string   `json:"summary"`
	Sections []string `json:"sections"`
	Links    []string `json:"links"`
	Images   []string `json:"images"`

	// SummaryHTML is the summary paragraph with absolute links, for the markdown view.
	SummaryHTML string `json:"-"`
}

// NewDocument decodes body to UTF-8 using contentType and any <meta charset>
// then builds the DOM.
func NewDocument(body []byte, contentType string) (*goquery.Document, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: empty html", ErrHTMLParse)
	}
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: charset: %v", ErrHTMLParse, err)
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHTMLParse, err)
	}
	return doc, nil
}

// ExtractBytes parses body and extracts the page record.
func ExtractBytes(body []byte, contentType, sourceURL string) (Page, error) {
	doc, err := NewDocument(body, contentType)
	if err != nil {
		return Page{}, err
	}
	source, err := fetch.ParseURL(sourceURL)
	if err != nil {
		return Page{}, err
	}
	return Extract(doc, source), nil
}

func headingLevelFromTag(tag string) int {
	switch strings.ToLower(tag) {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	default:
		return 0
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
