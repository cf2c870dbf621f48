package parse

import (
	"path"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"wikiscrap/internal/fetch"
)

const (
	MaxLinks       = 50
	MaxImages      = 20
	MinImageSide   = 100
	articlePrefix  = "/wiki/"
	maintenanceTag = "Cet article"
)

var contentContainers = []string{
	"#mw-content-text .mw-parser-output",
	".mw-parser-output",
	"main",
	"article",
	"body",
}

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".svg", ".gif", ".webp"}

// iconFragments are path pieces of site chrome and inline pictograms.
var iconFragments = []string{"/static/images/", "/icons/", "/20px-", "/15px-"}

// iconPrefixes are file name prefixes of icons and logos, matched on whole
// words so Technologie_x.jpg or Silicon.png stay.
var iconPrefixes = []string{"icon", "logo"}

// Extract runs each field query independently; a missing field leaves its zero value.
// Noise markup is removed from doc first.
func Extract(doc *goquery.Document, source fetch.ParsedURL) Page {
	RemoveNoise(doc)
	container := contentContainer(doc)

	summary, summaryHTML := extractSummary(container, source)
	return Page{
		Title:       extractTitle(doc),
		URL:         source.String(),
		Summary:     summary,
		SummaryHTML: summaryHTML,
		Sections:    extractSections(container),
		Links:       extractLinks(doc, source),
		Images:      extractImages(doc, source),
	}
}

func contentContainer(doc *goquery.Document) *goquery.Selection {
	for _, sel := range contentContainers {
		if found := doc.Find(sel).First(); found.Length() > 0 {
			return found
		}
	}
	return doc.Selection
}

func extractTitle(doc *goquery.Document) string {
	if t := collapseSpace(doc.Find("#firstHeading").First().Text()); t != "" {
		return t
	}
	if t := collapseSpace(doc.Find("h1").First().Text()); t != "" {
		return t
	}
	return stripSiteSuffix(collapseSpace(doc.Find("title").First().Text()))
}

// stripSiteSuffix turns "Avion — Wikipédia" into "Avion".
func stripSiteSuffix(title string) string {
	for _, sep := range []string{" — ", " – ", " - "} {
		idx := strings.LastIndex(title, sep)
		if idx <= 0 {
			continue
		}
		if strings.Contains(strings.ToLower(title[idx+len(sep):]), "wiki") {
			return strings.TrimSpace(title[:idx])
		}
	}
	return title
}

func isSectionBoundary(s *goquery.Selection) bool {
	if headingLevelFromTag(goquery.NodeName(s)) > 0 {
		return true
	}
	return s.Is("div.mw-heading")
}

func extractSummary(container *goquery.Selection, source fetch.ParsedURL) (string, string) {
	var text, htmlText string
	container.Children().EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if isSectionBoundary(s) {
			return false
		}
		if goquery.NodeName(s) != "p" {
			return true
		}
		candidate := collapseSpace(s.Text())
		if candidate == "" || strings.HasPrefix(candidate, maintenanceTag) {
			return true
		}
		text = candidate
		absolutizeLinks(s, source)
		if inner, err := s.Html(); err == nil {
			htmlText = strings.TrimSpace(inner)
		}
		return false
	})
	return text, htmlText
}

func absolutizeLinks(s *goquery.Selection, source fetch.ParsedURL) {
	s.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if strings.HasPrefix(href, "#") {
			return
		}
		if resolved, err := source.Resolve(href); err == nil {
			a.SetAttr("href", resolved.String())
		}
	})
}

func extractSections(container *goquery.Selection) []string {
	sections := []string{}
	container.Find("h2, h3").Each(func(_ int, s *goquery.Selection) {
		if t := collapseSpace(s.Text()); t != "" {
			sections = append(sections, t)
		}
	})
	return sections
}

func extractLinks(doc *goquery.Document, source fetch.ParsedURL) []string {
	scope := doc.Find("#mw-content-text")
	if scope.Length() == 0 {
		scope = doc.Selection
	}

	links := []string{}
	seen := map[string]bool{}
	scope.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if strings.Contains(href, "#") {
			return true
		}
		resolved, err := source.Resolve(href)
		if err != nil || !isArticleLink(resolved, source) {
			return true
		}
		link := resolved.String()
		if seen[link] {
			return true
		}
		seen[link] = true
		links = append(links, link)
		return len(links) < MaxLinks
	})
	return links
}

// isArticleLink keeps same-wiki /wiki/ paths outside the File:, Category:,
// Special: and other namespaces.
func isArticleLink(u, source fetch.ParsedURL) bool {
	if u.Host != source.Host || !strings.HasPrefix(u.Path, articlePrefix) {
		return false
	}
	name := strings.TrimPrefix(u.Path, articlePrefix)
	if name == "" || strings.Contains(name, "?") {
		return false
	}
	return !strings.Contains(name, ":") && !strings.Contains(strings.ToUpper(name), "%3A")
}

func extractImages(doc *goquery.Document, source fetch.ParsedURL) []string {
	images := []string{}
	seen := map[string]bool{}
	doc.Find("img[src]").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src := strings.TrimSpace(img.AttrOr("src", ""))
		if tooSmall(img.AttrOr("width", "")) || tooSmall(img.AttrOr("height", "")) {
			return true
		}
		if strings.HasPrefix(src, "//") {
			src = string(source.Scheme) + ":" + src
		}
		resolved, err := fetch.ParseURL(src)
		if err != nil || !isContentImage(resolved) {
			return true
		}
		imgURL := resolved.String()
		if seen[imgURL] {
			return true
		}
		seen[imgURL] = true
		images = append(images, imgURL)
		return len(images) < MaxImages
	})
	return images
}

func tooSmall(side string) bool {
	if side == "" {
		return false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(side), "px"))
	return err == nil && n < MinImageSide
}

func isContentImage(u fetch.ParsedURL) bool {
	lowerPath := strings.ToLower(u.Path)
	hasExt := false
	for _, ext := range imageExtensions {
		if strings.Contains(lowerPath, ext) {
			hasExt = true
			break
		}
	}
	if !hasExt {
		return false
	}
	for _, frag := range iconFragments {
		if strings.Contains(lowerPath, frag) {
			return false
		}
	}
	filePath, _, _ := strings.Cut(u.Path, "?")
	return !isIconFile(path.Base(filePath))
}

// isIconFile reports whether name, minus a "<n>px-" thumbnail prefix, starts
// with an icon prefix followed by a separator.
func isIconFile(name string) bool {
	name = strings.ToLower(name)
	if px, rest, ok := strings.Cut(name, "px-"); ok && px != "" && strings.Trim(px, "0123456789") == "" {
		name = rest
	}
	for _, prefix := range iconPrefixes {
		rest, ok := strings.CutPrefix(name, prefix)
		if !ok {
			continue
		}
		if rest == "" || !unicode.IsLetter([]rune(rest)[0]) {
			return true
		}
	}
	return false
}
