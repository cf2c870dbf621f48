package markdown

import (
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// NoticePlugin renders wiki hatnotes and maintenance banners as quoted
// callouts, and description lists as bold terms.
func NoticePlugin() md.Plugin {
	return func(conv *md.Converter) []md.Rule {
		return []md.Rule{
			{
				Filter: []string{"div", "aside", "table"},
				Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
					title := noticeTitle(strings.ToLower(selec.AttrOr("class", "")))
					if title == "" {
						return nil
					}
					out := quote(title, content)
					return &out
				},
			},
			{
				Filter: []string{"dt"},
				Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
					res := "\n**" + strings.TrimSpace(content) + "**\n"
					return &res
				},
			},
			{
				Filter: []string{"dd"},
				Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
					res := ": " + strings.TrimSpace(content) + "\n"
					return &res
				},
			},
		}
	}
}

func noticeTitle(classes string) string {
	switch {
	case strings.Contains(classes, "homonymie"):
		return "Homonymie"
	case strings.Contains(classes, "hatnote"):
		return "Note"
	case strings.Contains(classes, "bandeau"), strings.Contains(classes, "ambox"):
		return "Avertissement"
	}
	return ""
}

func quote(title, content string) string {
	var b strings.Builder
	b.WriteString("> **" + title + "**\n")
	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		if strings.TrimSpace(line) == "" {
			b.WriteString(">\n")
			continue
		}
		b.WriteString("> " + line + "\n")
	}
	b.WriteString("\n")
	return b.String()
}
