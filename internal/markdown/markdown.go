package markdown

import (
	"strings"

	htmltomd "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
)

type Converter struct {
	md *htmltomd.Converter
}

func NewConverter() *Converter {
	conv := htmltomd.NewConverter("", true, nil)
	conv.Use(plugin.GitHubFlavored())
	conv.Use(TablePlugin())
	conv.Use(NoticePlugin())
	return &Converter{md: conv}
}

// Convert renders an HTML fragment as trimmed markdown.
func (c *Converter) Convert(contentHTML string) (string, error) {
	out, err := c.md.ConvertString(contentHTML)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (c *Converter) SectionToMarkdown(headingText string, headingLevel int, contentHTML string) (string, error) {
	if headingLevel < 1 {
		headingLevel = 1
	}
	if headingLevel > 6 {
		headingLevel = 6
	}
	headingLine := strings.TrimSpace(strings.Repeat("#", headingLevel) + " " + headingText)

	body, err := c.Convert(contentHTML)
	if err != nil {
		return "", err
	}
	if body == "" {
		return headingLine + "\n", nil
	}
	return headingLine + "\n\n" + body + "\n", nil
}
