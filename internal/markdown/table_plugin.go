package markdown

import (
	"strconv"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// TablePlugin flattens tables with rowspan/colspan into a pipe table,
// repeating spanned cells. Column alignment is read from the first row's
// align attribute or text-align style.
func TablePlugin() md.Plugin {
	return func(conv *md.Converter) []md.Rule {
		return []md.Rule{{
			Filter: []string{"table"},
			Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
				grid, ok := buildTableGrid(conv, selec)
				if !ok {
					return nil
				}
				res := "\n\n" + grid.render() + "\n"
				return &res
			},
		}}
	}
}

type tableGrid struct {
	rows   [][]string
	aligns []string
	width  int
}

func buildTableGrid(conv *md.Converter, table *goquery.Selection) (*tableGrid, bool) {
	trs := table.Find("tr")
	if trs.Length() == 0 {
		return nil, false
	}
	grid := &tableGrid{rows: make([][]string, trs.Length())}
	trs.Each(func(rIdx int, tr *goquery.Selection) {
		col := 0
		tr.Children().Filter("td, th").Each(func(_ int, td *goquery.Selection) {
			col = grid.nextFreeCol(rIdx, col)
			cell := cleanCell(conv.Convert(td))
			rowSpan := spanValue(td, "rowspan")
			colSpan := spanValue(td, "colspan")
			if rIdx == 0 {
				for c := 0; c < colSpan; c++ {
					grid.setAlign(col+c, cellAlign(td))
				}
			}
			for r := 0; r < rowSpan && rIdx+r < len(grid.rows); r++ {
				for c := 0; c < colSpan; c++ {
					grid.set(rIdx+r, col+c, cell)
				}
			}
			col += colSpan
		})
	})
	return grid, true
}

func (g *tableGrid) nextFreeCol(row, col int) int {
	for col < len(g.rows[row]) && g.rows[row][col] != "" {
		col++
	}
	return col
}

func (g *tableGrid) set(row, col int, value string) {
	for len(g.rows[row]) <= col {
		g.rows[row] = append(g.rows[row], "")
	}
	if value == "" {
		// keeps the slot occupied for nextFreeCol
		value = "\x00"
	}
	g.rows[row][col] = value
	if col+1 > g.width {
		g.width = col + 1
	}
}

func (g *tableGrid) setAlign(col int, align string) {
	for len(g.aligns) <= col {
		g.aligns = append(g.aligns, "")
	}
	g.aligns[col] = align
}

func (g *tableGrid) render() string {
	var b strings.Builder
	for r, row := range g.rows {
		b.WriteString("|")
		for c := 0; c < g.width; c++ {
			cell := ""
			if c < len(row) && row[c] != "\x00" {
				cell = row[c]
			}
			b.WriteString(" " + cell + " |")
		}
		b.WriteString("\n")
		if r == 0 {
			g.writeSeparator(&b)
		}
	}
	return b.String()
}

func (g *tableGrid) writeSeparator(b *strings.Builder) {
	b.WriteString("|")
	for c := 0; c < g.width; c++ {
		align := ""
		if c < len(g.aligns) {
			align = g.aligns[c]
		}
		switch align {
		case "center":
			b.WriteString(" :---: |")
		case "right":
			b.WriteString(" ---: |")
		case "left":
			b.WriteString(" :--- |")
		default:
			b.WriteString(" --- |")
		}
	}
	b.WriteString("\n")
}

func cellAlign(td *goquery.Selection) string {
	if align := strings.ToLower(strings.TrimSpace(td.AttrOr("align", ""))); align != "" {
		return align
	}
	style := strings.ToLower(strings.ReplaceAll(td.AttrOr("style", ""), " ", ""))
	for _, a := range []string{"center", "right", "left"} {
		if strings.Contains(style, "text-align:"+a) {
			return a
		}
	}
	return ""
}

func spanValue(td *goquery.Selection, attr string) int {
	if val, err := strconv.Atoi(td.AttrOr(attr, "1")); err == nil && val > 1 {
		return val
	}
	return 1
}

func cleanCell(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "|", "\\|")
	text = strings.ReplaceAll(text, "\n", " ")
	return text
}
