// Package render draws a laid-out Day outside the terminal: an SVG picture
// and a plain overlap report.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/reflow/truncate"

	"dayplan/internal/agenda"
)

// Gutter is the width left of the Day column for ruler labels.
const Gutter = 56

type Style struct {
	Width      int
	Height     int
	FontFamily string
	FontSize   int
	Period     string
	Conflict   string
	Ruler      string
	Text       string
	Background string
}

func DefaultStyle() Style {
	return Style{
		Width:      480,
		Height:     1440,
		FontFamily: "sans-serif",
		FontSize:   12,
		Period:     "#4a90d9",
		Conflict:   "#d9534f",
		Ruler:      "#cccccc",
		Text:       "#222222",
		Background: "#ffffff",
	}
}

// Column is where SVG expects the Day to be laid out for a style.
func (s Style) Column() agenda.FixedLayout {
	return agenda.FixedLayout{
		Left:   Gutter,
		Top:    0,
		Width:  float64(max(s.Width-Gutter, 1)),
		Height: float64(s.Height),
	}
}

// SVG writes the Day as painted: call Flush first so every Period's view is
// current.
func SVG(w io.Writer, d *agenda.Day, style Style) error {
	box := d.Box()
	var svg strings.Builder

	svg.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">
<rect width="100%%" height="100%%" fill="%s"/>
<defs>
<style>
.ruler-text { font-family: %s; font-size: %dpx; fill: %s; }
.title-text { font-family: %s; font-size: %dpx; font-weight: bold; fill: %s; }
.range-text { font-family: %s; font-size: %dpx; fill: %s; }
</style>
</defs>
`, style.Width, style.Height, style.Background,
		style.FontFamily, style.FontSize-2, style.Text,
		style.FontFamily, style.FontSize, style.Text,
		style.FontFamily, style.FontSize-2, style.Text))

	for _, tl := range d.Timelines() {
		for _, mk := range tl.Marks() {
			y := box.Top + mk.Offset
			svg.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1"/>
`, box.Left, y, box.Right(), y, style.Ruler))
			svg.WriteString(fmt.Sprintf(`<text class="ruler-text" x="%d" y="%.1f">%s</text>
`, 4, y+float64(style.FontSize)/2, mk.Label))
		}
	}

	maxChars := uint(max((box.Width-8)/(float64(style.FontSize)*0.6), 1))
	for _, p := range d.Periods() {
		v := p.View()
		fill := style.Period
		if v.Conflict {
			fill = style.Conflict
		}
		y := box.Top + v.Top
		svg.WriteString(fmt.Sprintf(`<g id="period-%s">
<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="3" fill="%s" fill-opacity="0.75"/>
`, p.ID(), box.Left+2, y, box.Width-4, v.Height, fill))
		if v.Height >= float64(style.FontSize)+2 {
			title := truncate.StringWithTail(v.Title, maxChars, "…")
			svg.WriteString(fmt.Sprintf(`<text class="title-text" x="%.1f" y="%.1f">%s</text>
`, box.Left+6, y+float64(style.FontSize)+1, escapeXML(title)))
		}
		if v.Height >= 2*float64(style.FontSize)+4 {
			svg.WriteString(fmt.Sprintf(`<text class="range-text" x="%.1f" y="%.1f">%s (%s)</text>
`, box.Left+6, y+2*float64(style.FontSize)+3, v.Range, v.Duration))
		}
		svg.WriteString("</g>\n")
	}

	svg.WriteString("</svg>\n")
	_, err := io.WriteString(w, svg.String())
	return err
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
