package reporting

import (
	"html"
	"strings"

	"github.com/go-pdf/fpdf"
)

type inlineRun struct {
	text   string
	bold   bool
	italic bool
	br     bool
}

// parseInline splits Markup output into styled runs. Only <b>, <i> and <br/>
// are tags; everything else is text with entities still escaped.
func parseInline(s string) []inlineRun {
	var (
		runs         []inlineRun
		bold, italic bool
		text         strings.Builder
	)
	flush := func() {
		if text.Len() > 0 {
			runs = append(runs, inlineRun{text: html.UnescapeString(text.String()), bold: bold, italic: italic})
			text.Reset()
		}
	}
	for len(s) > 0 {
		tag := ""
		for _, t := range []string{"<b>", "</b>", "<i>", "</i>", "<br/>"} {
			if strings.HasPrefix(s, t) {
				tag = t
				break
			}
		}
		if tag == "" {
			text.WriteByte(s[0])
			s = s[1:]
			continue
		}
		flush()
		switch tag {
		case "<b>":
			bold = true
		case "</b>":
			bold = false
		case "<i>":
			italic = true
		case "</i>":
			italic = false
		case "<br/>":
			runs = append(runs, inlineRun{br: true})
		}
		s = s[len(tag):]
	}
	flush()
	return runs
}

// writeInline flows styled runs at the current position.
func writeInline(pdf *fpdf.Fpdf, tr func(string) string, family string, size, leading float64, markup string) {
	for _, r := range parseInline(markup) {
		if r.br {
			pdf.Ln(leading)
			continue
		}
		style := ""
		if r.bold {
			style += "B"
		}
		if r.italic {
			style += "I"
		}
		pdf.SetFont(family, style, size)
		pdf.Write(leading, tr(r.text))
	}
	pdf.SetFont(family, "", size)
	pdf.Ln(leading)
}
