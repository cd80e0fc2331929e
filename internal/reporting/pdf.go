package reporting

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-pdf/fpdf"
	"github.com/sirupsen/logrus"

	"github.com/KaramelBytes/ai-reporter/internal/analysis"
	"github.com/KaramelBytes/ai-reporter/internal/logger"
	"github.com/KaramelBytes/ai-reporter/internal/table"
	"github.com/KaramelBytes/ai-reporter/internal/utils"
)

// Page geometry in points.
const (
	marginSide   = 36.0
	marginTop    = 72.0
	marginBottom = 36.0

	landscapeAbove = 8

	chartWidth  = 360.0 // 5in
	chartHeight = 270.0 // 3.75in
)

// Options controls the fixed text and artifacts of a report.
type Options struct {
	Title     string
	Subtitle  string
	Footer    string
	ChartPath string
	// RunID is stored in the document keywords.
	RunID string
}

// DefaultOptions returns the standard report captions.
func DefaultOptions() Options {
	return Options{
		Title:     "Heart Disease Analysis Report",
		Subtitle:  "Automated Insights & Performance Metrics",
		Footer:    "AI Reporter",
		ChartPath: DefaultChartPath,
	}
}

type rgb struct{ r, g, b int }

var (
	colorTitle    = rgb{0x2C, 0x3E, 0x50}
	colorHeading  = rgb{0x34, 0x49, 0x5E}
	colorRule     = rgb{0xBD, 0xC3, 0xC7}
	colorGrid     = rgb{128, 128, 128}
	colorHeaderBg = rgb{211, 211, 211}
	colorStripe   = rgb{245, 245, 245}
	colorWhite    = rgb{255, 255, 255}
	colorBlack    = rgb{0, 0, 0}
	colorFootnote = rgb{128, 128, 128}
)

var narrativeSections = []struct {
	title string
	body  func(analysis.Sections) string
}{
	{"Executive Summary", func(s analysis.Sections) string { return s.ExecutiveSummary }},
	{"Key Findings", func(s analysis.Sections) string { return s.KeyFindings }},
	{"Statistical Overview", func(s analysis.Sections) string { return s.StatisticalOverview }},
	{"Risk Factors Identified", func(s analysis.Sections) string { return s.RiskFactors }},
	{"Clinical Recommendations", func(s analysis.Sections) string { return s.Recommendations }},
}

// TableFontSize shrinks the table font for wide tables.
func TableFontSize(cols int) float64 {
	switch {
	case cols > 15:
		return 6
	case cols > 10:
		return 8
	}
	return 10
}

// Orientation returns "L" for tables wider than eight columns, else "P".
func Orientation(cols int) string {
	if cols > landscapeAbove {
		return "L"
	}
	return "P"
}

type document struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (d *document) color(c rgb) { d.pdf.SetTextColor(c.r, c.g, c.b) }

func (d *document) usableWidth() float64 {
	w, _ := d.pdf.GetPageSize()
	return w - 2*marginSide
}

func (d *document) heading(text string) {
	pdf := d.pdf
	pdf.Ln(20)
	_, pageH := pdf.GetPageSize()
	if pdf.GetY()+60 > pageH-marginBottom {
		pdf.AddPage()
	}
	pdf.SetFont("Helvetica", "B", 18)
	d.color(colorHeading)
	pdf.CellFormat(0, 22, d.tr(text), "", 1, "L", false, 0, "")
	y := pdf.GetY() + 3
	pdf.SetDrawColor(colorRule.r, colorRule.g, colorRule.b)
	pdf.SetLineWidth(1)
	pdf.Line(marginSide, y, marginSide+d.usableWidth(), y)
	pdf.Ln(12)
	d.color(colorBlack)
}

func (d *document) body(markup string) {
	d.color(colorBlack)
	writeInline(d.pdf, d.tr, "Helvetica", 11, 16, markup)
	d.pdf.Ln(10)
}

// chart embeds the PNG at path; it reports false when the image cannot be used.
func (d *document) chart(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Log.WithError(err).Warn("chart image unreadable; omitting chart")
		return false
	}
	pdf := d.pdf
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(path, opts, bytes.NewReader(data))
	if pdf.Err() {
		logger.Log.WithError(pdf.Error()).Warn("chart image rejected; omitting chart")
		pdf.ClearError()
		return false
	}
	d.heading("Heart Disease Distribution")
	_, pageH := pdf.GetPageSize()
	if pdf.GetY()+chartHeight > pageH-marginBottom {
		pdf.AddPage()
	}
	x := marginSide + (d.usableWidth()-chartWidth)/2
	y := pdf.GetY()
	pdf.ImageOptions(path, x, y, chartWidth, chartHeight, false, opts, 0, "")
	pdf.SetY(y + chartHeight + 12)
	return true
}

// splitCells wraps each cell to colW in the font the row is drawn with and
// returns the lines with the tallest cell's line count.
func (d *document) splitCells(cells []string, bold bool, size, colW float64) ([][][]byte, int) {
	style := ""
	if bold {
		style = "B"
	}
	d.pdf.SetFont("Helvetica", style, size)
	lines := make([][][]byte, len(cells))
	maxLines := 1
	for j, c := range cells {
		lines[j] = d.pdf.SplitLines([]byte(c), colW-4)
		if len(lines[j]) > maxLines {
			maxLines = len(lines[j])
		}
	}
	return lines, maxLines
}

func (d *document) table(t *table.Table) {
	pdf := d.pdf
	cols := t.NumCols()
	if cols == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, 14, "No columns to display.", "", 1, "L", false, 0, "")
		return
	}
	colW := d.usableWidth() / float64(cols)
	size := TableFontSize(cols)
	lineH := size * 1.3
	_, pageH := pdf.GetPageSize()

	header := make([]string, cols)
	for j, name := range t.Names() {
		header[j] = d.tr(name)
	}
	pdf.SetLineWidth(0.5)
	pdf.SetDrawColor(colorGrid.r, colorGrid.g, colorGrid.b)

	row := func(cells []string, bold bool, bg rgb, pad float64) {
		lines, maxLines := d.splitCells(cells, bold, size, colW)
		h := float64(maxLines)*lineH + 2*pad
		x0, y := marginSide, pdf.GetY()
		pdf.SetFillColor(bg.r, bg.g, bg.b)
		d.color(colorBlack)
		for j := range cells {
			x := x0 + float64(j)*colW
			pdf.Rect(x, y, colW, h, "FD")
			ty := y + (h-float64(len(lines[j]))*lineH)/2
			for k, ln := range lines[j] {
				pdf.SetXY(x, ty+float64(k)*lineH)
				pdf.CellFormat(colW, lineH, string(ln), "", 0, "C", false, 0, "")
			}
		}
		pdf.SetXY(x0, y+h)
	}
	fits := func(cells []string, bold bool, pad float64) bool {
		_, maxLines := d.splitCells(cells, bold, size, colW)
		return pdf.GetY()+float64(maxLines)*lineH+2*pad <= pageH-marginBottom
	}

	if !fits(header, true, 8) {
		pdf.AddPage()
	}
	row(header, true, colorHeaderBg, 8)
	for i := 0; i < t.NumRows(); i++ {
		cells := make([]string, cols)
		for j, v := range t.Row(i) {
			cells[j] = d.tr(table.FormatCell(v))
		}
		if !fits(cells, false, 3) {
			pdf.AddPage()
			row(header, true, colorHeaderBg, 8)
		}
		bg := colorStripe
		if i%2 == 1 {
			bg = colorWhite
		}
		row(cells, false, bg, 3)
	}
}

// BuildReport lays out the narrative, the optional diagnosis chart built from
// full, and the aggregated table, then writes the PDF to outputPath. Chart
// failures are logged and the chart is left out.
func BuildReport(agg *table.Table, sections analysis.Sections, outputPath string, full *table.Table, opts Options) (string, error) {
	def := DefaultOptions()
	if opts.Title == "" {
		opts.Title = def.Title
	}
	if opts.Footer == "" {
		opts.Footer = def.Footer
	}
	if opts.ChartPath == "" {
		opts.ChartPath = def.ChartPath
	}

	pdf := fpdf.New(Orientation(agg.NumCols()), "pt", "Letter", "")
	pdf.SetMargins(marginSide, marginTop, marginSide)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetTitle(opts.Title, true)
	pdf.SetCreator("AI Reporter", true)
	if opts.RunID != "" {
		pdf.SetKeywords("run:"+opts.RunID, true)
	}
	d := &document{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.AddPage()

	// title block
	pdf.SetFont("Helvetica", "B", 24)
	d.color(colorTitle)
	pdf.CellFormat(0, 30, d.tr(opts.Title), "", 1, "C", false, 0, "")
	if opts.Subtitle != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "", 10)
		d.color(colorBlack)
		pdf.CellFormat(0, 14, d.tr(opts.Subtitle), "", 1, "L", false, 0, "")
	}
	pdf.Ln(10)

	for _, s := range narrativeSections {
		text := s.body(sections)
		if text == "" {
			continue
		}
		d.heading(s.title)
		d.body(Markup(text))
	}

	chartIncluded := false
	if full != nil {
		if path, err := RenderChart(full, opts.ChartPath); err != nil {
			logger.Log.WithError(err).Warn("could not generate chart")
		} else {
			chartIncluded = d.chart(path)
		}
	}

	d.heading("Key Data Metrics (Top 20 Samples)")
	d.table(agg)

	pdf.Ln(30)
	pdf.SetFont("Helvetica", "", 8)
	d.color(colorFootnote)
	pdf.CellFormat(0, 10, d.tr(opts.Footer), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return "", fmt.Errorf("render pdf: %w", err)
	}
	if err := utils.EnsureParentDir(outputPath); err != nil {
		return "", err
	}
	if err := utils.SafeWriteFile(outputPath, buf.Bytes()); err != nil {
		return "", fmt.Errorf("write pdf: %w", err)
	}
	logger.Log.WithFields(logrus.Fields{
		"path":  outputPath,
		"pages": pdf.PageNo(),
		"chart": chartIncluded,
		"bytes": buf.Len(),
	}).Info("report written")
	return outputPath, nil
}
