package reporting

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/ai-reporter/internal/analysis"
	"github.com/KaramelBytes/ai-reporter/internal/table"
)

func TestMarkupRoundTrip(t *testing.T) {
	got := Markup("## Title\n**bold** and *italic*\n- item one\n- item two")
	assert.Equal(t, "Title<br/><b>bold</b> and <i>italic</i><br/>• item one<br/>• item two", got)
	assert.NotContains(t, got, "#")
	assert.NotContains(t, got, "\n")
}

func TestMarkupEdges(t *testing.T) {
	assert.Equal(t, "", Markup(""))
	assert.Equal(t, "a &amp; b &lt; c &gt; d", Markup("a & b < c > d"))
	assert.Equal(t, "a<br/><br/>b", Markup("a\n\n\n\nb"))
	assert.Equal(t, "x<br/><br/>y", Markup("x\n###\ny"))
	assert.Equal(t, "Heading<br/>text", Markup("# Heading\ntext"))
	// a dash without a following space is not a bullet
	assert.Equal(t, "-5 degrees", Markup("-5 degrees"))
}

func TestParseInline(t *testing.T) {
	runs := parseInline("A &amp; <b>B</b><br/><i>C &lt;1</i>")
	require.Len(t, runs, 4)
	assert.Equal(t, inlineRun{text: "A & "}, runs[0])
	assert.Equal(t, inlineRun{text: "B", bold: true}, runs[1])
	assert.Equal(t, inlineRun{br: true}, runs[2])
	assert.Equal(t, inlineRun{text: "C <1", italic: true}, runs[3])
}

func diagnosisTable(t *testing.T) *table.Table {
	t.Helper()
	tbl := table.New("age", "target")
	for i, v := range []int64{1, 0, 1, 1} {
		require.NoError(t, tbl.AppendRow(int64(50+i), v))
	}
	return tbl
}

func TestCountDiagnoses(t *testing.T) {
	counts, err := CountDiagnoses(diagnosisTable(t))
	require.NoError(t, err)
	assert.Equal(t, []DiagnosisCount{{"Heart Disease", 3}, {"No Disease", 1}}, counts)

	_, err = CountDiagnoses(table.New("age"))
	assert.True(t, errors.Is(err, ErrNoDiagnosisColumn))
}

func TestRenderChart(t *testing.T) {
	p := filepath.Join(t.TempDir(), "charts", "dist.png")
	got, err := RenderChart(diagnosisTable(t), p)
	require.NoError(t, err)
	assert.Equal(t, p, got)
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))

	_, err = RenderChart(table.New("x"), filepath.Join(t.TempDir(), "none.png"))
	assert.ErrorIs(t, err, ErrNoDiagnosisColumn)
}

func TestChartPathForRun(t *testing.T) {
	assert.Equal(t, DefaultChartPath, ChartPathForRun("", "0123456789", false))
	assert.Equal(t, "out/chart_01234567.png", ChartPathForRun("out/chart.png", "0123456789", true))
	assert.Equal(t, "chart.png", ChartPathForRun("chart.png", "", true))
}

func TestLayoutRules(t *testing.T) {
	assert.Equal(t, "P", Orientation(8))
	assert.Equal(t, "L", Orientation(9))
	assert.Equal(t, 10.0, TableFontSize(10))
	assert.Equal(t, 8.0, TableFontSize(11))
	assert.Equal(t, 8.0, TableFontSize(15))
	assert.Equal(t, 6.0, TableFontSize(16))
}

func TestSplitCellsMeasuresBoldHeader(t *testing.T) {
	pdf := fpdf.New("P", "pt", "Letter", "")
	d := &document{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	label := "Conversion Rate Percentage"
	pdf.SetFont("Helvetica", "", 10)
	// just wide enough for the regular face
	colW := pdf.GetStringWidth(label) + 4 + 2*pdf.GetCellMargin() + 0.5

	_, regular := d.splitCells([]string{label, "x"}, false, 10, colW)
	_, bold := d.splitCells([]string{label, "x"}, true, 10, colW)
	assert.Equal(t, 1, regular)
	assert.Equal(t, 2, bold)
}

func wideTable(t *testing.T, cols, rows int) *table.Table {
	t.Helper()
	names := make([]string, cols)
	for j := range names {
		names[j] = fmt.Sprintf("Metric %d", j+1)
	}
	tbl := table.New(names...)
	for i := 0; i < rows; i++ {
		row := make([]any, cols)
		for j := range row {
			switch j % 3 {
			case 0:
				row[j] = int64(i * j)
			case 1:
				row[j] = float64(i) / 3
			default:
				row[j] = strings.Repeat("long value ", j%4+1)
			}
		}
		require.NoError(t, tbl.AppendRow(row...))
	}
	return tbl
}

var sections = analysis.Sections{
	ExecutiveSummary: "Summary with **bold** & *italic*.",
	KeyFindings:      "- one\n- two",
	Recommendations:  "## Next\n- act",
}

func readPDF(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF-")), "not a PDF")
	return data
}

func TestBuildReportWithChart(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.ChartPath = filepath.Join(dir, "chart.png")
	opts.RunID = "run-123"
	out := filepath.Join(dir, "reports", "report.pdf")

	got, err := BuildReport(wideTable(t, 5, 60), sections, out, diagnosisTable(t), opts)
	require.NoError(t, err)
	assert.Equal(t, out, got)
	data := readPDF(t, out)
	assert.Contains(t, string(data), "/Subtype /Image")
	assert.FileExists(t, opts.ChartPath)
}

func TestBuildReportOmitsChartWithoutDiagnosis(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.ChartPath = filepath.Join(dir, "chart.png")
	out := filepath.Join(dir, "report.pdf")

	_, err := BuildReport(wideTable(t, 12, 20), analysis.Sections{}, out, wideTable(t, 3, 3), opts)
	require.NoError(t, err)
	data := readPDF(t, out)
	assert.NotContains(t, string(data), "/Subtype /Image")
	assert.NoFileExists(t, opts.ChartPath)
}

func TestBuildReportVeryWideAndEmpty(t *testing.T) {
	dir := t.TempDir()
	_, err := BuildReport(wideTable(t, 18, 5), sections, filepath.Join(dir, "wide.pdf"), nil, Options{ChartPath: filepath.Join(dir, "c.png")})
	require.NoError(t, err)
	readPDF(t, filepath.Join(dir, "wide.pdf"))

	_, err = BuildReport(table.New(), analysis.Sections{}, filepath.Join(dir, "empty.pdf"), nil, Options{})
	require.NoError(t, err)
	readPDF(t, filepath.Join(dir, "empty.pdf"))
}
