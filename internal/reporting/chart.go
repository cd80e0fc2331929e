// Package reporting renders the diagnosis chart and assembles the PDF report.
package reporting

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/ai-reporter/internal/logger"
	"github.com/KaramelBytes/ai-reporter/internal/schema"
	"github.com/KaramelBytes/ai-reporter/internal/table"
	"github.com/KaramelBytes/ai-reporter/internal/utils"
)

// DefaultChartPath is overwritten by every run unless a per-run path is used.
const DefaultChartPath = "diagnosis_distribution.png"

// ErrNoDiagnosisColumn is returned when a table has neither a "Diagnosis"
// nor a "target" column.
var ErrNoDiagnosisColumn = errors.New("no Diagnosis or target column")

var sliceColors = []string{"4ECDC4", "FF6B6B", "45B7D1", "F7B731", "A55EEA", "26DE81"}

// ChartPathForRun returns base unchanged, or base with a run suffix when
// unique is set, so concurrent runs do not share one image file.
func ChartPathForRun(base, runID string, unique bool) string {
	if base == "" {
		base = DefaultChartPath
	}
	if !unique || runID == "" {
		return base
	}
	id := runID
	if len(id) > 8 {
		id = id[:8]
	}
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "_" + id + ext
}

// DiagnosisCount is one pie slice.
type DiagnosisCount struct {
	Label string
	Count int
}

// CountDiagnoses groups the diagnosis labels of t, sorted by label.
func CountDiagnoses(t *table.Table) ([]DiagnosisCount, error) {
	d, ok := schema.Diagnosis(t)
	if !ok {
		return nil, ErrNoDiagnosisColumn
	}
	counts := map[string]int{}
	for _, l := range d.Labels {
		counts[l]++
	}
	out := make([]DiagnosisCount, 0, len(counts))
	for l, n := range counts {
		out = append(out, DiagnosisCount{Label: l, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

// RenderChart draws a pie chart of diagnosis counts in t and writes it as a
// PNG to path.
func RenderChart(t *table.Table, path string) (string, error) {
	if path == "" {
		path = DefaultChartPath
	}
	counts, err := CountDiagnoses(t)
	if err != nil {
		return "", err
	}
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	if total == 0 {
		return "", errors.New("diagnosis column has no rows")
	}

	values := make([]chart.Value, len(counts))
	for i, c := range counts {
		pct := float64(c.Count) / float64(total) * 100
		values[i] = chart.Value{
			Value: float64(c.Count),
			Label: fmt.Sprintf("%s (%.1f%%)", c.Label, pct),
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex(sliceColors[i%len(sliceColors)]),
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 2,
				FontColor:   drawing.ColorFromHex("2C3E50"),
				FontSize:    12,
			},
		}
	}
	pie := chart.PieChart{
		Title:      fmt.Sprintf("Heart Disease Distribution in Dataset (Total Patients: %d)", total),
		TitleStyle: chart.Style{FontSize: 14},
		Width:      700,
		Height:     500,
		Background: chart.Style{FillColor: drawing.ColorWhite},
		Values:     values,
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return "", fmt.Errorf("render chart: %w", err)
	}
	if err := utils.EnsureParentDir(path); err != nil {
		return "", err
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return "", fmt.Errorf("write chart: %w", err)
	}
	logger.Log.WithFields(logrus.Fields{"path": path, "slices": len(values), "total": total}).Info("chart written")
	return path, nil
}
