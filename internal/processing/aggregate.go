package processing

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/KaramelBytes/ai-reporter/internal/logger"
	"github.com/KaramelBytes/ai-reporter/internal/schema"
	"github.com/KaramelBytes/ai-reporter/internal/table"
)

// SampleRows bounds the medical and generic shapes.
const SampleRows = 20

// Shape identifies which aggregation Aggregate applied.
type Shape int

const (
	ShapeGeneric Shape = iota
	ShapeAdTech
	ShapeMedical
)

func (s Shape) String() string {
	switch s {
	case ShapeAdTech:
		return "adtech"
	case ShapeMedical:
		return "medical"
	default:
		return "generic"
	}
}

// Aggregate shapes a cleaned table for the report. Advertising metrics are
// grouped per campaign with CTR, CPM and CPA added; the heart-disease layout is
// relabeled and sampled; anything else is sampled unchanged.
func Aggregate(t *table.Table) (*table.Table, Shape) {
	var (
		out   *table.Table
		shape Shape
	)
	switch {
	case schema.IsAdTech(t):
		out, shape = aggregateCampaigns(t), ShapeAdTech
	case schema.IsMedical(t):
		out, shape = relabelMedical(t.Head(SampleRows)), ShapeMedical
	default:
		out, shape = t.Head(SampleRows), ShapeGeneric
	}
	logger.Log.WithFields(logrus.Fields{
		"shape": shape.String(),
		"rows":  out.NumRows(),
		"cols":  out.NumCols(),
	}).Info("aggregated table")
	return out, shape
}

var metricColumns = []string{"Impressions", "Clicks", "Spend", "Conversions"}

type metricSum struct {
	ints   []int64
	floats []float64
}

func aggregateCampaigns(t *table.Table) *table.Table {
	ids, _ := t.Column("Campaign_ID")

	// group keys in first-appearance order
	index := map[string]int{}
	var keys []any
	groupOf := make([]int, len(ids.Values))
	for i, v := range ids.Values {
		k := table.FormatValue(v)
		g, ok := index[k]
		if !ok {
			g = len(keys)
			index[k] = g
			keys = append(keys, v)
		}
		groupOf[i] = g
	}

	out := table.New("Campaign_ID")
	out.Columns[0].Values = keys

	totals := make(map[string][]float64, len(metricColumns))
	for _, name := range metricColumns {
		c, _ := t.Column(name)
		sums := metricSum{ints: make([]int64, len(keys)), floats: make([]float64, len(keys))}
		integer := allInts(c.Values)
		for i, v := range c.Values {
			g := groupOf[i]
			if integer {
				n, _ := table.ToInt(v)
				sums.ints[g] += n
			}
			f, _ := table.ToFloat(v)
			sums.floats[g] += f
		}
		vals := make([]any, len(keys))
		for g := range keys {
			if integer {
				vals[g] = sums.ints[g]
			} else {
				vals[g] = sums.floats[g]
			}
		}
		_ = out.AddColumn(name, vals)
		totals[name] = sums.floats
	}

	ctr := make([]any, len(keys))
	cpm := make([]any, len(keys))
	cpa := make([]any, len(keys))
	for g := range keys {
		imp := totals["Impressions"][g]
		ctr[g] = ratio(totals["Clicks"][g], imp, 100)
		cpm[g] = ratio(totals["Spend"][g], imp, 1000)
		cpa[g] = ratio(totals["Spend"][g], totals["Conversions"][g], 1)
	}
	_ = out.AddColumn("CTR", ctr)
	_ = out.AddColumn("CPM", cpm)
	_ = out.AddColumn("CPA", cpa)
	return out
}

// allInts reports whether every non-nil value is an integer. SQL results can
// mix int64 and float64 in one column.
func allInts(vals []any) bool {
	for _, v := range vals {
		if v != nil && table.KindOf(v) != table.KindInt {
			return false
		}
	}
	return true
}

// ratio returns num/den*scale, or 0 when the result is not finite.
func ratio(num, den, scale float64) float64 {
	r := num / den * scale
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

func relabelMedical(t *table.Table) *table.Table {
	for _, c := range t.Columns {
		canon := schema.Canonical(c.Name)
		if canon == "" {
			continue
		}
		if recode, ok := schema.Recoders[canon]; ok {
			for i, v := range c.Values {
				c.Values[i] = recode(v)
			}
		}
		c.Name = schema.DisplayNames[canon]
	}
	return t
}
