// Package processing cleans ingested tables and shapes them for reporting.
package processing

import (
	"time"

	"github.com/araddon/dateparse"

	"github.com/KaramelBytes/ai-reporter/internal/logger"
	"github.com/KaramelBytes/ai-reporter/internal/table"
)

// DateColumn is parsed into time values by Clean when present.
const DateColumn = "Date"

// Clean returns a copy of t with every missing value replaced by the zero
// value of its column's kind. Time columns and columns with no values at all
// are filled with int64(0). If a "Date" column exists it is parsed into time.Time; when any
// value fails to parse the column keeps its original values.
func Clean(t *table.Table) *table.Table {
	out := t.Clone()
	for _, c := range out.Columns {
		zero := zeroOf(c.Kind())
		for i, v := range c.Values {
			if v == nil {
				c.Values[i] = zero
			}
		}
	}
	if c, ok := out.Column(DateColumn); ok {
		if parsed, ok := parseDates(c.Values); ok {
			c.Values = parsed
		} else {
			logger.Log.WithField("column", DateColumn).Debug("date column left unparsed")
		}
	}
	return out
}

func zeroOf(k table.Kind) any {
	switch k {
	case table.KindFloat:
		return 0.0
	case table.KindString:
		return "0"
	case table.KindBool:
		return false
	default:
		return int64(0)
	}
}

func parseDates(vals []any) ([]any, bool) {
	out := make([]any, len(vals))
	for i, v := range vals {
		switch x := v.(type) {
		case time.Time:
			out[i] = x
		case string:
			ts, err := dateparse.ParseIn(x, time.UTC)
			if err != nil {
				return nil, false
			}
			out[i] = ts
		default:
			return nil, false
		}
	}
	return out, true
}
