package ingest

import (
	"strconv"
	"strings"

	"github.com/KaramelBytes/ai-reporter/internal/table"
)

// fromRecords builds a typed table from string cells. Each column becomes
// int64 when every non-empty cell parses as an integer, float64 when every
// non-empty cell parses as a float, and string otherwise. Empty cells are nil.
// Rows shorter than the header are padded with nil.
func fromRecords(header []string, rows [][]string) *table.Table {
	t := table.New(header...)
	for j, col := range t.Columns {
		cells := make([]string, len(rows))
		for i, rec := range rows {
			if j < len(rec) {
				cells[i] = strings.TrimSpace(rec[j])
			}
		}
		col.Values = typedColumn(cells)
	}
	return t
}

func typedColumn(cells []string) []any {
	allInt, allFloat := true, true
	for _, c := range cells {
		if c == "" {
			continue
		}
		if allInt {
			if _, err := strconv.ParseInt(c, 10, 64); err != nil {
				allInt = false
			}
		}
		if allFloat {
			if _, err := strconv.ParseFloat(c, 64); err != nil {
				allFloat = false
			}
		}
		if !allInt && !allFloat {
			break
		}
	}
	out := make([]any, len(cells))
	for i, c := range cells {
		if c == "" {
			continue
		}
		switch {
		case allInt:
			n, _ := strconv.ParseInt(c, 10, 64)
			out[i] = n
		case allFloat:
			f, _ := strconv.ParseFloat(c, 64)
			out[i] = f
		default:
			out[i] = c
		}
	}
	return out
}
