package ingest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/ai-reporter/internal/table"
	"github.com/xuri/excelize/v2"
)

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(filename string) bool {
	return hasSuffixFold(filename, ".xlsx", ".xlsm")
}

// Load reads the selected worksheet; the first non-empty row is the header.
func (xlsxLoader) Load(path string, opt Options) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	sheet := sheets[0]
	if opt.Sheet != "" {
		sheet = ""
		for _, s := range sheets {
			if strings.EqualFold(s, opt.Sheet) {
				sheet = s
				break
			}
		}
		if sheet == "" {
			return nil, fmt.Errorf("sheet %q not found; available sheets: %s", opt.Sheet, strings.Join(sheets, ", "))
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	start := 0
	for start < len(rows) && len(rows[start]) == 0 {
		start++
	}
	if start == len(rows) {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}
	header := rows[start]
	body := rows[start+1:]
	for i, rec := range body {
		if len(rec) > len(header) {
			return nil, fmt.Errorf("row %d has %d cells, header has %d", i+1, len(rec), len(header))
		}
	}
	return fromRecords(header, body), nil
}
