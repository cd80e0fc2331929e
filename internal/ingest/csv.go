package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/KaramelBytes/ai-reporter/internal/table"
)

type csvLoader struct{}

func (csvLoader) CanLoad(filename string) bool {
	return hasSuffixFold(filename, ".csv", ".tsv", ".txt")
}

func (csvLoader) Load(path string, opt Options) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Path: path, Err: errors.New("empty file: no header row")}
		}
		return nil, &ParseError{Path: path, Err: fmt.Errorf("read header: %w", err)}
	}
	// strip a UTF-8 BOM from the first header cell
	if len(header) > 0 {
		header[0] = trimBOM(header[0])
	}

	var rows [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &ParseError{Path: path, Err: fmt.Errorf("read row %d: %w", len(rows)+1, err)}
		}
		if len(rec) > len(header) {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("row %d has %d fields, header has %d", len(rows)+1, len(rec), len(header))}
		}
		rows = append(rows, rec)
	}
	return fromRecords(header, rows), nil
}

// sniffDelimiter picks the delimiter from the file extension.
func sniffDelimiter(path string) rune {
	if hasSuffixFold(path, ".tsv") {
		return '\t'
	}
	return ','
}

func trimBOM(s string) string {
	const bom = "\ufeff"
	if len(s) >= len(bom) && s[:len(bom)] == bom {
		return s[len(bom):]
	}
	return s
}
