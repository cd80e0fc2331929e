package ingest

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/KaramelBytes/ai-reporter/internal/logger"
	"github.com/KaramelBytes/ai-reporter/internal/table"
	"github.com/sirupsen/logrus"
)

// Options controls file and query ingestion.
type Options struct {
	// Delimiter for delimited text. If 0, chosen from the file extension.
	Delimiter rune
	// Sheet selects an XLSX worksheet by name; empty means the first sheet.
	Sheet string
	// SQLDriver forces a database/sql driver name ("pgx", "postgres", "sqlite").
	SQLDriver string
}

// Loader reads one file format into a table.
type Loader interface {
	CanLoad(filename string) bool
	Load(path string, opt Options) (*table.Table, error)
}

var registry []Loader

// Register adds a loader. Later registrations do not override earlier ones.
func Register(l Loader) {
	registry = append(registry, l)
}

func init() {
	Register(xlsxLoader{})
	Register(csvLoader{})
}

// LoadFile reads a tabular file. A missing path yields *NotFoundError; any
// read or parse failure yields *ParseError.
func LoadFile(path string, opt Options) (*table.Table, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, &ParseError{Path: path, Err: err}
	}
	var l Loader = csvLoader{}
	for _, cand := range registry {
		if cand.CanLoad(path) {
			l = cand
			break
		}
	}
	t, err := l.Load(path, opt)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			return nil, err
		}
		return nil, &ParseError{Path: path, Err: err}
	}
	logger.Log.WithFields(logrus.Fields{
		"path": path,
		"rows": t.NumRows(),
		"cols": t.NumCols(),
	}).Info("loaded table")
	return t, nil
}

func hasSuffixFold(name string, suffixes ...string) bool {
	lower := strings.ToLower(name)
	for _, s := range suffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}
