package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/KaramelBytes/ai-reporter/internal/logger"
	"github.com/KaramelBytes/ai-reporter/internal/table"
	"github.com/sirupsen/logrus"
)

// Driver names registered by the blank imports above.
const (
	DriverPgx      = "pgx"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// resolveDriver maps a connection string to a database/sql driver and DSN.
func resolveDriver(conn, forced string) (driver, dsn string, err error) {
	c := strings.TrimSpace(conn)
	lower := strings.ToLower(c)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		driver, dsn = DriverPgx, c
	case strings.Contains(lower, "host=") || strings.Contains(lower, "dbname="):
		driver, dsn = DriverPostgres, c
	case strings.HasPrefix(lower, "sqlite://"):
		driver, dsn = DriverSQLite, c[len("sqlite://"):]
	case strings.HasPrefix(lower, "sqlite:"):
		driver, dsn = DriverSQLite, c[len("sqlite:"):]
	case strings.HasPrefix(lower, "file:"), hasSuffixFold(lower, ".db", ".sqlite", ".sqlite3"):
		driver, dsn = DriverSQLite, c
	default:
		return "", "", fmt.Errorf("unsupported connection string %q", redact(c))
	}
	if forced != "" {
		switch forced {
		case DriverPgx, DriverPostgres, DriverSQLite:
			driver = forced
		default:
			return "", "", fmt.Errorf("unsupported sql driver %q", forced)
		}
	}
	return driver, dsn, nil
}

// LoadQuery runs a read query and materializes the full result set.
// Failures to open or reach the database yield *ConnectionError; query and
// scan failures yield *QueryError.
func LoadQuery(ctx context.Context, conn, query string, opt Options) (*table.Table, error) {
	driver, dsn, err := resolveDriver(conn, opt.SQLDriver)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, &ConnectionError{Driver: driver, Err: err}
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return nil, &ConnectionError{Driver: driver, Err: err}
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	t := table.New(names...)
	dest := make([]any, len(names))
	ptrs := make([]any, len(names))
	for i := range dest {
		ptrs[i] = &dest[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &QueryError{Query: query, Err: fmt.Errorf("scan row %d: %w", t.NumRows()+1, err)}
		}
		row := make([]any, len(dest))
		for i, v := range dest {
			row[i] = normalizeSQLValue(v)
		}
		if err := t.AppendRow(row...); err != nil {
			return nil, &QueryError{Query: query, Err: err}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	logger.Log.WithFields(logrus.Fields{
		"driver": driver,
		"rows":   t.NumRows(),
		"cols":   t.NumCols(),
	}).Info("loaded query result")
	return t, nil
}

func normalizeSQLValue(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int16:
		return int64(x)
	case float32:
		return float64(x)
	}
	return v
}

// redact hides credentials in URL-style connection strings.
func redact(conn string) string {
	at := strings.LastIndex(conn, "@")
	scheme := strings.Index(conn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return conn
	}
	return conn[:scheme+3] + "***" + conn[at:]
}
