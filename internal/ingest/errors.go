package ingest

import "fmt"

// NotFoundError indicates the input file does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("file not found: %s", e.Path) }

// ParseError indicates the input could not be read as a table.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ConnectionError indicates the database could not be reached or the
// connection string is not understood.
type ConnectionError struct {
	Driver string
	Err    error
}

func (e *ConnectionError) Error() string {
	if e.Driver != "" {
		return fmt.Sprintf("connect (%s): %v", e.Driver, e.Err)
	}
	return fmt.Sprintf("connect: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError indicates the query failed or its rows could not be read.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	q := e.Query
	if len(q) > 120 {
		q = q[:117] + "..."
	}
	return fmt.Sprintf("query %q: %v", q, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }
