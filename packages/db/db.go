// Package db provides the SQLite source for scenario values: a step can
// take its actual value from the first column of the first row of a query.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

// QueryResult represents the result of a database query
type QueryResult struct {
	Columns []string
	Rows    []map[string]any
	// Values holds the rows in column order.
	Values [][]any
}

// Client represents a database client
type Client struct {
	db           *sql.DB
	driverName   string
	dataSource   string
	queryTimeout time.Duration
}

// NewClient opens and pings a database from a connection string.
func NewClient(ctx context.Context, connectionString string) (*Client, error) {
	driver, dsn, err := parseConnectionString(connectionString)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// An in-memory database exists per connection; keep a single one.
	if dsn == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Client{
		db:           db,
		driverName:   driver,
		dataSource:   dsn,
		queryTimeout: 30 * time.Second,
	}, nil
}

// Close closes the database connection
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Exec runs statements that return no rows, such as fixture seed SQL.
func (c *Client) Exec(ctx context.Context, statements string) error {
	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	if _, err := c.db.ExecContext(ctx, statements); err != nil {
		return fmt.Errorf("exec failed: %w", err)
	}
	return nil
}

// Query executes a SQL query and returns the result
func (c *Client) Query(ctx context.Context, query string) (*QueryResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	result := &QueryResult{
		Columns: columns,
		Rows:    make([]map[string]any, 0),
	}

	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			// TEXT columns may scan as []byte
			if b, ok := values[i].([]byte); ok {
				values[i] = string(b)
			}
			row[col] = values[i]
		}
		result.Rows = append(result.Rows, row)
		result.Values = append(result.Values, values)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return result, nil
}

// QueryValue returns the first column of the first row, or nil when the
// query returns no rows.
func (c *Client) QueryValue(ctx context.Context, query string) (any, error) {
	result, err := c.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(result.Values) == 0 || len(result.Values[0]) == 0 {
		return nil, nil
	}
	return result.Values[0][0], nil
}

// ResolvePath makes a relative sqlite file path in connStr relative to
// baseDir. Other connection strings are returned unchanged.
func ResolvePath(connStr, baseDir string) string {
	for _, prefix := range []string{"sqlite://", "sqlite:"} {
		if !strings.HasPrefix(connStr, prefix) {
			continue
		}
		path := strings.TrimPrefix(connStr, prefix)
		if path == ":memory:" || filepath.IsAbs(path) || baseDir == "" {
			return connStr
		}
		return prefix + filepath.Join(baseDir, path)
	}
	return connStr
}

// parseConnectionString parses a connection string into driver and DSN.
// Supported formats:
// - sqlite://path/to/db.sqlite
// - sqlite:./test.db
// - sqlite::memory:
func parseConnectionString(connStr string) (driver string, dsn string, err error) {
	connStr = strings.TrimSpace(connStr)

	if strings.HasPrefix(connStr, "sqlite://") {
		return "sqlite3", strings.TrimPrefix(connStr, "sqlite://"), nil
	}
	if strings.HasPrefix(connStr, "sqlite:") {
		return "sqlite3", strings.TrimPrefix(connStr, "sqlite:"), nil
	}

	u, err := url.Parse(connStr)
	if err != nil {
		return "", "", fmt.Errorf("invalid connection string: %w", err)
	}
	if u.Scheme == "" {
		return "", "", fmt.Errorf("invalid connection string %q: missing scheme", connStr)
	}
	return "", "", fmt.Errorf("unsupported database scheme: %s (only sqlite is available)", u.Scheme)
}
