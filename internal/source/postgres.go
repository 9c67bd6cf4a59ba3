// Package source reads the Northwind tables from the PostgreSQL system of
// record. It is the read-only half of the replication pipeline.
package source

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"northflake/internal/schema"
	"northflake/pkg/errors"
	"northflake/pkg/models"
)

// Service provides read access to the source PostgreSQL database
type Service struct {
	db        *sql.DB
	config    models.Postgres
	connected bool
	timeout   time.Duration
}

// NewService creates a new source service
func NewService(config models.Postgres) *Service {
	return &Service{
		config:  config,
		timeout: 30 * time.Second,
	}
}

// NewServiceFromDB wraps an existing connection, used by tests and callers
// that manage the pool themselves.
func NewServiceFromDB(db *sql.DB) *Service {
	return &Service{db: db, connected: true, timeout: 30 * time.Second}
}

// Connect establishes a connection to PostgreSQL
func (s *Service) Connect() error {
	if s.connected {
		return nil
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		s.config.Host,
		s.config.Port,
		s.config.Database,
		s.config.Username,
		s.config.Password,
		s.config.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return errors.ConnectionError("source", "Failed to open PostgreSQL connection", err).
			WithContext("host", s.config.Host)
	}

	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(10 * time.Minute)

	ctx, cancel := s.getContext()
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return errors.ConnectionError("source", "Failed to connect to PostgreSQL", err).
			WithContext("host", s.config.Host).
			WithContext("database", s.config.Database)
	}

	s.db = db
	s.connected = true
	return nil
}

// Close closes the database connection
func (s *Service) Close() error {
	if !s.connected {
		return nil
	}
	s.connected = false
	return s.db.Close()
}

// Ping verifies the connection is alive
func (s *Service) Ping(ctx context.Context) error {
	if !s.connected {
		return fmt.Errorf("not connected to source database")
	}
	return s.db.PingContext(ctx)
}

// RowCount returns the number of rows in a source table
func (s *Service) RowCount(ctx context.Context, table schema.Table) (int64, error) {
	if !s.connected {
		return 0, fmt.Errorf("not connected to source database")
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, table.CountSQL()).Scan(&count); err != nil {
		return 0, errors.SQLError(fmt.Sprintf("Failed to count rows in %s", table.Name), table.CountSQL(), err)
	}
	return count, nil
}

// ReadTable reads every row of a source table in registry column order.
// The Northwind tables are small (under 3,000 rows total) so rows are
// materialized in memory.
func (s *Service) ReadTable(ctx context.Context, table schema.Table) ([][]interface{}, error) {
	if !s.connected {
		return nil, fmt.Errorf("not connected to source database")
	}

	query := table.SelectSQL()
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.SQLError(fmt.Sprintf("Failed to read table %s", table.Name), query, err)
	}
	defer rows.Close()

	var result [][]interface{}
	for rows.Next() {
		values := make([]interface{}, len(table.Columns))
		valuePtrs := make([]interface{}, len(values))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, errors.SQLError(fmt.Sprintf("Failed to scan row from %s", table.Name), query, err)
		}
		result = append(result, values)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.SQLError(fmt.Sprintf("Failed while reading %s", table.Name), query, err)
	}
	return result, nil
}

func (s *Service) getContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// QueryRow runs a single-row query against the source and scans the result.
func (s *Service) QueryRow(ctx context.Context, query string, dest ...interface{}) error {
	if !s.connected {
		return fmt.Errorf("not connected to source database")
	}
	if err := s.db.QueryRowContext(ctx, query).Scan(dest...); err != nil {
		return errors.SQLError("Source query failed", query, err)
	}
	return nil
}
