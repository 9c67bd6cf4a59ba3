// Package warehouse wraps the Snowflake connection used as the migration
// target and the dashboard's read-only query backend.
package warehouse

import (
	"context"
	"crypto/rsa"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	sf "github.com/snowflakedb/gosnowflake"
	"golang.org/x/crypto/ssh"

	"northflake/pkg/errors"
	"northflake/pkg/models"
)

// insertBatchSize caps the number of rows per INSERT statement. The whole
// dataset is under 3,000 rows, so two batches cover the largest table.
const insertBatchSize = 1000

// Service provides Snowflake database operations
type Service struct {
	db        *sql.DB
	config    models.Snowflake
	connected bool
	timeout   time.Duration
}

// NewService creates a new Snowflake service
func NewService(config models.Snowflake) *Service {
	return &Service{
		config:  config,
		timeout: 60 * time.Second,
	}
}

// NewServiceFromDB wraps an existing connection, used by tests.
func NewServiceFromDB(db *sql.DB) *Service {
	return &Service{db: db, connected: true, timeout: 60 * time.Second}
}

// Connect establishes a connection to Snowflake. Key-pair (JWT) auth is used
// when a private key path is configured, password auth otherwise.
func (s *Service) Connect() error {
	if s.connected {
		return nil
	}

	dsn, err := s.buildDSN()
	if err != nil {
		return err
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return errors.ConnectionError("target", "Failed to open Snowflake connection", err).
			WithContext("account", s.config.Account)
	}

	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(10 * time.Minute)

	ctx, cancel := s.getContext()
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()

		if strings.Contains(err.Error(), "authentication") {
			return errors.New(errors.ErrCodeAuthenticationFailed, "Snowflake authentication failed").
				WithContext("user", s.config.Username).
				WithSuggestions(
					"Verify your username and password or private key",
					"Check if your account identifier is correct",
				)
		}

		return errors.ConnectionError("target", "Failed to connect to Snowflake", err).
			WithContext("account", s.config.Account)
	}

	s.db = db
	s.connected = true
	return nil
}

func (s *Service) buildDSN() (string, error) {
	cfg := &sf.Config{
		Account:   s.config.Account,
		User:      s.config.Username,
		Role:      s.config.Role,
		Warehouse: s.config.Warehouse,
	}

	if s.config.PrivateKeyPath != "" {
		key, err := loadPrivateKey(s.config.PrivateKeyPath)
		if err != nil {
			return "", err
		}
		cfg.Authenticator = sf.AuthTypeJwt
		cfg.PrivateKey = key
	} else {
		cfg.Password = s.config.Password
	}

	dsn, err := sf.DSN(cfg)
	if err != nil {
		return "", errors.ConfigError("Failed to build Snowflake DSN", "target").
			WithContext("account", s.config.Account)
	}
	return dsn, nil
}

// loadPrivateKey reads an unencrypted PEM private key for key-pair auth.
func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	pemBytes, err := os.ReadFile(path) // #nosec G304 - path comes from the user's config
	if err != nil {
		return nil, errors.ConfigError("Failed to read private key file", "target.private_key_path").
			WithContext("path", path)
	}

	parsed, err := ssh.ParseRawPrivateKey(pemBytes)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "Failed to parse private key").
			WithContext("path", path).
			WithSuggestions("The key must be an unencrypted PEM-encoded RSA key")
	}

	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "Private key is not an RSA key").
			WithContext("path", path)
	}
	return key, nil
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
		return fmt.Errorf("not connected to warehouse")
	}
	return s.db.PingContext(ctx)
}

// EnsureDatabase creates the target database and schema if absent and makes
// them the session context for everything that follows.
func (s *Service) EnsureDatabase(ctx context.Context) error {
	if !s.connected {
		return fmt.Errorf("not connected to warehouse")
	}

	statements := []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", s.config.Database),
		fmt.Sprintf("USE DATABASE %s", s.config.Database),
		fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", s.config.Schema),
		fmt.Sprintf("USE SCHEMA %s", s.config.Schema),
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.SQLError("Failed to prepare target database", stmt, err).
				WithContext("database", s.config.Database)
		}
	}
	return nil
}

// UseDatabase switches the session to the configured database and schema
// without attempting to create them. The dashboard and verifier use this.
func (s *Service) UseDatabase(ctx context.Context) error {
	if !s.connected {
		return fmt.Errorf("not connected to warehouse")
	}

	statements := []string{
		fmt.Sprintf("USE DATABASE %s", s.config.Database),
		fmt.Sprintf("USE SCHEMA %s", s.config.Schema),
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.SQLError("Failed to switch to target database", stmt, err).
				WithContext("database", s.config.Database)
		}
	}
	return nil
}

// ExecuteSQL executes a single DDL or DML statement
func (s *Service) ExecuteSQL(ctx context.Context, stmt string) error {
	if !s.connected {
		return fmt.Errorf("not connected to warehouse")
	}

	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return errors.SQLError("Failed to execute statement", stmt, err)
	}
	return nil
}

// InsertRows loads rows into a target table with batched multi-row INSERTs.
// The insertSQL function receives the batch size and must return a statement
// with one placeholder group per row.
func (s *Service) InsertRows(ctx context.Context, table string, insertSQL func(n int) string, rows [][]interface{}) (int64, error) {
	if !s.connected {
		return 0, fmt.Errorf("not connected to warehouse")
	}

	var inserted int64
	for start := 0; start < len(rows); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]

		args := make([]interface{}, 0, len(batch)*len(batch[0]))
		for _, row := range batch {
			args = append(args, row...)
		}

		if _, err := s.db.ExecContext(ctx, insertSQL(len(batch)), args...); err != nil {
			return inserted, errors.Wrap(err, errors.ErrCodeTableLoad,
				fmt.Sprintf("Failed to load rows into %s", table)).
				WithContext("table", table).
				WithContext("batch_start", start)
		}
		inserted += int64(len(batch))
	}

	return inserted, nil
}

// RowCount returns the number of rows in a target table or view
func (s *Service) RowCount(ctx context.Context, object string) (int64, error) {
	if !s.connected {
		return 0, fmt.Errorf("not connected to warehouse")
	}

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", object)
	var count int64
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, errors.SQLError(fmt.Sprintf("Failed to count rows in %s", object), query, err)
	}
	return count, nil
}

// QueryRow runs a single-row query against the warehouse and scans the result.
func (s *Service) QueryRow(ctx context.Context, query string, args []interface{}, dest ...interface{}) error {
	if !s.connected {
		return fmt.Errorf("not connected to warehouse")
	}
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(dest...); err != nil {
		return errors.SQLError("Warehouse query failed", query, err)
	}
	return nil
}

// Query runs a multi-row read-only query against the warehouse.
func (s *Service) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	if !s.connected {
		return nil, fmt.Errorf("not connected to warehouse")
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.SQLError("Warehouse query failed", query, err)
	}
	return rows, nil
}

func (s *Service) getContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// ValidateConfig validates the Snowflake connection configuration
func ValidateConfig(config models.Snowflake) error {
	if config.Account == "" {
		return fmt.Errorf("account is required")
	}
	if config.Username == "" {
		return fmt.Errorf("username is required")
	}
	if config.Password == "" && config.PrivateKeyPath == "" {
		return fmt.Errorf("password or private key is required")
	}
	if config.Warehouse == "" {
		return fmt.Errorf("warehouse is required")
	}
	if config.Database == "" {
		return fmt.Errorf("database is required")
	}
	return nil
}
