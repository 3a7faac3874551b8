package sqlx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	// database drivers registered for sqlx.Connect
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"crewkit/core"
)

// Driver selects the SQL dialect.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
)

// Config holds SQL storage configuration.
type Config struct {
	Driver          Driver        `json:"driver"`
	DSN             string        `json:"dsn"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
}

// DefaultConfig returns sensible defaults for the given driver.
func DefaultConfig(driver Driver) Config {
	return Config{
		Driver:          driver,
		DSN:             "",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

// Store implements the engine.Storage interface over a SQL database.
// Schema:
//
//	crew_store(user_id, name, value, updated_at) with a (user_id, name)
//	primary key; one row per legacy storage key.
type Store struct {
	db     *sqlx.DB
	driver Driver
}

// New connects to the database and verifies the connection.
func New(cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, errors.New("sql storage requires a DSN")
	}
	db, err := sqlx.Connect(string(cfg.Driver), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return NewWithDB(db, cfg.Driver), nil
}

// NewWithDB creates a Store using an existing sqlx handle (useful for testing).
func NewWithDB(db *sqlx.DB, driver Driver) *Store {
	return &Store{db: db, driver: driver}
}

// Close closes the database handle.
func (s *Store) Close() error { return s.db.Close() }

// EnsureSchema creates the backing table when it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	ddl := `CREATE TABLE IF NOT EXISTS crew_store (
		user_id VARCHAR(128) NOT NULL,
		name VARCHAR(128) NOT NULL,
		value TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (user_id, name)
	)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// Get reads one legacy storage key.
func (s *Store) Get(ctx context.Context, user core.UserID, key string) (string, bool, error) {
	query := s.db.Rebind(`SELECT value FROM crew_store WHERE user_id = ? AND name = ?`)
	var value string
	err := s.db.GetContext(ctx, &value, query, user, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, true, nil
}

// Set upserts one legacy storage key.
func (s *Store) Set(ctx context.Context, user core.UserID, key string, value string) error {
	now := time.Now().UTC()
	var query string
	switch s.driver {
	case DriverMySQL:
		query = s.db.Rebind(`INSERT INTO crew_store (user_id, name, value, updated_at)
			VALUES (?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = VALUES(updated_at)`)
	default:
		query = s.db.Rebind(`INSERT INTO crew_store (user_id, name, value, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (user_id, name) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`)
	}
	if _, err := s.db.ExecContext(ctx, query, user, key, value, now); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}
