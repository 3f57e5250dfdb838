package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Options configures a DatabaseManager.
type Options struct {
	Dialect Dialect
	// DSN is a lib/pq connection string for postgres or a file path
	// (or ":memory:") for sqlite.
	DSN            string
	HealthInterval time.Duration
	MaxOpenConns   int
	MaxIdleConns   int
}

// DatabaseManager handles all database operations
type DatabaseManager struct {
	db            *sql.DB
	dialect       Dialect
	healthChecker *HealthChecker
	logger        *log.Logger
}

// NewDatabaseManager opens the database described by opts and starts
// health checking. Migrations are applied by Init.
func NewDatabaseManager(opts Options) (*DatabaseManager, error) {
	db, err := connectDatabase(opts)
	if err != nil {
		return nil, err
	}

	interval := opts.HealthInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	dm := &DatabaseManager{
		db:            db,
		dialect:       opts.Dialect,
		healthChecker: NewHealthChecker(db, interval),
		logger:        log.Default(),
	}

	// Start health checking
	dm.healthChecker.Start()

	return dm, nil
}

// GetDB returns the underlying database connection
func (dm *DatabaseManager) GetDB() *sql.DB {
	return dm.db
}

// Dialect returns the SQL dialect of the connection.
func (dm *DatabaseManager) Dialect() Dialect {
	return dm.dialect
}

// Close closes the database connection and stops health checking
func (dm *DatabaseManager) Close() error {
	if dm.healthChecker != nil {
		dm.healthChecker.Stop()
	}
	if dm.db != nil {
		return dm.db.Close()
	}
	return nil
}

// QueryWithHealthCheck executes a query with connection health verification
func (dm *DatabaseManager) QueryWithHealthCheck(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	if err := dm.healthChecker.EnsureConnection(ctx); err != nil {
		return nil, err
	}

	return dm.db.QueryContext(ctx, dm.dialect.Rebind(query), args...)
}

// QueryRowWithHealthCheck executes a query that returns a single row with health check
func (dm *DatabaseManager) QueryRowWithHealthCheck(ctx context.Context, query string, args ...interface{}) *sql.Row {
	// sql.Row cannot carry an error; Scan reports the driver failure.
	if err := dm.healthChecker.EnsureConnection(ctx); err != nil {
		dm.logger.Printf("❌ Query on unhealthy connection: %v", err)
	}

	return dm.db.QueryRowContext(ctx, dm.dialect.Rebind(query), args...)
}

// ExecWithHealthCheck executes a statement with connection health verification
func (dm *DatabaseManager) ExecWithHealthCheck(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	if err := dm.healthChecker.EnsureConnection(ctx); err != nil {
		return nil, err
	}

	return dm.db.ExecContext(ctx, dm.dialect.Rebind(query), args...)
}

// IsConnectionHealthy returns the current health status
func (dm *DatabaseManager) IsConnectionHealthy() bool {
	return dm.healthChecker.IsHealthy()
}

// Init initializes the database with migrations
func (dm *DatabaseManager) Init() error {
	dm.logger.Println("Running database migrations...")

	runner, err := NewMigrationsRunner(dm.db, dm.dialect)
	if err != nil {
		return fmt.Errorf("failed to create migration runner: %w", err)
	}

	if err := runner.Run(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	dm.logger.Println("✓ Database initialization completed successfully")
	return nil
}

// connectDatabase establishes a connection to the database
func connectDatabase(opts Options) (*sql.DB, error) {
	dsn := strings.TrimSpace(opts.DSN)
	if dsn == "" {
		return nil, fmt.Errorf("database dsn is required")
	}

	switch opts.Dialect {
	case DialectPostgres:
	case DialectSQLite:
		dsn = sqliteDSN(dsn)
	default:
		return nil, fmt.Errorf("unsupported database dialect: %q", opts.Dialect)
	}

	db, err := sql.Open(opts.Dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	if opts.Dialect == DialectSQLite {
		// one writer; also keeps a ":memory:" database on a single connection
		db.SetMaxOpenConns(1)
	} else {
		maxOpen, maxIdle := opts.MaxOpenConns, opts.MaxIdleConns
		if maxOpen <= 0 {
			maxOpen = 25
		}
		if maxIdle <= 0 {
			maxIdle = 5
		}
		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(maxIdle)
	}

	return db, nil
}

// sqliteDSN appends the pragmas every sqlite connection needs.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// PostgresDSN builds a lib/pq keyword/value connection string.
func PostgresDSN(host, port, user, password, dbName, sslmode string) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbName, sslmode,
	)
}
