package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// DB holds the database connection
var DB *sql.DB

// Driver is the database/sql driver name DB was opened with ("pgx" or "sqlite")
var Driver string

// InitDB initializes the database connection from environment variables.
// DB_DRIVER=sqlite opens DB_PATH with the pure-Go sqlite driver; anything else uses Postgres.
func InitDB() error {
	if os.Getenv("DB_DRIVER") == "sqlite" {
		path := os.Getenv("DB_PATH")
		if path == "" {
			path = "storefront.db"
		}
		return Open("sqlite", path)
	}

	// Get database connection string from environment
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		// Build connection string from individual variables
		host := os.Getenv("DB_HOST")
		port := os.Getenv("DB_PORT")
		user := os.Getenv("DB_USER")
		password := os.Getenv("DB_PASSWORD")
		dbname := os.Getenv("DB_NAME")
		sslmode := os.Getenv("DB_SSLMODE")

		if host == "" || user == "" || dbname == "" {
			return fmt.Errorf("database connection variables not set. Set DATABASE_URL or DB_HOST, DB_USER, DB_NAME")
		}

		if port == "" {
			port = "5432"
		}
		if sslmode == "" {
			sslmode = "disable"
		}

		connStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			host, port, user, password, dbname, sslmode)
	}

	return Open("pgx", connStr)
}

// Open connects the package-level DB with the given driver and DSN and pings it
func Open(driver, dsn string) error {
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if driver == "sqlite" {
		// sqlite allows a single writer
		conn.SetMaxOpenConns(1)
	}

	if err := conn.PingContext(context.Background()); err != nil {
		conn.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	DB = conn
	Driver = driver
	log.Printf("✓ Database connection established successfully (driver=%s)", driver)
	return nil
}

// CloseDB closes the database connection
func CloseDB() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// schema is written in the subset of SQL both Postgres and sqlite accept
var schema = []string{
	`CREATE TABLE IF NOT EXISTS catalog_items (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT 'service',
		price BIGINT NOT NULL DEFAULT 0,
		original_price BIGINT NOT NULL DEFAULT 0,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		sort_order INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS selection_rules (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		item_id TEXT NOT NULL DEFAULT '',
		related_ids TEXT NOT NULL DEFAULT '[]',
		active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS studio_settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS leads (
		id TEXT PRIMARY KEY,
		share_token TEXT NOT NULL UNIQUE,
		customer TEXT NOT NULL,
		selected_items TEXT NOT NULL,
		pricing TEXT NOT NULL,
		gdpr_consent TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'new',
		quote_url TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_status ON leads (status)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads (created_at)`,
}

// Execer runs statements; both *sql.DB and *sql.Tx satisfy it
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// Conn returns the transaction carried by ctx, or DB when there is none
func Conn(ctx context.Context) Execer {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return DB
}

// WithTx runs fn inside one transaction. Repository calls made with the ctx passed to
// fn join it; any error rolls everything back.
func WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := DB.BeginTx(ctx, nil)
	if err != nil {
		log.Printf("❌ WithTx: Error starting transaction: %v", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Printf("❌ WithTx: Error committing transaction: %v", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Migrate creates the tables the service needs when they do not exist yet
func Migrate(ctx context.Context) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	for _, stmt := range schema {
		if _, err := DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	log.Printf("✅ Database schema up to date")
	return nil
}

// Rebind rewrites Postgres-style $N placeholders into sqlite's ?N form when needed.
// Queries are written once, in Postgres syntax.
func Rebind(query string) string {
	if Driver != "sqlite" {
		return query
	}
	var b strings.Builder
	b.Grow(len(query))
	for i := 0; i < len(query); i++ {
		c := query[i]
		if c == '$' && i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
			b.WriteByte('?')
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
