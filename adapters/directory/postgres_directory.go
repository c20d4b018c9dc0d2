package directory

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/pressly/goose/v3"

	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/ports"
)

//go:embed migrations/*.sql
var migrations embed.FS

var _ ports.UserDirectory = (*PostgresDirectory)(nil)

// PostgresDirectory stores wallet users in PostgreSQL
type PostgresDirectory struct {
	db *sql.DB
}

// NewPostgresDirectory wraps an open database handle
func NewPostgresDirectory(db *sql.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

// OpenPostgres connects to dsn, pings it and applies migrations
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate applies the embedded schema migrations
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// FindByAddress returns the user bound to address
func (d *PostgresDirectory) FindByAddress(ctx context.Context, address string) (*core.User, error) {
	const query = `SELECT id, address, created_at, last_seen FROM wallet_users WHERE address = $1`

	var user core.User
	err := d.db.QueryRowContext(ctx, query, address).Scan(&user.ID, &user.Address, &user.CreatedAt, &user.LastSeen)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by address: %w", err)
	}

	return &user, nil
}

// Upsert inserts the user or refreshes last_seen for an existing address.
// The original id and created_at are kept on conflict.
func (d *PostgresDirectory) Upsert(ctx context.Context, user *core.User) (*core.User, error) {
	const query = `INSERT INTO wallet_users (id, address, created_at, last_seen)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (address) DO UPDATE SET last_seen = EXCLUDED.last_seen
			  RETURNING id, address, created_at, last_seen`

	var saved core.User
	err := d.db.QueryRowContext(ctx, query, user.ID, user.Address, user.CreatedAt, user.LastSeen).
		Scan(&saved.ID, &saved.Address, &saved.CreatedAt, &saved.LastSeen)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return &saved, nil
}
