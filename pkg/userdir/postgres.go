package userdir

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/clubnotify/pkg/notifications"
	"github.com/dmitrymomot/clubnotify/pkg/pg"
)

var _ notifications.UserDirectory = (*PostgresDirectory)(nil)

const (
	qFindUser   = `SELECT id, COALESCE(push_address, '') FROM users WHERE id = $1;`
	qUpsertUser = `
INSERT INTO users (id, push_address) VALUES ($1, NULLIF($2, ''))
ON CONFLICT (id) DO UPDATE SET push_address = EXCLUDED.push_address, updated_at = now();
`
)

// PostgresDirectory reads users from the users table.
type PostgresDirectory struct {
	pool *pgxpool.Pool
}

// NewPostgresDirectory creates a directory backed by pool.
func NewPostgresDirectory(pool *pgxpool.Pool) *PostgresDirectory {
	return &PostgresDirectory{pool: pool}
}

func (d *PostgresDirectory) FindByID(ctx context.Context, id uuid.UUID) (notifications.User, error) {
	var u notifications.User
	err := pg.Conn(ctx, d.pool).QueryRow(ctx, qFindUser, id).Scan(&u.ID, &u.PushAddress)
	if errors.Is(err, pgx.ErrNoRows) {
		return notifications.User{}, notifications.ErrUserNotFound
	}
	if err != nil {
		return notifications.User{}, fmt.Errorf("find user %s: %w", id, err)
	}
	return u, nil
}

// Save inserts the user or updates its push address.
func (d *PostgresDirectory) Save(ctx context.Context, u notifications.User) error {
	if _, err := pg.Conn(ctx, d.pool).Exec(ctx, qUpsertUser, u.ID, u.PushAddress); err != nil {
		return fmt.Errorf("save user %s: %w", u.ID, err)
	}
	return nil
}
