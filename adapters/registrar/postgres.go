// Package registrar implements the remote session registrar over
// row-oriented stores.
package registrar

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goalguru/walletauth/core"
	"github.com/goalguru/walletauth/ports"
)

// PostgresRegistrar implements ports.Registrar against PostgreSQL.
//
// Tables: users(id, wallet_address unique, created_at, last_login_at),
// login_sessions(user_id, wallet_address, signature, message, nonce,
// expires_at, created_at), login_activity(id, user_id, wallet_address,
// action, user_agent, created_at).
type PostgresRegistrar struct {
	pool    *pgxpool.Pool
	builder squirrel.StatementBuilderType
}

// NewPostgresRegistrar wires a PostgreSQL-backed registrar.
func NewPostgresRegistrar(pool *pgxpool.Pool) ports.Registrar {
	return &PostgresRegistrar{
		pool:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// FindOrCreateUser upserts the user row for the address. The uniqueness
// constraint on wallet_address makes concurrent first logins converge on
// a single row; losers of the race turn into last_login_at updates.
func (r *PostgresRegistrar) FindOrCreateUser(ctx context.Context, walletAddress string) (string, error) {
	address := core.NormalizeAddress(walletAddress)
	now := time.Now().UTC()

	stmt, args, err := r.builder.Insert("users").
		Columns("id", "wallet_address", "created_at", "last_login_at").
		Values(uuid.New().String(), address, now, now).
		Suffix("ON CONFLICT (wallet_address) DO UPDATE SET last_login_at = EXCLUDED.last_login_at RETURNING id").
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build upsert user sql: %w", err)
	}

	var id string
	if err := r.pool.QueryRow(ctx, stmt, args...).Scan(&id); err != nil {
		return "", fmt.Errorf("upsert user: %w", err)
	}

	return id, nil
}

// CreateSession inserts a session row.
func (r *PostgresRegistrar) CreateSession(ctx context.Context, session core.Session) error {
	stmt, args, err := r.builder.Insert("login_sessions").
		Columns(
			"user_id",
			"wallet_address",
			"signature",
			"message",
			"nonce",
			"expires_at",
			"created_at",
		).
		Values(
			session.UserID,
			core.NormalizeAddress(session.WalletAddress),
			session.Signature,
			session.Message,
			session.Nonce,
			session.ExpiresAt,
			session.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert session sql: %w", err)
	}

	if _, err := r.pool.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	return nil
}

// ValidateSession checks for a matching, non-expired session row.
func (r *PostgresRegistrar) ValidateSession(ctx context.Context, nonce, walletAddress string) (bool, error) {
	stmt, args, err := r.builder.Select("1").
		From("login_sessions").
		Where(squirrel.Eq{
			"nonce":          nonce,
			"wallet_address": core.NormalizeAddress(walletAddress),
		}).
		Where(squirrel.Gt{"expires_at": time.Now().UTC()}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build select session sql: %w", err)
	}

	var one int
	if err := r.pool.QueryRow(ctx, stmt, args...).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("select session: %w", err)
	}

	return true, nil
}

// DeleteSession removes the session row for the nonce.
func (r *PostgresRegistrar) DeleteSession(ctx context.Context, nonce string) error {
	stmt, args, err := r.builder.Delete("login_sessions").
		Where(squirrel.Eq{"nonce": nonce}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete session sql: %w", err)
	}

	if _, err := r.pool.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// LogActivity appends an audit row.
func (r *PostgresRegistrar) LogActivity(ctx context.Context, userID, walletAddress, action, userAgent string) error {
	var agent any
	if userAgent != "" {
		agent = userAgent
	}

	stmt, args, err := r.builder.Insert("login_activity").
		Columns("id", "user_id", "wallet_address", "action", "user_agent", "created_at").
		Values(uuid.New().String(), userID, core.NormalizeAddress(walletAddress), action, agent, time.Now().UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert activity sql: %w", err)
	}

	if _, err := r.pool.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}

	return nil
}
