// Package pgrepo serves credentials from a PostgreSQL table over a pgx pool.
package pgrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrsteele09/timetrack-auth/credentials"
)

var _ credentials.Repo = (*Repo)(nil)

// Repo is a PostgreSQL-backed credentials.Repo.
type Repo struct {
	pool *pgxpool.Pool
	cfg  Config
}

// New opens a pool, checks connectivity and optionally migrates the schema.
func New(ctx context.Context, cfg Config) (*Repo, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	r := &Repo{pool: pool, cfg: cfg}

	if cfg.MigrateOnStart {
		if err := r.Migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return r, nil
}

// Lookup fetches the stored hash for (tenantID, username).
func (r *Repo) Lookup(ctx context.Context, tenantID, username string) (*credentials.Credential, error) {
	if tenantID == "" || username == "" {
		return nil, credentials.ErrNotFound
	}
	if err := ctx.Err(); err != nil {
		return nil, credentials.Unavailable("postgres lookup", err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.QueryTimeout)
		defer cancel()
	}

	cred := credentials.Credential{TenantID: tenantID, Username: username}
	err := r.pool.QueryRow(ctx,
		"SELECT password_hash FROM credentials WHERE tenant_id = $1 AND username = $2",
		tenantID, username,
	).Scan(&cred.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, credentials.ErrNotFound
		}
		return nil, credentials.Unavailable("postgres lookup", err)
	}

	return &cred, nil
}

// Upsert inserts or replaces a credential record.
func (r *Repo) Upsert(ctx context.Context, cred credentials.Credential) error {
	if err := cred.Validate(); err != nil {
		return err
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO credentials (tenant_id, username, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (tenant_id, username)
		DO UPDATE SET password_hash = EXCLUDED.password_hash, updated_at = now()
	`, cred.TenantID, cred.Username, cred.PasswordHash)
	if err != nil {
		return fmt.Errorf("upserting credential %s/%s: %w", cred.TenantID, cred.Username, err)
	}
	return nil
}

// Delete removes a credential record. It reports whether a row existed.
func (r *Repo) Delete(ctx context.Context, tenantID, username string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		"DELETE FROM credentials WHERE tenant_id = $1 AND username = $2",
		tenantID, username,
	)
	if err != nil {
		return false, fmt.Errorf("deleting credential %s/%s: %w", tenantID, username, err)
	}
	return tag.RowsAffected() > 0, nil
}

// Ping checks database connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close releases the connection pool.
func (r *Repo) Close() {
	r.pool.Close()
}
