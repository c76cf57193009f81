package pgrepo

import "time"

// Config holds PostgreSQL connection and behavior settings.
type Config struct {
	// DSN is the PostgreSQL connection string.
	DSN string

	// MaxConns is the maximum number of pooled connections (default: 10).
	MaxConns int32

	// MinConns is the minimum number of idle connections kept open (default: 1).
	MinConns int32

	// MaxConnLifetime bounds how long a connection is reused (default: 30 minutes).
	MaxConnLifetime time.Duration

	// QueryTimeout bounds a single lookup when the caller's context has no deadline (default: 3 seconds).
	QueryTimeout time.Duration

	// MigrateOnStart applies the embedded schema migrations when the pool opens.
	MigrateOnStart bool
}

func (c *Config) defaults() {
	if c.MaxConns == 0 {
		c.MaxConns = 10
	}
	if c.MinConns == 0 {
		c.MinConns = 1
	}
	if c.MaxConnLifetime == 0 {
		c.MaxConnLifetime = 30 * time.Minute
	}
	if c.QueryTimeout == 0 {
		c.QueryTimeout = 3 * time.Second
	}
}
