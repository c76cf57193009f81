// Package rediscache puts a read-through cache in front of a credentials.Repo.
//
// Only successful lookups are cached. Cache failures are logged and the
// lookup falls through to the wrapped Repo, so a cache outage degrades to
// uncached reads instead of failed logins.
package rediscache

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/jrsteele09/timetrack-auth/credentials"
	"github.com/rs/zerolog/log"
)

const (
	DefaultTTL    = 5 * time.Minute
	DefaultPrefix = "timetrack:credential:"
)

var _ credentials.Repo = (*Repo)(nil)

// entry is the cached form of a record. credentials.Credential hides the
// hash from JSON, so the cache carries its own shape.
type entry struct {
	TenantID     string `json:"tenant"`
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
}

// Repo decorates a credentials.Repo with a Cache.
type Repo struct {
	next   credentials.Repo
	cache  Cache
	ttl    time.Duration
	prefix string
}

// Option configures a Repo.
type Option func(*Repo)

// WithTTL sets the lifetime of cached entries.
func WithTTL(ttl time.Duration) Option {
	return func(r *Repo) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithPrefix sets the key namespace.
func WithPrefix(prefix string) Option {
	return func(r *Repo) {
		r.prefix = prefix
	}
}

// New wraps next with cache.
func New(next credentials.Repo, cache Cache, opts ...Option) *Repo {
	r := &Repo{
		next:   next,
		cache:  cache,
		ttl:    DefaultTTL,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Key returns the cache key for (tenantID, username). Both parts are
// escaped so a ':' inside either cannot collide with another pair.
func (r *Repo) Key(tenantID, username string) string {
	return r.prefix + url.QueryEscape(tenantID) + ":" + url.QueryEscape(username)
}

// Lookup serves from the cache when possible and fills it on a miss.
func (r *Repo) Lookup(ctx context.Context, tenantID, username string) (*credentials.Credential, error) {
	if tenantID == "" || username == "" {
		return nil, credentials.ErrNotFound
	}

	key := r.Key(tenantID, username)
	if cred, ok := r.fromCache(ctx, key, tenantID, username); ok {
		return cred, nil
	}

	cred, err := r.next.Lookup(ctx, tenantID, username)
	if err != nil {
		return nil, err
	}

	r.store(ctx, key, cred)
	return cred, nil
}

// Invalidate drops the cached entry for (tenantID, username).
func (r *Repo) Invalidate(ctx context.Context, tenantID, username string) error {
	_, err := r.cache.Delete(ctx, r.Key(tenantID, username))
	return err
}

func (r *Repo) fromCache(ctx context.Context, key, tenantID, username string) (*credentials.Credential, bool) {
	data, err := r.cache.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("tenant", tenantID).Msg("credential cache read failed, falling back to store")
		return nil, false
	}
	if data == nil {
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil || e.TenantID != tenantID || e.Username != username || e.PasswordHash == "" {
		log.Warn().Str("tenant", tenantID).Msg("discarding malformed credential cache entry")
		if _, err := r.cache.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("tenant", tenantID).Msg("credential cache delete failed")
		}
		return nil, false
	}

	return &credentials.Credential{
		TenantID:     e.TenantID,
		Username:     e.Username,
		PasswordHash: e.PasswordHash,
	}, true
}

func (r *Repo) store(ctx context.Context, key string, cred *credentials.Credential) {
	data, err := json.Marshal(entry{
		TenantID:     cred.TenantID,
		Username:     cred.Username,
		PasswordHash: cred.PasswordHash,
	})
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
		log.Warn().Err(err).Str("tenant", cred.TenantID).Msg("credential cache write failed")
	}
}
