package main

import (
	"context"
	"fmt"

	"github.com/jrsteele09/timetrack-auth/credentials"
	"github.com/jrsteele09/timetrack-auth/credentials/filerepo"
	"github.com/jrsteele09/timetrack-auth/credentials/pgrepo"
	"github.com/jrsteele09/timetrack-auth/credentials/rediscache"
	"github.com/jrsteele09/timetrack-auth/internal/config"
	"github.com/jrsteele09/timetrack-auth/internal/observability"
	"github.com/jrsteele09/timetrack-auth/server"
	"github.com/rs/zerolog/log"
)

// credentialStore is the wired credential repository plus what the process
// needs to run it: readiness checks, reload on SIGHUP and cleanup.
type credentialStore struct {
	repo    credentials.Repo
	checks  []server.Option
	reload  func()
	closers []func()
}

func (s *credentialStore) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openCredentialStore(ctx context.Context, c config.Config) (*credentialStore, error) {
	store := &credentialStore{
		reload: func() { log.Info().Msg("credential store has no reloadable source") },
	}

	switch c.GetCredentialStore() {
	case config.StoreFile:
		repo, err := filerepo.New(c.GetCredentialFile())
		if err != nil {
			return nil, fmt.Errorf("loading credential file: %w", err)
		}
		log.Info().
			Str("path", repo.Path()).
			Int("credentials", repo.Len()).
			Interface("tenants", repo.Tenants()).
			Msg("credential file loaded")

		// A reload must take effect at once, so the file store is never cached.
		if c.CacheEnabled() {
			log.Warn().Str("addr", c.GetRedisAddr()).Msg("credential cache ignored for the file store")
		}
		store.repo = repo
		store.reload = func() { reloadFile(repo) }
		store.checks = append(store.checks, server.WithReadinessCheck("credentials", func(context.Context) error {
			if repo.Len() == 0 {
				return fmt.Errorf("no credentials loaded from %s", repo.Path())
			}
			return nil
		}))

	case config.StorePostgres:
		repo, err := pgrepo.New(ctx, pgrepo.Config{
			DSN:            c.GetDatabaseURL(),
			MaxConns:       c.GetDBMaxConns(),
			MigrateOnStart: c.GetMigrateOnStart(),
		})
		if err != nil {
			return nil, err
		}
		log.Info().Bool("migrate", c.GetMigrateOnStart()).Msg("postgres credential store connected")

		store.repo = repo
		store.closers = append(store.closers, repo.Close)
		store.checks = append(store.checks, server.WithReadinessCheck("credentials", repo.Ping))
		if c.CacheEnabled() {
			wrapWithCache(store, c)
		}

	default:
		return nil, fmt.Errorf("unknown credential store %q", c.GetCredentialStore())
	}

	return store, nil
}

// wrapWithCache puts the Redis read-through cache in front of store.repo.
func wrapWithCache(store *credentialStore, c config.Config) {
	client := rediscache.NewClient(rediscache.Config{
		Addr:     c.GetRedisAddr(),
		Password: c.GetRedisPassword(),
		DB:       c.GetRedisDB(),
	})
	cache := rediscache.NewRedisCache(client)
	store.repo = rediscache.New(store.repo, cache, rediscache.WithTTL(c.GetCacheTTL()))
	store.closers = append(store.closers, func() { _ = client.Close() })
	store.checks = append(store.checks, server.WithReadinessCheck("cache", cache.Health))
	log.Info().Str("addr", c.GetRedisAddr()).Dur("ttl", c.GetCacheTTL()).Msg("credential cache enabled")
}

func reloadFile(repo *filerepo.Repo) {
	if err := repo.Reload(); err != nil {
		observability.CredentialReloadsTotal.WithLabelValues(observability.ReloadFailure).Inc()
		log.Error().Err(err).Str("path", repo.Path()).Msg("credential reload failed, keeping previous snapshot")
		return
	}
	observability.CredentialReloadsTotal.WithLabelValues(observability.ReloadSuccess).Inc()
	log.Info().Str("path", repo.Path()).Int("credentials", repo.Len()).Msg("credentials reloaded")
}
