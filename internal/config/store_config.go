package config

import (
	"fmt"
	"time"
)

type StoreKind string

const (
	StoreFile     StoreKind = "file"
	StorePostgres StoreKind = "postgres"
)

type StoreConfig interface {
	GetCredentialStore() StoreKind
	GetCredentialFile() string
	GetDatabaseURL() string
	GetDBMaxConns() int32
	GetMigrateOnStart() bool
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetCacheTTL() time.Duration
	CacheEnabled() bool
}

type Store struct {
	Kind           StoreKind     `env:"CREDENTIAL_STORE" envDefault:"file"`
	CredentialFile string        `env:"CREDENTIAL_FILE" envDefault:"./data/credentials.yaml"`
	DatabaseURL    string        `env:"DATABASE_URL"`
	DBMaxConns     int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	MigrateOnStart bool          `env:"DB_MIGRATE_ON_START" envDefault:"false"`
	RedisAddr      string        `env:"REDIS_ADDR"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	RedisDB        int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL       time.Duration `env:"CREDENTIAL_CACHE_TTL" envDefault:"5m"`
}

var _ StoreConfig = Store{}

func (s Store) GetCredentialStore() StoreKind { return s.Kind }
func (s Store) GetCredentialFile() string     { return s.CredentialFile }
func (s Store) GetDatabaseURL() string        { return s.DatabaseURL }
func (s Store) GetDBMaxConns() int32          { return s.DBMaxConns }
func (s Store) GetMigrateOnStart() bool       { return s.MigrateOnStart }
func (s Store) GetRedisAddr() string          { return s.RedisAddr }
func (s Store) GetRedisPassword() string      { return s.RedisPassword }
func (s Store) GetRedisDB() int               { return s.RedisDB }
func (s Store) GetCacheTTL() time.Duration    { return s.CacheTTL }

// CacheEnabled reports whether a Redis cache sits in front of the store.
func (s Store) CacheEnabled() bool {
	return s.RedisAddr != ""
}

func (s Store) validate() error {
	switch s.Kind {
	case StoreFile:
		if s.CredentialFile == "" {
			return fmt.Errorf("CREDENTIAL_FILE is required when CREDENTIAL_STORE=file")
		}
	case StorePostgres:
		if s.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when CREDENTIAL_STORE=postgres")
		}
		if s.DBMaxConns <= 0 {
			return fmt.Errorf("DB_MAX_CONNS must be positive, got %d", s.DBMaxConns)
		}
	default:
		return fmt.Errorf("unknown CREDENTIAL_STORE %q (want %q or %q)", s.Kind, StoreFile, StorePostgres)
	}
	if s.CacheEnabled() && s.CacheTTL <= 0 {
		return fmt.Errorf("CREDENTIAL_CACHE_TTL must be positive, got %s", s.CacheTTL)
	}
	return nil
}
