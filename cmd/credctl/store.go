package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jrsteele09/timetrack-auth/credentials"
	"github.com/jrsteele09/timetrack-auth/credentials/pgrepo"
	"github.com/jrsteele09/timetrack-auth/credentials/rediscache"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const storeTimeout = 30 * time.Second

type storeOptions struct {
	DSN           string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TenantID      string
	Username      string

	envErr error
}

func (o *storeOptions) bind(fs *flag.FlagSet, withIdentity bool) {
	fs.StringVar(&o.DSN, "dsn", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	if !withIdentity {
		return
	}
	fs.StringVar(&o.RedisAddr, "redis", os.Getenv("REDIS_ADDR"), "Redis address whose cached entry is invalidated")
	fs.StringVar(&o.RedisPassword, "redis-password", os.Getenv("REDIS_PASSWORD"), "Redis password")
	redisDB, err := envInt("REDIS_DB")
	if err != nil {
		o.envErr = err
	}
	fs.IntVar(&o.RedisDB, "redis-db", redisDB, "Redis database number")
	fs.StringVar(&o.TenantID, "tenant", "", "tenant id")
	fs.StringVar(&o.Username, "username", "", "username")
}

func (o *storeOptions) validate(withIdentity bool) error {
	if o.envErr != nil {
		return o.envErr
	}
	if o.DSN == "" {
		return errors.New("-dsn or DATABASE_URL is required")
	}
	if withIdentity && (o.TenantID == "" || o.Username == "") {
		return errors.New("-tenant and -username are required")
	}
	return nil
}

// redisConfig matches the server's client settings so invalidation hits
// the same keyspace the server caches in.
func (o *storeOptions) redisConfig() rediscache.Config {
	return rediscache.Config{
		Addr:     o.RedisAddr,
		Password: o.RedisPassword,
		DB:       o.RedisDB,
	}
}

func envInt(name string) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing %s", name)
	}
	return n, nil
}

type putOptions struct {
	storeOptions
	Cost    int
	Migrate bool
}

func runPut(ctx *commandContext, args []string) error {
	var opts putOptions
	fs := flag.NewFlagSet("put", flag.ContinueOnError)
	fs.SetOutput(ctx.Stderr)
	opts.bind(fs, true)
	fs.IntVar(&opts.Cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	fs.BoolVar(&opts.Migrate, "migrate", false, "apply schema migrations first")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := opts.validate(true); err != nil {
		return err
	}

	password, err := readPassword(ctx.Stdin)
	if err != nil {
		return err
	}
	hash, err := credentials.HashPasswordWithCost(password, opts.Cost)
	if err != nil {
		return errors.Wrap(err, "hashing password")
	}
	cred := credentials.Credential{TenantID: opts.TenantID, Username: opts.Username, PasswordHash: hash}
	if err := cred.Validate(); err != nil {
		return err
	}

	c, cancel := context.WithTimeout(ctx.Ctx, storeTimeout)
	defer cancel()

	repo, err := pgrepo.New(c, pgrepo.Config{DSN: opts.DSN, MaxConns: 2, MigrateOnStart: opts.Migrate})
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.Upsert(c, cred); err != nil {
		return err
	}
	invalidateCache(c, opts.redisConfig(), repo, opts.TenantID, opts.Username)

	_, err = fmt.Fprintf(ctx.Stdout, "stored %s/%s\n", opts.TenantID, opts.Username)
	return err
}

func runDelete(ctx *commandContext, args []string) error {
	var opts storeOptions
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(ctx.Stderr)
	opts.bind(fs, true)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := opts.validate(true); err != nil {
		return err
	}

	c, cancel := context.WithTimeout(ctx.Ctx, storeTimeout)
	defer cancel()

	repo, err := pgrepo.New(c, pgrepo.Config{DSN: opts.DSN, MaxConns: 2})
	if err != nil {
		return err
	}
	defer repo.Close()

	deleted, err := repo.Delete(c, opts.TenantID, opts.Username)
	if err != nil {
		return err
	}
	invalidateCache(c, opts.redisConfig(), repo, opts.TenantID, opts.Username)

	if !deleted {
		return errors.Wrapf(credentials.ErrNotFound, "%s/%s", opts.TenantID, opts.Username)
	}
	_, err = fmt.Fprintf(ctx.Stdout, "deleted %s/%s\n", opts.TenantID, opts.Username)
	return err
}

func runMigrate(ctx *commandContext, args []string) error {
	var opts storeOptions
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(ctx.Stderr)
	opts.bind(fs, false)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := opts.validate(false); err != nil {
		return err
	}

	c, cancel := context.WithTimeout(ctx.Ctx, storeTimeout)
	defer cancel()

	repo, err := pgrepo.New(c, pgrepo.Config{DSN: opts.DSN, MaxConns: 2, MigrateOnStart: true})
	if err != nil {
		return err
	}
	repo.Close()

	_, err = fmt.Fprintln(ctx.Stdout, "migrations applied")
	return err
}

// invalidateCache drops the cached copy so the change is visible before the
// cache TTL runs out. A cache failure only warns; the store write already happened.
func invalidateCache(ctx context.Context, cfg rediscache.Config, repo credentials.Repo, tenantID, username string) {
	if cfg.Addr == "" {
		return
	}
	client := rediscache.NewClient(cfg)
	defer client.Close()

	cached := rediscache.New(repo, rediscache.NewRedisCache(client))
	if err := cached.Invalidate(ctx, tenantID, username); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Addr).Int("db", cfg.DB).Msg("cache invalidation failed, entry expires with its TTL")
	}
}
