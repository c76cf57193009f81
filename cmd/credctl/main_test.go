package main

import (
	"bytes"
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/jrsteele09/timetrack-auth/credentials"
	"github.com/jrsteele09/timetrack-auth/credentials/filerepo"
	"github.com/jrsteele09/timetrack-auth/credentials/rediscache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testIO struct {
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func runCmd(t *testing.T, stdin string, args ...string) (int, *testIO) {
	t.Helper()
	streams := &testIO{}
	code := run(&commandContext{
		Ctx:    context.Background(),
		Stdin:  strings.NewReader(stdin),
		Stdout: &streams.stdout,
		Stderr: &streams.stderr,
	}, args)
	return code, streams
}

var minCost = strconv.Itoa(bcrypt.MinCost)

func TestRun_Usage(t *testing.T) {
	code, out := runCmd(t, "")
	assert.Equal(t, 2, code)
	assert.Contains(t, out.stderr.String(), "Usage: credctl")

	code, out = runCmd(t, "", "frobnicate")
	assert.Equal(t, 2, code)
	assert.Contains(t, out.stderr.String(), `unknown command "frobnicate"`)
	assert.Contains(t, out.stderr.String(), "migrate")
}

func TestHash_PrintsBcryptHash(t *testing.T) {
	code, out := runCmd(t, "secret1\n", "hash", "-cost", minCost)
	require.Equal(t, 0, code)

	hash := strings.TrimSpace(out.stdout.String())
	assert.True(t, credentials.CheckPasswordHash("secret1", hash))
	assert.False(t, credentials.CheckPasswordHash("secret1\n", hash))
}

func TestHash_CredentialEntryLoads(t *testing.T) {
	code, out := runCmd(t, "secret1", "hash", "-cost", minCost, "-tenant", "acme", "-username", "alice")
	require.Equal(t, 0, code)

	repo, err := filerepo.Parse(out.stdout.Bytes())
	require.NoError(t, err)

	cred, err := repo.Lookup(context.Background(), "acme", "alice")
	require.NoError(t, err)
	assert.True(t, cred.Matches("secret1"))
}

func TestHash_Failures(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{"empty stdin", "", []string{"hash"}},
		{"tenant without username", "secret1", []string{"hash", "-tenant", "acme"}},
		{"weak password", "secret1", []string{"hash", "-check-strength"}},
		{"bad cost", "secret1", []string{"hash", "-cost", "99"}},
		{"unknown flag", "secret1", []string{"hash", "-salt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out := runCmd(t, tt.stdin, tt.args...)
			assert.Equal(t, 1, code)
			assert.Empty(t, out.stdout.String())
		})
	}
}

func TestCheck(t *testing.T) {
	hash, err := credentials.HashPasswordWithCost("secret1", bcrypt.MinCost)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "credentials.yaml")
	doc := "credentials:\n" +
		"  - {tenant: acme, username: alice, password_hash: '" + hash + "'}\n" +
		"  - {tenant: acme, username: bob, password_hash: '" + hash + "'}\n" +
		"  - {tenant: globex, username: alice, password_hash: '" + hash + "'}\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	code, out := runCmd(t, "", "check", "-file", path)
	require.Equal(t, 0, code)

	lines := strings.Split(strings.TrimSpace(out.stdout.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"acme", "2"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"globex", "1"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"total", "3"}, strings.Fields(lines[3]))
}

func TestCheck_Failures(t *testing.T) {
	dir := t.TempDir()
	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("credentials:\n  - {tenant: acme, username: alice, password_hash: plain}\n"), 0o600))

	t.Setenv("CREDENTIAL_FILE", "")
	for name, args := range map[string][]string{
		"no file flag": {"check"},
		"missing file": {"check", "-file", filepath.Join(dir, "absent.yaml")},
		"invalid hash": {"check", "-file", invalid},
	} {
		t.Run(name, func(t *testing.T) {
			code, _ := runCmd(t, "", args...)
			assert.Equal(t, 1, code)
		})
	}
}

func TestStoreCommands_RequireArguments(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_ADDR", "")

	tests := []struct {
		name string
		args []string
	}{
		{"put without dsn", []string{"put", "-tenant", "acme", "-username", "alice"}},
		{"put without tenant", []string{"put", "-dsn", "postgres://localhost/auth", "-username", "alice"}},
		{"delete without username", []string{"delete", "-dsn", "postgres://localhost/auth", "-tenant", "acme"}},
		{"migrate without dsn", []string{"migrate"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := runCmd(t, "secret1", tt.args...)
			assert.Equal(t, 1, code)
		})
	}
}

func parseStoreOptions(t *testing.T, args ...string) *storeOptions {
	t.Helper()
	var opts storeOptions
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts.bind(fs, true)
	require.NoError(t, fs.Parse(args))
	return &opts
}

func TestStoreOptions_RedisConfig(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("REDIS_PASSWORD", "hunter2")
	t.Setenv("REDIS_DB", "2")

	opts := parseStoreOptions(t)
	require.NoError(t, opts.envErr)
	assert.Equal(t, rediscache.Config{Addr: "cache:6379", Password: "hunter2", DB: 2}, opts.redisConfig())

	opts = parseStoreOptions(t, "-redis", "other:6379", "-redis-password", "s3cret", "-redis-db", "5")
	assert.Equal(t, rediscache.Config{Addr: "other:6379", Password: "s3cret", DB: 5}, opts.redisConfig())
}

func TestStoreOptions_InvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "two")

	opts := parseStoreOptions(t, "-dsn", "postgres://localhost/auth", "-tenant", "acme", "-username", "alice")
	assert.Error(t, opts.validate(true))

	code, _ := runCmd(t, "secret1", "delete", "-dsn", "postgres://localhost/auth", "-tenant", "acme", "-username", "alice")
	assert.Equal(t, 1, code)
}
