package credentials_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/jrsteele09/timetrack-auth/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newSeededRepo(t *testing.T) (*credentials.InMemoryRepo, string) {
	t.Helper()

	hash, err := credentials.HashPasswordWithCost("secret1", bcrypt.MinCost)
	require.NoError(t, err)

	repo := credentials.NewInMemoryRepo()
	require.NoError(t, repo.Upsert(credentials.Credential{TenantID: "acme", Username: "alice", PasswordHash: hash}))
	require.NoError(t, repo.Upsert(credentials.Credential{TenantID: "globex", Username: "alice", PasswordHash: hash}))
	require.NoError(t, repo.Upsert(credentials.Credential{TenantID: "acme", Username: "admin", PasswordHash: hash}))
	return repo, hash
}

func TestInMemoryRepo_Lookup(t *testing.T) {
	repo, hash := newSeededRepo(t)
	ctx := context.Background()

	cred, err := repo.Lookup(ctx, "acme", "alice")
	require.NoError(t, err)
	assert.Equal(t, "acme", cred.TenantID)
	assert.Equal(t, "alice", cred.Username)
	assert.Equal(t, hash, cred.PasswordHash)
}

func TestInMemoryRepo_LookupNotFound(t *testing.T) {
	repo, _ := newSeededRepo(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		tenantID string
		username string
	}{
		{"unknown tenant", "initech", "alice"},
		{"unknown user", "acme", "bob"},
		{"username scoped to other tenant", "globex", "admin"},
		{"empty tenant", "", "alice"},
		{"empty username", "acme", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cred, err := repo.Lookup(ctx, tt.tenantID, tt.username)
			assert.Nil(t, cred)
			assert.ErrorIs(t, err, credentials.ErrNotFound)
		})
	}
}

func TestInMemoryRepo_LookupReturnsCopy(t *testing.T) {
	repo, hash := newSeededRepo(t)
	ctx := context.Background()

	cred, err := repo.Lookup(ctx, "acme", "alice")
	require.NoError(t, err)
	cred.PasswordHash = "tampered"

	again, err := repo.Lookup(ctx, "acme", "alice")
	require.NoError(t, err)
	assert.Equal(t, hash, again.PasswordHash)
}

func TestInMemoryRepo_CancelledContext(t *testing.T) {
	repo, _ := newSeededRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Lookup(ctx, "acme", "alice")
	require.Error(t, err)
	assert.ErrorIs(t, err, credentials.ErrUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, credentials.ErrNotFound))
}

func TestInMemoryRepo_UpsertRejectsInvalid(t *testing.T) {
	repo := credentials.NewInMemoryRepo()

	err := repo.Upsert(credentials.Credential{TenantID: "acme", Username: "alice"})
	require.Error(t, err)
	assert.Equal(t, 0, repo.Len())
}

func TestInMemoryRepo_UpsertReplaces(t *testing.T) {
	repo, _ := newSeededRepo(t)
	ctx := context.Background()

	newHash, err := credentials.HashPasswordWithCost("secret2", bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(credentials.Credential{TenantID: "acme", Username: "alice", PasswordHash: newHash}))

	cred, err := repo.Lookup(ctx, "acme", "alice")
	require.NoError(t, err)
	assert.True(t, cred.Matches("secret2"))
	assert.Equal(t, 3, repo.Len())
}

func TestInMemoryRepo_Tenants(t *testing.T) {
	repo, _ := newSeededRepo(t)

	assert.Equal(t, map[string]int{"acme": 2, "globex": 1}, repo.Tenants())
	assert.Equal(t, []string{"acme", "globex"}, repo.TenantIDs())
}

func TestInMemoryRepo_ConcurrentLookups(t *testing.T) {
	repo, _ := newSeededRepo(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := repo.Lookup(ctx, "acme", "alice"); err != nil {
				errs <- err
			}
		}()
		go func(i int) {
			defer wg.Done()
			if _, err := repo.Lookup(ctx, "acme", fmt.Sprintf("ghost-%d", i)); !errors.Is(err, credentials.ErrNotFound) {
				errs <- fmt.Errorf("expected not found, got %v", err)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
