package credentials

import (
	"context"
	"sort"
	"sync"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is a map-backed Repo keyed tenant -> username.
type InMemoryRepo struct {
	mu          sync.RWMutex
	credentials map[string]map[string]Credential
}

// NewInMemoryRepo creates an empty in-memory credential repository.
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		credentials: make(map[string]map[string]Credential),
	}
}

// Upsert adds or replaces the record for (cred.TenantID, cred.Username).
// It is a provisioning helper; AuthService never writes.
func (r *InMemoryRepo) Upsert(cred Credential) error {
	if err := cred.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.credentials[cred.TenantID]; !ok {
		r.credentials[cred.TenantID] = make(map[string]Credential)
	}
	r.credentials[cred.TenantID][cred.Username] = cred
	return nil
}

// Lookup returns a copy of the stored record or ErrNotFound.
func (r *InMemoryRepo) Lookup(ctx context.Context, tenantID, username string) (*Credential, error) {
	if tenantID == "" || username == "" {
		return nil, ErrNotFound
	}
	if err := ctx.Err(); err != nil {
		return nil, Unavailable("in-memory lookup", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	tenantCredentials, ok := r.credentials[tenantID]
	if !ok {
		return nil, ErrNotFound
	}
	cred, ok := tenantCredentials[username]
	if !ok {
		return nil, ErrNotFound
	}
	return &cred, nil
}

// Len returns the total number of records across all tenants.
func (r *InMemoryRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, tenantCredentials := range r.credentials {
		n += len(tenantCredentials)
	}
	return n
}

// Tenants returns the record count for every tenant holding at least one record.
func (r *InMemoryRepo) Tenants() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int, len(r.credentials))
	for tenantID, tenantCredentials := range r.credentials {
		counts[tenantID] = len(tenantCredentials)
	}
	return counts
}

// TenantIDs returns the tenant IDs in sorted order.
func (r *InMemoryRepo) TenantIDs() []string {
	counts := r.Tenants()
	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
