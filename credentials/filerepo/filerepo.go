// Package filerepo serves credentials from a YAML file held in memory.
package filerepo

import (
	"bytes"
	"context"
	"os"
	"sync/atomic"

	"github.com/jrsteele09/timetrack-auth/credentials"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var _ credentials.Repo = (*Repo)(nil)

// Document is the on-disk layout of a credential file.
type Document struct {
	Credentials []credentials.Credential `yaml:"credentials"`
}

// Repo is a credentials.Repo loaded from a YAML file.
// Reload swaps the whole snapshot at once; lookups never observe a partial load.
type Repo struct {
	path     string
	snapshot atomic.Pointer[credentials.InMemoryRepo]
}

// New loads path and returns a ready Repo. A missing or invalid file is an error.
func New(path string) (*Repo, error) {
	r := &Repo{path: path}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Path returns the file the repo was loaded from.
func (r *Repo) Path() string {
	return r.path
}

// Reload re-reads the file. On failure the previous snapshot stays in place.
func (r *Repo) Reload() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return errors.Wrap(err, "[filerepo.Reload] reading credential file")
	}

	snapshot, err := Parse(data)
	if err != nil {
		return errors.Wrapf(err, "[filerepo.Reload] %s", r.path)
	}

	r.snapshot.Store(snapshot)
	return nil
}

// Lookup implements credentials.Repo against the current snapshot.
func (r *Repo) Lookup(ctx context.Context, tenantID, username string) (*credentials.Credential, error) {
	snapshot := r.snapshot.Load()
	if snapshot == nil {
		return nil, credentials.Unavailable("file lookup", errors.New("credential file not loaded"))
	}
	return snapshot.Lookup(ctx, tenantID, username)
}

// Len returns the number of records in the current snapshot.
func (r *Repo) Len() int {
	snapshot := r.snapshot.Load()
	if snapshot == nil {
		return 0
	}
	return snapshot.Len()
}

// Tenants returns per-tenant record counts for the current snapshot.
func (r *Repo) Tenants() map[string]int {
	snapshot := r.snapshot.Load()
	if snapshot == nil {
		return map[string]int{}
	}
	return snapshot.Tenants()
}

// Parse decodes a credential document into a fresh InMemoryRepo.
// Unknown keys, invalid records and duplicate (tenant, username) pairs reject the whole document.
func Parse(data []byte) (*credentials.InMemoryRepo, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decoding credential document")
	}

	repo := credentials.NewInMemoryRepo()
	seen := make(map[[2]string]int, len(doc.Credentials))
	for i, cred := range doc.Credentials {
		if err := cred.Validate(); err != nil {
			return nil, errors.Wrapf(err, "entry %d", i)
		}
		key := [2]string{cred.TenantID, cred.Username}
		if first, dup := seen[key]; dup {
			return nil, errors.Errorf("entry %d duplicates entry %d (%s/%s)", i, first, cred.TenantID, cred.Username)
		}
		seen[key] = i
		if err := repo.Upsert(cred); err != nil {
			return nil, errors.Wrapf(err, "entry %d", i)
		}
	}
	return repo, nil
}
