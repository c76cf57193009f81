// Package mocks provides gomock implementations of the credential interfaces.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	repo := mocks.NewMockRepo(ctrl)
//	repo.EXPECT().Lookup(gomock.Any(), "acme", "alice").Return(cred, nil)
package mocks

// MockRepo: Lookup
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=credentials_repo_mock.go github.com/jrsteele09/timetrack-auth/credentials Repo

// MockCache: Get, Set, Delete
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=rediscache_cache_mock.go github.com/jrsteele09/timetrack-auth/credentials/rediscache Cache
