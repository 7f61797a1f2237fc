// Package mockstorage provides a testify-based mock implementation of the
// storage interface. Router and service tests use it to simulate storage
// failures that the in-memory backend cannot produce.
package mockstorage

import (
	"context"
	"database/sql"

	"github.com/stretchr/testify/mock"

	"github.com/valerienguyen169/Shrink-Ray/internal/link"
	"github.com/valerienguyen169/Shrink-Ray/internal/user"
)

// StorageMock implements storage.Storage through testify's mock machinery.
type StorageMock struct {
	mock.Mock
}

// CreateUser mocks inserting a new account.
func (m *StorageMock) CreateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) (string, error) {
	args := m.Called(ctx, usr, transaction)
	return args.String(0), args.Error(1)
}

// GetUserByID mocks fetching an account by ID.
func (m *StorageMock) GetUserByID(ctx context.Context, userID string, transaction *sql.Tx) (*user.User, error) {
	args := m.Called(ctx, userID, transaction)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Error(1)
}

// GetUserByUsername mocks fetching an account by username.
func (m *StorageMock) GetUserByUsername(ctx context.Context, username string, transaction *sql.Tx) (*user.User, error) {
	args := m.Called(ctx, username, transaction)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Error(1)
}

// RenameUser mocks changing a username.
func (m *StorageMock) RenameUser(ctx context.Context, userID, newUsername string, transaction *sql.Tx) error {
	args := m.Called(ctx, userID, newUsername, transaction)
	return args.Error(0)
}

// GetAllUsers mocks enumerating accounts.
func (m *StorageMock) GetAllUsers(ctx context.Context) ([]*user.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]*user.User)
	return users, args.Error(1)
}

// InsertLink mocks persisting a link.
func (m *StorageMock) InsertLink(ctx context.Context, lnk *link.Link, transaction *sql.Tx) error {
	args := m.Called(ctx, lnk, transaction)
	return args.Error(0)
}

// GetLinkByID mocks fetching a link.
func (m *StorageMock) GetLinkByID(ctx context.Context, linkID string) (*link.Link, error) {
	args := m.Called(ctx, linkID)
	lnk, _ := args.Get(0).(*link.Link)
	return lnk, args.Error(1)
}

// RecordVisit mocks the atomic visit counter update.
func (m *StorageMock) RecordVisit(ctx context.Context, linkID string) (*link.Link, error) {
	args := m.Called(ctx, linkID)
	lnk, _ := args.Get(0).(*link.Link)
	return lnk, args.Error(1)
}

// GetLinksByUserID mocks listing an owner's links.
func (m *StorageMock) GetLinksByUserID(ctx context.Context, userID string) ([]*link.Link, error) {
	args := m.Called(ctx, userID)
	links, _ := args.Get(0).([]*link.Link)
	return links, args.Error(1)
}

// CountUserLinks mocks the quota counter.
func (m *StorageMock) CountUserLinks(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

// DeleteLink mocks removing a link.
func (m *StorageMock) DeleteLink(ctx context.Context, linkID string) error {
	args := m.Called(ctx, linkID)
	return args.Error(0)
}

// BeginTransaction mocks the beginning of a transaction.
func (m *StorageMock) BeginTransaction() (*sql.Tx, error) {
	args := m.Called()
	tx, _ := args.Get(0).(*sql.Tx)
	return tx, args.Error(1)
}

// CommitTransaction mocks committing a transaction.
func (m *StorageMock) CommitTransaction(transaction *sql.Tx) error {
	args := m.Called(transaction)
	return args.Error(0)
}

// RollbackTransaction mocks rolling a transaction back.
func (m *StorageMock) RollbackTransaction(transaction *sql.Tx) error {
	args := m.Called(transaction)
	return args.Error(0)
}

// Ping mocks the health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks releasing the backend.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
