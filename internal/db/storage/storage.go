// Package storage declares the composed persistence interface implemented by
// the postgresdb and memorystorage backends.
package storage

import (
	"context"
	"database/sql"

	"github.com/valerienguyen169/Shrink-Ray/internal/link"
	"github.com/valerienguyen169/Shrink-Ray/internal/user"
)

// Storage is the full persistence surface of the service: the user directory,
// the link registry, transaction control, and health checking. Methods taking
// a *sql.Tx run inside that transaction when it is non-nil; backends without
// real transactions accept nil.
type Storage interface {
	// CreateUser persists a new account and returns its generated ID.
	// A duplicate username surfaces models.ErrUsernameTaken, whether it was
	// caught by a pre-check or by the storage-level uniqueness constraint.
	CreateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) (string, error)

	// GetUserByID fetches an account by ID, models.ErrUserNotFound when absent.
	GetUserByID(ctx context.Context, userID string, transaction *sql.Tx) (*user.User, error)

	// GetUserByUsername fetches an account by exact username,
	// models.ErrUserNotFound when absent.
	GetUserByUsername(ctx context.Context, username string, transaction *sql.Tx) (*user.User, error)

	// RenameUser changes the username of an existing account.
	// models.ErrUsernameTaken when the new name is occupied.
	RenameUser(ctx context.Context, userID, newUsername string, transaction *sql.Tx) error

	// GetAllUsers returns every account.
	GetAllUsers(ctx context.Context) ([]*user.User, error)

	// InsertLink persists a new link with a zero hit counter and a fresh
	// last-access timestamp. A primary-key collision surfaces
	// models.ErrLinkExists.
	InsertLink(ctx context.Context, lnk *link.Link, transaction *sql.Tx) error

	// GetLinkByID fetches a link with its owner eagerly resolved,
	// models.ErrLinkNotFound when absent.
	GetLinkByID(ctx context.Context, linkID string) (*link.Link, error)

	// RecordVisit atomically increments the hit counter and refreshes the
	// last-access timestamp of a single link, returning the updated view.
	// The increment must be a targeted update at the storage layer, never a
	// read-modify-write round trip through application memory.
	RecordVisit(ctx context.Context, linkID string) (*link.Link, error)

	// GetLinksByUserID returns the owner's links in creation order.
	GetLinksByUserID(ctx context.Context, userID string) ([]*link.Link, error)

	// CountUserLinks returns the number of links owned by the user.
	CountUserLinks(ctx context.Context, userID string) (int, error)

	// DeleteLink removes a link. Deleting an absent ID is not an error.
	DeleteLink(ctx context.Context, linkID string) error

	BeginTransaction() (*sql.Tx, error)

	CommitTransaction(transaction *sql.Tx) error

	RollbackTransaction(transaction *sql.Tx) error

	Ping(ctx context.Context) error

	Close() error
}
