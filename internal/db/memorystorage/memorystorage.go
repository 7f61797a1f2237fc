// Package memorystorage provides a mutex-guarded in-memory implementation of
// the storage interface. It backs development setups without a database and
// the package-level tests of the service and router layers.
package memorystorage

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/valerienguyen169/Shrink-Ray/internal/link"
	"github.com/valerienguyen169/Shrink-Ray/internal/models"
	"github.com/valerienguyen169/Shrink-Ray/internal/user"
)

// MemoryStorage keeps users and links in maps guarded by a single mutex.
type MemoryStorage struct {
	mu sync.RWMutex

	users           map[string]*user.User
	userIDsByName   map[string]string
	links           map[string]*link.Link
	linkIDsByUserID map[string][]string
}

// New creates an empty MemoryStorage.
func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		users:           map[string]*user.User{},
		userIDsByName:   map[string]string{},
		links:           map[string]*link.Link{},
		linkIDsByUserID: map[string][]string{},
	}, nil
}

// CreateUser stores a new account under a fresh UUID.
func (s *MemoryStorage) CreateUser(
	ctx context.Context,
	usr *user.User,
	transaction *sql.Tx,
) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.userIDsByName[usr.Username]; taken {
		return "", models.ErrUsernameTaken
	}

	stored := *usr
	stored.ID = uuid.New().String()

	s.users[stored.ID] = &stored
	s.userIDsByName[stored.Username] = stored.ID

	return stored.ID, nil
}

// GetUserByID returns a copy of the account with the given ID.
func (s *MemoryStorage) GetUserByID(
	ctx context.Context,
	userID string,
	transaction *sql.Tx,
) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.copyUser(s.users[userID])
}

// GetUserByUsername returns a copy of the account with the given username.
func (s *MemoryStorage) GetUserByUsername(
	ctx context.Context,
	username string,
	transaction *sql.Tx,
) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.copyUser(s.users[s.userIDsByName[username]])
}

// RenameUser changes the username of an existing account.
func (s *MemoryStorage) RenameUser(
	ctx context.Context,
	userID,
	newUsername string,
	transaction *sql.Tx,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	usr, found := s.users[userID]
	if !found {
		return models.ErrUserNotFound
	}

	if occupantID, taken := s.userIDsByName[newUsername]; taken && occupantID != userID {
		return models.ErrUsernameTaken
	}

	delete(s.userIDsByName, usr.Username)
	usr.Username = newUsername
	s.userIDsByName[newUsername] = userID

	return nil
}

// GetAllUsers returns copies of every account.
func (s *MemoryStorage) GetAllUsers(ctx context.Context) ([]*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*user.User, 0, len(s.users))
	for _, usr := range s.users {
		copied := *usr
		result = append(result, &copied)
	}

	return result, nil
}

// InsertLink stores a new link with a zero hit counter.
func (s *MemoryStorage) InsertLink(
	ctx context.Context,
	lnk *link.Link,
	transaction *sql.Tx,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.links[lnk.ID]; exists {
		return models.ErrLinkExists
	}

	if lnk.Owner == nil || s.users[lnk.Owner.ID] == nil {
		return models.ErrUserNotFound
	}

	stored := *lnk
	stored.NumHits = 0
	stored.LastAccessedOn = time.Now()
	stored.Owner = s.users[lnk.Owner.ID]

	s.links[stored.ID] = &stored
	s.linkIDsByUserID[stored.Owner.ID] = append(s.linkIDsByUserID[stored.Owner.ID], stored.ID)

	lnk.NumHits = stored.NumHits
	lnk.LastAccessedOn = stored.LastAccessedOn

	return nil
}

// GetLinkByID returns a copy of the link with its owner resolved.
func (s *MemoryStorage) GetLinkByID(ctx context.Context, linkID string) (*link.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.copyLink(s.links[linkID])
}

// RecordVisit increments the hit counter under the write lock, so concurrent
// visits to the same link never lose an update.
func (s *MemoryStorage) RecordVisit(ctx context.Context, linkID string) (*link.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lnk, found := s.links[linkID]
	if !found {
		return nil, models.ErrLinkNotFound
	}

	lnk.NumHits++
	lnk.LastAccessedOn = time.Now()

	return s.copyLink(lnk)
}

// GetLinksByUserID returns copies of the user's links in creation order.
func (s *MemoryStorage) GetLinksByUserID(ctx context.Context, userID string) ([]*link.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.linkIDsByUserID[userID]
	result := make([]*link.Link, 0, len(ids))
	for _, id := range ids {
		copied, err := s.copyLink(s.links[id])
		if err != nil {
			return nil, err
		}
		result = append(result, copied)
	}

	return result, nil
}

// CountUserLinks returns the number of links owned by the user.
func (s *MemoryStorage) CountUserLinks(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.linkIDsByUserID[userID]), nil
}

// DeleteLink removes the link. Absent IDs are ignored.
func (s *MemoryStorage) DeleteLink(ctx context.Context, linkID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lnk, found := s.links[linkID]
	if !found {
		return nil
	}

	delete(s.links, linkID)

	owned := s.linkIDsByUserID[lnk.Owner.ID]
	for i, id := range owned {
		if id == linkID {
			s.linkIDsByUserID[lnk.Owner.ID] = append(owned[:i], owned[i+1:]...)
			break
		}
	}

	return nil
}

// BeginTransaction is a no-op: the backend has no real transactions.
func (s *MemoryStorage) BeginTransaction() (*sql.Tx, error) {
	return nil, nil
}

// CommitTransaction is a no-op.
func (s *MemoryStorage) CommitTransaction(transaction *sql.Tx) error {
	return nil
}

// RollbackTransaction is a no-op.
func (s *MemoryStorage) RollbackTransaction(transaction *sql.Tx) error {
	return nil
}

// Ping always succeeds.
func (s *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (s *MemoryStorage) Close() error {
	return nil
}

func (s *MemoryStorage) copyUser(usr *user.User) (*user.User, error) {
	if usr == nil {
		return nil, models.ErrUserNotFound
	}

	copied := *usr

	return &copied, nil
}

func (s *MemoryStorage) copyLink(lnk *link.Link) (*link.Link, error) {
	if lnk == nil {
		return nil, models.ErrLinkNotFound
	}

	copied := *lnk
	owner := *lnk.Owner
	copied.Owner = &owner

	return &copied, nil
}
