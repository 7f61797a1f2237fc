// Package service implements the application operations over the storage,
// policy, and hasher collaborators. Handlers stay thin: every rule about
// quotas, ownership, and projections lives here or in the policy package.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/thoas/go-funk"

	"github.com/valerienguyen169/Shrink-Ray/internal/hasher"
	"github.com/valerienguyen169/Shrink-Ray/internal/link"
	"github.com/valerienguyen169/Shrink-Ray/internal/models"
	"github.com/valerienguyen169/Shrink-Ray/internal/policy"
	"github.com/valerienguyen169/Shrink-Ray/internal/session"
	"github.com/valerienguyen169/Shrink-Ray/internal/user"
)

type userKeeper interface {
	CreateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) (string, error)
	GetUserByID(ctx context.Context, userID string, transaction *sql.Tx) (*user.User, error)
	GetUserByUsername(ctx context.Context, username string, transaction *sql.Tx) (*user.User, error)
	RenameUser(ctx context.Context, userID, newUsername string, transaction *sql.Tx) error
	GetAllUsers(ctx context.Context) ([]*user.User, error)
}

type linkKeeper interface {
	InsertLink(ctx context.Context, lnk *link.Link, transaction *sql.Tx) error
	GetLinkByID(ctx context.Context, linkID string) (*link.Link, error)
	RecordVisit(ctx context.Context, linkID string) (*link.Link, error)
	GetLinksByUserID(ctx context.Context, userID string) ([]*link.Link, error)
	CountUserLinks(ctx context.Context, userID string) (int, error)
	DeleteLink(ctx context.Context, linkID string) error
}

type transactioner interface {
	BeginTransaction() (*sql.Tx, error)

	RollbackTransaction(transaction *sql.Tx) error

	CommitTransaction(transaction *sql.Tx) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

type storage interface {
	userKeeper
	linkKeeper
	transactioner
	pinger
}

// ErrLoginFailed is returned for an unknown username and for a wrong password
// alike, so a caller cannot probe which usernames exist.
var ErrLoginFailed = errors.New("unknown username or wrong password")

// Service wires the storage backend, the access policy, and the credential
// hasher into the operations exposed over HTTP.
type Service struct {
	db     storage
	hasher hasher.PasswordHasher
}

// New creates a Service over the given storage backend and password hasher.
func New(db storage, passwordHasher hasher.PasswordHasher) *Service {
	return &Service{
		db:     db,
		hasher: passwordHasher,
	}
}

// RegisterUser creates a new account with a derived credential hash.
// The username pre-check and the insert run in one transaction; a concurrent
// duplicate that slips between them still surfaces models.ErrUsernameTaken
// through the storage-level uniqueness constraint.
func (s *Service) RegisterUser(ctx context.Context, username, password string) (*user.User, error) {
	passwordHash, err := s.hasher.Derive(password)
	if err != nil {
		return nil, fmt.Errorf("failed to derive the credential hash: %w", err)
	}

	tx, err := s.db.BeginTransaction()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = s.db.RollbackTransaction(tx)
	}()

	_, err = s.db.GetUserByUsername(ctx, username, tx)
	if err == nil {
		return nil, models.ErrUsernameTaken
	}
	if !errors.Is(err, models.ErrUserNotFound) {
		return nil, err
	}

	usr := &user.User{
		Username:     username,
		PasswordHash: passwordHash,
	}
	usr.ID, err = s.db.CreateUser(ctx, usr, tx)
	if err != nil {
		return nil, err
	}

	if err := s.db.CommitTransaction(tx); err != nil {
		return nil, err
	}

	return usr, nil
}

// Login verifies the credentials and returns the account on success.
// Unknown usernames and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (*user.User, error) {
	usr, err := s.db.GetUserByUsername(ctx, username, nil)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, ErrLoginFailed
		}
		return nil, err
	}

	if !s.hasher.Verify(password, usr.PasswordHash) {
		return nil, ErrLoginFailed
	}

	return usr, nil
}

// ShortenURL creates a link owned by the calling account, subject to the
// quota policy. The identifier is derived deterministically, so shortening
// the same URL twice collides with models.ErrLinkExists.
func (s *Service) ShortenURL(
	ctx context.Context,
	caller *session.State,
	originalURL string,
) (*link.Link, error) {
	if !caller.LoggedIn {
		return nil, policy.ErrNotAuthenticated
	}

	owner, err := s.db.GetUserByID(ctx, caller.UserID, nil)
	if err != nil {
		return nil, err
	}

	ownedLinks, err := s.db.CountUserLinks(ctx, owner.ID)
	if err != nil {
		return nil, err
	}

	if err := policy.CanCreateLink(caller, ownedLinks); err != nil {
		return nil, err
	}

	lnk := &link.Link{
		ID:          link.DeriveID(originalURL, owner.ID),
		OriginalURL: originalURL,
		Owner:       owner,
	}
	if err := s.db.InsertLink(ctx, lnk, nil); err != nil {
		return nil, err
	}

	return lnk, nil
}

// ResolveLink records a visit on the link and returns the updated record, so
// the redirect target carries the incremented counter. Missing links surface
// models.ErrLinkNotFound.
func (s *Service) ResolveLink(ctx context.Context, linkID string) (*link.Link, error) {
	return s.db.RecordVisit(ctx, linkID)
}

// ListUserLinks returns the target account's links under the projection the
// policy grants the caller: owners and admins see everything, other viewers
// get the reduced view. A missing target account surfaces
// models.ErrUserNotFound.
func (s *Service) ListUserLinks(
	ctx context.Context,
	caller *session.State,
	targetUserID string,
) (interface{}, error) {
	if _, err := s.db.GetUserByID(ctx, targetUserID, nil); err != nil {
		return nil, err
	}

	links, err := s.db.GetLinksByUserID(ctx, targetUserID)
	if err != nil {
		return nil, err
	}

	if policy.LinkProjection(caller, targetUserID) == policy.ProjectionFull {
		return funk.Map(links, func(lnk *link.Link) models.LinkFull {
			return models.LinkFull{
				LinkID:         lnk.ID,
				OriginalURL:    lnk.OriginalURL,
				NumHits:        lnk.NumHits,
				LastAccessedOn: lnk.LastAccessedOn,
				User: models.LinkOwner{
					UserID:   lnk.Owner.ID,
					Username: lnk.Owner.Username,
					IsPro:    lnk.Owner.IsPro,
					IsAdmin:  lnk.Owner.IsAdmin,
				},
			}
		}).([]models.LinkFull), nil
	}

	return funk.Map(links, func(lnk *link.Link) models.LinkPublic {
		return models.LinkPublic{
			LinkID:      lnk.ID,
			OriginalURL: lnk.OriginalURL,
			User: models.LinkOwnerPublic{
				UserID:   lnk.Owner.ID,
				Username: lnk.Owner.Username,
				IsAdmin:  lnk.Owner.IsAdmin,
			},
		}
	}).([]models.LinkPublic), nil
}

// DeleteLink removes a link after the policy allows it. Authorization is
// checked twice: first against the targeted account from the request path,
// then against the link's actual owner once the record is loaded, so a link
// can never be deleted through a mislabeled path.
func (s *Service) DeleteLink(
	ctx context.Context,
	caller *session.State,
	targetUserID,
	targetLinkID string,
) error {
	if err := policy.CanDeleteLink(caller, targetUserID); err != nil {
		return err
	}

	lnk, err := s.db.GetLinkByID(ctx, targetLinkID)
	if err != nil {
		return err
	}

	if err := policy.CanDeleteLink(caller, lnk.Owner.ID); err != nil {
		return err
	}

	return s.db.DeleteLink(ctx, targetLinkID)
}

// RenameUser changes the username of the targeted account when the policy
// allows it.
func (s *Service) RenameUser(
	ctx context.Context,
	caller *session.State,
	targetUserID,
	newUsername string,
) error {
	if err := policy.CanRenameUser(caller, targetUserID); err != nil {
		return err
	}

	return s.db.RenameUser(ctx, targetUserID, newUsername, nil)
}

// ListUsers returns every account. Admin only.
func (s *Service) ListUsers(ctx context.Context, caller *session.State) ([]*user.User, error) {
	if err := policy.CanListUsers(caller); err != nil {
		return nil, err
	}

	return s.db.GetAllUsers(ctx)
}

// Ping checks the health of the storage layer.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
