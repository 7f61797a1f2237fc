// Package policy holds the state-free authorization rules of the service.
// Every function here is a pure decision over the caller's session state and
// the targeted resource; no I/O happens at this layer.
package policy

import (
	"errors"

	"github.com/valerienguyen169/Shrink-Ray/internal/session"
)

// MaxLinksPerUser is the link quota applied to accounts that are neither pro
// nor admin.
const MaxLinksPerUser = 5

// Projection selects which fields of a link are included in a response.
type Projection int

const (
	// ProjectionPublic omits the hit counter and last-access timestamp.
	ProjectionPublic Projection = iota

	// ProjectionFull includes all link fields.
	ProjectionFull
)

var (
	// ErrNotAuthenticated denies callers without a logged-in session.
	// Handlers translate it into a redirect to the login entry point.
	ErrNotAuthenticated = errors.New("authentication required")

	// ErrQuotaExceeded denies link creation for non-privileged accounts that
	// already own MaxLinksPerUser links.
	ErrQuotaExceeded = errors.New("link quota exceeded")

	// ErrForbidden denies operations on resources the caller neither owns nor
	// administers.
	ErrForbidden = errors.New("operation not permitted")
)

// CanCreateLink decides whether the caller may create another link given the
// number of links they already own. Pro and admin accounts are exempt from
// the quota; either flag alone suffices.
func CanCreateLink(caller *session.State, ownedLinks int) error {
	if !caller.LoggedIn {
		return ErrNotAuthenticated
	}
	if caller.IsPro || caller.IsAdmin {
		return nil
	}
	if ownedLinks >= MaxLinksPerUser {
		return ErrQuotaExceeded
	}

	return nil
}

// LinkProjection decides how much of a link listing the caller may see.
// There is no deny outcome: viewers who are neither the target account nor an
// admin get the reduced projection instead.
func LinkProjection(caller *session.State, targetUserID string) Projection {
	if caller.LoggedIn && (caller.IsAdmin || caller.UserID == targetUserID) {
		return ProjectionFull
	}

	return ProjectionPublic
}

// CanDeleteLink decides whether the caller may delete a link owned by
// ownerID. Only the owner and admins may delete.
func CanDeleteLink(caller *session.State, ownerID string) error {
	if !caller.LoggedIn {
		return ErrNotAuthenticated
	}
	if caller.IsAdmin || caller.UserID == ownerID {
		return nil
	}

	return ErrForbidden
}

// CanRenameUser decides whether the caller may change the username of the
// targeted account. Only the account itself and admins may rename.
func CanRenameUser(caller *session.State, targetUserID string) error {
	if !caller.LoggedIn {
		return ErrNotAuthenticated
	}
	if caller.IsAdmin || caller.UserID == targetUserID {
		return nil
	}

	return ErrForbidden
}

// CanListUsers decides whether the caller may enumerate all accounts.
// Admin only.
func CanListUsers(caller *session.State) error {
	if !caller.LoggedIn {
		return ErrNotAuthenticated
	}
	if !caller.IsAdmin {
		return ErrForbidden
	}

	return nil
}
