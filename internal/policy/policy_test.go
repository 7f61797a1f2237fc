package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/valerienguyen169/Shrink-Ray/internal/session"
)

func TestCanCreateLinkQuotaBoundary(t *testing.T) {
	caller := &session.State{UserID: "user-1", LoggedIn: true}

	// Four owned links leave room for a fifth.
	assert.NoError(t, CanCreateLink(caller, 4))

	// Five owned links hit the cap.
	assert.ErrorIs(t, CanCreateLink(caller, 5), ErrQuotaExceeded)
	assert.ErrorIs(t, CanCreateLink(caller, 6), ErrQuotaExceeded)
}

func TestCanCreateLinkPrivilegedAccounts(t *testing.T) {
	testCases := []struct {
		name   string
		caller *session.State
	}{
		{"pro only", &session.State{UserID: "user-1", IsPro: true, LoggedIn: true}},
		{"admin only", &session.State{UserID: "user-1", IsAdmin: true, LoggedIn: true}},
		{"pro and admin", &session.State{UserID: "user-1", IsPro: true, IsAdmin: true, LoggedIn: true}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.NoError(t, CanCreateLink(testCase.caller, 100))
		})
	}
}

func TestCanCreateLinkRequiresAuthentication(t *testing.T) {
	assert.ErrorIs(t, CanCreateLink(&session.State{}, 0), ErrNotAuthenticated)
}

func TestLinkProjection(t *testing.T) {
	owner := &session.State{UserID: "user-1", LoggedIn: true}
	admin := &session.State{UserID: "user-2", IsAdmin: true, LoggedIn: true}
	viewer := &session.State{UserID: "user-3", LoggedIn: true}
	anonymous := &session.State{}

	assert.Equal(t, ProjectionFull, LinkProjection(owner, "user-1"))
	assert.Equal(t, ProjectionFull, LinkProjection(admin, "user-1"))
	assert.Equal(t, ProjectionPublic, LinkProjection(viewer, "user-1"))
	assert.Equal(t, ProjectionPublic, LinkProjection(anonymous, "user-1"))
}

func TestCanDeleteLink(t *testing.T) {
	owner := &session.State{UserID: "user-1", LoggedIn: true}
	admin := &session.State{UserID: "user-2", IsAdmin: true, LoggedIn: true}
	stranger := &session.State{UserID: "user-3", LoggedIn: true}

	assert.NoError(t, CanDeleteLink(owner, "user-1"))
	assert.NoError(t, CanDeleteLink(admin, "user-1"))
	assert.ErrorIs(t, CanDeleteLink(stranger, "user-1"), ErrForbidden)
	assert.ErrorIs(t, CanDeleteLink(&session.State{}, "user-1"), ErrNotAuthenticated)
}

func TestCanRenameUser(t *testing.T) {
	assert.NoError(t, CanRenameUser(&session.State{UserID: "user-1", LoggedIn: true}, "user-1"))
	assert.NoError(t, CanRenameUser(&session.State{UserID: "user-2", IsAdmin: true, LoggedIn: true}, "user-1"))
	assert.ErrorIs(
		t,
		CanRenameUser(&session.State{UserID: "user-3", LoggedIn: true}, "user-1"),
		ErrForbidden,
	)
	assert.ErrorIs(t, CanRenameUser(&session.State{}, "user-1"), ErrNotAuthenticated)
}

func TestCanListUsers(t *testing.T) {
	assert.NoError(t, CanListUsers(&session.State{UserID: "user-1", IsAdmin: true, LoggedIn: true}))
	assert.ErrorIs(t, CanListUsers(&session.State{UserID: "user-1", LoggedIn: true}), ErrForbidden)
	assert.ErrorIs(t, CanListUsers(&session.State{}), ErrNotAuthenticated)
}
