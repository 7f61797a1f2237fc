package memorystorage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerienguyen169/Shrink-Ray/internal/link"
	"github.com/valerienguyen169/Shrink-Ray/internal/models"
	"github.com/valerienguyen169/Shrink-Ray/internal/user"
)

func newStorageWithUser(t *testing.T, username string) (*MemoryStorage, *user.User) {
	t.Helper()

	theStorage, err := New()
	require.NoError(t, err)

	usr := &user.User{Username: username, PasswordHash: "opaque"}
	userID, err := theStorage.CreateUser(context.Background(), usr, nil)
	require.NoError(t, err)
	usr.ID = userID

	return theStorage, usr
}

func TestCreateUserRejectsDuplicateUsername(t *testing.T) {
	theStorage, _ := newStorageWithUser(t, "ada")

	_, err := theStorage.CreateUser(
		context.Background(),
		&user.User{Username: "ada", PasswordHash: "other"},
		nil,
	)
	assert.ErrorIs(t, err, models.ErrUsernameTaken)
}

func TestGetUserByUsernameIsCaseSensitive(t *testing.T) {
	theStorage, usr := newStorageWithUser(t, "Ada")

	found, err := theStorage.GetUserByUsername(context.Background(), "Ada", nil)
	require.NoError(t, err)
	assert.Equal(t, usr.ID, found.ID)

	_, err = theStorage.GetUserByUsername(context.Background(), "ada", nil)
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestRenameUser(t *testing.T) {
	theStorage, usr := newStorageWithUser(t, "ada")

	otherUsr := &user.User{Username: "grace", PasswordHash: "opaque"}
	_, err := theStorage.CreateUser(context.Background(), otherUsr, nil)
	require.NoError(t, err)

	assert.ErrorIs(
		t,
		theStorage.RenameUser(context.Background(), usr.ID, "grace", nil),
		models.ErrUsernameTaken,
	)

	require.NoError(t, theStorage.RenameUser(context.Background(), usr.ID, "lovelace", nil))

	renamed, err := theStorage.GetUserByUsername(context.Background(), "lovelace", nil)
	require.NoError(t, err)
	assert.Equal(t, usr.ID, renamed.ID)

	_, err = theStorage.GetUserByUsername(context.Background(), "ada", nil)
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestInsertLinkRoundTrip(t *testing.T) {
	theStorage, usr := newStorageWithUser(t, "ada")

	lnk := &link.Link{
		ID:          link.DeriveID("https://example.com", usr.ID),
		OriginalURL: "https://example.com",
		Owner:       usr,
	}
	require.NoError(t, theStorage.InsertLink(context.Background(), lnk, nil))

	fetched, err := theStorage.GetLinkByID(context.Background(), lnk.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", fetched.OriginalURL)
	assert.Equal(t, int64(0), fetched.NumHits)
	assert.False(t, fetched.LastAccessedOn.IsZero())
	require.NotNil(t, fetched.Owner)
	assert.Equal(t, usr.ID, fetched.Owner.ID)
}

func TestInsertLinkRejectsDuplicateID(t *testing.T) {
	theStorage, usr := newStorageWithUser(t, "ada")

	lnk := &link.Link{ID: "abcdefghi", OriginalURL: "https://example.com", Owner: usr}
	require.NoError(t, theStorage.InsertLink(context.Background(), lnk, nil))

	again := &link.Link{ID: "abcdefghi", OriginalURL: "https://example.com", Owner: usr}
	assert.ErrorIs(t, theStorage.InsertLink(context.Background(), again, nil), models.ErrLinkExists)
}

func TestRecordVisitSequential(t *testing.T) {
	theStorage, usr := newStorageWithUser(t, "ada")

	lnk := &link.Link{ID: "abcdefghi", OriginalURL: "https://example.com", Owner: usr}
	require.NoError(t, theStorage.InsertLink(context.Background(), lnk, nil))

	for i := 1; i <= 3; i++ {
		updated, err := theStorage.RecordVisit(context.Background(), lnk.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(i), updated.NumHits)
	}
}

func TestRecordVisitConcurrentLosesNoUpdates(t *testing.T) {
	theStorage, usr := newStorageWithUser(t, "ada")

	lnk := &link.Link{ID: "abcdefghi", OriginalURL: "https://example.com", Owner: usr}
	require.NoError(t, theStorage.InsertLink(context.Background(), lnk, nil))

	const visits = 200

	var wg sync.WaitGroup
	wg.Add(visits)
	for i := 0; i < visits; i++ {
		go func() {
			defer wg.Done()
			_, err := theStorage.RecordVisit(context.Background(), lnk.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	final, err := theStorage.GetLinkByID(context.Background(), lnk.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(visits), final.NumHits)
}

func TestRecordVisitUnknownLink(t *testing.T) {
	theStorage, err := New()
	require.NoError(t, err)

	_, err = theStorage.RecordVisit(context.Background(), "missing01")
	assert.ErrorIs(t, err, models.ErrLinkNotFound)
}

func TestGetLinksByUserIDKeepsCreationOrder(t *testing.T) {
	theStorage, usr := newStorageWithUser(t, "ada")

	urls := []string{"https://a.example", "https://b.example", "https://c.example"}
	for _, url := range urls {
		lnk := &link.Link{ID: link.DeriveID(url, usr.ID), OriginalURL: url, Owner: usr}
		require.NoError(t, theStorage.InsertLink(context.Background(), lnk, nil))
	}

	links, err := theStorage.GetLinksByUserID(context.Background(), usr.ID)
	require.NoError(t, err)
	require.Len(t, links, len(urls))
	for i, url := range urls {
		assert.Equal(t, url, links[i].OriginalURL)
	}

	count, err := theStorage.CountUserLinks(context.Background(), usr.ID)
	require.NoError(t, err)
	assert.Equal(t, len(urls), count)
}

func TestDeleteLinkIsIdempotent(t *testing.T) {
	theStorage, usr := newStorageWithUser(t, "ada")

	lnk := &link.Link{ID: "abcdefghi", OriginalURL: "https://example.com", Owner: usr}
	require.NoError(t, theStorage.InsertLink(context.Background(), lnk, nil))

	require.NoError(t, theStorage.DeleteLink(context.Background(), lnk.ID))
	require.NoError(t, theStorage.DeleteLink(context.Background(), lnk.ID))

	_, err := theStorage.GetLinkByID(context.Background(), lnk.ID)
	assert.ErrorIs(t, err, models.ErrLinkNotFound)

	count, err := theStorage.CountUserLinks(context.Background(), usr.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
