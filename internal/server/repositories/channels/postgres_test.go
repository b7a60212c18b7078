package channels

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akarpovs/viewtube/internal/common"
)

func newMockRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestGetChannelProfile(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{
		"id", "handle", "email", "display_name", "avatar_url", "cover_image_url",
		"subscribers", "subscribed_to", "is_subscribed",
	}).AddRow("acc-1", "alice", "a@x.com", "Alice", "http://m/a", "", int64(5), int64(2), true)

	mock.ExpectQuery("SELECT (.+) FROM accounts a").
		WithArgs("Alice ", "viewer-1").
		WillReturnRows(rows)

	profile, err := repo.GetChannelProfile(context.Background(), "viewer-1", "Alice ")
	require.NoError(t, err)

	assert.Equal(t, "alice", profile.Handle)
	assert.EqualValues(t, 5, profile.SubscribersCount)
	assert.EqualValues(t, 2, profile.SubscribedToCount)
	assert.True(t, profile.IsSubscribed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetChannelProfile_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM accounts a").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "handle", "email", "display_name", "avatar_url", "cover_image_url",
			"subscribers", "subscribed_to", "is_subscribed",
		}))

	_, err := repo.GetChannelProfile(context.Background(), "viewer-1", "ghost")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetWatchHistory_StoredOrder(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "title", "description", "thumbnail_url", "video_file_url",
		"duration", "views", "created_at", "handle", "display_name", "avatar_url",
	}).
		AddRow("v2", "Second", "", "t2", "f2", 12.5, int64(100), now, "bob", "Bob", "http://m/b").
		AddRow("v1", "First", "", "t1", "f1", 33.0, int64(7), now, "alice", "Alice", "http://m/a")

	mock.ExpectQuery("SELECT (.+) FROM watch_history h").
		WithArgs("viewer-1").
		WillReturnRows(rows)

	history, err := repo.GetWatchHistory(context.Background(), "viewer-1")
	require.NoError(t, err)
	require.Len(t, history, 2)

	// Order is exactly as returned by the position ordering.
	assert.Equal(t, "v2", history[0].ID)
	assert.Equal(t, "bob", history[0].Owner.Handle)
	assert.Equal(t, "v1", history[1].ID)
	assert.Equal(t, "alice", history[1].Owner.Handle)
}

func TestGetWatchHistory_Empty(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM watch_history h").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "title", "description", "thumbnail_url", "video_file_url",
			"duration", "views", "created_at", "handle", "display_name", "avatar_url",
		}))

	history, err := repo.GetWatchHistory(context.Background(), "viewer-1")
	require.NoError(t, err)
	assert.Empty(t, history)
}
