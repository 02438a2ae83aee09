package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizsquirrel/social-api/internal/models"
)

func connectionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "platform", "blog_name", "page_id", "page_name",
		"access_token", "token_secret", "page_token", "is_active", "last_synced_at",
		"created_at", "updated_at",
	})
}

func TestConnectionRepository_FindForUser(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM social_media_connections WHERE id = \\$1 AND user_id = \\$2 AND platform = \\$3").
		WithArgs(int64(5), int64(9), models.PlatformTumblr).
		WillReturnRows(connectionRows().AddRow(
			5, 9, models.PlatformTumblr, "squirrelblog", "", "",
			"enc-token", "enc-secret", "", true, nil, now, now,
		))

	r := NewConnectionRepository(db)
	conn, err := r.FindForUser(context.Background(), 5, 9, models.PlatformTumblr)
	require.NoError(t, err)
	require.NotNil(t, conn)

	assert.Equal(t, int64(5), conn.ID)
	assert.Equal(t, "squirrelblog", conn.BlogName)
	assert.True(t, conn.IsActive)
	assert.False(t, conn.LastSyncedAt.Valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnectionRepository_FindForUser_NoRowIsNil(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM social_media_connections").
		WithArgs(int64(5), int64(404), models.PlatformFacebook).
		WillReturnRows(connectionRows())

	r := NewConnectionRepository(db)
	conn, err := r.FindForUser(context.Background(), 5, 404, models.PlatformFacebook)
	require.NoError(t, err)
	assert.Nil(t, conn)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnectionRepository_Create(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO social_media_connections").
		WithArgs(int64(9), models.PlatformFacebook, "", "1234567890", "Squirrel Fans",
			"enc-user-token", "", "enc-page-token").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

	r := NewConnectionRepository(db)
	id, err := r.Create(context.Background(), nil, &models.SocialMediaConnection{
		UserID:      9,
		Platform:    models.PlatformFacebook,
		PageID:      "1234567890",
		PageName:    "Squirrel Fans",
		AccessToken: "enc-user-token",
		PageToken:   "enc-page-token",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnectionRepository_DeactivateAll(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE social_media_connections").
		WillReturnResult(sqlmock.NewResult(0, 37))

	r := NewConnectionRepository(db)
	affected, err := r.DeactivateAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(37), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnectionRepository_GetNewestActive_Empty(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM social_media_connections\\s+WHERE is_active = TRUE ORDER BY created_at DESC LIMIT 1").
		WillReturnRows(connectionRows())

	r := NewConnectionRepository(db)
	conn, err := r.GetNewestActive(context.Background())
	require.NoError(t, err)
	assert.Nil(t, conn)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnectionRepository_ListActiveUserIDs(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT DISTINCT user_id FROM social_media_connections WHERE is_active = TRUE").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(int64(3)).AddRow(int64(9)))

	r := NewConnectionRepository(db)
	ids, err := r.ListActiveUserIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 9}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
