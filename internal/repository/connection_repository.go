package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/quizsquirrel/social-api/internal/models"
)

const connectionColumns = `id, user_id, platform, blog_name, page_id, page_name,
		access_token, token_secret, page_token, is_active, last_synced_at, created_at, updated_at`

type ConnectionRepository interface {
	Create(ctx context.Context, tx *sql.Tx, c *models.SocialMediaConnection) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.SocialMediaConnection, error)
	FindForUser(ctx context.Context, id, userID int64, platform string) (*models.SocialMediaConnection, error)
	GetNewestActive(ctx context.Context) (*models.SocialMediaConnection, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.SocialMediaConnection, error)
	ListActiveByUserID(ctx context.Context, userID int64) ([]*models.SocialMediaConnection, error)
	ListActiveUserIDs(ctx context.Context) ([]int64, error)
	CheckByUserID(ctx context.Context, connectionID, userID int64) (bool, error)
	Deactivate(ctx context.Context, id int64) error
	DeactivateAll(ctx context.Context) (int64, error)
	UpdateLastSynced(ctx context.Context, id int64, syncedAt time.Time) error
	Remove(ctx context.Context, id int64) error
}

type connectionRepository struct {
	db *sql.DB
}

func NewConnectionRepository(db *sql.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

func (r *connectionRepository) Create(ctx context.Context, tx *sql.Tx, c *models.SocialMediaConnection) (int64, error) {
	var err error
	var id int64

	var insertQuery = `
			INSERT INTO social_media_connections(
				user_id,
				platform,
				blog_name,
				page_id,
				page_name,
				access_token,
				token_secret,
				page_token,
				is_active
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)
			RETURNING id
		`

	if tx != nil {
		err = tx.QueryRowContext(ctx, insertQuery,
			c.UserID, c.Platform, c.BlogName, c.PageID, c.PageName,
			c.AccessToken, c.TokenSecret, c.PageToken,
		).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, insertQuery,
			c.UserID, c.Platform, c.BlogName, c.PageID, c.PageName,
			c.AccessToken, c.TokenSecret, c.PageToken,
		).Scan(&id)
	}

	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *connectionRepository) GetByID(ctx context.Context, id int64) (*models.SocialMediaConnection, error) {
	query := `SELECT ` + connectionColumns + ` FROM social_media_connections WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// FindForUser is the publisher's lookup: the row must exist, belong to the
// user, and match the platform. Inactive and missing rows both come back nil.
func (r *connectionRepository) FindForUser(ctx context.Context, id, userID int64, platform string) (*models.SocialMediaConnection, error) {
	query := `SELECT ` + connectionColumns + `
		FROM social_media_connections
		WHERE id = $1 AND user_id = $2 AND platform = $3`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id, userID, platform))
}

// GetNewestActive returns the most recently created active connection, or nil
// when none exist. Startup uses it as a decryption probe of the stored tokens.
func (r *connectionRepository) GetNewestActive(ctx context.Context) (*models.SocialMediaConnection, error) {
	query := `SELECT ` + connectionColumns + `
		FROM social_media_connections
		WHERE is_active = TRUE ORDER BY created_at DESC LIMIT 1`
	return r.scanOne(r.db.QueryRowContext(ctx, query))
}

func (r *connectionRepository) scanOne(row *sql.Row) (*models.SocialMediaConnection, error) {
	var c models.SocialMediaConnection
	err := row.Scan(&c.ID, &c.UserID, &c.Platform, &c.BlogName, &c.PageID, &c.PageName,
		&c.AccessToken, &c.TokenSecret, &c.PageToken, &c.IsActive, &c.LastSyncedAt,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &c, nil
}

func (r *connectionRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.SocialMediaConnection, error) {
	query := `SELECT id, user_id, platform, blog_name, page_id, page_name, is_active, last_synced_at, created_at
		FROM social_media_connections WHERE user_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var connections []*models.SocialMediaConnection
	for rows.Next() {
		var c models.SocialMediaConnection
		err := rows.Scan(&c.ID, &c.UserID, &c.Platform, &c.BlogName, &c.PageID, &c.PageName,
			&c.IsActive, &c.LastSyncedAt, &c.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		connections = append(connections, &c)
	}
	return connections, rows.Err()
}

func (r *connectionRepository) ListActiveByUserID(ctx context.Context, userID int64) ([]*models.SocialMediaConnection, error) {
	query := `SELECT ` + connectionColumns + `
		FROM social_media_connections WHERE user_id = $1 AND is_active = TRUE`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var connections []*models.SocialMediaConnection
	for rows.Next() {
		var c models.SocialMediaConnection
		err := rows.Scan(&c.ID, &c.UserID, &c.Platform, &c.BlogName, &c.PageID, &c.PageName,
			&c.AccessToken, &c.TokenSecret, &c.PageToken, &c.IsActive, &c.LastSyncedAt,
			&c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		connections = append(connections, &c)
	}
	return connections, rows.Err()
}

// ListActiveUserIDs feeds the periodic engagement sync: one task per user
// that still has something to sync.
func (r *connectionRepository) ListActiveUserIDs(ctx context.Context) ([]int64, error) {
	query := `SELECT DISTINCT user_id FROM social_media_connections WHERE is_active = TRUE`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var userIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		userIDs = append(userIDs, id)
	}
	return userIDs, rows.Err()
}

func (r *connectionRepository) CheckByUserID(ctx context.Context, connectionID, userID int64) (bool, error) {
	query := "SELECT 1 FROM social_media_connections WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, connectionID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *connectionRepository) Deactivate(ctx context.Context, id int64) error {
	query := `UPDATE social_media_connections
		SET is_active = FALSE, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// DeactivateAll is the key-rotation remediation: every connection goes
// inactive so the publisher forces a fresh OAuth handshake. Stored ciphertext
// is left alone; it is undecryptable, not re-encryptable.
func (r *connectionRepository) DeactivateAll(ctx context.Context) (int64, error) {
	query := `UPDATE social_media_connections
		SET is_active = FALSE, updated_at = CURRENT_TIMESTAMP WHERE is_active = TRUE`
	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return result.RowsAffected()
}

func (r *connectionRepository) UpdateLastSynced(ctx context.Context, id int64, syncedAt time.Time) error {
	query := `UPDATE social_media_connections SET last_synced_at = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, syncedAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *connectionRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM social_media_connections WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
