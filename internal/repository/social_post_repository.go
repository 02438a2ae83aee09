package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/quizsquirrel/social-api/internal/models"
)

const postColumns = `id, quiz_id, connection_id, platform, external_post_id, external_url,
		likes, shares, comments, views, published_at, last_synced_at`

type SocialPostRepository interface {
	Create(ctx context.Context, tx *sql.Tx, p *models.SocialMediaPost) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.SocialMediaPost, error)
	GetForUser(ctx context.Context, id, userID int64) (*models.SocialMediaPost, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.SocialMediaPost, error)
	ListRecentByConnection(ctx context.Context, connectionID int64, since time.Time) ([]*models.SocialMediaPost, error)
	UpdateEngagement(ctx context.Context, id int64, e models.SocialMediaPost, syncedAt time.Time) error
	Remove(ctx context.Context, id int64) error
}

type socialPostRepository struct {
	db *sql.DB
}

func NewSocialPostRepository(db *sql.DB) SocialPostRepository {
	return &socialPostRepository{db: db}
}

func (r *socialPostRepository) Create(ctx context.Context, tx *sql.Tx, p *models.SocialMediaPost) (int64, error) {
	var err error
	var id int64

	var insertQuery = `
			INSERT INTO social_media_posts(
				quiz_id,
				connection_id,
				platform,
				external_post_id,
				external_url,
				published_at
			)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`

	if tx != nil {
		err = tx.QueryRowContext(ctx, insertQuery,
			p.QuizID, p.ConnectionID, p.Platform, p.ExternalPostID, p.ExternalURL, p.PublishedAt,
		).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, insertQuery,
			p.QuizID, p.ConnectionID, p.Platform, p.ExternalPostID, p.ExternalURL, p.PublishedAt,
		).Scan(&id)
	}

	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *socialPostRepository) GetByID(ctx context.Context, id int64) (*models.SocialMediaPost, error) {
	query := `SELECT ` + postColumns + ` FROM social_media_posts WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetForUser resolves ownership through the post's connection.
func (r *socialPostRepository) GetForUser(ctx context.Context, id, userID int64) (*models.SocialMediaPost, error) {
	query := `SELECT p.id, p.quiz_id, p.connection_id, p.platform, p.external_post_id, p.external_url,
			p.likes, p.shares, p.comments, p.views, p.published_at, p.last_synced_at
		FROM social_media_posts p
		JOIN social_media_connections c ON c.id = p.connection_id
		WHERE p.id = $1 AND c.user_id = $2`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id, userID))
}

func (r *socialPostRepository) scanOne(row *sql.Row) (*models.SocialMediaPost, error) {
	var p models.SocialMediaPost
	err := row.Scan(&p.ID, &p.QuizID, &p.ConnectionID, &p.Platform, &p.ExternalPostID, &p.ExternalURL,
		&p.Likes, &p.Shares, &p.Comments, &p.Views, &p.PublishedAt, &p.LastSyncedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &p, nil
}

func (r *socialPostRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.SocialMediaPost, error) {
	query := `SELECT p.id, p.quiz_id, p.connection_id, p.platform, p.external_post_id, p.external_url,
			p.likes, p.shares, p.comments, p.views, p.published_at, p.last_synced_at
		FROM social_media_posts p
		JOIN social_media_connections c ON c.id = p.connection_id
		WHERE c.user_id = $1
		ORDER BY p.published_at DESC`
	return r.list(ctx, query, userID)
}

func (r *socialPostRepository) ListRecentByConnection(ctx context.Context, connectionID int64, since time.Time) ([]*models.SocialMediaPost, error) {
	query := `SELECT ` + postColumns + `
		FROM social_media_posts
		WHERE connection_id = $1 AND published_at >= $2
		ORDER BY published_at DESC`
	return r.list(ctx, query, connectionID, since)
}

func (r *socialPostRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.SocialMediaPost, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.SocialMediaPost
	for rows.Next() {
		var p models.SocialMediaPost
		err := rows.Scan(&p.ID, &p.QuizID, &p.ConnectionID, &p.Platform, &p.ExternalPostID, &p.ExternalURL,
			&p.Likes, &p.Shares, &p.Comments, &p.Views, &p.PublishedAt, &p.LastSyncedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, &p)
	}
	return posts, rows.Err()
}

// UpdateEngagement is the only writer of the counter columns.
func (r *socialPostRepository) UpdateEngagement(ctx context.Context, id int64, e models.SocialMediaPost, syncedAt time.Time) error {
	query := `UPDATE social_media_posts
		SET likes = $2, shares = $3, comments = $4, views = $5, last_synced_at = $6
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, e.Likes, e.Shares, e.Comments, e.Views, syncedAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *socialPostRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM social_media_posts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
