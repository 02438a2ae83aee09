package models

import (
	"database/sql"
	"time"
)

// SocialMediaPost records one successful publish of a quiz to an external
// platform. ExternalPostID is kept as a string; Tumblr post ids overflow
// float64 when round-tripped through JSON numbers.
type SocialMediaPost struct {
	ID           int64  `db:"id" json:"id"`
	QuizID       int64  `db:"quiz_id" json:"quiz_id"`
	ConnectionID int64  `db:"connection_id" json:"connection_id"`
	Platform     string `db:"platform" json:"platform"`

	ExternalPostID string `db:"external_post_id" json:"external_post_id"`
	ExternalURL    string `db:"external_url" json:"external_url"`

	Likes    int `db:"likes" json:"likes"`
	Shares   int `db:"shares" json:"shares"`
	Comments int `db:"comments" json:"comments"`
	Views    int `db:"views" json:"views"`

	PublishedAt  time.Time    `db:"published_at" json:"published_at"`
	LastSyncedAt sql.NullTime `db:"last_synced_at" json:"last_synced_at"`
}
