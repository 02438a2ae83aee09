package models

import (
	"database/sql"
	"time"
)

const (
	PlatformTumblr   = "TUMBLR"
	PlatformFacebook = "FACEBOOK"
)

// SocialMediaConnection links a user account to one external account on one
// platform. Token columns always hold ciphertext; plaintext credentials never
// reach the database.
type SocialMediaConnection struct {
	ID       int64  `db:"id" json:"id"`
	UserID   int64  `db:"user_id" json:"user_id"`
	Platform string `db:"platform" json:"platform"`

	// Tumblr
	BlogName string `db:"blog_name" json:"blog_name"`

	// Facebook
	PageID   string `db:"page_id" json:"page_id"`
	PageName string `db:"page_name" json:"page_name"`

	// Encrypted credentials. AccessToken holds the OAuth1 token for Tumblr
	// and the long-lived user token for Facebook; TokenSecret is Tumblr
	// only; PageToken is Facebook only.
	AccessToken string `db:"access_token" json:"-"`
	TokenSecret string `db:"token_secret" json:"-"`
	PageToken   string `db:"page_token" json:"-"`

	IsActive     bool         `db:"is_active" json:"is_active"`
	LastSyncedAt sql.NullTime `db:"last_synced_at" json:"last_synced_at"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// DisplayName is what connection lists show: the blog for Tumblr, the page
// for Facebook.
func (c *SocialMediaConnection) DisplayName() string {
	if c.Platform == PlatformTumblr {
		return c.BlogName
	}
	return c.PageName
}
