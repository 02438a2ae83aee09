package platform

import (
	"context"
	"net/http"
	"time"

	"github.com/quizsquirrel/social-api/internal/transfer"
)

// PostContent is the formatter's output. Each client reads the half that
// applies to its platform.
type PostContent struct {
	// Tumblr
	Blocks []transfer.NPFBlock
	Tags   []string

	// Facebook
	Message  string
	LinkURL  string
	ImageURL string
}

type PublishResponse struct {
	PostID  string
	PostURL string
}

type Engagement struct {
	Likes    int
	Shares   int
	Comments int
	Views    int
}

// Client is the per-platform capability set the publisher and syncer depend
// on. Implementations carry decrypted credentials for one connection and must
// not be reused across connections.
type Client interface {
	Publish(ctx context.Context, content *PostContent) (*PublishResponse, error)
	Delete(ctx context.Context, externalPostID string) error
	GetEngagement(ctx context.Context, externalPostID string) (*Engagement, error)
}

// Outbound calls must never block past the request timeout; retries belong
// to callers.
var httpClient = &http.Client{Timeout: 30 * time.Second}
