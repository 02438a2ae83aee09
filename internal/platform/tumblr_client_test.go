package platform

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizsquirrel/social-api/internal/transfer"
)

func newTestTumblrClient(serverURL string) *TumblrClient {
	c := NewTumblrClient("ck", "cs", "token", "token-secret", "squirrelblog")
	c.apiBase = serverURL
	return c
}

func TestTumblrClient_Publish(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"meta":{"status":201,"msg":"Created"},"response":{"id_string":"774691771233812480","state":"published"}}`))
	}))
	defer server.Close()

	c := newTestTumblrClient(server.URL)
	resp, err := c.Publish(context.Background(), &PostContent{
		Blocks: []transfer.NPFBlock{{Type: "text", Subtype: "heading1", Text: "Which Squirrel Are You?"}},
		Tags:   []string{"quiz", "personality-quiz"},
	})
	require.NoError(t, err)

	assert.Equal(t, "774691771233812480", resp.PostID)
	assert.Equal(t, "https://www.tumblr.com/squirrelblog/774691771233812480", resp.PostURL)
	assert.Equal(t, "/v2/blog/squirrelblog/posts", gotPath)
	assert.True(t, strings.HasPrefix(gotAuth, "OAuth "))
	assert.Contains(t, gotAuth, `oauth_signature=`)
}

func TestTumblrClient_Publish_MapsProviderErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status int
		kind   ErrorKind
	}{
		{http.StatusUnauthorized, KindTokenExpired},
		{http.StatusForbidden, KindPermissionDenied},
		{http.StatusTooManyRequests, KindRateLimited},
		{http.StatusBadGateway, KindPlatformError},
	}
	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			w.Write([]byte(`{"meta":{"status":0,"msg":"nope"}}`))
		}))

		c := newTestTumblrClient(server.URL)
		_, err := c.Publish(context.Background(), &PostContent{})
		require.Error(t, err, "status %d", tc.status)
		assert.Equal(t, tc.kind, KindOf(err), "status %d", tc.status)

		server.Close()
	}
}

func TestTumblrClient_GetEngagement(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "774691771233812480", r.URL.Query().Get("id"))
		w.Write([]byte(`{"meta":{"status":200,"msg":"OK"},"response":{"posts":[{
			"id_string":"774691771233812480","note_count":6,
			"notes":[{"type":"like"},{"type":"like"},{"type":"reblog"},{"type":"reply"},{"type":"like"},{"type":"reblog"}]
		}]}}`))
	}))
	defer server.Close()

	c := newTestTumblrClient(server.URL)
	eng, err := c.GetEngagement(context.Background(), "774691771233812480")
	require.NoError(t, err)

	assert.Equal(t, 3, eng.Likes)
	assert.Equal(t, 2, eng.Shares)
	assert.Equal(t, 1, eng.Comments)
	assert.Equal(t, 0, eng.Views)
}

func TestTumblrClient_GetEngagement_PostGone(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"meta":{"status":404,"msg":"Not Found"}}`))
	}))
	defer server.Close()

	c := newTestTumblrClient(server.URL)
	_, err := c.GetEngagement(context.Background(), "12345")
	assert.True(t, errors.Is(err, ErrPostGone))
}

func TestTumblrClient_Delete(t *testing.T) {
	t.Parallel()

	var gotBody, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b := make([]byte, r.ContentLength)
		r.Body.Read(b)
		gotBody = string(b)
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"meta":{"status":200,"msg":"OK"}}`))
	}))
	defer server.Close()

	c := newTestTumblrClient(server.URL)
	require.NoError(t, c.Delete(context.Background(), "12345"))
	assert.Equal(t, "id=12345", gotBody)
	// id is a form field; repeating it in the header would double it in the
	// server's signature base string.
	assert.NotContains(t, gotAuth, "id=\"12345\"")
}
