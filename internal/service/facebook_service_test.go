package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	config "github.com/quizsquirrel/social-api/configs"
	"github.com/quizsquirrel/social-api/internal/cache"
	"github.com/quizsquirrel/social-api/internal/models"
	"github.com/quizsquirrel/social-api/internal/transfer"
)

func newFacebookTestService(t *testing.T, graphBase, tokenURL string, conn *fakeConnRepo) *facebookService {
	t.Helper()
	cfg := config.Config{
		FacebookAppID:       "app-id",
		FacebookAppSecret:   "app-secret",
		FacebookRedirectURI: "https://api.quizsquirrel.com/auth/facebook/callback",
	}
	return &facebookService{
		cfg:    cfg,
		sc:     cache.NewMemory(time.Minute),
		conn:   conn,
		cipher: testCipher(t, "0123456789abcdef0123456789abcdef"),
		oauthCfg: &oauth2.Config{
			ClientID:     cfg.FacebookAppID,
			ClientSecret: cfg.FacebookAppSecret,
			RedirectURL:  cfg.FacebookRedirectURI,
			Scopes:       []string{"pages_show_list", "pages_manage_posts"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  tokenURL + "/dialog/oauth",
				TokenURL: tokenURL + "/oauth/token",
			},
		},
		graphBase: graphBase,
	}
}

func newFacebookGraphServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"access_token": "short-lived", "token_type": "bearer"})
	})
	mux.HandleFunc("/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "fb_exchange_token", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "short-lived", r.URL.Query().Get("fb_exchange_token"))
		json.NewEncoder(w).Encode(transfer.FacebookTokenResponse{AccessToken: "long-lived", ExpiresIn: 5183944})
	})
	mux.HandleFunc("/me/accounts", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "long-lived", r.URL.Query().Get("access_token"))
		json.NewEncoder(w).Encode(transfer.FacebookPagesResponse{Data: []transfer.FacebookPage{
			{ID: "p1", Name: "Quiz Den", AccessToken: "p1-token", Tasks: []string{"MANAGE", "CREATE_CONTENT"}},
			{ID: "p2", Name: "Read Only", AccessToken: "p2-token", Tasks: []string{"ADVERTISE", "ANALYZE"}},
			{ID: "p3", Name: "Acorn Club", AccessToken: "p3-token", Tasks: []string{"CREATE_CONTENT"}},
		}})
	})
	mux.HandleFunc("/p1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "p1-token", r.URL.Query().Get("access_token"))
		json.NewEncoder(w).Encode(transfer.FacebookPage{ID: "p1", Name: "Quiz Den"})
	})
	return httptest.NewServer(mux)
}

func TestFacebookAuthorizationURLCachesState(t *testing.T) {
	svc := newFacebookTestService(t, "http://127.0.0.1:1", "http://127.0.0.1:1", newFakeConnRepo())

	authURL, err := svc.AuthorizationURL(context.Background())

	require.NoError(t, err)
	assert.Contains(t, authURL, "client_id=app-id")
	assert.Contains(t, authURL, "state=")
}

func TestFacebookCallbackFiltersPagesByTask(t *testing.T) {
	srv := newFacebookGraphServer(t)
	defer srv.Close()

	svc := newFacebookTestService(t, srv.URL, srv.URL, newFakeConnRepo())
	svc.sc.Set(handshakeKey(models.PlatformFacebook, "state-1"), []byte("state-1"), time.Minute)

	selection, err := svc.FacebookCallback(context.Background(), "state-1", "auth-code", 10)

	require.NoError(t, err)
	require.NotEmpty(t, selection.SelectionToken)
	require.Len(t, selection.Pages, 2, "the page without publish tasks should be filtered out")
	assert.Equal(t, "p1", selection.Pages[0].ID)
	assert.Equal(t, "p3", selection.Pages[1].ID)

	// Page tokens stay out of the response.
	raw, err := json.Marshal(selection)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "p1-token")
}

func TestFacebookCallbackRejectsUnknownState(t *testing.T) {
	svc := newFacebookTestService(t, "http://127.0.0.1:1", "http://127.0.0.1:1", newFakeConnRepo())

	_, err := svc.FacebookCallback(context.Background(), "never-issued", "auth-code", 10)
	require.Error(t, err)
}

func seedPendingPages(svc *facebookService, token string, userID int64) {
	payload, _ := json.Marshal(transfer.PendingPages{
		UserID:    userID,
		UserToken: "long-lived",
		EligiblePages: []transfer.FacebookPage{
			{ID: "p1", Name: "Quiz Den", AccessToken: "p1-token", Tasks: []string{"MANAGE"}},
			{ID: "p3", Name: "Acorn Club", AccessToken: "p3-token", Tasks: []string{"CREATE_CONTENT"}},
		},
	})
	svc.sc.Set(selectionKey(token), payload, time.Minute)
}

func TestSelectPageCreatesConnection(t *testing.T) {
	srv := newFacebookGraphServer(t)
	defer srv.Close()

	conn := newFakeConnRepo()
	svc := newFacebookTestService(t, srv.URL, srv.URL, conn)
	seedPendingPages(svc, "sel-1", 10)

	id, err := svc.SelectPage(context.Background(), 10, "sel-1", "p1")

	require.NoError(t, err)
	require.NotZero(t, id)
	created := conn.connections[id]
	require.NotNil(t, created)
	assert.Equal(t, models.PlatformFacebook, created.Platform)
	assert.Equal(t, "p1", created.PageID)
	assert.Equal(t, "Quiz Den", created.PageName)

	pageToken, err := svc.cipher.Decrypt(created.PageToken)
	require.NoError(t, err)
	assert.Equal(t, "p1-token", pageToken)
	userToken, err := svc.cipher.Decrypt(created.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "long-lived", userToken)

	// Selection is consumed.
	_, ok := svc.sc.Get(selectionKey("sel-1"))
	assert.False(t, ok)
}

func TestSelectPageRejectsUnofferedPage(t *testing.T) {
	conn := newFakeConnRepo()
	svc := newFacebookTestService(t, "http://127.0.0.1:1", "http://127.0.0.1:1", conn)
	seedPendingPages(svc, "sel-1", 10)

	_, err := svc.SelectPage(context.Background(), 10, "sel-1", "p2")

	require.Error(t, err)
	assert.Empty(t, conn.connections)
}

func TestSelectPageRejectsForeignUser(t *testing.T) {
	conn := newFakeConnRepo()
	svc := newFacebookTestService(t, "http://127.0.0.1:1", "http://127.0.0.1:1", conn)
	seedPendingPages(svc, "sel-1", 10)

	_, err := svc.SelectPage(context.Background(), 99, "sel-1", "p1")

	require.Error(t, err)
	assert.Empty(t, conn.connections)
}

func TestPendingSelectionRereadsPages(t *testing.T) {
	svc := newFacebookTestService(t, "http://127.0.0.1:1", "http://127.0.0.1:1", newFakeConnRepo())
	seedPendingPages(svc, "sel-1", 10)

	selection, err := svc.PendingSelection(context.Background(), 10, "sel-1")

	require.NoError(t, err)
	assert.Equal(t, "sel-1", selection.SelectionToken)
	require.Len(t, selection.Pages, 2)

	// Reading does not consume; only SelectPage does.
	_, ok := svc.sc.Get(selectionKey("sel-1"))
	assert.True(t, ok)
}
