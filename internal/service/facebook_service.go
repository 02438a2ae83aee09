package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"

	config "github.com/quizsquirrel/social-api/configs"
	"github.com/quizsquirrel/social-api/internal/cache"
	"github.com/quizsquirrel/social-api/internal/models"
	"github.com/quizsquirrel/social-api/internal/platform"
	"github.com/quizsquirrel/social-api/internal/repository"
	"github.com/quizsquirrel/social-api/internal/transfer"
	"github.com/quizsquirrel/social-api/pkg/crypto"
	"github.com/quizsquirrel/social-api/pkg/utils"
)

const facebookGraphBase = "https://graph.facebook.com/v21.0"

// Page tasks that allow posting to the page feed.
var publishTasks = []string{"MANAGE", "CREATE_CONTENT"}

type FacebookService interface {
	AuthorizationURL(ctx context.Context) (string, error)
	FacebookCallback(ctx context.Context, state, code string, userID int64) (*transfer.SelectPageResponse, error)
	PendingSelection(ctx context.Context, userID int64, selectionToken string) (*transfer.SelectPageResponse, error)
	SelectPage(ctx context.Context, userID int64, selectionToken, pageID string) (int64, error)
}

type facebookService struct {
	cfg    config.Config
	sc     cache.Cache
	conn   repository.ConnectionRepository
	cipher *crypto.Cipher

	oauthCfg  *oauth2.Config
	graphBase string
}

func NewFacebookService(cfg config.Config, sc cache.Cache, conn repository.ConnectionRepository, cipher *crypto.Cipher) FacebookService {
	return &facebookService{
		cfg:    cfg,
		sc:     sc,
		conn:   conn,
		cipher: cipher,
		oauthCfg: &oauth2.Config{
			ClientID:     cfg.FacebookAppID,
			ClientSecret: cfg.FacebookAppSecret,
			RedirectURL:  cfg.FacebookRedirectURI,
			Scopes:       []string{"pages_show_list", "pages_manage_posts", "pages_read_engagement"},
			Endpoint:     facebook.Endpoint,
		},
		graphBase: facebookGraphBase,
	}
}

func (s *facebookService) AuthorizationURL(ctx context.Context) (string, error) {
	if s.cfg.FacebookAppID == "" || s.cfg.FacebookAppSecret == "" {
		err := errors.New("facebook credentials are not configured")
		slog.Info(err.Error())
		return "", platform.NewError(platform.KindInvalidCredentials, models.PlatformFacebook, err.Error(), nil)
	}

	state, err := utils.GenerateState()
	if err != nil {
		return "", err
	}
	s.sc.Set(handshakeKey(models.PlatformFacebook, state), []byte(state), handshakeTTL)

	return s.oauthCfg.AuthCodeURL(state), nil
}

// FacebookCallback exchanges the code, upgrades the user token to a
// long-lived one, and returns the pages the user can publish to. The
// connection row is only written once a page is chosen.
func (s *facebookService) FacebookCallback(ctx context.Context, state, code string, userID int64) (*transfer.SelectPageResponse, error) {
	if state == "" || code == "" {
		err := errors.New("state or code is empty")
		slog.Info(err.Error())
		return nil, err
	}

	key := handshakeKey(models.PlatformFacebook, state)
	cached, ok := s.sc.Get(key)
	if !ok || !utils.SecureCompare(state, string(cached)) {
		err := errors.New("unknown or expired oauth state")
		slog.Info(err.Error())
		return nil, err
	}
	s.sc.Delete(key)

	httpCtx := context.WithValue(ctx, oauth2.HTTPClient, oauthHTTPClient)
	token, err := s.oauthCfg.Exchange(httpCtx, code)
	if err != nil {
		slog.Info(err.Error())
		return nil, platform.NewError(platform.KindInvalidCredentials, models.PlatformFacebook, "code exchange failed", err)
	}

	longLived, err := s.upgradeToLongLivedToken(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	pages, err := s.listManagedPages(ctx, longLived)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, platform.NewError(platform.KindPermissionDenied, models.PlatformFacebook,
			"no pages with publish permission; grant page access during login", nil)
	}

	selectionToken, err := gonanoid.New(32)
	if err != nil {
		return nil, err
	}

	pending := transfer.PendingPages{
		UserID:        userID,
		UserToken:     longLived,
		EligiblePages: pages,
	}
	payload, err := json.Marshal(pending)
	if err != nil {
		return nil, err
	}
	s.sc.Set(selectionKey(selectionToken), payload, handshakeTTL)

	resp := &transfer.SelectPageResponse{SelectionToken: selectionToken}
	for _, page := range pages {
		resp.Pages = append(resp.Pages, transfer.PageOption{ID: page.ID, Name: page.Name})
	}
	return resp, nil
}

// upgradeToLongLivedToken trades a short-lived user token for the ~60 day
// variant via the fb_exchange_token grant.
func (s *facebookService) upgradeToLongLivedToken(ctx context.Context, shortLived string) (string, error) {
	query := url.Values{}
	query.Set("grant_type", "fb_exchange_token")
	query.Set("client_id", s.cfg.FacebookAppID)
	query.Set("client_secret", s.cfg.FacebookAppSecret)
	query.Set("fb_exchange_token", shortLived)

	var result transfer.FacebookTokenResponse
	if err := s.graphGet(ctx, "/oauth/access_token", query, &result); err != nil {
		return "", err
	}
	if result.AccessToken == "" {
		return "", platform.NewError(platform.KindPlatformError, models.PlatformFacebook, "token upgrade returned no token", nil)
	}
	return result.AccessToken, nil
}

// listManagedPages returns only pages the user can actually publish to.
func (s *facebookService) listManagedPages(ctx context.Context, userToken string) ([]transfer.FacebookPage, error) {
	query := url.Values{}
	query.Set("access_token", userToken)
	query.Set("fields", "id,name,access_token,tasks")

	var result transfer.FacebookPagesResponse
	if err := s.graphGet(ctx, "/me/accounts", query, &result); err != nil {
		return nil, err
	}

	var eligible []transfer.FacebookPage
	for _, page := range result.Data {
		for _, task := range page.Tasks {
			if slices.Contains(publishTasks, task) {
				eligible = append(eligible, page)
				break
			}
		}
	}
	return eligible, nil
}

// PendingSelection re-reads the cached page list for the selection dialog.
// Page tokens stay server-side; only ids and names go out.
func (s *facebookService) PendingSelection(ctx context.Context, userID int64, selectionToken string) (*transfer.SelectPageResponse, error) {
	payload, ok := s.sc.Get(selectionKey(selectionToken))
	if !ok {
		err := errors.New("unknown or expired page selection")
		slog.Info(err.Error())
		return nil, err
	}

	var pending transfer.PendingPages
	if err := json.Unmarshal(payload, &pending); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if pending.UserID != userID {
		err := errors.New("page selection belongs to a different user")
		slog.Info(err.Error())
		return nil, err
	}

	resp := &transfer.SelectPageResponse{SelectionToken: selectionToken}
	for _, page := range pending.EligiblePages {
		resp.Pages = append(resp.Pages, transfer.PageOption{ID: page.ID, Name: page.Name})
	}
	return resp, nil
}

// SelectPage finishes the Facebook flow for one of the pages offered by the
// callback and returns the new connection id.
func (s *facebookService) SelectPage(ctx context.Context, userID int64, selectionToken, pageID string) (int64, error) {
	if selectionToken == "" || pageID == "" {
		err := errors.New("selection token or page id is empty")
		slog.Info(err.Error())
		return 0, err
	}

	key := selectionKey(selectionToken)
	payload, ok := s.sc.Get(key)
	if !ok {
		err := errors.New("unknown or expired page selection")
		slog.Info(err.Error())
		return 0, err
	}

	var pending transfer.PendingPages
	if err := json.Unmarshal(payload, &pending); err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	if pending.UserID != userID {
		err := errors.New("page selection belongs to a different user")
		slog.Info(err.Error())
		return 0, err
	}

	var chosen *transfer.FacebookPage
	for i := range pending.EligiblePages {
		if pending.EligiblePages[i].ID == pageID {
			chosen = &pending.EligiblePages[i]
			break
		}
	}
	if chosen == nil {
		err := errors.New("page was not offered for selection")
		slog.Info(err.Error())
		return 0, err
	}

	if err := s.validatePageToken(ctx, chosen.ID, chosen.AccessToken); err != nil {
		return 0, err
	}

	encryptedUserToken, err := s.cipher.Encrypt(pending.UserToken)
	if err != nil {
		return 0, err
	}
	encryptedPageToken, err := s.cipher.Encrypt(chosen.AccessToken)
	if err != nil {
		return 0, err
	}

	connection := &models.SocialMediaConnection{
		UserID:      userID,
		Platform:    models.PlatformFacebook,
		PageID:      chosen.ID,
		PageName:    chosen.Name,
		AccessToken: encryptedUserToken,
		PageToken:   encryptedPageToken,
	}

	id, err := s.conn.Create(ctx, nil, connection)
	if err != nil {
		return 0, err
	}
	s.sc.Delete(key)

	return id, nil
}

// validatePageToken makes a cheap metadata read to confirm the page token works.
func (s *facebookService) validatePageToken(ctx context.Context, pageID, pageToken string) error {
	query := url.Values{}
	query.Set("access_token", pageToken)
	query.Set("fields", "id,name")

	var result transfer.FacebookPage
	if err := s.graphGet(ctx, "/"+pageID, query, &result); err != nil {
		return err
	}
	if result.ID != pageID {
		return platform.NewError(platform.KindInvalidCredentials, models.PlatformFacebook, "page token did not resolve to the page", nil)
	}
	return nil
}

func (s *facebookService) graphGet(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := s.graphBase + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := oauthHTTPClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return platform.NewError(platform.KindNetworkError, models.PlatformFacebook, "graph request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr transfer.FacebookErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		msg := apiErr.Error.Message
		if msg == "" {
			msg = fmt.Sprintf("graph endpoint returned status %d", resp.StatusCode)
		}
		slog.Info(msg)
		return platform.NewError(platform.KindPlatformError, models.PlatformFacebook, msg, nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func selectionKey(token string) string {
	return "facebook:pages:" + token
}
