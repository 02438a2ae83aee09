package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	config "github.com/quizsquirrel/social-api/configs"
	"github.com/quizsquirrel/social-api/internal/cache"
	"github.com/quizsquirrel/social-api/internal/models"
	"github.com/quizsquirrel/social-api/internal/oauth1"
	"github.com/quizsquirrel/social-api/internal/platform"
	"github.com/quizsquirrel/social-api/internal/repository"
	"github.com/quizsquirrel/social-api/internal/transfer"
	"github.com/quizsquirrel/social-api/pkg/crypto"
	"github.com/quizsquirrel/social-api/pkg/utils"
)

const (
	tumblrOAuthBase = "https://www.tumblr.com"
	tumblrAPIBase   = "https://api.tumblr.com"

	handshakeTTL = 10 * time.Minute
)

type TumblrService interface {
	AuthorizationURL(ctx context.Context) (string, error)
	TumblrCallback(ctx context.Context, state, oauthToken, verifier string, userID int64) error
}

type tumblrService struct {
	cfg    config.Config
	sc     cache.Cache
	conn   repository.ConnectionRepository
	cipher *crypto.Cipher
	signer *oauth1.Signer

	oauthBase string
	apiBase   string
}

func NewTumblrService(cfg config.Config, sc cache.Cache, conn repository.ConnectionRepository, cipher *crypto.Cipher) TumblrService {
	return &tumblrService{
		cfg:       cfg,
		sc:        sc,
		conn:      conn,
		cipher:    cipher,
		signer:    &oauth1.Signer{ConsumerKey: cfg.TumblrConsumerKey, ConsumerSecret: cfg.TumblrConsumerSecret},
		oauthBase: tumblrOAuthBase,
		apiBase:   tumblrAPIBase,
	}
}

// AuthorizationURL runs the request-token step and caches the temporary
// credentials under a fresh state value. The caller redirects the browser to
// the returned URL.
func (s *tumblrService) AuthorizationURL(ctx context.Context) (string, error) {
	if s.cfg.TumblrConsumerKey == "" || s.cfg.TumblrConsumerSecret == "" {
		err := errors.New("tumblr credentials are not configured")
		slog.Info(err.Error())
		return "", platform.NewError(platform.KindInvalidCredentials, models.PlatformTumblr, err.Error(), nil)
	}

	state, err := utils.GenerateState()
	if err != nil {
		return "", err
	}

	callbackURL := fmt.Sprintf("%s?state=%s", s.cfg.TumblrCallbackURL, state)
	temp, err := s.requestTemporaryToken(ctx, callbackURL)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(temp)
	if err != nil {
		return "", err
	}
	s.sc.Set(handshakeKey(models.PlatformTumblr, state), payload, handshakeTTL)

	return fmt.Sprintf("%s/oauth/authorize?oauth_token=%s", s.oauthBase, url.QueryEscape(temp.Token)), nil
}

func (s *tumblrService) requestTemporaryToken(ctx context.Context, callbackURL string) (*transfer.TemporaryCredentials, error) {
	endpoint := s.oauthBase + "/oauth/request_token"

	// Token secret is empty at this stage; the signing key is consumerSecret&.
	authHeader, err := s.signer.AuthHeader("POST", endpoint, map[string]string{"oauth_callback": callbackURL}, "", "")
	if err != nil {
		return nil, err
	}

	values, err := s.postOAuth(ctx, endpoint, authHeader)
	if err != nil {
		return nil, err
	}

	temp := &transfer.TemporaryCredentials{
		Token:             values.Get("oauth_token"),
		TokenSecret:       values.Get("oauth_token_secret"),
		CallbackConfirmed: values.Get("oauth_callback_confirmed") == "true",
	}
	if temp.Token == "" || temp.TokenSecret == "" {
		return nil, platform.NewError(platform.KindPlatformError, models.PlatformTumblr, "request token response missing credentials", nil)
	}
	if !temp.CallbackConfirmed {
		return nil, platform.NewError(platform.KindPlatformError, models.PlatformTumblr, "callback was not confirmed by provider", nil)
	}
	return temp, nil
}

func (s *tumblrService) exchangeForAccessToken(ctx context.Context, tempToken, tempSecret, verifier string) (*transfer.AccessCredentials, error) {
	endpoint := s.oauthBase + "/oauth/access_token"

	authHeader, err := s.signer.AuthHeader("POST", endpoint, map[string]string{"oauth_verifier": verifier}, tempToken, tempSecret)
	if err != nil {
		return nil, err
	}

	values, err := s.postOAuth(ctx, endpoint, authHeader)
	if err != nil {
		return nil, err
	}

	creds := &transfer.AccessCredentials{
		Token:       values.Get("oauth_token"),
		TokenSecret: values.Get("oauth_token_secret"),
	}
	if creds.Token == "" || creds.TokenSecret == "" {
		return nil, platform.NewError(platform.KindPlatformError, models.PlatformTumblr, "access token response missing credentials", nil)
	}
	return creds, nil
}

func (s *tumblrService) postOAuth(ctx context.Context, endpoint, authHeader string) (url.Values, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", authHeader)

	resp, err := oauthHTTPClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, platform.NewError(platform.KindNetworkError, models.PlatformTumblr, "oauth request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Info(err.Error())
		return nil, platform.NewError(platform.KindPlatformError, models.PlatformTumblr, "unreadable oauth response", err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Info(fmt.Sprintf("tumblr oauth endpoint returned status %d", resp.StatusCode))
		return nil, platform.NewError(platform.KindPlatformError, models.PlatformTumblr,
			fmt.Sprintf("oauth endpoint returned status %d", resp.StatusCode), nil)
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		slog.Info(err.Error())
		return nil, platform.NewError(platform.KindPlatformError, models.PlatformTumblr, "malformed oauth response", err)
	}
	return values, nil
}

// TumblrCallback finishes the handshake: state check first, then the
// access-token exchange, then the connection row.
func (s *tumblrService) TumblrCallback(ctx context.Context, state, oauthToken, verifier string, userID int64) error {
	if state == "" || oauthToken == "" || verifier == "" {
		err := errors.New("state, token or verifier is empty")
		slog.Info(err.Error())
		return err
	}

	temp, err := s.takeHandshake(state)
	if err != nil {
		return err
	}

	// The returned token must be the one the handshake started with.
	if !utils.SecureCompare(oauthToken, temp.Token) {
		err := errors.New("oauth token does not match handshake state")
		slog.Info(err.Error())
		return err
	}

	creds, err := s.exchangeForAccessToken(ctx, temp.Token, temp.TokenSecret, verifier)
	if err != nil {
		return err
	}

	blogName, err := s.primaryBlogName(ctx, creds)
	if err != nil {
		return err
	}

	encryptedToken, err := s.cipher.Encrypt(creds.Token)
	if err != nil {
		return err
	}
	encryptedSecret, err := s.cipher.Encrypt(creds.TokenSecret)
	if err != nil {
		return err
	}

	connection := &models.SocialMediaConnection{
		UserID:      userID,
		Platform:    models.PlatformTumblr,
		BlogName:    blogName,
		AccessToken: encryptedToken,
		TokenSecret: encryptedSecret,
	}

	_, err = s.conn.Create(ctx, nil, connection)
	if err != nil {
		return err
	}

	return nil
}

// takeHandshake resolves cached temporary credentials by state and consumes
// them. A missing entry means an expired, replayed, or forged callback.
func (s *tumblrService) takeHandshake(state string) (*transfer.TemporaryCredentials, error) {
	key := handshakeKey(models.PlatformTumblr, state)
	payload, ok := s.sc.Get(key)
	if !ok {
		err := errors.New("unknown or expired oauth state")
		slog.Info(err.Error())
		return nil, err
	}
	s.sc.Delete(key)

	var temp transfer.TemporaryCredentials
	if err := json.Unmarshal(payload, &temp); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &temp, nil
}

func (s *tumblrService) primaryBlogName(ctx context.Context, creds *transfer.AccessCredentials) (string, error) {
	endpoint := s.apiBase + "/v2/user/info"

	authHeader, err := s.signer.AuthHeader("GET", endpoint, nil, creds.Token, creds.TokenSecret)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", authHeader)

	resp, err := oauthHTTPClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", platform.NewError(platform.KindNetworkError, models.PlatformTumblr, "user info request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", platform.NewError(platform.KindPlatformError, models.PlatformTumblr,
			fmt.Sprintf("user info endpoint returned status %d", resp.StatusCode), nil)
	}

	var result transfer.TumblrUserInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return "", err
	}

	for _, blog := range result.Response.User.Blogs {
		if blog.Primary {
			return blog.Name, nil
		}
	}
	if result.Response.User.Name != "" {
		return result.Response.User.Name, nil
	}
	return "", platform.NewError(platform.KindPlatformError, models.PlatformTumblr, "user has no blogs", nil)
}

func handshakeKey(platformName, state string) string {
	return fmt.Sprintf("oauth:%s:%s", platformName, state)
}
