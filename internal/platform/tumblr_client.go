package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/quizsquirrel/social-api/internal/models"
	"github.com/quizsquirrel/social-api/internal/oauth1"
	"github.com/quizsquirrel/social-api/internal/transfer"
)

const tumblrAPIBase = "https://api.tumblr.com"

// TumblrClient talks to the Tumblr content API on behalf of one connected
// blog, signing every request per OAuth 1.0a.
type TumblrClient struct {
	signer      *oauth1.Signer
	token       string
	tokenSecret string
	blogName    string
	apiBase     string
}

func NewTumblrClient(consumerKey, consumerSecret, token, tokenSecret, blogName string) *TumblrClient {
	return &TumblrClient{
		signer:      &oauth1.Signer{ConsumerKey: consumerKey, ConsumerSecret: consumerSecret},
		token:       token,
		tokenSecret: tokenSecret,
		blogName:    blogName,
		apiBase:     tumblrAPIBase,
	}
}

func (c *TumblrClient) Publish(ctx context.Context, content *PostContent) (*PublishResponse, error) {
	reqBody := transfer.TumblrPostRequest{
		Content: content.Blocks,
		Tags:    strings.Join(content.Tags, ","),
		State:   "published",
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v2/blog/%s/posts", c.apiBase, c.blogName)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	// JSON bodies take no part in OAuth1 signing; only protocol params are
	// signed here.
	authHeader, err := c.signer.AuthHeader("POST", endpoint, nil, c.token, c.tokenSecret)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", authHeader)

	resp, err := httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, NewError(KindNetworkError, models.PlatformTumblr, "post create request failed", err)
	}
	defer resp.Body.Close()

	var result transfer.TumblrPostResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil && resp.StatusCode < 300 {
		slog.Info(err.Error())
		return nil, NewError(KindPlatformError, models.PlatformTumblr, "unreadable post create response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.mapStatus(resp.StatusCode, result.Meta.Msg)
	}

	if result.Response.IDString == "" {
		return nil, NewError(KindPlatformError, models.PlatformTumblr, "post create response missing id", nil)
	}

	return &PublishResponse{
		PostID:  result.Response.IDString,
		PostURL: fmt.Sprintf("https://www.tumblr.com/%s/%s", c.blogName, result.Response.IDString),
	}, nil
}

func (c *TumblrClient) Delete(ctx context.Context, externalPostID string) error {
	endpoint := fmt.Sprintf("%s/v2/blog/%s/post/delete", c.apiBase, c.blogName)

	form := url.Values{}
	form.Set("id", externalPostID)

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	// Form-encoded body parameters are part of the signature base string.
	authHeader, err := c.signer.AuthHeader("POST", endpoint, map[string]string{"id": externalPostID}, c.token, c.tokenSecret)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", authHeader)

	resp, err := httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return NewError(KindNetworkError, models.PlatformTumblr, "post delete request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrPostGone
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.mapStatus(resp.StatusCode, "post delete rejected")
	}
	return nil
}

func (c *TumblrClient) GetEngagement(ctx context.Context, externalPostID string) (*Engagement, error) {
	endpoint := fmt.Sprintf("%s/v2/blog/%s/posts", c.apiBase, c.blogName)

	query := map[string]string{
		"id":         externalPostID,
		"notes_info": "true",
	}

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint+"?id="+url.QueryEscape(externalPostID)+"&notes_info=true", nil)
	if err != nil {
		return nil, err
	}

	authHeader, err := c.signer.AuthHeader("GET", endpoint, query, c.token, c.tokenSecret)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", authHeader)

	resp, err := httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, NewError(KindNetworkError, models.PlatformTumblr, "engagement request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrPostGone
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.mapStatus(resp.StatusCode, "engagement read rejected")
	}

	var result transfer.TumblrPostsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, NewError(KindPlatformError, models.PlatformTumblr, "unreadable engagement response", err)
	}

	if len(result.Response.Posts) == 0 {
		return nil, ErrPostGone
	}

	post := result.Response.Posts[0]
	eng := &Engagement{}
	for _, note := range post.Notes {
		switch note.Type {
		case "like":
			eng.Likes++
		case "reblog":
			eng.Shares++
		case "reply":
			eng.Comments++
		}
	}
	// The notes sample caps at 50; note_count is the only total the API
	// exposes, so an unsampled tally falls back to it.
	if len(post.Notes) == 0 {
		eng.Likes = post.NoteCount
	}

	return eng, nil
}

func (c *TumblrClient) mapStatus(status int, message string) error {
	if message == "" {
		message = fmt.Sprintf("tumblr api returned status %d", status)
	}
	switch status {
	case http.StatusUnauthorized:
		return NewError(KindTokenExpired, models.PlatformTumblr, message, nil)
	case http.StatusForbidden:
		return NewError(KindPermissionDenied, models.PlatformTumblr, message, nil)
	case http.StatusTooManyRequests:
		return NewError(KindRateLimited, models.PlatformTumblr, message, nil)
	default:
		return NewError(KindPlatformError, models.PlatformTumblr, message, nil)
	}
}
