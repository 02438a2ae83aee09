package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/quizsquirrel/social-api/internal/models"
	"github.com/quizsquirrel/social-api/internal/transfer"
)

const facebookGraphBase = "https://graph.facebook.com/v21.0"

// FacebookClient publishes to one managed Page through the Graph API using
// its page access token.
type FacebookClient struct {
	pageID    string
	pageToken string
	graphBase string
}

func NewFacebookClient(pageID, pageToken string) *FacebookClient {
	return &FacebookClient{
		pageID:    pageID,
		pageToken: pageToken,
		graphBase: facebookGraphBase,
	}
}

func (c *FacebookClient) Publish(ctx context.Context, content *PostContent) (*PublishResponse, error) {
	form := url.Values{}
	form.Set("message", content.Message)
	if content.LinkURL != "" {
		form.Set("link", content.LinkURL)
	}
	form.Set("access_token", c.pageToken)

	endpoint := fmt.Sprintf("%s/%s/feed", c.graphBase, c.pageID)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, NewError(KindNetworkError, models.PlatformFacebook, "feed publish request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Info(err.Error())
		return nil, NewError(KindPlatformError, models.PlatformFacebook, "unreadable feed publish response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.mapError(resp.StatusCode, body, false)
	}

	var result transfer.FacebookFeedResponse
	if err := json.Unmarshal(body, &result); err != nil {
		slog.Info(err.Error())
		return nil, NewError(KindPlatformError, models.PlatformFacebook, "unreadable feed publish response", err)
	}
	if result.ID == "" {
		return nil, NewError(KindPlatformError, models.PlatformFacebook, "feed publish response missing id", nil)
	}

	return &PublishResponse{
		PostID:  result.ID,
		PostURL: fmt.Sprintf("https://www.facebook.com/%s", result.ID),
	}, nil
}

func (c *FacebookClient) Delete(ctx context.Context, externalPostID string) error {
	endpoint := fmt.Sprintf("%s/%s?access_token=%s", c.graphBase, externalPostID, url.QueryEscape(c.pageToken))
	req, err := http.NewRequestWithContext(ctx, "DELETE", endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return NewError(KindNetworkError, models.PlatformFacebook, "post delete request failed", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.mapError(resp.StatusCode, body, true)
	}
	return nil
}

func (c *FacebookClient) GetEngagement(ctx context.Context, externalPostID string) (*Engagement, error) {
	endpoint := fmt.Sprintf("%s/%s?fields=likes.summary(true),comments.summary(true),shares&access_token=%s",
		c.graphBase, externalPostID, url.QueryEscape(c.pageToken))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, NewError(KindNetworkError, models.PlatformFacebook, "engagement request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Info(err.Error())
		return nil, NewError(KindPlatformError, models.PlatformFacebook, "unreadable engagement response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.mapError(resp.StatusCode, body, true)
	}

	var result transfer.FacebookEngagementResponse
	if err := json.Unmarshal(body, &result); err != nil {
		slog.Info(err.Error())
		return nil, NewError(KindPlatformError, models.PlatformFacebook, "unreadable engagement response", err)
	}

	return &Engagement{
		Likes:    result.Likes.Summary.TotalCount,
		Shares:   result.Shares.Count,
		Comments: result.Comments.Summary.TotalCount,
	}, nil
}

// mapError translates Graph API error envelopes into the taxonomy. postRead
// marks operations on a single post, where "object missing" means the post
// was deleted on the platform side.
func (c *FacebookClient) mapError(status int, body []byte, postRead bool) error {
	var envelope transfer.FacebookErrorResponse
	_ = json.Unmarshal(body, &envelope)
	fbErr := envelope.Error

	message := fbErr.Message
	if message == "" {
		message = fmt.Sprintf("graph api returned status %d", status)
	}

	if postRead && (status == http.StatusNotFound || fbErr.Code == 100) {
		return ErrPostGone
	}

	switch {
	case fbErr.Code == 190:
		return NewError(KindTokenExpired, models.PlatformFacebook, message, nil)
	case fbErr.Code == 4 || fbErr.Code == 17 || fbErr.Code == 32 || fbErr.Code == 613:
		return NewError(KindRateLimited, models.PlatformFacebook, message, nil)
	case fbErr.Code == 10 || (fbErr.Code >= 200 && fbErr.Code <= 299):
		return NewError(KindPermissionDenied, models.PlatformFacebook, message, nil)
	case status == http.StatusTooManyRequests:
		return NewError(KindRateLimited, models.PlatformFacebook, message, nil)
	case status == http.StatusUnauthorized:
		return NewError(KindTokenExpired, models.PlatformFacebook, message, nil)
	default:
		return NewError(KindPlatformError, models.PlatformFacebook, message, nil)
	}
}
