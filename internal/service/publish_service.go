package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	config "github.com/quizsquirrel/social-api/configs"
	"github.com/quizsquirrel/social-api/internal/formatter"
	"github.com/quizsquirrel/social-api/internal/models"
	"github.com/quizsquirrel/social-api/internal/platform"
	"github.com/quizsquirrel/social-api/internal/repository"
	"github.com/quizsquirrel/social-api/internal/transfer"
	"github.com/quizsquirrel/social-api/pkg/crypto"
)

const previewQuestionLimit = 1

// ClientFactory builds a platform client from one connection's decrypted
// credentials. Tests swap it for a fake.
type ClientFactory func(cfg config.Config, conn *models.SocialMediaConnection, accessToken, tokenSecret, pageToken string) platform.Client

func DefaultClientFactory(cfg config.Config, conn *models.SocialMediaConnection, accessToken, tokenSecret, pageToken string) platform.Client {
	if conn.Platform == models.PlatformTumblr {
		return platform.NewTumblrClient(cfg.TumblrConsumerKey, cfg.TumblrConsumerSecret, accessToken, tokenSecret, conn.BlogName)
	}
	return platform.NewFacebookClient(conn.PageID, pageToken)
}

type PublishService interface {
	Publish(ctx context.Context, userID int64, platformName string, req *transfer.PublishRequest) *transfer.PublishResult
	ListPosts(ctx context.Context, userID int64) ([]*models.SocialMediaPost, error)
	RemovePost(ctx context.Context, userID, postID int64) error
}

type publishService struct {
	cfg           config.Config
	conn          repository.ConnectionRepository
	posts         repository.SocialPostRepository
	quizzes       repository.QuizRepository
	users         repository.UserRepository
	notifications repository.NotificationRepository
	cipher        *crypto.Cipher
	media         MediaService
	newClient     ClientFactory
}

func NewPublishService(
	cfg config.Config,
	conn repository.ConnectionRepository,
	posts repository.SocialPostRepository,
	quizzes repository.QuizRepository,
	users repository.UserRepository,
	notifications repository.NotificationRepository,
	cipher *crypto.Cipher,
	media MediaService,
	newClient ClientFactory,
) PublishService {
	return &publishService{
		cfg:           cfg,
		conn:          conn,
		posts:         posts,
		quizzes:       quizzes,
		users:         users,
		notifications: notifications,
		cipher:        cipher,
		media:         media,
		newClient:     newClient,
	}
}

// Publish pushes one quiz through one connection. Validation happens before
// any external call; the result shape is the same on every path.
func (s *publishService) Publish(ctx context.Context, userID int64, platformName string, req *transfer.PublishRequest) *transfer.PublishResult {
	connection, err := s.conn.FindForUser(ctx, req.ConnectionID, userID, platformName)
	if err != nil {
		return failure(platformName, platform.NewError(platform.KindPlatformError, platformName, "connection lookup failed", err))
	}
	if connection == nil || !connection.IsActive {
		return failure(platformName, platform.NewError(platform.KindConnectionNotFound, platformName, "connection not found", nil))
	}

	quiz, found, err := s.quizzes.GetWithPreview(ctx, req.QuizID, previewQuestionLimit)
	if err != nil {
		return failure(platformName, platform.NewError(platform.KindPlatformError, platformName, "quiz lookup failed", err))
	}
	if !found {
		return failure(platformName, platform.NewError(platform.KindQuizNotFound, platformName, "quiz not found", nil))
	}

	if quiz.Status != models.QuizStatusPublished {
		return failure(platformName, platform.NewError(platform.KindPermissionDenied, platformName, "quiz is not published", nil))
	}
	if quiz.Visibility == models.QuizVisibilityPrivate && quiz.CreatorID != userID {
		return failure(platformName, platform.NewError(platform.KindPermissionDenied, platformName, "quiz is private", nil))
	}

	publisher := quiz.Creator
	if quiz.CreatorID != userID {
		user, ok, err := s.users.GetByID(ctx, userID)
		if err != nil || !ok {
			return failure(platformName, platform.NewError(platform.KindPermissionDenied, platformName, "publishing user not found", err))
		}
		publisher = user
	}

	content := s.buildContent(ctx, quiz, publisher, req.CustomMessage)

	client, err := s.clientFor(connection)
	if err != nil {
		return failure(platformName, err)
	}

	resp, err := client.Publish(ctx, content)
	if err != nil {
		slog.Info(err.Error())
		return failure(platformName, err)
	}

	post := &models.SocialMediaPost{
		QuizID:         quiz.ID,
		ConnectionID:   connection.ID,
		Platform:       connection.Platform,
		ExternalPostID: resp.PostID,
		ExternalURL:    resp.PostURL,
		PublishedAt:    time.Now(),
	}
	if _, err := s.posts.Create(ctx, nil, post); err != nil {
		// The external post exists; report success but log the gap.
		slog.Info(fmt.Sprintf("post record not saved for external post %s: %s", resp.PostID, err.Error()))
	}

	s.notifyCreator(ctx, quiz, userID)

	return &transfer.PublishResult{
		Success:  true,
		PostID:   resp.PostID,
		PostURL:  resp.PostURL,
		Platform: connection.Platform,
	}
}

// buildContent renders the quiz for the connection's platform. The cover image
// is mirrored to our own storage first so posts do not point at upload URLs
// that may later move.
func (s *publishService) buildContent(ctx context.Context, quiz *models.Quiz, publisher *models.User, customMessage string) *platform.PostContent {
	quizURL := fmt.Sprintf("%s/quiz/%s", s.cfg.BaseURL, quiz.Slug)

	attribution := ""
	if quiz.Creator != nil {
		attribution = formatter.Attribution(quiz.Creator, publisher)
	}

	coverURL := quiz.CoverImageURL
	if coverURL != "" && s.media != nil {
		mirrored, err := s.media.MirrorCoverImage(ctx, coverURL)
		if err != nil {
			slog.Info(err.Error())
		} else {
			coverURL = mirrored
		}
	}
	quiz.CoverImageURL = coverURL

	return &platform.PostContent{
		Blocks:   formatter.TumblrBlocks(quiz, quizURL, attribution, customMessage),
		Tags:     formatter.BuildTags(quiz),
		Message:  formatter.FacebookMessage(quiz, quizURL, attribution, customMessage),
		LinkURL:  quizURL,
		ImageURL: coverURL,
	}
}

func (s *publishService) clientFor(connection *models.SocialMediaConnection) (platform.Client, error) {
	return buildClient(s.cfg, s.cipher, s.newClient, connection)
}

// notifyCreator records a best-effort notification when someone shares another
// creator's quiz. Failures never affect the publish result.
func (s *publishService) notifyCreator(ctx context.Context, quiz *models.Quiz, publisherID int64) {
	if quiz.CreatorID == publisherID {
		return
	}
	_, err := s.notifications.Create(ctx, &models.Notification{
		UserID:  quiz.CreatorID,
		ActorID: publisherID,
		Kind:    models.NotificationQuizShared,
		Message: fmt.Sprintf("Your quiz %q was shared", quiz.Title),
		QuizID:  quiz.ID,
	})
	if err != nil {
		slog.Info(err.Error())
	}
}

func (s *publishService) ListPosts(ctx context.Context, userID int64) ([]*models.SocialMediaPost, error) {
	return s.posts.ListByUserID(ctx, userID)
}

// RemovePost deletes the platform-side post best-effort, then the record.
func (s *publishService) RemovePost(ctx context.Context, userID, postID int64) error {
	post, err := s.posts.GetForUser(ctx, postID, userID)
	if err != nil {
		return err
	}
	if post == nil {
		err := errors.New("post not found")
		slog.Info(err.Error())
		return err
	}

	connection, err := s.conn.GetByID(ctx, post.ConnectionID)
	if err != nil {
		return err
	}
	if connection != nil && connection.IsActive {
		client, err := s.clientFor(connection)
		if err == nil {
			if err := client.Delete(ctx, post.ExternalPostID); err != nil && !errors.Is(err, platform.ErrPostGone) {
				slog.Info(err.Error())
			}
		} else {
			slog.Info(err.Error())
		}
	}

	return s.posts.Remove(ctx, post.ID)
}

func failure(platformName string, err error) *transfer.PublishResult {
	var msg string
	var pe *platform.Error
	if errors.As(err, &pe) {
		msg = pe.Message
	} else {
		msg = err.Error()
	}
	return &transfer.PublishResult{
		Success:  false,
		Error:    string(platform.KindOf(err)),
		Message:  msg,
		Platform: platformName,
	}
}
