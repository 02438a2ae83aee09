package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	config "github.com/quizsquirrel/social-api/configs"
	"github.com/quizsquirrel/social-api/internal/models"
	"github.com/quizsquirrel/social-api/internal/platform"
	"github.com/quizsquirrel/social-api/internal/repository"
	"github.com/quizsquirrel/social-api/pkg/crypto"
)

// Posts older than this are left alone by the batch sync; their engagement
// has settled.
const syncWindow = 30 * 24 * time.Hour

type SyncService interface {
	SyncPost(ctx context.Context, userID, postID int64) (*models.SocialMediaPost, error)
	SyncUserPosts(ctx context.Context, userID int64) error
}

type syncService struct {
	cfg       config.Config
	conn      repository.ConnectionRepository
	posts     repository.SocialPostRepository
	cipher    *crypto.Cipher
	newClient ClientFactory
}

func NewSyncService(cfg config.Config, conn repository.ConnectionRepository, posts repository.SocialPostRepository, cipher *crypto.Cipher, newClient ClientFactory) SyncService {
	return &syncService{
		cfg:       cfg,
		conn:      conn,
		posts:     posts,
		cipher:    cipher,
		newClient: newClient,
	}
}

// SyncPost refreshes one post's counters on demand and returns the updated
// record.
func (s *syncService) SyncPost(ctx context.Context, userID, postID int64) (*models.SocialMediaPost, error) {
	post, err := s.posts.GetForUser(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		err := errors.New("post not found")
		slog.Info(err.Error())
		return nil, err
	}

	connection, err := s.conn.GetByID(ctx, post.ConnectionID)
	if err != nil {
		return nil, err
	}
	if connection == nil || !connection.IsActive {
		return nil, platform.NewError(platform.KindConnectionNotFound, post.Platform, "connection not found", nil)
	}

	client, err := s.clientFor(connection)
	if err != nil {
		return nil, err
	}

	if err := s.syncOne(ctx, client, post); err != nil {
		return nil, err
	}

	if err := s.conn.UpdateLastSynced(ctx, connection.ID, time.Now()); err != nil {
		slog.Info(err.Error())
	}

	return post, nil
}

// SyncUserPosts refreshes every recent post across the user's active
// connections. One failing post never stops the rest.
func (s *syncService) SyncUserPosts(ctx context.Context, userID int64) error {
	connections, err := s.conn.ListActiveByUserID(ctx, userID)
	if err != nil {
		return err
	}

	since := time.Now().Add(-syncWindow)
	for _, connection := range connections {
		client, err := s.clientFor(connection)
		if err != nil {
			slog.Info(err.Error())
			continue
		}

		posts, err := s.posts.ListRecentByConnection(ctx, connection.ID, since)
		if err != nil {
			slog.Info(err.Error())
			continue
		}

		synced := 0
		for _, post := range posts {
			if err := s.syncOne(ctx, client, post); err != nil {
				slog.Info(fmt.Sprintf("sync failed for post %d: %s", post.ID, err.Error()))
				continue
			}
			synced++
		}

		if synced > 0 {
			if err := s.conn.UpdateLastSynced(ctx, connection.ID, time.Now()); err != nil {
				slog.Info(err.Error())
			}
		}
	}

	return nil
}

// syncOne fetches engagement and writes the counters back. A post deleted on
// the platform zeroes out rather than erroring; stale numbers would be worse
// than none.
func (s *syncService) syncOne(ctx context.Context, client platform.Client, post *models.SocialMediaPost) error {
	engagement, err := client.GetEngagement(ctx, post.ExternalPostID)
	if err != nil {
		if errors.Is(err, platform.ErrPostGone) {
			engagement = &platform.Engagement{}
		} else {
			return err
		}
	}

	post.Likes = engagement.Likes
	post.Shares = engagement.Shares
	post.Comments = engagement.Comments
	post.Views = engagement.Views

	now := time.Now()
	if err := s.posts.UpdateEngagement(ctx, post.ID, *post, now); err != nil {
		return err
	}
	post.LastSyncedAt.Time = now
	post.LastSyncedAt.Valid = true
	return nil
}

func (s *syncService) clientFor(connection *models.SocialMediaConnection) (platform.Client, error) {
	return buildClient(s.cfg, s.cipher, s.newClient, connection)
}
