package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/quizsquirrel/social-api/internal/queue"
	"github.com/quizsquirrel/social-api/internal/repository"
)

type EngagementSyncJob struct {
	conn        repository.ConnectionRepository
	asynqClient *asynq.Client
}

func NewEngagementSyncJob(conn repository.ConnectionRepository, asynqClient *asynq.Client) *EngagementSyncJob {
	return &EngagementSyncJob{
		conn:        conn,
		asynqClient: asynqClient,
	}
}

// SyncEngagement fans the periodic refresh out as one queue task per user.
// Spreading tasks over a minute keeps the burst against the platform APIs
// small.
func (c *EngagementSyncJob) SyncEngagement() {
	ctx := context.Background()

	userIDs, err := c.conn.ListActiveUserIDs(ctx)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	spread := time.Minute
	for i, userID := range userIDs {
		var delay time.Duration
		if len(userIDs) > 1 {
			delay = spread * time.Duration(i) / time.Duration(len(userIDs))
		}

		payload := queue.SyncEngagementPayload{UserID: userID}
		if err := queue.EnqueueSync(c.asynqClient, payload, delay); err != nil {
			slog.Info("Unable to enqueue engagement sync")
		}
	}
}
