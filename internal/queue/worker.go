package queue

import (
	"context"
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
)

func (j *Queue) HandleSyncEngagementTask(ctx context.Context, task *asynq.Task) error {
	var payload SyncEngagementPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	if err := j.sync.SyncUserPosts(ctx, payload.UserID); err != nil {
		log.Printf("Error syncing engagement for UserID %d: %v", payload.UserID, err)
		return err
	}

	return nil
}
