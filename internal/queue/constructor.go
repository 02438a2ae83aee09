package queue

import (
	"github.com/quizsquirrel/social-api/internal/service"
)

type Queue struct {
	sync service.SyncService
}

func NewQueue(sync service.SyncService) *Queue {
	return &Queue{
		sync: sync,
	}
}

const TaskTypeSyncEngagement = "sync:engagement"

type SyncEngagementPayload struct {
	UserID int64 `json:"user_id"`
}
