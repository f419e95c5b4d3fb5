package services

import (
	"database/sql"
	"fmt"

	"storefront_backend/internal/models"
	"storefront_backend/internal/repositories"
	"storefront_backend/pkg/utils"
)

// ActivityService is the audit sink for workflow transitions. Recording is
// fire-and-forget: a failed write is logged locally and never propagated, so
// an audit outage cannot fail the operation being audited.
type ActivityService interface {
	Record(actorID *int64, action, entity string, entityID *int64, description string, metadata map[string]string)
	GetRecent(entity *string, page, pageSize int) ([]models.ActivityLog, int, error)
}

type activityService struct {
	activityRepo repositories.ActivityLogRepository
	db           *sql.DB
}

// NewActivityService creates a new instance of ActivityService.
func NewActivityService(repo repositories.ActivityLogRepository, db *sql.DB) ActivityService {
	return &activityService{
		activityRepo: repo,
		db:           db,
	}
}

func (s *activityService) Record(actorID *int64, action, entity string, entityID *int64, description string, metadata map[string]string) {
	entry := &models.ActivityLog{
		ActorID:     actorID,
		Action:      action,
		Entity:      entity,
		EntityID:    entityID,
		Description: description,
		Metadata:    metadata,
	}
	if _, err := s.activityRepo.Create(s.db, entry); err != nil {
		utils.LogError(err, fmt.Sprintf("activity log write failed for %s %s", action, entity))
	}
}

func (s *activityService) GetRecent(entity *string, page, pageSize int) ([]models.ActivityLog, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	entries, totalCount, err := s.activityRepo.GetRecent(entity, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get activity log: %w", err)
	}
	return entries, totalCount, nil
}
