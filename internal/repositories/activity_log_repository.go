package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"storefront_backend/internal/models"
)

// ActivityLogRepository persists audit records of workflow transitions.
type ActivityLogRepository interface {
	Create(executor SQLExecutor, entry *models.ActivityLog) (int64, error)
	GetRecent(entity *string, page, pageSize int) ([]models.ActivityLog, int, error)
}

type activityLogRepository struct {
	db *sql.DB
}

// NewActivityLogRepository creates a new instance of ActivityLogRepository.
func NewActivityLogRepository(db *sql.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(executor SQLExecutor, entry *models.ActivityLog) (int64, error) {
	query := `INSERT INTO activity_logs (actor_id, action, entity, entity_id, description, metadata, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`

	var metadata []byte
	if len(entry.Metadata) > 0 {
		var err error
		metadata, err = json.Marshal(entry.Metadata)
		if err != nil {
			return 0, fmt.Errorf("%w: marshalling activity metadata: %v", ErrDatabaseError, err)
		}
	}

	var actorID sql.NullInt64
	if entry.ActorID != nil {
		actorID = sql.NullInt64{Int64: *entry.ActorID, Valid: true}
	}
	var entityID sql.NullInt64
	if entry.EntityID != nil {
		entityID = sql.NullInt64{Int64: *entry.EntityID, Valid: true}
	}

	var entryID int64
	err := executor.QueryRow(query,
		actorID, entry.Action, entry.Entity, entityID, entry.Description, metadata, time.Now(),
	).Scan(&entryID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating activity log entry: %v", ErrDatabaseError, err)
	}
	entry.ID = entryID
	return entryID, nil
}

func (r *activityLogRepository) GetRecent(entity *string, page, pageSize int) ([]models.ActivityLog, int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT al.id, al.actor_id, al.action, al.entity, al.entity_id, al.description, al.metadata, al.created_at,
	    COALESCE(u.username, '') AS actor_name,
	    COUNT(*) OVER() AS total_count
	  FROM activity_logs al
	  LEFT JOIN users u ON u.id = al.actor_id`)

	var args []interface{}
	argCount := 1
	if entity != nil && *entity != "" {
		queryBuilder.WriteString(fmt.Sprintf(" WHERE al.entity = $%d", argCount))
		args = append(args, *entity)
		argCount++
	}
	queryBuilder.WriteString(" ORDER BY al.created_at DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: fetching activity log: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	entries := []models.ActivityLog{}
	totalCount := 0
	for rows.Next() {
		var entry models.ActivityLog
		var actorID, entityID sql.NullInt64
		var metadata []byte
		var actorName string
		if err := rows.Scan(&entry.ID, &actorID, &entry.Action, &entry.Entity, &entityID,
			&entry.Description, &metadata, &entry.CreatedAt, &actorName, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning activity log entry: %v", ErrDatabaseError, err)
		}
		if actorID.Valid {
			entry.ActorID = &actorID.Int64
			if actorName != "" {
				entry.Actor = &models.User{ID: actorID.Int64, Username: actorName}
			}
		}
		if entityID.Valid {
			entry.EntityID = &entityID.Int64
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &entry.Metadata); err != nil {
				return nil, 0, fmt.Errorf("%w: unmarshalling activity metadata: %v", ErrDatabaseError, err)
			}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating activity log: %v", ErrDatabaseError, err)
	}
	return entries, totalCount, nil
}
