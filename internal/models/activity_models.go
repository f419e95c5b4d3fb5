package models

import "time"

// Activity actions recorded by the workflow services.
const (
	ActivityActionCreate   = "create"
	ActivityActionUpdate   = "update"
	ActivityActionDelete   = "delete"
	ActivityActionApprove  = "approve"
	ActivityActionReject   = "reject"
	ActivityActionDispatch = "dispatch"
	ActivityActionComplete = "complete"
	ActivityActionCancel   = "cancel"
	ActivityActionAdjust   = "adjust_stock"
)

// ActivityLog is an audit record of a workflow transition. Writing one is
// fire-and-forget: a failed write never fails the underlying operation.
type ActivityLog struct {
	ID          int64             `json:"id" db:"id"`
	ActorID     *int64            `json:"actor_id,omitempty" db:"actor_id"`
	Action      string            `json:"action" db:"action"`
	Entity      string            `json:"entity" db:"entity"`
	EntityID    *int64            `json:"entity_id,omitempty" db:"entity_id"`
	Description string            `json:"description" db:"description"`
	Metadata    map[string]string `json:"metadata,omitempty" db:"metadata"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`

	Actor *User `json:"actor,omitempty"`
}
