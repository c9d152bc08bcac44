package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SystemLog stores structured error logs so failed moderation actions can be
// traced back to the aggregate they touched.
type SystemLog struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Timestamp     time.Time      `gorm:"not null;index" json:"timestamp"`
	Level         string         `gorm:"size:10;not null;index" json:"level"`
	Message       string         `gorm:"type:text" json:"message"`
	TraceID       string         `gorm:"size:36;index" json:"trace_id"`
	AggregateType string         `gorm:"size:20;index" json:"aggregate_type"`
	AggregateID   *string        `gorm:"size:36;index" json:"aggregate_id"`
	ActorID       *string        `gorm:"size:36" json:"actor_id"`
	Action        string         `gorm:"size:100" json:"action"`
	Error         string         `gorm:"type:text" json:"error"`
	LatencyMs     int            `json:"latency_ms"`
	Extra         datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"extra"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Aggregate types recorded on system logs and notifications.
const (
	AggregateFeedback = "feedback"
	AggregateReport   = "report"
)
