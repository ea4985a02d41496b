package models

import (
	"time"

	"gorm.io/datatypes"
)

// Activity event types.
const (
	EventSubmitted        = "submitted"
	EventStatusChanged    = "status_changed"
	EventDocumentUploaded = "document_uploaded"
	EventDocumentRemoved  = "document_removed"
	EventDocumentVerified = "document_verified"
	EventCommentAdded     = "comment_added"
)

// ActivityLogEntry is an immutable audit record. Rows are only ever
// inserted; there is no update or delete path.
type ActivityLogEntry struct {
	EntryID       int               `gorm:"primaryKey;column:entry_id" json:"entry_id"`
	ApplicationID int               `gorm:"column:application_id" json:"application_id"`
	EventType     string            `gorm:"column:event_type" json:"event_type"`
	Description   string            `gorm:"column:description" json:"description"`
	ActorID       *int              `gorm:"column:actor_id" json:"actor_id,omitempty"`
	Metadata      datatypes.JSONMap `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt     time.Time         `gorm:"column:created_at" json:"created_at"`
}

func (ActivityLogEntry) TableName() string {
	return "activity_log_entries"
}
