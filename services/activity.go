package services

import (
	"fmt"
	"time"

	"onboarding-tracker-api/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AppendActivity inserts one immutable audit entry for an application.
// Every state-changing operation calls this inside its transaction;
// nothing ever updates or deletes entries.
func AppendActivity(tx *gorm.DB, appID int, eventType, description string, actorID *int, metadata map[string]interface{}) error {
	entry := models.ActivityLogEntry{
		ApplicationID: appID,
		EventType:     eventType,
		Description:   description,
		ActorID:       actorID,
		Metadata:      datatypes.JSONMap(metadata),
		CreatedAt:     time.Now(),
	}

	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to record activity %s for application %d: %w", eventType, appID, err)
	}
	return nil
}

// FetchTimeline returns the activity entries for an application, newest
// first. Access control is the caller's concern (owner or admin, same
// rule as the application itself).
func FetchTimeline(db *gorm.DB, appID int, limit int) ([]models.ActivityLogEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var entries []models.ActivityLogEntry
	if err := db.Where("application_id = ?", appID).
		Order("created_at DESC, entry_id DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load timeline for application %d: %w", appID, err)
	}
	return entries, nil
}
