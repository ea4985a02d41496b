package models

import (
	"time"

	"gorm.io/datatypes"
)

// Application status values. Transitions only move forward:
// draft -> submitted -> under_review -> accepted | rejected.
const (
	StatusDraft       = "draft"
	StatusSubmitted   = "submitted"
	StatusUnderReview = "under_review"
	StatusAccepted    = "accepted"
	StatusRejected    = "rejected"
)

type Application struct {
	ApplicationID     int               `gorm:"primaryKey;column:application_id" json:"application_id"`
	ApplicationNumber string            `gorm:"column:application_number;unique" json:"application_number"`
	OwnerID           int               `gorm:"column:owner_id" json:"owner_id"`
	Status            string            `gorm:"column:status" json:"status"`
	// DraftOwnerID mirrors OwnerID while the application is a draft and
	// is NULL afterwards. The unique index limits each owner to one
	// concurrent draft at the schema level.
	DraftOwnerID *int `gorm:"column:draft_owner_id;uniqueIndex:uniq_owner_draft" json:"-"`
	FormData          datatypes.JSONMap `gorm:"column:form_data" json:"form_data"`
	ProgressPercent   int               `gorm:"column:progress_percent" json:"progress_percent"`
	ReviewerID        *int              `gorm:"column:reviewer_id" json:"reviewer_id,omitempty"`
	ReviewedAt        *time.Time        `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	RejectionReason   *string           `gorm:"column:rejection_reason" json:"rejection_reason,omitempty"`
	ReviewNotes       *string           `gorm:"column:review_notes" json:"review_notes,omitempty"`
	SubmittedAt       *time.Time        `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	CreatedAt         time.Time         `gorm:"column:created_at" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"column:updated_at" json:"updated_at"`

	// Relations
	Owner    *Profile `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Reviewer *Profile `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
}

func (Application) TableName() string {
	return "applications"
}

// IsEditable reports whether the owner may still change the form payload.
func (a *Application) IsEditable() bool {
	return a.Status == StatusDraft || a.Status == StatusSubmitted
}

// IsTerminal reports whether the review cycle has ended.
func (a *Application) IsTerminal() bool {
	return a.Status == StatusAccepted || a.Status == StatusRejected
}
