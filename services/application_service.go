package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"onboarding-tracker-api/models"
	"onboarding-tracker-api/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// The application state machine. Edges only move forward:
//
//	draft -> submitted          (owner, Submit)
//	submitted -> under_review   (admin, BeginReview)
//	under_review -> accepted    (admin, Approve)
//	under_review -> rejected    (admin, Reject)
//
// Every transition is a guarded UPDATE ... WHERE status = <expected>;
// zero affected rows means another writer won the race and the caller
// gets a ConflictError, never a mixed state.

func mergeForm(base datatypes.JSONMap, patch map[string]interface{}) datatypes.JSONMap {
	merged := datatypes.JSONMap{}
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range patch {
		merged[k] = v
	}
	return merged
}

func loadApplication(tx *gorm.DB, appID int) (*models.Application, error) {
	var app models.Application
	if err := tx.Where("application_id = ?", appID).First(&app).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &utils.NotFoundError{Resource: "application"}
		}
		return nil, fmt.Errorf("failed to load application %d: %w", appID, err)
	}
	return &app, nil
}

// EnsureDraft returns the owner's draft application, creating it when
// none exists and merging the partial form into it when one does.
// Concurrent creates are serialized by the uniq_owner_draft index on
// draft_owner_id; the loser's insert comes back as a duplicate key and
// surfaces as a ConflictError.
func EnsureDraft(db *gorm.DB, ownerID int, form map[string]interface{}) (*models.Application, error) {
	var result *models.Application

	err := db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		var app models.Application
		err := tx.Where("owner_id = ? AND status = ?", ownerID, models.StatusDraft).
			First(&app).Error

		switch {
		case err == nil:
			app.FormData = mergeForm(app.FormData, form)
			app.UpdatedAt = now
			if err := tx.Model(&models.Application{}).
				Where("application_id = ?", app.ApplicationID).
				Updates(map[string]interface{}{
					"form_data":  app.FormData,
					"updated_at": now,
				}).Error; err != nil {
				return fmt.Errorf("failed to update draft: %w", err)
			}

		case errors.Is(err, gorm.ErrRecordNotFound):
			app = models.Application{
				ApplicationNumber: utils.GenerateApplicationNumber(now),
				OwnerID:           ownerID,
				Status:            models.StatusDraft,
				DraftOwnerID:      &ownerID,
				FormData:          mergeForm(nil, form),
				CreatedAt:         now,
				UpdatedAt:         now,
			}
			if err := tx.Create(&app).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return &utils.ConflictError{Message: "a draft already exists for this owner"}
				}
				return fmt.Errorf("failed to create draft: %w", err)
			}

		default:
			return fmt.Errorf("failed to look up draft: %w", err)
		}

		percent, err := RecomputeProgress(tx, app.ApplicationID)
		if err != nil {
			return err
		}
		app.ProgressPercent = percent

		result = &app
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateDraft shallow-merges a form patch over the existing payload.
// Owner only, and only while the application is still editable.
func UpdateDraft(db *gorm.DB, appID int, actor Actor, patch map[string]interface{}) (*models.Application, error) {
	var result *models.Application

	err := db.Transaction(func(tx *gorm.DB) error {
		app, err := loadApplication(tx, appID)
		if err != nil {
			return err
		}

		if actor.ID != app.OwnerID {
			return &utils.AuthorizationError{Message: "not the application owner"}
		}
		if !app.IsEditable() {
			return &utils.ConflictError{Message: "application can no longer be edited in status " + app.Status}
		}

		now := time.Now()
		app.FormData = mergeForm(app.FormData, patch)
		app.UpdatedAt = now

		if err := tx.Model(&models.Application{}).
			Where("application_id = ?", app.ApplicationID).
			Updates(map[string]interface{}{
				"form_data":  app.FormData,
				"updated_at": now,
			}).Error; err != nil {
			return fmt.Errorf("failed to update form: %w", err)
		}

		percent, err := RecomputeProgress(tx, app.ApplicationID)
		if err != nil {
			return err
		}
		app.ProgressPercent = percent

		result = app
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Submit moves the owner's draft to submitted. All required form fields
// must be filled; the submission timestamp is set exactly once.
func Submit(db *gorm.DB, appID int, actor Actor) (*models.Application, error) {
	var result *models.Application

	err := db.Transaction(func(tx *gorm.DB) error {
		app, err := loadApplication(tx, appID)
		if err != nil {
			return err
		}

		if actor.ID != app.OwnerID {
			return &utils.AuthorizationError{Message: "only the owner may submit an application"}
		}
		if app.Status != models.StatusDraft {
			return &utils.ConflictError{Message: "only draft applications can be submitted"}
		}

		if missing := MissingRequiredFields(app.FormData); len(missing) > 0 {
			return &utils.ValidationError{
				Message:       "application form is incomplete",
				MissingFields: missing,
			}
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":         models.StatusSubmitted,
			"draft_owner_id": nil,
			"updated_at":     now,
		}
		if app.SubmittedAt == nil {
			updates["submitted_at"] = now
		}

		res := tx.Model(&models.Application{}).
			Where("application_id = ? AND status = ?", app.ApplicationID, models.StatusDraft).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to submit application: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return &utils.ConflictError{Message: "application was submitted by a concurrent request"}
		}

		app.Status = models.StatusSubmitted
		app.DraftOwnerID = nil
		app.UpdatedAt = now
		if app.SubmittedAt == nil {
			app.SubmittedAt = &now
		}

		percent, err := RecomputeProgress(tx, app.ApplicationID)
		if err != nil {
			return err
		}
		app.ProgressPercent = percent

		if err := AppendActivity(tx, app.ApplicationID, models.EventSubmitted,
			"Application submitted for review", &actor.ID,
			map[string]interface{}{"application_number": app.ApplicationNumber}); err != nil {
			return err
		}

		link := "/applications/" + app.ApplicationNumber
		Notify(tx, uint(app.OwnerID), "Application submitted",
			"Your onboarding application has been submitted and is awaiting review.",
			models.SeverityInfo, &link)

		result = app
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// BeginReview moves a submitted application to under_review. Admin only.
func BeginReview(db *gorm.DB, appID int, actor Actor) (*models.Application, error) {
	return transition(db, appID, actor, transitionRule{
		from:        models.StatusSubmitted,
		to:          models.StatusUnderReview,
		description: "Application moved to review",
		severity:    models.SeverityInfo,
		message:     "Your onboarding application is now under review.",
		title:       "Review started",
	})
}

// Approve accepts an application under review. Admin only.
func Approve(db *gorm.DB, appID int, actor Actor, notes string) (*models.Application, error) {
	return transition(db, appID, actor, transitionRule{
		from:        models.StatusUnderReview,
		to:          models.StatusAccepted,
		notes:       strings.TrimSpace(notes),
		description: "Application approved",
		severity:    models.SeveritySuccess,
		message:     "Congratulations! Your onboarding application has been approved.",
		title:       "Application approved",
	})
}

// Reject declines an application under review. Admin only; a non-empty
// reason is mandatory.
func Reject(db *gorm.DB, appID int, actor Actor, reason, notes string) (*models.Application, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, &utils.ValidationError{Message: "rejection reason is required"}
	}
	return transition(db, appID, actor, transitionRule{
		from:        models.StatusUnderReview,
		to:          models.StatusRejected,
		reason:      reason,
		notes:       strings.TrimSpace(notes),
		description: "Application rejected",
		severity:    models.SeverityWarning,
		message:     "Your onboarding application was rejected: " + reason,
		title:       "Application rejected",
	})
}

type transitionRule struct {
	from        string
	to          string
	reason      string
	notes       string
	description string
	title       string
	message     string
	severity    string
}

func transition(db *gorm.DB, appID int, actor Actor, rule transitionRule) (*models.Application, error) {
	var result *models.Application

	err := db.Transaction(func(tx *gorm.DB) error {
		admin, err := IsAdmin(tx, actor)
		if err != nil {
			return err
		}
		if !admin {
			return &utils.AuthorizationError{Message: "admin role required"}
		}

		app, err := loadApplication(tx, appID)
		if err != nil {
			return err
		}
		if app.Status != rule.from {
			return &utils.ConflictError{
				Message: fmt.Sprintf("application is %s, expected %s", app.Status, rule.from),
			}
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":      rule.to,
			"reviewer_id": actor.ID,
			"updated_at":  now,
		}
		if rule.to == models.StatusAccepted || rule.to == models.StatusRejected {
			updates["reviewed_at"] = now
		}
		if rule.reason != "" {
			updates["rejection_reason"] = rule.reason
		}
		if rule.notes != "" {
			updates["review_notes"] = rule.notes
		}

		res := tx.Model(&models.Application{}).
			Where("application_id = ? AND status = ?", app.ApplicationID, rule.from).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to update application status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return &utils.ConflictError{Message: "application status changed by a concurrent request"}
		}

		oldStatus := app.Status
		app.Status = rule.to
		app.ReviewerID = &actor.ID
		app.UpdatedAt = now
		if rule.to == models.StatusAccepted || rule.to == models.StatusRejected {
			app.ReviewedAt = &now
		}
		if rule.reason != "" {
			app.RejectionReason = &rule.reason
		}
		if rule.notes != "" {
			app.ReviewNotes = &rule.notes
		}

		metadata := map[string]interface{}{
			"old_status": oldStatus,
			"new_status": rule.to,
		}
		if rule.reason != "" {
			metadata["reason"] = rule.reason
		}
		if rule.notes != "" {
			metadata["notes"] = rule.notes
		}
		if err := AppendActivity(tx, app.ApplicationID, models.EventStatusChanged,
			rule.description, &actor.ID, metadata); err != nil {
			return err
		}

		link := "/applications/" + app.ApplicationNumber
		Notify(tx, uint(app.OwnerID), rule.title, rule.message, rule.severity, &link)

		result = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Email delivery happens outside the transaction; a delivery failure
	// is logged, never propagated.
	if to := OwnerEmail(db, result.OwnerID); len(to) > 0 {
		SendMailSafe(to, rule.title, "<p>"+rule.message+"</p>")
	}

	return result, nil
}

// GetApplication loads one application, readable by its owner or any
// admin.
func GetApplication(db *gorm.DB, appID int, actor Actor) (*models.Application, error) {
	app, err := loadApplication(db, appID)
	if err != nil {
		return nil, err
	}
	if !CanRead(actor, app.OwnerID) {
		return nil, &utils.AuthorizationError{Message: "not allowed to view this application"}
	}
	return app, nil
}

// ListApplications returns the actor's own applications, or all
// applications (optionally filtered by status) for admins.
func ListApplications(db *gorm.DB, actor Actor, statusFilter string, limit, offset int) ([]models.Application, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := db.Model(&models.Application{})
	if actor.IsAdmin() {
		if statusFilter != "" {
			q = q.Where("status = ?", statusFilter)
		}
	} else {
		q = q.Where("owner_id = ?", actor.ID)
	}

	var apps []models.Application
	if err := q.Order("updated_at DESC").Limit(limit).Offset(offset).Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}
