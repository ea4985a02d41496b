package services

import (
	"fmt"
	"strings"

	"onboarding-tracker-api/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RequiredFormFields is the fixed ordered list of form fields that
// count toward the form share of progress. Optional fields pass through
// the payload untouched and do not affect the score.
var RequiredFormFields = []string{
	"full_name",
	"date_of_birth",
	"gender",
	"phone",
	"personal_email",
	"current_address",
	"emergency_contact_name",
	"emergency_contact_phone",
	"bank_name",
	"bank_account_number",
	"ifsc_code",
	"declaration_accepted",
}

// RequiredDocumentCount caps the document share of progress.
const RequiredDocumentCount = 5

// fieldFilled treats blank strings, nil and explicit false booleans as
// empty. The declaration checkbox only counts once accepted.
func fieldFilled(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	case bool:
		return v
	default:
		return true
	}
}

// CountFilledRequiredFields returns how many of the required fields are
// non-empty in the form payload.
func CountFilledRequiredFields(form datatypes.JSONMap) int {
	filled := 0
	for _, field := range RequiredFormFields {
		if fieldFilled(form[field]) {
			filled++
		}
	}
	return filled
}

// MissingRequiredFields lists the required fields still empty, in the
// catalog's order.
func MissingRequiredFields(form datatypes.JSONMap) []string {
	missing := make([]string, 0)
	for _, field := range RequiredFormFields {
		if !fieldFilled(form[field]) {
			missing = append(missing, field)
		}
	}
	return missing
}

// ProgressScore computes the completion percent from the filled-field
// count and the uploaded-document count. Form completeness is worth 60
// points, documents 40, capped and clamped to [0,100].
func ProgressScore(filledFields, documentCount int) int {
	if filledFields < 0 {
		filledFields = 0
	}
	if filledFields > len(RequiredFormFields) {
		filledFields = len(RequiredFormFields)
	}
	if documentCount < 0 {
		documentCount = 0
	}

	formShare := filledFields * 60 / len(RequiredFormFields)
	docShare := documentCount * 40 / RequiredDocumentCount
	if docShare > 40 {
		docShare = 40
	}

	percent := formShare + docShare
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return percent
}

// RecomputeProgress derives the progress percent from persisted state
// and stores it on the application row. It is deterministic and safe to
// re-run; callers rely on the stored value without re-deriving it.
// Runs inside the caller's transaction.
func RecomputeProgress(tx *gorm.DB, appID int) (int, error) {
	var app models.Application
	if err := tx.Select("application_id", "form_data").
		Where("application_id = ?", appID).
		First(&app).Error; err != nil {
		return 0, fmt.Errorf("failed to load application %d: %w", appID, err)
	}

	var docCount int64
	if err := tx.Model(&models.Document{}).
		Where("application_id = ?", appID).
		Count(&docCount).Error; err != nil {
		return 0, fmt.Errorf("failed to count documents for application %d: %w", appID, err)
	}

	percent := ProgressScore(CountFilledRequiredFields(app.FormData), int(docCount))

	if err := tx.Model(&models.Application{}).
		Where("application_id = ?", appID).
		Update("progress_percent", percent).Error; err != nil {
		return 0, fmt.Errorf("failed to persist progress for application %d: %w", appID, err)
	}

	return percent, nil
}
