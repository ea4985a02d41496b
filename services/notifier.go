package services

import (
	"log"
	"time"

	"onboarding-tracker-api/config"
	"onboarding-tracker-api/models"

	"gorm.io/gorm"
)

// Notify inserts a notification record for one recipient.
//
// Dispatch is fire-and-forget from the caller's point of view: a failed
// insert is logged and swallowed so it can never abort the business
// transaction that triggered it. A lost notification is recoverable; a
// half-rolled-back approval is not.
func Notify(tx *gorm.DB, recipientID uint, title, message, severity string, link *string) {
	n := models.Notification{
		RecipientID: recipientID,
		Title:       title,
		Message:     message,
		Severity:    severity,
		Link:        link,
		IsRead:      false,
		CreateAt:    time.Now(),
	}

	if err := tx.Create(&n).Error; err != nil {
		log.Printf("notification dispatch failed (recipient=%d title=%q): %v", recipientID, title, err)
	}
}

// SendMailSafe delivers a notification email without letting delivery
// failures reach the caller. Called after the business transaction has
// committed.
func SendMailSafe(to []string, subject, html string) {
	if err := config.SendMail(to, subject, html); err != nil {
		log.Printf("notification email send failed (subject=%q to=%v): %v", subject, to, err)
	}
}

// OwnerEmail resolves the owner's address for post-commit email
// delivery. Returns an empty slice when the profile is gone.
func OwnerEmail(db *gorm.DB, profileID int) []string {
	var email string
	if err := db.Model(&models.Profile{}).
		Select("email").
		Where("profile_id = ? AND delete_at IS NULL", profileID).
		Scan(&email).Error; err != nil || email == "" {
		return nil
	}
	return []string{email}
}
