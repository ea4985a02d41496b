package services

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"onboarding-tracker-api/models"
	"onboarding-tracker-api/utils"

	"gorm.io/gorm"
)

// MaxDocumentSize is the upload ceiling (5 MiB).
const MaxDocumentSize = 5 << 20

var allowedMediaTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
}

func loadDocument(tx *gorm.DB, docID int) (*models.Document, error) {
	var doc models.Document
	if err := tx.Where("document_id = ?", docID).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &utils.NotFoundError{Resource: "document"}
		}
		return nil, fmt.Errorf("failed to load document %d: %w", docID, err)
	}
	return &doc, nil
}

// UploadDocument stores a document for an application. A second upload
// of the same type replaces the existing row and resets its
// verification to pending: verified bytes cannot silently change.
//
// The blob write happens first; if the database insert then fails, the
// just-written blob is deleted best-effort so the store and the table
// cannot drift apart unnoticed.
func UploadDocument(db *gorm.DB, appID int, actor Actor, docType, mediaType string, size int64, r io.Reader) (*models.Document, error) {
	app, err := loadApplication(db, appID)
	if err != nil {
		return nil, err
	}
	if actor.ID != app.OwnerID {
		return nil, &utils.AuthorizationError{Message: "not the application owner"}
	}
	if !app.IsEditable() {
		return nil, &utils.ConflictError{Message: "documents can no longer be added in status " + app.Status}
	}

	if !models.IsValidDocumentType(docType) {
		return nil, &utils.ValidationError{Message: "unknown document type " + docType}
	}
	ext, ok := allowedMediaTypes[mediaType]
	if !ok {
		return nil, &utils.ValidationError{Message: "media type " + mediaType + " is not allowed (pdf, jpeg, png only)"}
	}
	if size <= 0 || size > MaxDocumentSize {
		return nil, &utils.ValidationError{Message: "file size must be between 1 byte and 5 MiB"}
	}

	now := time.Now()
	locator := BuildStorageLocator(app.OwnerID, app.ApplicationID, docType, now, ext)

	if err := Blobs.Put(locator, io.LimitReader(r, MaxDocumentSize)); err != nil {
		return nil, &utils.StorageError{Op: "put", Err: err}
	}

	var result *models.Document
	var supersededLocator string

	txErr := db.Transaction(func(tx *gorm.DB) error {
		var existing models.Document
		err := tx.Where("application_id = ? AND document_type = ?", appID, docType).
			First(&existing).Error

		switch {
		case err == nil:
			// Replace: supersede the prior row and its verification state.
			supersededLocator = existing.StorageLocator
			if err := tx.Model(&models.Document{}).
				Where("document_id = ?", existing.DocumentID).
				Updates(map[string]interface{}{
					"storage_locator":     locator,
					"file_size":           size,
					"media_type":          mediaType,
					"verification_status": models.VerificationPending,
					"verifier_id":         nil,
					"verified_at":         nil,
					"rejection_reason":    nil,
					"uploaded_at":         now,
					"updated_at":          now,
				}).Error; err != nil {
				return fmt.Errorf("failed to replace document: %w", err)
			}
			existing.StorageLocator = locator
			existing.FileSize = size
			existing.MediaType = mediaType
			existing.Verification = models.VerificationPending
			existing.VerifierID = nil
			existing.VerifiedAt = nil
			existing.RejectionReason = nil
			existing.UploadedAt = now
			existing.UpdatedAt = now
			result = &existing

		case errors.Is(err, gorm.ErrRecordNotFound):
			doc := models.Document{
				ApplicationID:  appID,
				DocumentType:   docType,
				StorageLocator: locator,
				FileSize:       size,
				MediaType:      mediaType,
				Verification:   models.VerificationPending,
				UploadedAt:     now,
				UpdatedAt:      now,
			}
			if err := tx.Create(&doc).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return &utils.ConflictError{Message: "a document of this type was uploaded concurrently"}
				}
				return fmt.Errorf("failed to insert document: %w", err)
			}
			result = &doc

		default:
			return fmt.Errorf("failed to look up document: %w", err)
		}

		if _, err := RecomputeProgress(tx, appID); err != nil {
			return err
		}

		return AppendActivity(tx, appID, models.EventDocumentUploaded,
			"Document uploaded: "+docType, &actor.ID,
			map[string]interface{}{"document_type": docType, "media_type": mediaType, "file_size": size})
	})
	if txErr != nil {
		// Compensate: the blob was written but the row was not.
		if delErr := Blobs.Delete(locator); delErr != nil {
			log.Printf("compensating blob delete failed (locator=%s): %v", locator, delErr)
		}
		return nil, txErr
	}

	if supersededLocator != "" {
		if err := Blobs.Delete(supersededLocator); err != nil {
			log.Printf("failed to delete superseded blob (locator=%s): %v", supersededLocator, err)
		}
	}

	return result, nil
}

// RemoveDocument deletes a document. Owner only, and never once the
// document has been verified.
func RemoveDocument(db *gorm.DB, docID int, actor Actor) error {
	var locator string

	err := db.Transaction(func(tx *gorm.DB) error {
		doc, err := loadDocument(tx, docID)
		if err != nil {
			return err
		}

		app, err := loadApplication(tx, doc.ApplicationID)
		if err != nil {
			return err
		}
		if actor.ID != app.OwnerID {
			return &utils.AuthorizationError{Message: "not the application owner"}
		}
		if doc.Verification == models.VerificationVerified {
			return &utils.ConflictError{Message: "verified documents cannot be removed"}
		}

		if err := tx.Delete(&models.Document{}, doc.DocumentID).Error; err != nil {
			return fmt.Errorf("failed to delete document: %w", err)
		}
		locator = doc.StorageLocator

		if _, err := RecomputeProgress(tx, doc.ApplicationID); err != nil {
			return err
		}

		return AppendActivity(tx, doc.ApplicationID, models.EventDocumentRemoved,
			"Document removed: "+doc.DocumentType, &actor.ID,
			map[string]interface{}{"document_type": doc.DocumentType})
	})
	if err != nil {
		return err
	}

	if err := Blobs.Delete(locator); err != nil {
		log.Printf("failed to delete blob for removed document (locator=%s): %v", locator, err)
	}
	return nil
}

// VerifyDocument sets a document's verification outcome. Admin only; a
// rejection requires a reason.
func VerifyDocument(db *gorm.DB, docID int, actor Actor, verified bool, reason string) (*models.Document, error) {
	if !verified && reason == "" {
		return nil, &utils.ValidationError{Message: "a reason is required when rejecting a document"}
	}

	var result *models.Document
	var ownerID int

	err := db.Transaction(func(tx *gorm.DB) error {
		admin, err := IsAdmin(tx, actor)
		if err != nil {
			return err
		}
		if !admin {
			return &utils.AuthorizationError{Message: "admin role required"}
		}

		doc, err := loadDocument(tx, docID)
		if err != nil {
			return err
		}
		app, err := loadApplication(tx, doc.ApplicationID)
		if err != nil {
			return err
		}
		ownerID = app.OwnerID

		now := time.Now()
		status := models.VerificationVerified
		if !verified {
			status = models.VerificationRejected
		}

		updates := map[string]interface{}{
			"verification_status": status,
			"verifier_id":         actor.ID,
			"verified_at":         now,
			"updated_at":          now,
		}
		if !verified {
			updates["rejection_reason"] = reason
		} else {
			updates["rejection_reason"] = nil
		}

		if err := tx.Model(&models.Document{}).
			Where("document_id = ?", doc.DocumentID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update verification: %w", err)
		}

		doc.Verification = status
		doc.VerifierID = &actor.ID
		doc.VerifiedAt = &now
		if !verified {
			doc.RejectionReason = &reason
		} else {
			doc.RejectionReason = nil
		}
		doc.UpdatedAt = now

		metadata := map[string]interface{}{
			"document_type": doc.DocumentType,
			"verified":      verified,
		}
		if !verified {
			metadata["reason"] = reason
		}
		if err := AppendActivity(tx, doc.ApplicationID, models.EventDocumentVerified,
			"Document verification: "+doc.DocumentType, &actor.ID, metadata); err != nil {
			return err
		}

		if verified {
			Notify(tx, uint(app.OwnerID), "Document verified",
				"Your "+doc.DocumentType+" document has been verified.",
				models.SeveritySuccess, nil)
		} else {
			Notify(tx, uint(app.OwnerID), "Document rejected",
				"Your "+doc.DocumentType+" document was rejected: "+reason,
				models.SeverityWarning, nil)
		}

		result = doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	if to := OwnerEmail(db, ownerID); len(to) > 0 {
		subject := "Document verified"
		if !verified {
			subject = "Document rejected"
		}
		SendMailSafe(to, subject, "<p>Document "+result.DocumentType+": "+result.Verification+"</p>")
	}

	return result, nil
}

// ListDocuments returns all documents of an application, owner or admin.
func ListDocuments(db *gorm.DB, appID int, actor Actor) ([]models.Document, error) {
	app, err := loadApplication(db, appID)
	if err != nil {
		return nil, err
	}
	if !CanRead(actor, app.OwnerID) {
		return nil, &utils.AuthorizationError{Message: "not allowed to view these documents"}
	}

	var docs []models.Document
	if err := db.Where("application_id = ?", appID).
		Order("document_type ASC").
		Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

// OpenDocument streams a document's bytes for download, owner or admin.
func OpenDocument(db *gorm.DB, docID int, actor Actor) (*models.Document, io.ReadCloser, error) {
	doc, err := loadDocument(db, docID)
	if err != nil {
		return nil, nil, err
	}
	app, err := loadApplication(db, doc.ApplicationID)
	if err != nil {
		return nil, nil, err
	}
	if !CanRead(actor, app.OwnerID) {
		return nil, nil, &utils.AuthorizationError{Message: "not allowed to download this document"}
	}

	rc, err := Blobs.Open(doc.StorageLocator)
	if err != nil {
		return nil, nil, &utils.StorageError{Op: "get", Err: err}
	}
	return doc, rc, nil
}
