package models

import (
	"time"
)

// Document verification sub-states. Independent of the parent
// application's status.
const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationRejected = "rejected"
)

// Document type codes. The catalog is fixed at build time; required
// types count toward the document share of the progress score.
const (
	DocTypePANCard            = "pan_card"
	DocTypeNationalID         = "national_id"
	DocTypeTenthCertificate   = "tenth_certificate"
	DocTypeTwelfthCertificate = "twelfth_certificate"
	DocTypeDegreeCertificate  = "degree_certificate"
	DocTypePhoto              = "photo"
	DocTypeResume             = "resume"
	DocTypeRelievingLetter    = "relieving_letter"
)

type Document struct {
	DocumentID      int        `gorm:"primaryKey;column:document_id" json:"document_id"`
	ApplicationID   int        `gorm:"column:application_id;uniqueIndex:uniq_app_doc_type" json:"application_id"`
	DocumentType    string     `gorm:"column:document_type;uniqueIndex:uniq_app_doc_type" json:"document_type"`
	StorageLocator  string     `gorm:"column:storage_locator" json:"-"`
	FileSize        int64      `gorm:"column:file_size" json:"file_size"`
	MediaType       string     `gorm:"column:media_type" json:"media_type"`
	Verification    string     `gorm:"column:verification_status" json:"verification_status"`
	VerifierID      *int       `gorm:"column:verifier_id" json:"verifier_id,omitempty"`
	VerifiedAt      *time.Time `gorm:"column:verified_at" json:"verified_at,omitempty"`
	RejectionReason *string    `gorm:"column:rejection_reason" json:"rejection_reason,omitempty"`
	UploadedAt      time.Time  `gorm:"column:uploaded_at" json:"uploaded_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at" json:"updated_at"`

	// Relations
	Application *Application `gorm:"foreignKey:ApplicationID" json:"application,omitempty"`
}

func (Document) TableName() string {
	return "documents"
}

// DocumentTypeInfo describes one entry of the fixed document catalog.
type DocumentTypeInfo struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Required bool   `json:"required"`
}

// DocumentTypeCatalog is the full set of accepted document types. The
// required ones are the five counted by the progress formula.
var DocumentTypeCatalog = []DocumentTypeInfo{
	{Code: DocTypePANCard, Name: "PAN Card", Required: true},
	{Code: DocTypeNationalID, Name: "National ID", Required: true},
	{Code: DocTypeTenthCertificate, Name: "10th Certificate", Required: true},
	{Code: DocTypeTwelfthCertificate, Name: "12th Certificate", Required: true},
	{Code: DocTypeDegreeCertificate, Name: "Degree Certificate", Required: true},
	{Code: DocTypePhoto, Name: "Passport Photo", Required: false},
	{Code: DocTypeResume, Name: "Resume", Required: false},
	{Code: DocTypeRelievingLetter, Name: "Relieving Letter", Required: false},
}

// IsValidDocumentType reports whether code is part of the catalog.
func IsValidDocumentType(code string) bool {
	for _, dt := range DocumentTypeCatalog {
		if dt.Code == code {
			return true
		}
	}
	return false
}
