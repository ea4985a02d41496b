package controllers

import (
	"net/http"

	"onboarding-tracker-api/models"

	"github.com/gin-gonic/gin"
)

// GetDashboardStats returns the admin overview: application counts per
// status, documents awaiting verification, and applications whose form
// is complete but whose document set is not.
func GetDashboardStats(c *gin.Context) {
	db := getDB()

	statuses := []string{
		models.StatusDraft,
		models.StatusSubmitted,
		models.StatusUnderReview,
		models.StatusAccepted,
		models.StatusRejected,
	}

	byStatus := make(map[string]int64, len(statuses))
	for _, status := range statuses {
		var n int64
		if err := db.Model(&models.Application{}).
			Where("status = ?", status).
			Count(&n).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count applications"})
			return
		}
		byStatus[status] = n
	}

	var pendingVerification int64
	if err := db.Model(&models.Document{}).
		Where("verification_status = ?", models.VerificationPending).
		Count(&pendingVerification).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count documents"})
		return
	}

	var documentsPending int64
	if err := db.Model(&models.Application{}).
		Where("status IN ? AND progress_percent >= 60 AND progress_percent < 100",
			[]string{models.StatusDraft, models.StatusSubmitted}).
		Count(&documentsPending).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count applications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applications_by_status":          byStatus,
		"documents_pending_verification":  pendingVerification,
		"applications_awaiting_documents": documentsPending,
	})
}
