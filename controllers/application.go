package controllers

import (
	"net/http"
	"strconv"

	"onboarding-tracker-api/services"

	"github.com/gin-gonic/gin"
)

type draftRequest struct {
	Form map[string]interface{} `json:"form"`
}

type reviewRequest struct {
	Notes string `json:"notes"`
}

type rejectRequest struct {
	Reason string `json:"reason" binding:"required"`
	Notes  string `json:"notes"`
}

func applicationIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID"})
		return 0, false
	}
	return id, true
}

// CreateDraft returns the caller's draft application, creating one when
// none exists yet. Double-submit safe: repeated calls converge on the
// same draft.
func CreateDraft(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req draftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}
	if req.Form == nil {
		req.Form = map[string]interface{}{}
	}

	app, err := services.EnsureDraft(getDB(), actor.ID, req.Form)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"application": app,
	})
}

// UpdateDraft merges a form patch into the application payload.
func UpdateDraft(c *gin.Context) {
	appID, ok := applicationIDParam(c)
	if !ok {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req draftRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Form == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	app, err := services.UpdateDraft(getDB(), appID, actor, req.Form)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"application": app,
	})
}

// SubmitApplication moves a draft to submitted.
func SubmitApplication(c *gin.Context) {
	appID, ok := applicationIDParam(c)
	if !ok {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	app, err := services.Submit(getDB(), appID, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Application submitted successfully",
		"application":  app,
		"submitted_at": app.SubmittedAt,
	})
}

// BeginReview moves a submitted application to under_review. Admin only.
func BeginReview(c *gin.Context) {
	appID, ok := applicationIDParam(c)
	if !ok {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	app, err := services.BeginReview(getDB(), appID, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Application moved to review",
		"application": app,
	})
}

// ApproveApplication accepts an application under review. Admin only.
func ApproveApplication(c *gin.Context) {
	appID, ok := applicationIDParam(c)
	if !ok {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Notes are optional; an empty body is fine.
		req = reviewRequest{}
	}

	app, err := services.Approve(getDB(), appID, actor, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Application approved successfully",
		"application": app,
	})
}

// RejectApplication declines an application under review. Admin only,
// reason required.
func RejectApplication(c *gin.Context) {
	appID, ok := applicationIDParam(c)
	if !ok {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rejection reason is required"})
		return
	}

	app, err := services.Reject(getDB(), appID, actor, req.Reason, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Application rejected",
		"application": app,
	})
}

// GetApplication returns one application, owner or admin.
func GetApplication(c *gin.Context) {
	appID, ok := applicationIDParam(c)
	if !ok {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	app, err := services.GetApplication(getDB(), appID, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"application": app})
}

// ListApplications returns the caller's applications; admins see all
// and may filter by status.
func ListApplications(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	apps, err := services.ListApplications(getDB(), actor, c.Query("status"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"applications": apps})
}
