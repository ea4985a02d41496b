package controllers

import (
	"net/http"
	"strconv"

	"onboarding-tracker-api/services"

	"github.com/gin-gonic/gin"
)

// GetTimeline returns an application's activity log, newest first.
// Access follows the owner-or-admin rule of the parent application.
func GetTimeline(c *gin.Context) {
	appID, ok := applicationIDParam(c)
	if !ok {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	// Same visibility rule as the application itself.
	if _, err := services.GetApplication(getDB(), appID, actor); err != nil {
		respondError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))

	entries, err := services.FetchTimeline(getDB(), appID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"timeline": entries})
}
