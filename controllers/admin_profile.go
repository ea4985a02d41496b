package controllers

import (
	"net/http"
	"strconv"
	"time"

	"onboarding-tracker-api/models"
	"onboarding-tracker-api/services"

	"github.com/gin-gonic/gin"
)

// UpdateProfileRole changes a profile's role. Roles are immutable to
// their owner; this is the privileged admin path.
func UpdateProfileRole(c *gin.Context) {
	profileID, err := strconv.Atoi(c.Param("id"))
	if err != nil || profileID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile ID"})
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role is required"})
		return
	}
	if req.Role != models.RoleCandidate && req.Role != models.RoleAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be candidate or admin"})
		return
	}

	res := getDB().Model(&models.Profile{}).
		Where("profile_id = ? AND delete_at IS NULL", profileID).
		Updates(map[string]interface{}{
			"role":      req.Role,
			"update_at": time.Now(),
		})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	// The guard caches roles; drop the stale entry immediately.
	services.InvalidateRole(profileID)

	c.JSON(http.StatusOK, gin.H{"success": true})
}
