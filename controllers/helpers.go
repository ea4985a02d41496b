package controllers

import (
	"errors"
	"net/http"

	"onboarding-tracker-api/config"
	"onboarding-tracker-api/services"
	"onboarding-tracker-api/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func getDB() *gorm.DB { return config.DB }

// currentActor builds the explicit actor every service call takes, from
// the values the auth middleware placed in the request context.
func currentActor(c *gin.Context) (services.Actor, bool) {
	userID, ok := c.Get("userID")
	if !ok {
		return services.Actor{}, false
	}
	role, ok := c.Get("role")
	if !ok {
		return services.Actor{}, false
	}

	id, ok := userID.(int)
	if !ok {
		return services.Actor{}, false
	}
	return services.Actor{ID: id, Role: role.(string)}, true
}

// respondError maps the engine's error taxonomy onto HTTP status codes.
// Every rejection carries enough structure for the client to render an
// actionable message.
func respondError(c *gin.Context, err error) {
	var validation *utils.ValidationError
	var authz *utils.AuthorizationError
	var notFound *utils.NotFoundError
	var conflict *utils.ConflictError
	var storage *utils.StorageError

	switch {
	case errors.As(err, &validation):
		body := gin.H{"error": validation.Message}
		if len(validation.MissingFields) > 0 {
			body["missing_fields"] = validation.MissingFields
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.As(err, &authz):
		c.JSON(http.StatusForbidden, gin.H{"error": authz.Message})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Message})
	case errors.As(err, &storage):
		c.JSON(http.StatusBadGateway, gin.H{"error": storage.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
