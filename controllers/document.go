package controllers

import (
	"io"
	"net/http"
	"strconv"

	"onboarding-tracker-api/models"
	"onboarding-tracker-api/services"

	"github.com/gin-gonic/gin"
)

// UploadDocument stores one file for an application. The document type
// comes from the multipart form; re-uploading an existing type replaces
// the previous file and resets its verification.
func UploadDocument(c *gin.Context) {
	appID, ok := applicationIDParam(c)
	if !ok {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	docType := c.PostForm("document_type")
	if docType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document_type is required"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	mediaType := fileHeader.Header.Get("Content-Type")

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file"})
		return
	}
	defer f.Close()

	doc, err := services.UploadDocument(getDB(), appID, actor, docType, mediaType, fileHeader.Size, f)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Document uploaded successfully",
		"document": doc,
	})
}

// GetDocuments lists an application's documents, owner or admin.
func GetDocuments(c *gin.Context) {
	appID, ok := applicationIDParam(c)
	if !ok {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	docs, err := services.ListDocuments(getDB(), appID, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// DownloadDocument streams a document's bytes, owner or admin.
func DownloadDocument(c *gin.Context) {
	docID, err := strconv.Atoi(c.Param("document_id"))
	if err != nil || docID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document ID"})
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	doc, rc, err := services.OpenDocument(getDB(), docID, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", "attachment; filename="+doc.DocumentType)
	c.Header("Content-Type", doc.MediaType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, rc)
}

// DeleteDocument removes a document. Owner only, never once verified.
func DeleteDocument(c *gin.Context) {
	docID, err := strconv.Atoi(c.Param("document_id"))
	if err != nil || docID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document ID"})
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := services.RemoveDocument(getDB(), docID, actor); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Document deleted successfully",
	})
}

// VerifyDocument records an admin's verification outcome for one
// document.
func VerifyDocument(c *gin.Context) {
	docID, err := strconv.Atoi(c.Param("document_id"))
	if err != nil || docID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document ID"})
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		Verified *bool  `json:"verified" binding:"required"`
		Reason   string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "verified flag is required"})
		return
	}

	doc, err := services.VerifyDocument(getDB(), docID, actor, *req.Verified, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"document": doc,
	})
}

// GetDocumentTypes returns the fixed document catalog.
func GetDocumentTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"document_types": models.DocumentTypeCatalog})
}
