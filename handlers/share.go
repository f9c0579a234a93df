package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"photo-location-service/models"
)

// CreateShare snapshots an analysis result under a fresh id and returns the
// public link. Snapshots expire after the configured TTL.
func (h *Handler) CreateShare(c *gin.Context) {
	var req models.ShareRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if req.LocationData.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location data is required"})
		return
	}
	if req.ImageID != "" && h.images.Get(req.ImageID) == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "referenced image does not exist"})
		return
	}

	shareID := uuid.New().String()
	snap := h.shares.Create(shareID, *req.LocationData, req.Narrative, req.ImageID)
	h.publishStoreGauges()

	c.JSON(http.StatusOK, gin.H{
		"shareId":   snap.ID,
		"url":       fmt.Sprintf("%s/share/%s", h.resolveBaseURL(c), snap.ID),
		"expiresAt": snap.ExpiresAt,
	})
}

// GetShare returns a shared snapshot. Expired snapshots read as not found.
func (h *Handler) GetShare(c *gin.Context) {
	snap := h.shares.Get(c.Param("shareId"))
	if snap == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "share not found or expired"})
		return
	}
	c.JSON(http.StatusOK, snap)
}
