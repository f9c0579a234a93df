package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UploadImage stores a photo without analyzing it, for clients that upload
// first and analyze or share later.
func (h *Handler) UploadImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	defer file.Close()

	if header.Size > h.cfg.MaxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image exceeds the maximum upload size"})
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.cfg.MaxUploadBytes+1))
	if err != nil {
		log.Errorf("Failed to read upload: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
		return
	}
	if int64(len(data)) > h.cfg.MaxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image exceeds the maximum upload size"})
		return
	}

	mimeType := uploadMimeType(header.Header.Get("Content-Type"), data)
	if !allowedImageTypes[mimeType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported image type, use JPEG, PNG, HEIC or HEIF"})
		return
	}

	imageID := uuid.New().String()
	h.images.Put(imageID, data, mimeType, header.Filename)
	h.publishStoreGauges()

	c.JSON(http.StatusOK, gin.H{
		"imageId":  imageID,
		"url":      fmt.Sprintf("%s/api/v1/images/%s", h.resolveBaseURL(c), imageID),
		"size":     len(data),
		"mimeType": mimeType,
	})
}

// GetImage serves a stored image's raw bytes.
func (h *Handler) GetImage(c *gin.Context) {
	img := h.images.Get(c.Param("imageId"))
	if img == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
		return
	}
	c.Header("Cache-Control", "public, max-age=31536000")
	c.Data(http.StatusOK, img.MimeType, img.Data)
}

// DeleteImage removes a stored image.
func (h *Handler) DeleteImage(c *gin.Context) {
	if !h.images.Delete(c.Param("imageId")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
		return
	}
	h.publishStoreGauges()
	c.Status(http.StatusNoContent)
}

// resolveBaseURL picks the absolute URL prefix for links in responses:
// explicit configuration wins, then the incoming request's host, then a
// localhost fallback for development.
func (h *Handler) resolveBaseURL(c *gin.Context) string {
	if h.cfg.BaseURL != "" {
		return h.cfg.BaseURL
	}
	if host := c.Request.Host; host != "" {
		scheme := c.GetHeader("X-Forwarded-Proto")
		if scheme == "" {
			scheme = "http"
		}
		return scheme + "://" + host
	}
	return "http://localhost:" + h.cfg.Port
}
