package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"photo-location-service/version"
)

type loginRequest struct {
	Password string `json:"password" binding:"required"`
}

// AdminLogin exchanges the admin password for a bearer token.
func (h *Handler) AdminLogin(c *gin.Context) {
	var req loginRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if h.cfg.AdminPassword == "" ||
		subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.cfg.AdminPassword)) != 1 {
		log.Warnf("Admin login rejected from %s", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.auth.GenerateToken()
	if err != nil {
		log.Errorf("Failed to sign admin token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// AdminStats reports detailed usage for the admin panel.
func (h *Handler) AdminStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":  version.Version,
		"provider": h.cfg.LLMProvider,
		"source":   h.source,
		"models":   h.cfg.Models(),
		"quota":    h.tracker.GetStats(),
		"images":   h.images.Stats(),
		"shares":   h.shares.Count(),
		"sweeps": gin.H{
			"imagesRemoved": h.images.SweptTotal(),
			"sharesRemoved": h.shares.SweptTotal(),
		},
	})
}
