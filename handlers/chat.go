package handlers

import (
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"photo-location-service/markdown"
	"photo-location-service/models"
)

// Chat answers a follow-up question about an analyzed location.
func (h *Handler) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	reservation, ok := h.tracker.Reserve(textTokenEstimate)
	if !ok {
		h.rejectQuota(c, textTokenEstimate)
		return
	}

	result, err := h.analyzer.Chat(c.Request.Context(), req.Message, req.LocationData, req.ChatHistory)
	if err != nil {
		h.tracker.Release(reservation)
		log.Errorf("Chat failed: %v", err)
		respondUpstream(c, err)
		return
	}
	h.settleTextUsage(reservation, result.Usage.TotalTokens)

	c.JSON(http.StatusOK, gin.H{
		"reply":     markdown.Strip(result.Text),
		"source":    h.source,
		"timestamp": time.Now().UTC(),
	})
}
