package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"photo-location-service/markdown"
	"photo-location-service/metrics"
	"photo-location-service/models"
	"photo-location-service/quota"
)

// textTokenEstimate is the reservation charged for a text-only generation
// before the provider reports its actual cost.
const textTokenEstimate = 1000

// Narrative generates a multi-paragraph introduction for an analyzed
// location and returns it whole, split into display paragraphs.
func (h *Handler) Narrative(c *gin.Context) {
	var req models.NarrativeRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if req.LocationData.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location data is required"})
		return
	}

	reservation, ok := h.tracker.Reserve(textTokenEstimate)
	if !ok {
		h.rejectQuota(c, textTokenEstimate)
		return
	}

	result, err := h.analyzer.GenerateNarrative(c.Request.Context(), req.LocationData)
	if err != nil {
		h.tracker.Release(reservation)
		log.Errorf("Narrative generation failed: %v", err)
		respondUpstream(c, err)
		return
	}
	h.settleTextUsage(reservation, result.Usage.TotalTokens)

	text := markdown.Strip(result.Text)
	paragraphs := make([]models.Paragraph, 0)
	for i, p := range markdown.SplitParagraphs(text) {
		paragraphs = append(paragraphs, models.Paragraph{ID: i + 1, Text: p})
	}

	c.JSON(http.StatusOK, gin.H{
		"narrative":  text,
		"paragraphs": paragraphs,
	})
}

// NarrativeStream generates the narrative and delivers it as server-sent
// events, one paragraph per chunk, terminated by a [DONE] sentinel.
func (h *Handler) NarrativeStream(c *gin.Context) {
	var req models.NarrativeRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if req.LocationData.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location data is required"})
		return
	}

	reservation, ok := h.tracker.Reserve(textTokenEstimate)
	if !ok {
		h.rejectQuota(c, textTokenEstimate)
		return
	}

	result, err := h.analyzer.GenerateNarrative(c.Request.Context(), req.LocationData)
	if err != nil {
		h.tracker.Release(reservation)
		log.Errorf("Narrative generation failed: %v", err)
		respondUpstreamText(c, err)
		return
	}
	h.settleTextUsage(reservation, result.Usage.TotalTokens)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	text := markdown.Strip(result.Text)
	for _, p := range markdown.SplitParagraphs(text) {
		if err := writeSSE(c, models.StreamChunk{Content: p + "\n\n"}); err != nil {
			log.Errorf("Failed to write stream chunk: %v", err)
			return
		}
	}
	fmt.Fprint(c.Writer, "data: [DONE]\n\n")
	c.Writer.Flush()
}

func writeSSE(c *gin.Context, chunk models.StreamChunk) error {
	payload, err := json.Marshal(chunk)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", payload); err != nil {
		return err
	}
	c.Writer.Flush()
	return nil
}

// settleTextUsage replaces the flat text reservation with the metered cost
// and publishes it. A zero actual means the provider omitted usage; the
// estimate stands.
func (h *Handler) settleTextUsage(r quota.Reservation, actual int64) {
	if actual == 0 {
		actual = textTokenEstimate
	}
	h.tracker.Commit(r, actual)
	metrics.TokensUsedTotal.Add(float64(actual))
}
