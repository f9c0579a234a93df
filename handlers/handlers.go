// Package handlers wires the HTTP surface: photo analysis, narrative and
// chat generation, ephemeral image and share storage, service status and
// the admin panel.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"photo-location-service/config"
	"photo-location-service/gateway"
	"photo-location-service/llm"
	"photo-location-service/middleware"
	"photo-location-service/models"
	"photo-location-service/quota"
	"photo-location-service/store"
	"photo-location-service/version"
)

// Analyzer is the slice of the model gateway the handlers need. Narrow on
// purpose so tests can substitute a fake.
type Analyzer interface {
	AnalyzeImage(ctx context.Context, image []byte, mimeType, gpsHint string) (*gateway.AnalyzeResult, error)
	GenerateNarrative(ctx context.Context, loc *models.LocationRecord) (*llm.Result, error)
	Chat(ctx context.Context, message string, loc *models.LocationRecord, history []models.ChatTurn) (*llm.Result, error)
}

// Handler carries the shared dependencies of all HTTP handlers.
type Handler struct {
	cfg      *config.Config
	tracker  *quota.Tracker
	images   *store.ImageStore
	shares   *store.ShareStore
	analyzer Analyzer
	auth     *middleware.AdminAuth
	source   string
}

// New creates the handler set.
func New(cfg *config.Config, tracker *quota.Tracker, images *store.ImageStore, shares *store.ShareStore, analyzer Analyzer, auth *middleware.AdminAuth, source string) *Handler {
	return &Handler{
		cfg:      cfg,
		tracker:  tracker,
		images:   images,
		shares:   shares,
		analyzer: analyzer,
		auth:     auth,
		source:   source,
	}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "photo-location-service",
		"version": version.Version,
	})
}

// Status reports quota usage and storage occupancy.
func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"provider": h.cfg.LLMProvider,
		"source":   h.source,
		"quota":    h.tracker.GetStats(),
		"images":   h.images.Stats(),
		"shares":   h.shares.Count(),
	})
}

// respondUpstream maps gateway failures onto HTTP statuses. Busy upstreams
// are retryable 503s; configuration and quota problems on the provider side
// surface as 502 with operator guidance.
func respondUpstream(c *gin.Context, err error) {
	status, msg := classifyUpstream(err)
	var ue *gateway.UpstreamError
	if errors.As(err, &ue) {
		c.JSON(status, gin.H{"error": "AI provider request failed", "detail": ue.Guidance})
		return
	}
	c.JSON(status, gin.H{"error": msg})
}

// respondUpstreamText is the stream-endpoint variant: SSE clients read the
// failure body as plain text, not JSON.
func respondUpstreamText(c *gin.Context, err error) {
	status, msg := classifyUpstream(err)
	c.String(status, msg)
}

func classifyUpstream(err error) (int, string) {
	var ue *gateway.UpstreamError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "AI request timed out"
	case errors.Is(err, gateway.ErrServiceBusy):
		return http.StatusServiceUnavailable, "AI service is busy, please try again later"
	case errors.As(err, &ue):
		return http.StatusBadGateway, "AI provider request failed: " + ue.Guidance
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
