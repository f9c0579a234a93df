package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"photo-location-service/imageproc"
	"photo-location-service/metrics"
	"photo-location-service/quota"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/heic": true,
	"image/heif": true,
}

// uploadMimeType trusts the client's declared type unless it is missing or
// the generic octet-stream default, in which case the content is sniffed.
func uploadMimeType(declared string, data []byte) string {
	if declared == "" || declared == "application/octet-stream" {
		return http.DetectContentType(data)
	}
	return declared
}

// Analyze accepts a multipart photo upload, runs it through the vision
// model and returns the inferred location. The upload is retained in the
// ephemeral store so narrative and share requests can reference it.
func (h *Handler) Analyze(c *gin.Context) {
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

	estimated := quota.EstimateImageTokens(int64(len(data)))
	reservation, ok := h.tracker.Reserve(estimated)
	if !ok {
		h.rejectQuota(c, estimated)
		return
	}

	// GPS EXIF is read from the original bytes; normalization strips it.
	gpsHint := imageproc.GPSHint(data)

	normalized, normalizedMime, err := imageproc.Normalize(data, mimeType)
	if err != nil {
		h.tracker.Release(reservation)
		log.Errorf("Failed to normalize image: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "image could not be decoded"})
		return
	}

	result, err := h.analyzer.AnalyzeImage(c.Request.Context(), normalized, normalizedMime, gpsHint)
	if err != nil {
		h.tracker.Release(reservation)
		metrics.AnalyzeRequestsTotal.WithLabelValues("error").Inc()
		log.Errorf("Analysis failed: %v", err)
		respondUpstream(c, err)
		return
	}

	actual := result.Usage.TotalTokens
	if actual == 0 {
		actual = estimated
	}
	h.tracker.Commit(reservation, actual)
	metrics.TokensUsedTotal.Add(float64(actual))
	metrics.AnalyzeRequestsTotal.WithLabelValues("ok").Inc()

	imageID := uuid.New().String()
	h.images.Put(imageID, data, mimeType, header.Filename)
	h.publishStoreGauges()

	log.WithFields(log.Fields{
		"image_id": imageID,
		"size":     len(data),
		"tokens":   actual,
	}).Info("photo analyzed")

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"location":   result.Location,
		"imageId":    imageID,
		"imageUrl":   fmt.Sprintf("%s/api/v1/images/%s", h.resolveBaseURL(c), imageID),
		"source":     h.source,
		"tokensUsed": actual,
		"quota":      h.tracker.GetStats(),
	})
}

// rejectQuota answers 429 naming the exhausted ceiling. Lifetime exhaustion
// takes precedence since waiting a day will not help.
func (h *Handler) rejectQuota(c *gin.Context, estimated int64) {
	total, daily := h.tracker.Exhausted(estimated)
	switch {
	case total:
		metrics.QuotaRejectedTotal.WithLabelValues("total").Inc()
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":  "the service's total usage quota is exhausted",
			"reason": "total_quota_exceeded",
		})
	case daily:
		metrics.QuotaRejectedTotal.WithLabelValues("daily").Inc()
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":  "the daily usage quota is exhausted, please try again tomorrow",
			"reason": "daily_quota_exceeded",
		})
	default:
		// Lost a race with a concurrent reservation.
		metrics.QuotaRejectedTotal.WithLabelValues("contended").Inc()
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":  "usage quota temporarily unavailable, please retry",
			"reason": "quota_contended",
		})
	}
}

func (h *Handler) publishStoreGauges() {
	stats := h.images.Stats()
	metrics.StoredImages.Set(float64(stats.TotalImages))
	metrics.StoredImageBytes.Set(float64(stats.TotalBytes))
	metrics.StoredShares.Set(float64(h.shares.Count()))
}
