package handlers

import (
	"github.com/gin-gonic/gin"
)

// Register mounts all service routes on the given engine. Admin routes are
// mounted only when an admin password is configured.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/health", h.HealthCheck)

	api := r.Group("/api/v1")
	{
		api.POST("/analyze", h.Analyze)
		api.POST("/narrative", h.Narrative)
		api.POST("/narrative/stream", h.NarrativeStream)
		api.POST("/chat", h.Chat)

		api.POST("/images", h.UploadImage)
		api.GET("/images/:imageId", h.GetImage)
		api.DELETE("/images/:imageId", h.DeleteImage)

		api.POST("/share", h.CreateShare)
		api.GET("/share/:shareId", h.GetShare)

		api.GET("/status", h.Status)
	}

	if h.cfg.AdminPassword != "" {
		admin := r.Group("/api/v1/admin")
		admin.POST("/login", h.AdminLogin)
		admin.GET("/stats", h.auth.Middleware(), h.AdminStats)
	}
}
