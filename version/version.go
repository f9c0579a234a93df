package version

// Version is the service version reported by /health and /api/v1/status.
// Overridden at build time via -ldflags "-X photo-location-service/version.Version=...".
var Version = "1.0.0"
