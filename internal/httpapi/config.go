package httpapi

import "time"

// maxBodyBytes controls the maximum allowed request body size for JSON endpoints.
// Batches carry many prompts, so the default is 8 MiB.
var maxBodyBytes int64 = 8 << 20

// SetMaxBodyBytes allows configuring the maximum request body size.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = 8 << 20
		return
	}
	maxBodyBytes = n
}

// generateTimeout bounds a /v1/generate call. Zero means no limit beyond the client's.
var generateTimeout time.Duration

// SetGenerateTimeout sets the per-request generate timeout (0 disables).
func SetGenerateTimeout(d time.Duration) {
	if d < 0 {
		d = 0
	}
	generateTimeout = d
}

// CORS configuration (opt-in). If no origins are set, no CORS middleware is added.
var (
	corsAllowedOrigins []string
	corsAllowedMethods = []string{"GET", "POST", "OPTIONS"}
	corsAllowedHeaders = []string{"Content-Type", "X-Log-Level", "X-Request-Id"}
)

// SetCORSOrigins enables CORS for the given origins.
func SetCORSOrigins(origins []string) {
	corsAllowedOrigins = append([]string(nil), origins...)
}
