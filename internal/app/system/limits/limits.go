// internal/app/system/limits/limits.go
package limits

// Request body size limits.
const (
	// MaxAPIBodySize caps JSON bodies on /api endpoints. Every accepted body
	// is a handful of short strings.
	MaxAPIBodySize = 64 << 10 // 64 KB
)
