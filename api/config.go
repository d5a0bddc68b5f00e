// Package api provides the HTTP API server for session-scoped retrieval.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8080")
	ListenAddr string

	// MaxUploadBytes caps the size of uploaded documents. Zero uses
	// fiber's default body limit.
	MaxUploadBytes int
}
