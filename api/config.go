package api

// Config is the API server configuration.
type Config struct {
	// Address to listen on (e.g., ":8000")
	ListenAddr string

	// AllowOrigins is the CORS allow list, comma separated ("*" for any).
	AllowOrigins string
}
