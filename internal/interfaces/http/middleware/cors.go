package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORSConfig holds configuration for the CORS middleware.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int // seconds
}

// DefaultCORSConfig allows the given origins to call the JSON API.
func DefaultCORSConfig(origins []string) CORSConfig {
	return CORSConfig{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		MaxAge:         300,
	}
}

// CORS returns the go-chi/cors handler for cfg. A wildcard origin never
// allows credentials.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	credentials := cfg.AllowCredentials
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			credentials = false
		}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: credentials,
		MaxAge:           cfg.MaxAge,
	})
}

//Personal.AI order the ending
