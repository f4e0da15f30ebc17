// cmd/gateway/main.go
package main

import (
	"fmt"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"

	"github.com/go-chi/chi/v5"

	"libris/internal/auth"
)

func main() {
	bookServiceURL := mustParse(getEnv("BOOK_SERVICE_URL", "http://localhost:8081"))
	borrowingServiceURL := mustParse(getEnv("BORROWING_SERVICE_URL", "http://localhost:8082"))
	userServiceURL := mustParse(getEnv("USER_SERVICE_URL", "http://localhost:8083"))

	bookProxy := httputil.NewSingleHostReverseProxy(bookServiceURL)
	borrowingProxy := httputil.NewSingleHostReverseProxy(borrowingServiceURL)
	userProxy := httputil.NewSingleHostReverseProxy(userServiceURL)

	tokens := auth.NewTokenService(getEnv("JWT_SECRET", "dev_secret_change_in_prod_0123456789abcdef"), 0)

	r := newRouter(tokens, userProxy, bookProxy, borrowingProxy)

	port := getEnv("PORT", "8080")
	fmt.Printf("🚀 Starting API Gateway on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, r))
}

// newRouter mounts the proxied routes. Each collection registers both the
// bare and wildcard patterns since chi matches them separately.
func newRouter(tokens *auth.TokenService, userProxy, bookProxy, borrowingProxy http.Handler) chi.Router {
	r := chi.NewRouter()

	// Auth endpoints are public; everything else is verified here and
	// re-verified by the downstream service. The original Authorization
	// header passes through untouched; no trust headers are injected.
	r.Handle("/api/v1/auth/*", userProxy)

	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(tokens))
		r.Handle("/api/v1/users", userProxy)
		r.Handle("/api/v1/users/*", userProxy)
		r.Handle("/api/v1/books", bookProxy)
		r.Handle("/api/v1/books/*", bookProxy)
		r.Handle("/api/v1/borrowings", borrowingProxy)
		r.Handle("/api/v1/borrowings/*", borrowingProxy)
	})

	return r
}

func mustParse(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		log.Fatalf("Invalid service URL %q: %v", raw, err)
	}
	return u
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
