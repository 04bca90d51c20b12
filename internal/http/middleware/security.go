package middleware

import "net/http"

// SecurityHeaders adds standard hardening headers to every response
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Del("X-Powered-By")
		w.Header().Del("Server")
		next.ServeHTTP(w, r)
	})
}
