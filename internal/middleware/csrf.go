package middleware

import (
	"log/slog"
	"net/http"

	"filippo.io/csrf/gorilla"
)

// CSRF protects mutating routes using filippo.io/csrf, which relies on
// Fetch metadata headers rather than cookies. The auth key should be the
// session secret. In development, localhost origins are trusted.
func CSRF(authKey []byte, isDev bool) func(http.Handler) http.Handler {
	opts := []csrf.Option{
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	}

	if isDev {
		opts = append(opts, csrf.TrustedOrigins([]string{
			"localhost:8080",
			"127.0.0.1:8080",
		}))
	}

	return csrf.Protect(authKey, opts...)
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	reasonStr := "unknown"
	if reason := csrf.FailureReason(r); reason != nil {
		reasonStr = reason.Error()
	}
	slog.Error("CSRF validation failed",
		"reason", reasonStr,
		"method", r.Method,
		"path", r.URL.Path,
		"origin", r.Header.Get("Origin"),
	)
	http.Error(w, "Forbidden - CSRF validation failed", http.StatusForbidden)
}
