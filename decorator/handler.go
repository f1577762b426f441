package decorator

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/river-now/patterns/kit/colorlog"
)

var Log = colorlog.New("decorator")

type Middleware = func(http.Handler) http.Handler

// Decorate wraps h so that the first middleware is the outermost.
func Decorate(h http.Handler, mws ...Middleware) http.Handler {
	if len(mws) == 0 {
		return h
	}
	return chi.Chain(mws...).Handler(h)
}

// Recover turns panics into 500s.
func Recover() Middleware {
	return chimw.Recoverer
}

// Header sets a response header before calling the next handler.
func Header(key, value string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(key, value)
			next.ServeHTTP(w, r)
		})
	}
}

// see https://owasp.org/www-project-secure-headers/ci/headers_add.json
var secureHeaders = map[string]string{
	"Cross-Origin-Opener-Policy":   "same-origin",
	"Cross-Origin-Resource-Policy": "same-origin",
	"Referrer-Policy":              "no-referrer",
	"Strict-Transport-Security":    "max-age=31536000; includeSubDomains",
	"X-Content-Type-Options":       "nosniff",
	"X-Frame-Options":              "deny",
}

func SecureHeaders() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for k, v := range secureHeaders {
				w.Header().Set(k, v)
			}
			w.Header().Del("Server")
			w.Header().Del("X-Powered-By")
			next.ServeHTTP(w, r)
		})
	}
}

// Logging records method, path, status and duration for each request. A
// nil logger uses the package logger.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = Log
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		})
	}
}
