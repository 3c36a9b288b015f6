package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"demo/shop/internal/model"
)

type ctxKey int

const callerKey ctxKey = iota

// callerID returns the authenticated user id, or 0 for anonymous.
func callerID(ctx context.Context) int64 {
	id, _ := ctx.Value(callerKey).(int64)
	return id
}

// withIdentity resolves the Bearer token, if any, and threads the
// resulting identity through the request context. A missing or invalid
// token leaves the request anonymous; guarded routes reject it later.
func (h *Handler) withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := h.tokens.Verify(parts[1])
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey, userID)))
	})
}

// requireUser terminates unauthenticated requests before any domain
// logic runs.
func (h *Handler) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if callerID(r.Context()) == 0 {
			h.writeError(w, r, model.ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
