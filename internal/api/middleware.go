package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MitchellNeaf/pawscheduler/internal/metrics"
	"github.com/MitchellNeaf/pawscheduler/internal/models"
)

type contextKey string

const groomerKey contextKey = "groomer"

// authenticate resolves the tenant from a Bearer API token. Every handler
// below this middleware operates on exactly one groomer's data.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		groomer, err := s.db.GetGroomerByAPIToken(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), groomerKey, groomer)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// groomerFrom returns the authenticated tenant set by authenticate.
func groomerFrom(r *http.Request) *models.Groomer {
	g, _ := r.Context().Value(groomerKey).(*models.Groomer)
	return g
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		// The route pattern keeps metric cardinality bounded; raw paths
		// would mint a label per id.
		endpoint := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			endpoint = rctx.RoutePattern()
		}
		metrics.IncHTTP(r.Method + " " + endpoint)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}
