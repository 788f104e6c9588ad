// Package requestid assigns each request a correlation ID, honoring an
// inbound X-Request-ID header when present.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"colonx/pkg/requestcontext"
)

const Header = "X-Request-ID"

// Middleware injects a request ID into the context and echoes it back.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(Header)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set(Header, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
