package middleware

import (
	"net/http"

	"zakazadmin/internal/requestid"
)

// RequestID gives every request a correlation id. A well-formed inbound
// X-Request-ID is kept; anything else is replaced. The id is echoed in the
// response and forwarded to the backend by the API client.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestid.Header)
		if !requestid.Valid(id) {
			id = requestid.New()
		}
		w.Header().Set(requestid.Header, id)
		next.ServeHTTP(w, r.WithContext(requestid.With(r.Context(), id)))
	})
}
