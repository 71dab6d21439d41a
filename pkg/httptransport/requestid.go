package httptransport

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestID returns a middleware that stamps every outgoing request with an
// X-Request-ID header so client and backend logs can be correlated. A header
// already set by the caller is kept.
func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get("X-Request-ID") == "" {
				// Clone: RoundTrippers must not mutate the original request.
				req = req.Clone(req.Context())
				req.Header.Set("X-Request-ID", uuid.New().String())
			}
			return next.RoundTrip(req)
		})
	}
}
