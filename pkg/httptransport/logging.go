package httptransport

import (
	"net/http"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// LogRequests returns a middleware that logs each outgoing request at debug
// level and failures at warn, using the zap logger carried in the request
// context (zctx). Bodies are never logged.
func LogRequests() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			lg := zctx.From(req.Context())
			start := time.Now()

			resp, err := next.RoundTrip(req)
			elapsed := time.Since(start)

			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Duration("duration", elapsed),
			}
			if err != nil {
				lg.Warn("Request failed", append(fields, zap.Error(err))...)
				return resp, err
			}

			lg.Debug("Request", append(fields, zap.Int("status", resp.StatusCode))...)
			return resp, nil
		})
	}
}
