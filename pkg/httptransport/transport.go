// Package httptransport provides composable http.RoundTripper middleware for
// outgoing requests: request IDs, structured request logging. OpenTelemetry
// instrumentation composes with these via otelhttp.NewTransport.
package httptransport

import "net/http"

// Middleware wraps an http.RoundTripper with additional behaviour.
type Middleware func(http.RoundTripper) http.RoundTripper

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Wrap applies middlewares to base in order: the first middleware is the
// outermost, seeing the request first.
func Wrap(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	for i := len(mws) - 1; i >= 0; i-- {
		base = mws[i](base)
	}
	return base
}
