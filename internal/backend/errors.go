package backend

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// ErrUnauthorized is returned when the backend rejects the bearer token.
// The session manager treats it as a forced logout.
var ErrUnauthorized = errors.New("unauthorized")

// APIError carries a backend-provided rejection: validation failures,
// ownership violations, invalid status transitions. The message is surfaced
// to the user as-is.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// errorMessage extracts the "error" (or "message") field from a backend error
// body. Bodies that are not JSON objects, or decode mid-way into garbage,
// yield an empty message rather than a decode failure.
func errorMessage(data []byte) string {
	d := jx.DecodeBytes(data)

	var msg string
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "error", "message":
			s, err := d.Str()
			if err != nil {
				return err
			}
			if msg == "" {
				msg = s
			}
			return nil
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return ""
	}
	return msg
}
