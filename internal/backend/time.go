package backend

import "time"

// timeFormats are the timestamp layouts the backend is known to emit:
// RFC 3339 from newer handlers, and the bare SQL format from rows serialized
// straight out of the database.
var timeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999",
}

// parseTime parses a backend timestamp, returning the zero time for empty or
// unrecognized values. Display-only data; never used in invariants.
func parseTime(s string) time.Time {
	for _, layout := range timeFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
