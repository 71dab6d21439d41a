package user

import "time"

// User is the authenticated account identity as reported by the backend.
type User struct {
	ID        int64
	Username  string
	Email     string
	FirstName string
	LastName  string
	CreatedAt time.Time
}

// DisplayName returns the user's full name, falling back to the username when
// no name parts are set.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}
