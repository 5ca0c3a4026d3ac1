package auth

import "errors"

// ErrNoSession is returned by operations that need an authenticated user.
var ErrNoSession = errors.New("no active session")

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Session identifies the user a request acts on behalf of.
type Session struct {
	UserID string
	Role   string
}

// Valid reports whether the session names a user.
func (s Session) Valid() bool {
	return s.UserID != ""
}

// Require returns ErrNoSession when s does not name a user.
func Require(s Session) error {
	if !s.Valid() {
		return ErrNoSession
	}
	return nil
}
