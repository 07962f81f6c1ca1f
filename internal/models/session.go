package models

import "time"

// SessionState is the lifecycle position of a session token.
type SessionState int

const (
	NoSession SessionState = iota
	Active
	Ended
)

func (s SessionState) String() string {
	switch s {
	case Active:
		return "active"
	case Ended:
		return "ended"
	default:
		return "none"
	}
}

// Session binds an opaque token to the identity that authenticated in this
// process. It is never persisted.
type Session struct {
	Token      string
	OwnerEmail string
	IssuedAt   time.Time
	State      SessionState
}
