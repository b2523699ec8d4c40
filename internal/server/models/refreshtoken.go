package models

import "time"

// RefreshToken is a server-stored opaque token that can be exchanged once
// for a new token pair.
type RefreshToken struct {
	UserID    string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}
