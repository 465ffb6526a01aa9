package models

import "time"

// AuthToken is the durable opaque credential bound 1:1 to a user. It has no
// expiry; it lives until the user row is deleted.
type AuthToken struct {
	ID        string
	UserID    string
	Token     string
	CreatedAt time.Time
}
