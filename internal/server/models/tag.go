package models

// Tag is a named label owned by exactly one user.
type Tag struct {
	ID     string
	UserID string
	Name   string
}
