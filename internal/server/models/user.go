// Package models holds the plain data structures shared by repositories and
// services. Fields map one-to-one onto store columns.
package models

import "time"

// User is an identity record. Email is the login identifier and is unique at
// the store level. PasswordHash never leaves the service layer.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	IsActive     bool
	IsStaff      bool
	IsSuperuser  bool
	CreatedAt    time.Time
}
