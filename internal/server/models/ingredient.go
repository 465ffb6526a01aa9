package models

// Ingredient has the same shape as Tag: a name plus its owning user.
type Ingredient struct {
	ID     string
	UserID string
	Name   string
}
