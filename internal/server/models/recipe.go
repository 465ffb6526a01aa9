package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recipe is the main resource. IngredientIDs/TagIDs hold the many-to-many
// references in store order; ImageKey is the object-storage key of the
// attached image, empty when none has been uploaded.
type Recipe struct {
	ID            string
	UserID        string
	Title         string
	TimeMinutes   int
	Price         decimal.Decimal
	Link          string
	ImageKey      string
	IngredientIDs []string
	TagIDs        []string
	CreatedAt     time.Time
}

// RecipeDetail is the expanded projection used by single-recipe reads:
// the scalar fields plus fully loaded ingredient and tag sub-records.
type RecipeDetail struct {
	Recipe
	Ingredients []*Ingredient
	Tags        []*Tag
}
