package recipe

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Category groups ingredients into grocery store aisles.
type Category string

const (
	CategoryProduce Category = "produce"
	CategoryDairy   Category = "dairy"
	CategoryProtein Category = "protein"
	CategoryPantry  Category = "pantry"
	CategoryGrains  Category = "grains"
	CategorySpices  Category = "spices"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryProduce,
	CategoryDairy,
	CategoryProtein,
	CategoryPantry,
	CategoryGrains,
	CategorySpices,
}

var categoryLabels = map[Category]string{
	CategoryProduce: "Produce",
	CategoryDairy:   "Dairy & Eggs",
	CategoryProtein: "Meat & Protein",
	CategoryPantry:  "Pantry",
	CategoryGrains:  "Grains & Bread",
	CategorySpices:  "Spices & Seasonings",
}

// Label returns the human readable aisle name.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// ParseCategory maps free text onto the fixed enumeration.
// Anything unrecognised lands in the pantry.
func ParseCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := categoryLabels[c]; ok {
		return c
	}
	return CategoryPantry
}

// Ingredient is a recipe-scoped ingredient template.
type Ingredient struct {
	Name     string           `json:"name"`
	Quantity string           `json:"quantity"`
	Unit     string           `json:"unit"`
	Category Category         `json:"category"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}

// Nutrition holds per-serving nutrition facts.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Recipe is an immutable recipe snapshot. Ingredient quantities are written
// for Servings people.
type Recipe struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Servings     int          `json:"servings"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions []string     `json:"instructions,omitempty"`
	PrepTime     int          `json:"prep_time,omitempty"`
	CookTime     int          `json:"cook_time,omitempty"`
	Nutrition    Nutrition    `json:"nutrition"`
	EthicalScore float64      `json:"ethical_score,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
	Allergens    []string     `json:"allergens,omitempty"`
	Image        string       `json:"image,omitempty"`
	UpdatedAt    string       `json:"updated_at,omitempty"`
}
