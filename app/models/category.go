package models

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// Category is one of the fixed story categories.
type Category string

const (
	CategoryHomeDIY        Category = "Home & DIY"
	CategoryTravelCulture  Category = "Travel & Culture"
	CategoryCareerFinance  Category = "Career & Finance"
	CategoryPersonalGrowth Category = "Personal Growth"
)

// CategoryAll is the filter value that matches every category. It is never
// stored on a post.
const CategoryAll Category = "All"

// Categories lists the closed set in display order.
var Categories = []Category{
	CategoryHomeDIY,
	CategoryTravelCulture,
	CategoryCareerFinance,
	CategoryPersonalGrowth,
}

// Valid reports whether c is a storable category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategoryFilter accepts "All", the empty string (treated as "All") or
// any storable category.
func ParseCategoryFilter(s string) (Category, error) {
	if s == "" || Category(s) == CategoryAll {
		return CategoryAll, nil
	}
	if c := Category(s); c.Valid() {
		return c, nil
	}
	return "", NewValidationError(fmt.Sprintf("unknown category %q", s))
}

func validateCategory(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	return Category(fl.Field().String()).Valid()
}
