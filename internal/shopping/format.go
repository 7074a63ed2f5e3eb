package shopping

import (
	"fmt"
	"strings"

	"ciboway/internal/recipe"

	"github.com/shopspring/decimal"
)

// CategoryGroup is a slice of the list shown under one aisle heading.
type CategoryGroup struct {
	Category recipe.Category
	Label    string
	Items    []GroceryItem
}

// GroupByCategory groups items by aisle. Known categories come first in
// recipe.Categories order, unknown ones follow in first-seen order.
func GroupByCategory(items []GroceryItem) []CategoryGroup {
	buckets := make(map[recipe.Category][]GroceryItem)
	var extra []recipe.Category
	for _, item := range items {
		if _, seen := buckets[item.Category]; !seen && !isKnown(item.Category) {
			extra = append(extra, item.Category)
		}
		buckets[item.Category] = append(buckets[item.Category], item)
	}

	var groups []CategoryGroup
	for _, c := range append(append([]recipe.Category{}, recipe.Categories...), extra...) {
		if len(buckets[c]) == 0 {
			continue
		}
		groups = append(groups, CategoryGroup{Category: c, Label: c.Label(), Items: buckets[c]})
	}
	return groups
}

func isKnown(c recipe.Category) bool {
	for _, known := range recipe.Categories {
		if c == known {
			return true
		}
	}
	return false
}

// FormatQuantity renders a quantity for display, rounded to two places.
func FormatQuantity(q decimal.Decimal) string {
	return q.Round(2).String()
}

// Describe renders "2 cups Kale" style text for an item.
func Describe(item GroceryItem) string {
	parts := make([]string, 0, 3)
	if !item.Quantity.IsZero() {
		parts = append(parts, FormatQuantity(item.Quantity))
	}
	if item.Unit != "" {
		parts = append(parts, item.Unit)
	}
	parts = append(parts, item.Name)
	return strings.Join(parts, " ")
}

// RenderMarkdown renders the list grouped by aisle with a remaining count.
func RenderMarkdown(l *List) string {
	items := l.Items()

	var sb strings.Builder
	sb.WriteString("🛒 *Shopping List*\n")
	if len(items) == 0 {
		sb.WriteString("\n_Nothing to buy yet_\n")
	} else {
		sb.WriteString(fmt.Sprintf("_%d of %d items remaining_\n", l.Remaining(), len(items)))
	}

	for _, group := range GroupByCategory(items) {
		sb.WriteString(fmt.Sprintf("\n*%s*\n", group.Label))
		for _, item := range group.Items {
			mark := "▫️"
			switch {
			case item.Checked:
				mark = "✅"
			case item.HaveAtHome:
				mark = "🏠"
			}
			sb.WriteString(fmt.Sprintf("%s %s\n", mark, Describe(item)))
		}
	}

	if removed := l.Removed(); len(removed) > 0 {
		sb.WriteString(fmt.Sprintf("\n🗑 _%d items removed_\n", len(removed)))
	}
	return sb.String()
}
