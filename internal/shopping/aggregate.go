package shopping

import (
	"ciboway/internal/planner"

	"github.com/shopspring/decimal"
)

// Aggregate merges the ingredients of every meal plan into one list ordered
// by first appearance. Each ingredient is scaled by
// plan.Servings / plan.Recipe.Servings and summed with ingredients sharing
// its key. Units are never converted, so "1 cup" and "240 ml" stay apart.
// Items start unchecked and not at home; the result is a pure function of
// plans.
func Aggregate(plans []planner.MealPlan) []GroceryItem {
	if len(plans) == 0 {
		return []GroceryItem{}
	}

	items := []GroceryItem{}
	index := make(map[string]int)

	for _, plan := range plans {
		canonical := plan.Recipe.Servings
		if canonical < 1 {
			canonical = 1
		}
		requested := decimal.NewFromInt(int64(plan.Servings))
		divisor := decimal.NewFromInt(int64(canonical))

		for _, ing := range plan.Recipe.Ingredients {
			// Multiply before dividing so whole-number scales stay exact.
			qty := ParseQuantity(ing.Quantity).Mul(requested).Div(divisor)
			key := Key(ing.Name, ing.Unit)

			if i, ok := index[key]; ok {
				items[i].Quantity = items[i].Quantity.Add(qty)
				continue
			}

			index[key] = len(items)
			items = append(items, GroceryItem{
				ID:       key,
				Name:     ing.Name,
				Unit:     ing.Unit,
				Category: ing.Category,
				Quantity: qty,
				Price:    ing.Price,
			})
		}
	}

	return items
}
