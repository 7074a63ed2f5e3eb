package shopping

import (
	"testing"

	"ciboway/internal/planner"
	"ciboway/internal/recipe"

	"github.com/shopspring/decimal"
)

func ing(name, qty, unit string, c recipe.Category) recipe.Ingredient {
	return recipe.Ingredient{Name: name, Quantity: qty, Unit: unit, Category: c}
}

func plan(id string, servings, canonical int, ingredients ...recipe.Ingredient) planner.MealPlan {
	return planner.MealPlan{
		ID:       id,
		Date:     "2024-05-06",
		MealType: planner.MealTypeDinner,
		Servings: servings,
		Recipe: recipe.Recipe{
			ID:          "recipe-" + id,
			Name:        "Recipe " + id,
			Servings:    canonical,
			Ingredients: ingredients,
		},
	}
}

func expectQuantity(t *testing.T, item GroceryItem, want string) {
	t.Helper()
	if !item.Quantity.Equal(decimal.RequireFromString(want)) {
		t.Errorf("Expected %s quantity %s, got %s", item.ID, want, item.Quantity)
	}
}

func TestAggregate(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		items := Aggregate(nil)
		if items == nil || len(items) != 0 {
			t.Errorf("Expected empty non-nil list, got %#v", items)
		}
	})

	t.Run("SumsMatchingKeys", func(t *testing.T) {
		items := Aggregate([]planner.MealPlan{
			plan("a", 2, 2, ing("Quinoa", "1", "cup", recipe.CategoryGrains)),
			plan("b", 4, 4, ing("quinoa", "1", "cup", recipe.CategoryGrains)),
		})
		if len(items) != 1 {
			t.Fatalf("Expected 1 item, got %d", len(items))
		}
		if items[0].ID != "quinoa-cup" {
			t.Errorf("Expected id 'quinoa-cup', got '%s'", items[0].ID)
		}
		if items[0].Name != "Quinoa" {
			t.Errorf("Expected first-seen name 'Quinoa', got '%s'", items[0].Name)
		}
		expectQuantity(t, items[0], "2")
	})

	t.Run("ScalesByCanonicalServings", func(t *testing.T) {
		items := Aggregate([]planner.MealPlan{
			plan("a", 4, 2, ing("Kale", "2", "cups", recipe.CategoryProduce)),
		})
		expectQuantity(t, items[0], "4")
	})

	t.Run("FractionalScale", func(t *testing.T) {
		items := Aggregate([]planner.MealPlan{
			plan("a", 1, 4, ing("Butter", "3", "tbsp", recipe.CategoryDairy)),
		})
		expectQuantity(t, items[0], "0.75")
	})

	t.Run("NoUnitCoercion", func(t *testing.T) {
		items := Aggregate([]planner.MealPlan{
			plan("a", 1, 1, ing("Milk", "1", "cup", recipe.CategoryDairy)),
			plan("b", 1, 1, ing("Milk", "240", "ml", recipe.CategoryDairy)),
		})
		if len(items) != 2 {
			t.Fatalf("Expected 2 items, got %d", len(items))
		}
		if items[0].ID != "milk-cup" || items[1].ID != "milk-ml" {
			t.Errorf("Expected ids milk-cup and milk-ml, got %s and %s", items[0].ID, items[1].ID)
		}
	})

	t.Run("UnitsCompareExactly", func(t *testing.T) {
		items := Aggregate([]planner.MealPlan{
			plan("a", 1, 1, ing("Rice", "1", "Cup", recipe.CategoryGrains), ing("Rice", "1", "cup", recipe.CategoryGrains)),
		})
		if len(items) != 2 {
			t.Errorf("Expected units 'Cup' and 'cup' to stay apart, got %d items", len(items))
		}
	})

	t.Run("MalformedQuantityIsZero", func(t *testing.T) {
		items := Aggregate([]planner.MealPlan{
			plan("a", 1, 1,
				ing("Salt", "to taste", "", recipe.CategorySpices),
				ing("Pepper", "", "", recipe.CategorySpices),
				ing("Onion", "1", "", recipe.CategoryProduce),
			),
			plan("b", 1, 1, ing("Salt", "1", "", recipe.CategorySpices)),
		})
		if len(items) != 3 {
			t.Fatalf("Expected 3 items, got %d", len(items))
		}
		expectQuantity(t, items[0], "1")
		expectQuantity(t, items[1], "0")
	})

	t.Run("NonPositiveCanonicalServings", func(t *testing.T) {
		items := Aggregate([]planner.MealPlan{
			plan("a", 3, 0, ing("Egg", "2", "", recipe.CategoryDairy)),
		})
		expectQuantity(t, items[0], "6")
	})

	t.Run("FirstSeenOrder", func(t *testing.T) {
		items := Aggregate([]planner.MealPlan{
			plan("a", 1, 1, ing("Tofu", "1", "block", recipe.CategoryProtein), ing("Rice", "1", "cup", recipe.CategoryGrains)),
			plan("b", 1, 1, ing("Basil", "1", "bunch", recipe.CategoryProduce), ing("Tofu", "1", "block", recipe.CategoryProtein)),
		})
		want := []string{"tofu-block", "rice-cup", "basil-bunch"}
		if len(items) != len(want) {
			t.Fatalf("Expected %d items, got %d", len(want), len(items))
		}
		for i, id := range want {
			if items[i].ID != id {
				t.Errorf("Expected item %d to be '%s', got '%s'", i, id, items[i].ID)
			}
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		plans := []planner.MealPlan{
			plan("a", 3, 2, ing("Kale", "1.5", "cups", recipe.CategoryProduce), ing("Lemon", "1", "", recipe.CategoryProduce)),
			plan("b", 1, 3, ing("Kale", "2", "cups", recipe.CategoryProduce)),
		}
		first := Aggregate(plans)
		second := Aggregate(plans)
		if len(first) != len(second) {
			t.Fatalf("Expected equal lengths, got %d and %d", len(first), len(second))
		}
		for i := range first {
			if first[i].ID != second[i].ID || !first[i].Quantity.Equal(second[i].Quantity) {
				t.Errorf("Expected identical item %d, got %+v and %+v", i, first[i], second[i])
			}
		}
	})
}

func TestParseQuantity(t *testing.T) {
	cases := map[string]string{
		"2":        "2",
		" 0.25 ":   "0.25",
		"1/2":      "0.5",
		"1 1/2":    "1.5",
		"2 large":  "2",
		"3/0":      "0",
		"":         "0",
		"a pinch":  "0",
		"1.5e1":    "15",
	}
	for in, want := range cases {
		got := ParseQuantity(in)
		if !got.Equal(decimal.RequireFromString(want)) {
			t.Errorf("ParseQuantity(%q): expected %s, got %s", in, want, got)
		}
	}
}
