package app

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"ciboway/internal/config"
	"ciboway/internal/planner"
	"ciboway/internal/recipe"
	"ciboway/internal/session"
	"ciboway/internal/storage"
)

func seedSoup(t *testing.T, env testEnv) {
	t.Helper()
	err := env.recipes.Save(context.Background(), recipe.Recipe{
		ID:       "soup",
		Name:     "Soup",
		Servings: 2,
		Ingredients: []recipe.Ingredient{
			{Name: "Carrot", Quantity: "2", Category: recipe.CategoryProduce},
			{Name: "Stock", Quantity: "1", Unit: "l", Category: recipe.CategoryPantry},
		},
	})
	if err != nil {
		t.Fatalf("Failed to save recipe: %v", err)
	}
}

func TestScheduleMeal(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	seedSoup(t, env)
	a := NewApp(nil, nil, nil, env.recipes, env.metrics, env.sessions, nil)

	t.Run("Success", func(t *testing.T) {
		plan, err := a.ScheduleMeal(ctx, "cli", "soup", "2024-05-06", "Dinner", 4)
		if err != nil {
			t.Fatalf("ScheduleMeal failed: %v", err)
		}
		if plan.ID == "" || plan.MealType != planner.MealTypeDinner {
			t.Errorf("Expected a dinner plan with an id, got %+v", plan)
		}

		var buf bytes.Buffer
		if err := a.PrintGroceryList(ctx, "cli", &buf); err != nil {
			t.Fatalf("PrintGroceryList failed: %v", err)
		}
		out := buf.String()
		for _, want := range []string{"2 of 2 items remaining", "Produce", "4 Carrot", "2 l Stock"} {
			if !strings.Contains(out, want) {
				t.Errorf("Expected output to contain %q, got:\n%s", want, out)
			}
		}

		buf.Reset()
		if err := a.PrintPlans(ctx, "cli", &buf); err != nil {
			t.Fatalf("PrintPlans failed: %v", err)
		}
		if !strings.Contains(buf.String(), "Soup (4 servings)") {
			t.Errorf("Expected plan listing, got %s", buf.String())
		}
	})

	t.Run("PersistedAcrossManagers", func(t *testing.T) {
		fresh := session.NewManager(session.NewRepository(env.db.SQL), nil)
		var items int
		fresh.View(ctx, "cli", func(s *session.Session) { items = len(s.Groceries().Items()) })
		if items != 2 {
			t.Errorf("Expected 2 persisted items, got %d", items)
		}
	})

	t.Run("UnknownRecipe", func(t *testing.T) {
		_, err := a.ScheduleMeal(ctx, "cli", "missing", "2024-05-06", "dinner", 2)
		if !errors.Is(err, ErrRecipeNotFound) {
			t.Errorf("Expected ErrRecipeNotFound, got %v", err)
		}
	})

	t.Run("InvalidMealType", func(t *testing.T) {
		_, err := a.ScheduleMeal(ctx, "cli", "soup", "2024-05-06", "brunch", 2)
		if !errors.Is(err, planner.ErrInvalidMealPlan) {
			t.Errorf("Expected ErrInvalidMealPlan, got %v", err)
		}
	})

	t.Run("ServingsClamped", func(t *testing.T) {
		plan, err := a.ScheduleMeal(ctx, "clamp", "soup", "2024-05-07", "lunch", -2)
		if err != nil {
			t.Fatalf("ScheduleMeal failed: %v", err)
		}
		if plan.Servings != 1 {
			t.Errorf("Expected servings clamped to 1, got %d", plan.Servings)
		}
	})

	t.Run("DefaultServings", func(t *testing.T) {
		plan, err := a.ScheduleMeal(ctx, "default", "soup", "2024-05-07", "lunch", 0)
		if err != nil {
			t.Fatalf("ScheduleMeal failed: %v", err)
		}
		if plan.Servings != 2 {
			t.Errorf("Expected the recipe's 2 servings, got %d", plan.Servings)
		}
	})
}

func TestPrintRecipes(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	a := NewApp(nil, nil, nil, env.recipes, env.metrics, env.sessions, nil)

	var buf bytes.Buffer
	a.PrintRecipes(ctx, &buf)
	if !strings.Contains(buf.String(), "No recipes yet") {
		t.Errorf("Expected empty catalog message, got %s", buf.String())
	}

	seedSoup(t, env)
	buf.Reset()
	a.PrintRecipes(ctx, &buf)
	if !strings.Contains(buf.String(), "Soup (serves 2, 2 ingredients)") {
		t.Errorf("Expected soup listing, got %s", buf.String())
	}
}

func TestNewStateStore(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	t.Run("SQLite", func(t *testing.T) {
		store, closeFn, err := NewStateStore(ctx, &config.Config{SessionStore: config.SessionStoreSQLite}, env.db.SQL)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		defer closeFn()
		if _, ok := store.(*session.Repository); !ok {
			t.Errorf("Expected *session.Repository, got %T", store)
		}
	})

	t.Run("File", func(t *testing.T) {
		cfg := &config.Config{SessionStore: config.SessionStoreFile, SessionDir: filepath.Join(t.TempDir(), "sessions")}
		store, closeFn, err := NewStateStore(ctx, cfg, env.db.SQL)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		defer closeFn()
		if _, ok := store.(*storage.FileStore); !ok {
			t.Errorf("Expected *storage.FileStore, got %T", store)
		}
	})

	t.Run("Unknown", func(t *testing.T) {
		if _, _, err := NewStateStore(ctx, &config.Config{SessionStore: "etcd"}, env.db.SQL); err == nil {
			t.Fatal("Expected an error for an unknown store")
		}
	})
}
