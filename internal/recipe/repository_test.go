package recipe

import (
	"context"
	"path/filepath"
	"testing"

	"ciboway/internal/database"
)

func TestRepository(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "recipes.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	repo := NewRepository(db.SQL)

	t.Run("GetMissing", func(t *testing.T) {
		rec, err := repo.Get(ctx, "missing")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if rec != nil {
			t.Errorf("Expected nil recipe, got %+v", rec)
		}
	})

	t.Run("SaveAndList", func(t *testing.T) {
		for _, rec := range []Recipe{
			{ID: "b", Name: "Toast", Servings: 1, UpdatedAt: "v1"},
			{ID: "a", Name: "Oats", Servings: 2, UpdatedAt: "v1", Ingredients: []Ingredient{{Name: "Oats", Quantity: "1", Unit: "cup", Category: CategoryGrains}}},
		} {
			if err := repo.Save(ctx, rec); err != nil {
				t.Fatalf("Failed to save %s: %v", rec.ID, err)
			}
		}

		list, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("Failed to list: %v", err)
		}
		if len(list) != 2 || list[0].Name != "Oats" {
			t.Errorf("Expected recipes ordered by name, got %+v", list)
		}

		got, _ := repo.Get(ctx, "a")
		if got == nil || len(got.Ingredients) != 1 || got.Ingredients[0].Category != CategoryGrains {
			t.Errorf("Expected ingredients to round-trip, got %+v", got)
		}
		if n, _ := repo.Count(ctx); n != 2 {
			t.Errorf("Expected 2 recipes, got %d", n)
		}
	})

	t.Run("IsCurrent", func(t *testing.T) {
		if ok, _ := repo.IsCurrent(ctx, "a", "v1"); !ok {
			t.Error("Expected v1 to be current")
		}
		if ok, _ := repo.IsCurrent(ctx, "a", "v2"); ok {
			t.Error("Expected v2 not to be current")
		}
		if ok, _ := repo.IsCurrent(ctx, "missing", "v1"); ok {
			t.Error("Expected missing recipe not to be current")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := repo.Delete(ctx, "b"); err != nil {
			t.Fatalf("Failed to delete: %v", err)
		}
		ids, err := repo.IDs(ctx)
		if err != nil {
			t.Fatalf("Failed to list ids: %v", err)
		}
		if len(ids) != 1 || ids[0] != "a" {
			t.Errorf("Expected only 'a' to remain, got %v", ids)
		}
	})
}
