package app

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"ciboway/internal/config"
	"ciboway/internal/ghost"
	"ciboway/internal/recipe"
	"ciboway/internal/session"
)

// TestFullWorkflow ingests a recipe, plans it, edits the list and reopens
// the session from a file-backed store.
func TestFullWorkflow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	cfg := &config.Config{SessionStore: config.SessionStoreFile, SessionDir: filepath.Join(t.TempDir(), "sessions")}
	store, closeStore, err := NewStateStore(ctx, cfg, env.db.SQL)
	if err != nil {
		t.Fatalf("Failed to create state store: %v", err)
	}
	defer closeStore()

	textGen := &mockTextGen{res: soupJSON}
	mockGhost := &mockGhostClient{posts: []ghost.Post{
		{ID: "soup", Title: "Soup", HTML: "<h1>Soup</h1>", UpdatedAt: "2023-10-27T10:00:00Z"},
	}}
	application := NewApp(cfg, mockGhost, recipe.NewExtractor(textGen), env.recipes, env.metrics, session.NewManager(store, env.metrics), nil)
	application.IngestDelay = 0

	// --- Step 1: Ingestion, twice ---
	for i := 0; i < 2; i++ {
		if _, err := application.IngestRecipes(ctx); err != nil {
			t.Fatalf("Ingestion failed: %v", err)
		}
	}
	if textGen.calls != 1 {
		t.Errorf("Expected 1 call to LLM for extraction, got %d", textGen.calls)
	}

	// --- Step 2: Planning ---
	if _, err := application.ScheduleMeal(ctx, "user", "soup", "2024-05-06", "dinner", 4); err != nil {
		t.Fatalf("ScheduleMeal failed: %v", err)
	}
	if _, err := application.ScheduleMeal(ctx, "user", "soup", "2024-05-07", "lunch", 2); err != nil {
		t.Fatalf("ScheduleMeal failed: %v", err)
	}

	// --- Step 3: List edits ---
	err = application.Sessions().Do(ctx, "user", "toggle_checked", func(s *session.Session) error {
		s.Groceries().ToggleChecked("carrot-")
		s.Groceries().RemoveItem("stock-l")
		return nil
	})
	if err != nil {
		t.Fatalf("List edit failed: %v", err)
	}

	// --- Step 4: Restart ---
	restarted := NewApp(cfg, nil, nil, env.recipes, env.metrics, session.NewManager(store, nil), nil)
	var buf bytes.Buffer
	if err := restarted.PrintGroceryList(ctx, "user", &buf); err != nil {
		t.Fatalf("PrintGroceryList failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"0 of 1 items remaining", "[x] carrot-", "6 Carrot", "Removed", "3 l Stock"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}
