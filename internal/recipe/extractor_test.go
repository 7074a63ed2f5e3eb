package recipe

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ciboway/internal/llm"
)

type mockTextGen struct {
	res    string
	err    error
	prompt string
}

func (m *mockTextGen) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	m.prompt = prompt
	if m.err != nil {
		return llm.ContentResponse{}, m.err
	}
	return llm.ContentResponse{
		Content: m.res,
		Usage:   llm.TokenUsage{PromptTokens: 100, CompletionTokens: 20, Model: "mock"},
	}, nil
}

func TestExtractRecipe(t *testing.T) {
	post := PostData{ID: "p1", Title: "Green Bowl", UpdatedAt: "2024-01-01T00:00:00Z", HTML: "<p>kale</p>"}

	t.Run("Success", func(t *testing.T) {
		gen := &mockTextGen{res: `{
			"name": "",
			"servings": 0,
			"ingredients": [
				{"name": " Kale ", "quantity": "2", "unit": "cups", "category": "Produce"},
				{"name": "Tahini", "quantity": 0.25, "unit": "cup", "category": "sauces"},
				{"name": "", "quantity": "1"}
			],
			"instructions": ["Mix"]
		}`}
		res, err := NewExtractor(gen).ExtractRecipe(context.Background(), post)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		rec := res.Recipe
		if rec.ID != "p1" || rec.UpdatedAt != post.UpdatedAt {
			t.Errorf("Expected post identity to be kept, got %s/%s", rec.ID, rec.UpdatedAt)
		}
		if rec.Name != "Green Bowl" {
			t.Errorf("Expected title fallback, got '%s'", rec.Name)
		}
		if rec.Servings != 1 {
			t.Errorf("Expected servings to default to 1, got %d", rec.Servings)
		}
		if len(rec.Ingredients) != 2 {
			t.Fatalf("Expected nameless ingredient to be dropped, got %d", len(rec.Ingredients))
		}
		if rec.Ingredients[0].Name != "Kale" || rec.Ingredients[0].Category != CategoryProduce {
			t.Errorf("Unexpected kale %+v", rec.Ingredients[0])
		}
		if rec.Ingredients[1].Quantity != "0.25" || rec.Ingredients[1].Category != CategoryPantry {
			t.Errorf("Unexpected tahini %+v", rec.Ingredients[1])
		}
		if res.Meta.AgentName != "Extractor" || res.Meta.Usage.PromptTokens != 100 {
			t.Errorf("Unexpected meta %+v", res.Meta)
		}
		if !strings.Contains(gen.prompt, "Green Bowl") || !strings.Contains(gen.prompt, "<p>kale</p>") {
			t.Error("Expected title and content in the prompt")
		}
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		res, err := NewExtractor(&mockTextGen{res: "not json"}).ExtractRecipe(context.Background(), post)
		if err == nil {
			t.Fatal("Expected an error for invalid JSON")
		}
		if res.Meta.Usage.PromptTokens != 100 {
			t.Error("Expected usage to be reported even on failure")
		}
	})

	t.Run("LLMError", func(t *testing.T) {
		_, err := NewExtractor(&mockTextGen{err: errors.New("down")}).ExtractRecipe(context.Background(), post)
		if err == nil {
			t.Fatal("Expected an error when the model fails")
		}
	})
}

func TestParseCategory(t *testing.T) {
	tests := map[string]Category{
		"produce": CategoryProduce,
		" DAIRY ": CategoryDairy,
		"spices":  CategorySpices,
		"frozen":  CategoryPantry,
		"":        CategoryPantry,
	}
	for in, want := range tests {
		if got := ParseCategory(in); got != want {
			t.Errorf("ParseCategory(%q): expected %s, got %s", in, want, got)
		}
	}
	if CategoryDairy.Label() != "Dairy & Eggs" {
		t.Errorf("Unexpected label %s", CategoryDairy.Label())
	}
}
