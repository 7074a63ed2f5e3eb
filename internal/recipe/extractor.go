package recipe

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"ciboway/internal/llm"
)

//go:embed extractor_prompt.md
var extractorPrompt string

// PostData is the raw recipe source handed to the extractor.
type PostData struct {
	ID        string
	Title     string
	UpdatedAt string
	HTML      string
}

type ExtractorResult struct {
	Recipe Recipe
	Meta   llm.AgentMeta
}

// Extractor structures recipe pages into Recipe snapshots using an LLM.
type Extractor struct {
	textGen llm.TextGenerator
}

// NewExtractor creates a new Extractor.
func NewExtractor(textGen llm.TextGenerator) *Extractor {
	return &Extractor{textGen: textGen}
}

// rawIngredient tolerates models that answer quantities as JSON numbers.
type rawIngredient struct {
	Name     string `json:"name"`
	Quantity any    `json:"quantity"`
	Unit     string `json:"unit"`
	Category string `json:"category"`
}

type rawRecipe struct {
	Name         string          `json:"name"`
	Servings     int             `json:"servings"`
	Ingredients  []rawIngredient `json:"ingredients"`
	Instructions []string        `json:"instructions"`
	PrepTime     int             `json:"prep_time"`
	CookTime     int             `json:"cook_time"`
	Tags         []string        `json:"tags"`
	Allergens    []string        `json:"allergens"`
	Nutrition    Nutrition       `json:"nutrition"`
}

// ExtractRecipe turns a post into a Recipe.
func (e *Extractor) ExtractRecipe(ctx context.Context, data PostData) (ExtractorResult, error) {
	start := time.Now()

	prompt, err := buildExtractorPrompt(data)
	if err != nil {
		return ExtractorResult{}, err
	}

	llmResp, err := e.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return ExtractorResult{}, fmt.Errorf("failed to get LLM response: %w", err)
	}

	meta := llm.AgentMeta{
		AgentName: "Extractor",
		Usage:     llmResp.Usage,
	}

	raw := rawRecipe{}
	if err := json.Unmarshal([]byte(llmResp.Content), &raw); err != nil {
		return ExtractorResult{Meta: meta}, fmt.Errorf(
			"failed to unmarshal LLM response: %w",
			err,
		)
	}

	rec := raw.toRecipe()
	rec.ID = data.ID
	rec.UpdatedAt = data.UpdatedAt
	if rec.Name == "" {
		rec.Name = data.Title
	}

	meta.Latency = time.Since(start)
	return ExtractorResult{Recipe: rec, Meta: meta}, nil
}

func (r rawRecipe) toRecipe() Recipe {
	servings := r.Servings
	if servings < 1 {
		servings = 1
	}

	ingredients := make([]Ingredient, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		name := strings.TrimSpace(ing.Name)
		if name == "" {
			continue
		}
		ingredients = append(ingredients, Ingredient{
			Name:     name,
			Quantity: quantityString(ing.Quantity),
			Unit:     strings.TrimSpace(ing.Unit),
			Category: ParseCategory(ing.Category),
		})
	}

	return Recipe{
		Name:         strings.TrimSpace(r.Name),
		Servings:     servings,
		Ingredients:  ingredients,
		Instructions: r.Instructions,
		PrepTime:     r.PrepTime,
		CookTime:     r.CookTime,
		Tags:         r.Tags,
		Allergens:    r.Allergens,
		Nutrition:    r.Nutrition,
	}
}

func quantityString(v any) string {
	switch q := v.(type) {
	case string:
		return strings.TrimSpace(q)
	case float64:
		return strconv.FormatFloat(q, 'f', -1, 64)
	default:
		return ""
	}
}

func buildExtractorPrompt(data PostData) (string, error) {
	tmpl, err := template.New("extractor").Parse(extractorPrompt)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
