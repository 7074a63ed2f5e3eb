package app

import (
	"context"
	"fmt"

	"ciboway/internal/ghost"
	"ciboway/internal/metrics"
	"ciboway/internal/recipe"
)

// ProcessAndSaveRecipe extracts a recipe from a Ghost post and stores it in
// the catalog, recording the extractor's token usage.
func ProcessAndSaveRecipe(
	ctx context.Context,
	extractor *recipe.Extractor,
	recipeRepo *recipe.Repository,
	metricsStore *metrics.Store,
	post ghost.Post,
) error {
	res, err := extractor.ExtractRecipe(ctx, recipe.PostData{
		ID:        post.ID,
		Title:     post.Title,
		UpdatedAt: post.UpdatedAt,
		HTML:      post.HTML,
	})
	if metricsStore != nil {
		// Failed extractions still cost tokens.
		_ = metricsStore.RecordMeta(ctx, res.Meta)
	}
	if err != nil {
		return fmt.Errorf("failed to extract recipe: %w", err)
	}
	if len(res.Recipe.Ingredients) == 0 {
		return fmt.Errorf("no ingredients found in '%s'", post.Title)
	}

	if err := recipeRepo.Save(ctx, res.Recipe); err != nil {
		return fmt.Errorf("failed to save recipe: %w", err)
	}
	return nil
}
