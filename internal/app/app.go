package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"ciboway/internal/clipper"
	"ciboway/internal/config"
	"ciboway/internal/ghost"
	"ciboway/internal/llm"
	"ciboway/internal/metrics"
	"ciboway/internal/planner"
	"ciboway/internal/recipe"
	"ciboway/internal/session"
	"ciboway/internal/shopping"
)

// ErrRecipeNotFound is returned when a meal is scheduled for an unknown recipe.
var ErrRecipeNotFound = errors.New("recipe not found")

// App holds the application's dependencies.
type App struct {
	ghostClient   ghost.Client
	extractor     *recipe.Extractor
	recipeRepo    *recipe.Repository
	metricsStore  *metrics.Store
	sessions      *session.Manager
	recipeClipper *clipper.Clipper
	cfg           *config.Config

	// IngestDelay is the pause between extractions, keeping free-tier LLM
	// rate limits happy.
	IngestDelay time.Duration
}

// NewApp creates and initializes a new App instance. ghostClient, extractor
// and recipeClipper may be nil when only session features are used.
func NewApp(
	cfg *config.Config,
	ghostClient ghost.Client,
	extractor *recipe.Extractor,
	recipeRepo *recipe.Repository,
	metricsStore *metrics.Store,
	sessions *session.Manager,
	recipeClipper *clipper.Clipper,
) *App {
	return &App{
		ghostClient:   ghostClient,
		extractor:     extractor,
		recipeRepo:    recipeRepo,
		metricsStore:  metricsStore,
		sessions:      sessions,
		recipeClipper: recipeClipper,
		cfg:           cfg,
		IngestDelay:   5 * time.Second,
	}
}

// Sessions exposes the session manager.
func (a *App) Sessions() *session.Manager {
	return a.sessions
}

// Recipes exposes the recipe catalog.
func (a *App) Recipes() *recipe.Repository {
	return a.recipeRepo
}

// IngestRecipes fetches recipe posts from Ghost and stores the ones that are
// new or changed since the last run. It returns the number of recipes saved.
func (a *App) IngestRecipes(ctx context.Context) (int, error) {
	if a.ghostClient == nil || a.extractor == nil {
		return 0, fmt.Errorf("ingestion requires a Ghost client and an extractor")
	}

	log.Println("Fetching and processing recipes...")

	posts, err := a.ghostClient.FetchRecipes(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch recipes from ghost: %w", err)
	}

	log.Printf("Successfully fetched %d recipe posts from Ghost.", len(posts))
	a.removeOrphans(ctx, posts)

	saved := 0
	for i, post := range posts {
		current, err := a.recipeRepo.IsCurrent(ctx, post.ID, post.UpdatedAt)
		if err != nil {
			log.Printf("Warning: failed to check '%s': %v", post.Title, err)
		}
		if current {
			log.Printf("Recipe '%s' is up-to-date. Skipping.", post.Title)
			continue
		}

		log.Printf("Extracting '%s'...", post.Title)
		if err := ProcessAndSaveRecipe(ctx, a.extractor, a.recipeRepo, a.metricsStore, post); err != nil {
			log.Printf("Failed to process '%s': %v", post.Title, err)
			continue
		}
		saved++
		log.Printf("Successfully processed '%s'.", post.Title)

		if a.IngestDelay > 0 && i < len(posts)-1 {
			select {
			case <-ctx.Done():
				return saved, ctx.Err()
			case <-time.After(a.IngestDelay):
			}
		}
	}
	log.Printf("Ingestion complete. %d recipes saved.", saved)
	return saved, nil
}

// removeOrphans deletes catalog recipes whose post no longer exists in Ghost.
func (a *App) removeOrphans(ctx context.Context, posts []ghost.Post) {
	live := make(map[string]struct{}, len(posts))
	for _, post := range posts {
		live[post.ID] = struct{}{}
	}

	ids, err := a.recipeRepo.IDs(ctx)
	if err != nil {
		log.Printf("Warning: failed to list stored recipes: %v", err)
		return
	}
	for _, id := range ids {
		if _, ok := live[id]; ok {
			continue
		}
		if err := a.recipeRepo.Delete(ctx, id); err != nil {
			log.Printf("Warning: %v", err)
			continue
		}
		log.Printf("Removed recipe %s, no longer published.", id)
	}
}

// ClipRecipe clips a recipe page into Ghost and the local catalog so it can
// be planned right away.
func (a *App) ClipRecipe(ctx context.Context, url string) (*clipper.ClipResult, error) {
	if a.recipeClipper == nil {
		return nil, fmt.Errorf("clipping requires Ghost and an LLM to be configured")
	}

	res, err := a.recipeClipper.ClipURL(ctx, url)
	if err != nil {
		return nil, err
	}
	a.recordMeta(ctx, res.Meta)

	if err := a.recipeRepo.Save(ctx, res.Recipe); err != nil {
		return res, fmt.Errorf("failed to save clipped recipe: %w", err)
	}
	return res, nil
}

// ScheduleMeal resolves a recipe from the catalog and adds it to a session's
// meal plans. The recipe is snapshotted into the plan. Zero servings means
// the recipe's own serving count.
func (a *App) ScheduleMeal(ctx context.Context, sessionID, recipeID, date, mealType string, servings int) (planner.MealPlan, error) {
	rec, err := a.recipeRepo.Get(ctx, recipeID)
	if err != nil {
		return planner.MealPlan{}, fmt.Errorf("failed to look up recipe: %w", err)
	}
	if rec == nil {
		return planner.MealPlan{}, fmt.Errorf("%w: %s", ErrRecipeNotFound, recipeID)
	}

	if servings == 0 {
		servings = rec.Servings
	}
	plan := planner.MealPlan{
		Date:     date,
		MealType: planner.MealType(strings.ToLower(mealType)),
		Recipe:   *rec,
		Servings: planner.ClampServings(servings),
	}

	err = a.sessions.Do(ctx, sessionID, "add_meal_plan", func(s *session.Session) error {
		id, err := s.AddMealPlan(plan)
		plan.ID = id
		return err
	})
	if err != nil {
		return planner.MealPlan{}, err
	}
	return plan, nil
}

// PrintRecipes writes the recipe catalog.
func (a *App) PrintRecipes(ctx context.Context, w io.Writer) error {
	recipes, err := a.recipeRepo.List(ctx)
	if err != nil {
		return err
	}
	if len(recipes) == 0 {
		fmt.Fprintln(w, "No recipes yet. Run 'ingest' first.")
		return nil
	}
	for _, rec := range recipes {
		fmt.Fprintf(w, "%-28s %s (serves %d, %d ingredients)\n", rec.ID, rec.Name, rec.Servings, len(rec.Ingredients))
	}
	return nil
}

// PrintPlans writes the meal plans of a session in the order they were added.
func (a *App) PrintPlans(ctx context.Context, sessionID string, w io.Writer) error {
	return a.sessions.View(ctx, sessionID, func(s *session.Session) {
		plans := s.Plans().Plans()
		if len(plans) == 0 {
			fmt.Fprintln(w, "No meals planned.")
			return
		}
		for _, p := range plans {
			fmt.Fprintf(w, "%s  %s %-9s %s (%d servings)\n", p.ID, p.Date, p.MealType, p.Recipe.Name, p.Servings)
		}
	})
}

// PrintGroceryList writes a session's grocery list grouped by aisle.
func (a *App) PrintGroceryList(ctx context.Context, sessionID string, w io.Writer) error {
	return a.sessions.View(ctx, sessionID, func(s *session.Session) {
		list := s.Groceries()
		items := list.Items()
		fmt.Fprintf(w, "Shopping list: %d of %d items remaining\n", list.Remaining(), len(items))
		for _, group := range shopping.GroupByCategory(items) {
			fmt.Fprintf(w, "\n%s\n", group.Label)
			for _, item := range group.Items {
				mark := "[ ]"
				switch {
				case item.Checked:
					mark = "[x]"
				case item.HaveAtHome:
					mark = "[h]"
				}
				fmt.Fprintf(w, "  %s %-28s %s\n", mark, item.ID, shopping.Describe(item))
			}
		}
		if removed := list.Removed(); len(removed) > 0 {
			fmt.Fprintln(w, "\nRemoved")
			for _, item := range removed {
				fmt.Fprintf(w, "  %-32s %s\n", item.ID, shopping.Describe(item))
			}
		}
	})
}

// PrintUsage writes LLM and operation usage for the last days.
func (a *App) PrintUsage(ctx context.Context, days int, w io.Writer) error {
	usage, err := a.metricsStore.GetDailyUsage(ctx, days)
	if err != nil {
		return err
	}
	if len(usage) == 0 {
		fmt.Fprintln(w, "No data yet.")
		return nil
	}
	for _, d := range usage {
		fmt.Fprintf(w, "%s  %6d prompt  %6d completion  %4d execs\n", d.Date, d.TotalPrompt, d.TotalCompletion, d.TotalExecution)
	}
	return nil
}

// CleanupMetrics removes metrics older than the given number of days.
func (a *App) CleanupMetrics(ctx context.Context, days int) (int64, error) {
	removed, err := a.metricsStore.Cleanup(ctx, days)
	if err != nil {
		return 0, err
	}
	log.Printf("Removed %d metrics older than %d days.", removed, days)
	return removed, nil
}

func (a *App) recordMeta(ctx context.Context, meta llm.AgentMeta) {
	if a.metricsStore == nil {
		return
	}
	if err := a.metricsStore.RecordMeta(ctx, meta); err != nil {
		log.Printf("Warning: failed to record metrics for %s: %v", meta.AgentName, err)
	}
}
