package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"ciboway/internal/app"
	"ciboway/internal/clipper"
	"ciboway/internal/config"
	"ciboway/internal/database"
	"ciboway/internal/ghost"
	"ciboway/internal/llm"
	"ciboway/internal/metrics"
	"ciboway/internal/recipe"
	"ciboway/internal/session"

	"github.com/joho/godotenv"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	stateStore, closeStore, err := app.NewStateStore(ctx, cfg, db.SQL)
	if err != nil {
		log.Fatalf("Failed to initialize session store: %v", err)
	}
	defer closeStore()

	recipeRepo := recipe.NewRepository(db.SQL)
	metricsStore := metrics.NewStore(db.SQL)
	sessions := session.NewManager(stateStore, metricsStore)

	var (
		ghostClient   ghost.Client
		extractor     *recipe.Extractor
		recipeClipper *clipper.Clipper
	)
	if needsLLM(os.Args[1]) {
		if err := cfg.RequireGhost(); err != nil {
			log.Fatalf("Invalid configuration: %v", err)
		}
		textGen, closer, err := llm.NewTextGenerator(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to initialize LLM: %v", err)
		}
		defer closer.Close()

		ghostClient = ghost.NewClient(cfg)
		extractor = recipe.NewExtractor(textGen)
		recipeClipper = clipper.NewClipper(ghostClient, extractor)
	}

	application := app.NewApp(cfg, ghostClient, extractor, recipeRepo, metricsStore, sessions, recipeClipper)

	if err := run(ctx, application, os.Args[1], os.Args[2:]); err != nil {
		log.Fatalf("%s failed: %v", os.Args[1], err)
	}
}

func needsLLM(command string) bool {
	return command == "ingest" || command == "clip"
}

func run(ctx context.Context, a *app.App, command string, args []string) error {
	switch command {
	case "ingest":
		_, err := a.IngestRecipes(ctx)
		return err

	case "clip":
		if len(args) != 1 {
			return fmt.Errorf("usage: ciboway clip <url>")
		}
		res, err := a.ClipRecipe(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Println(clipper.Summary(res.Recipe))
		fmt.Printf("Saved as %s\n", res.Recipe.ID)
		return nil

	case "recipes":
		return a.PrintRecipes(ctx, os.Stdout)

	case "plan":
		return runPlan(ctx, a, args)

	case "list":
		return runList(ctx, a, args)

	case "usage":
		fs := flag.NewFlagSet("usage", flag.ExitOnError)
		days := fs.Int("days", 7, "Show the last N days")
		fs.Parse(args)
		return a.PrintUsage(ctx, *days, os.Stdout)

	case "metrics-cleanup":
		fs := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := fs.Int("days", 30, "Keep records for the last N days")
		fs.Parse(args)
		affected, err := a.CleanupMetrics(ctx, *days)
		if err != nil {
			return err
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)
		return nil

	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func runPlan(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("plan", flag.ExitOnError)
	sessionID := fs.String("session", "cli", "Session id")
	fs.Parse(args)
	rest := fs.Args()

	if len(rest) == 0 || rest[0] == "show" {
		return a.PrintPlans(ctx, *sessionID, os.Stdout)
	}

	switch rest[0] {
	case "add":
		if len(rest) < 4 || len(rest) > 5 {
			return fmt.Errorf("usage: ciboway plan add <recipe-id> <YYYY-MM-DD> <meal> [servings]")
		}
		servings := 0
		if len(rest) == 5 {
			n, err := strconv.Atoi(rest[4])
			if err != nil {
				return fmt.Errorf("invalid servings %q", rest[4])
			}
			servings = n
		}
		plan, err := a.ScheduleMeal(ctx, *sessionID, rest[1], rest[2], rest[3], servings)
		if err != nil {
			return err
		}
		fmt.Printf("Planned %s for %s %s (%d servings): %s\n", plan.Recipe.Name, plan.Date, plan.MealType, plan.Servings, plan.ID)
		return nil

	case "remove":
		if len(rest) != 2 {
			return fmt.Errorf("usage: ciboway plan remove <plan-id>")
		}
		return a.Sessions().Do(ctx, *sessionID, "remove_meal_plan", func(s *session.Session) error {
			return s.RemoveMealPlan(rest[1])
		})

	case "servings":
		if len(rest) != 3 {
			return fmt.Errorf("usage: ciboway plan servings <plan-id> <n>")
		}
		n, err := strconv.Atoi(rest[2])
		if err != nil {
			return fmt.Errorf("invalid servings %q", rest[2])
		}
		return a.Sessions().Do(ctx, *sessionID, "update_meal_plan_servings", func(s *session.Session) error {
			return s.UpdateMealPlanServings(rest[1], n)
		})

	default:
		return fmt.Errorf("unknown plan command: %s", rest[0])
	}
}

func runList(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	sessionID := fs.String("session", "cli", "Session id")
	fs.Parse(args)
	rest := fs.Args()

	if len(rest) == 0 || rest[0] == "show" {
		return a.PrintGroceryList(ctx, *sessionID, os.Stdout)
	}

	var (
		op  string
		err error
	)
	switch rest[0] {
	case "check", "home", "remove", "undo":
		if len(rest) != 2 {
			return fmt.Errorf("usage: ciboway list %s <item-id>", rest[0])
		}
		itemID := rest[1]
		op = rest[0]
		err = a.Sessions().Do(ctx, *sessionID, listOperation(op), func(s *session.Session) error {
			l := s.Groceries()
			switch op {
			case "check":
				l.ToggleChecked(itemID)
			case "home":
				l.ToggleHaveAtHome(itemID)
			case "remove":
				l.RemoveItem(itemID)
			case "undo":
				l.UndoRemove(itemID)
			}
			return nil
		})
	case "undo-all":
		err = a.Sessions().Do(ctx, *sessionID, "undo_all", func(s *session.Session) error {
			s.Groceries().UndoAll()
			return nil
		})
	case "clear":
		err = a.Sessions().Do(ctx, *sessionID, "clear", func(s *session.Session) error {
			s.Groceries().Clear()
			return nil
		})
	case "qty":
		if len(rest) != 3 {
			return fmt.Errorf("usage: ciboway list qty <item-id> <quantity>")
		}
		err = a.Sessions().Do(ctx, *sessionID, "update_servings", func(s *session.Session) error {
			s.Groceries().UpdateServings(rest[1], rest[2])
			return nil
		})
	default:
		return fmt.Errorf("unknown list command: %s", rest[0])
	}
	if err != nil {
		return err
	}
	return a.PrintGroceryList(ctx, *sessionID, os.Stdout)
}

func listOperation(cmd string) string {
	switch cmd {
	case "check":
		return "toggle_checked"
	case "home":
		return "toggle_have_at_home"
	case "remove":
		return "remove_item"
	default:
		return "undo_remove"
	}
}

func printUsage() {
	fmt.Println("Usage: ciboway <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  ingest                                    Fetch and extract recipes from Ghost")
	fmt.Println("  clip <url>                                Clip a recipe page into Ghost and the catalog")
	fmt.Println("  recipes                                   List stored recipes")
	fmt.Println("  plan [-session id] [show]                 Show planned meals")
	fmt.Println("  plan add <recipe-id> <date> <meal> [n]    Plan a meal")
	fmt.Println("  plan remove <plan-id>                     Unplan a meal")
	fmt.Println("  plan servings <plan-id> <n>               Change a meal's servings")
	fmt.Println("  list [-session id] [show]                 Show the shopping list")
	fmt.Println("  list check|home|remove|undo <item-id>     Update an item")
	fmt.Println("  list undo-all                             Restore every removed item")
	fmt.Println("  list qty <item-id> <quantity>             Override an item's quantity")
	fmt.Println("  list clear                                Empty the list and its undo buffer")
	fmt.Println("  usage [-days n]                           Show token usage")
	fmt.Println("  metrics-cleanup [-days n]                 Remove old metric records")
}
