package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ciboway/internal/app"
	"ciboway/internal/clipper"
	"ciboway/internal/config"
	"ciboway/internal/database"
	"ciboway/internal/ghost"
	"ciboway/internal/llm"
	"ciboway/internal/metrics"
	"ciboway/internal/recipe"
	"ciboway/internal/session"
	"ciboway/internal/telegram"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.RequireTelegram(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()

	// 2. Storage
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

	// 3. Clipping is optional: it needs Ghost and an LLM.
	var recipeClipper *clipper.Clipper
	if cfg.RequireGhost() == nil && cfg.RequireLLM() == nil {
		textGen, closer, err := llm.NewTextGenerator(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to initialize LLM: %v", err)
		}
		defer closer.Close()
		recipeClipper = clipper.NewClipper(ghost.NewClient(cfg), recipe.NewExtractor(textGen))
	} else {
		log.Println("Ghost or LLM not configured, recipe clipping disabled")
	}

	application := app.NewApp(cfg, nil, nil, recipeRepo, metricsStore, sessions, recipeClipper)

	// 4. Initialize Telegram Bot
	bot, err := telegram.NewBot(cfg, application, metricsStore)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram Bot: %v", err)
	}

	mux := http.NewServeMux()
	bot.RegisterHandlers(mux)
	mux.Handle("/metrics", metrics.Handler())

	// 5. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Telegram Bot Server listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
