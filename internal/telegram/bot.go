package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"slices"
	"strings"
	"time"

	"ciboway/internal/app"
	"ciboway/internal/config"
	"ciboway/internal/metrics"
	"ciboway/internal/planner"
	"ciboway/internal/session"
	"ciboway/internal/shopping"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// sender is the subset of the Telegram API the bot talks to.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot wraps the Telegram API around the meal planner and the grocery list.
type Bot struct {
	api          sender
	app          *app.App
	sessions     *session.Manager
	metricsStore *metrics.Store
	cfg          *config.Config
	now          func() time.Time
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, application *app.App, metricsStore *metrics.Store) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", api.Self.UserName)

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("failed to build webhook config: %w", err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return newBot(api, cfg, application, metricsStore), nil
}

func newBot(api sender, cfg *config.Config, application *app.App, metricsStore *metrics.Store) *Bot {
	return &Bot{
		api:          api,
		app:          application,
		sessions:     application.Sessions(),
		metricsStore: metricsStore,
		cfg:          cfg,
		now:          time.Now,
	}
}

// RegisterHandlers registers the webhook and health handlers on mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", b.handleWebhook)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Printf("Error parsing update: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch {
	case update.CallbackQuery != nil:
		if !b.isAllowed(update.CallbackQuery.From) {
			return
		}
		go b.handleCallbackQuery(update.CallbackQuery)
	case update.Message != nil:
		if !b.isAllowed(update.Message.From) {
			return
		}
		go b.processMessage(update.Message)
	}
}

func (b *Bot) isAllowed(user *tgbotapi.User) bool {
	if user == nil {
		return false
	}
	if slices.Contains(b.cfg.TelegramAllowedUserIDs, user.ID) {
		return true
	}
	log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", user.ID, user.UserName)
	return false
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	text := strings.TrimSpace(msg.Text)
	if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
		b.handleClipperRequest(ctx, msg)
		return
	}

	if !msg.IsCommand() {
		b.reply(msg.Chat.ID, helpText)
		return
	}

	id := sessionID(msg.From.ID)
	args := msg.CommandArguments()

	switch msg.Command() {
	case "recipes":
		b.handleRecipes(ctx, msg.Chat.ID)
	case "add":
		b.handleAdd(ctx, msg.Chat.ID, id, args)
	case "plans":
		b.handlePlans(ctx, msg.Chat.ID, id)
	case "remove":
		b.handleRemove(ctx, msg.Chat.ID, id, strings.TrimSpace(args))
	case "servings":
		b.handleServings(ctx, msg.Chat.ID, id, args)
	case "list":
		b.sendList(ctx, msg.Chat.ID, id)
	case "clear":
		b.handleClear(ctx, msg.Chat.ID, id)
	case "clearplans":
		b.handleClearPlans(ctx, msg.Chat.ID, id)
	case "metrics":
		b.handleMetricsRequest(ctx, msg)
	default:
		b.reply(msg.Chat.ID, helpText)
	}
}

func (b *Bot) handleRecipes(ctx context.Context, chatID int64) {
	recipes, err := b.app.Recipes().List(ctx)
	if err != nil {
		log.Printf("Error listing recipes: %v", err)
		b.reply(chatID, "❌ Could not load recipes.")
		return
	}
	b.reply(chatID, formatRecipes(recipes))
}

func (b *Bot) handleAdd(ctx context.Context, chatID int64, id, args string) {
	parsed, err := parseAddArgs(args, b.now())
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}

	plan, err := b.app.ScheduleMeal(ctx, id, parsed.RecipeID, parsed.Date, parsed.MealType, parsed.Servings)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrRecipeNotFound):
			b.reply(chatID, fmt.Sprintf("🤷 No recipe with id `%s`. Try /recipes.", parsed.RecipeID))
		case errors.Is(err, planner.ErrInvalidMealPlan):
			b.reply(chatID, "❌ "+err.Error())
		default:
			log.Printf("Error adding meal plan for %s: %v", id, err)
			b.reply(chatID, "❌ Could not add the meal.")
		}
		return
	}

	b.reply(chatID, fmt.Sprintf("✅ Planned *%s* for %s %s (%d servings).", plan.Recipe.Name, plan.Date, plan.MealType, plan.Servings))
	b.sendList(ctx, chatID, id)
}

func (b *Bot) handlePlans(ctx context.Context, chatID int64, id string) {
	var plans []planner.MealPlan
	if err := b.sessions.View(ctx, id, func(s *session.Session) { plans = s.Plans().Plans() }); err != nil {
		log.Printf("Error loading session %s: %v", id, err)
		b.reply(chatID, "❌ Could not load your plans.")
		return
	}
	b.reply(chatID, formatPlans(plans))
}

func (b *Bot) handleRemove(ctx context.Context, chatID int64, id, planID string) {
	if planID == "" {
		b.reply(chatID, "usage: /remove <plan-id>")
		return
	}
	err := b.sessions.Do(ctx, id, "remove_meal_plan", func(s *session.Session) error {
		return s.RemoveMealPlan(planID)
	})
	if !b.replyPlanError(chatID, id, planID, err) {
		b.reply(chatID, "🗑 Meal removed.")
		b.sendList(ctx, chatID, id)
	}
}

func (b *Bot) handleServings(ctx context.Context, chatID int64, id, args string) {
	planID, servings, err := parseServingsArgs(args)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}
	err = b.sessions.Do(ctx, id, "update_meal_plan_servings", func(s *session.Session) error {
		return s.UpdateMealPlanServings(planID, servings)
	})
	if !b.replyPlanError(chatID, id, planID, err) {
		b.reply(chatID, fmt.Sprintf("🍽 Servings set to %d.", planner.ClampServings(servings)))
		b.sendList(ctx, chatID, id)
	}
}

// replyPlanError reports err to the user and returns whether there was one.
func (b *Bot) replyPlanError(chatID int64, id, planID string, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, session.ErrNotFound) {
		b.reply(chatID, fmt.Sprintf("🤷 No planned meal with id `%s`. Try /plans.", planID))
	} else {
		log.Printf("Error updating session %s: %v", id, err)
		b.reply(chatID, "❌ Could not update your plans.")
	}
	return true
}

// handleClear empties the shopping list and its undo buffer. Planned meals
// stay, and the next plan change rebuilds the list.
func (b *Bot) handleClear(ctx context.Context, chatID int64, id string) {
	err := b.sessions.Do(ctx, id, "clear", func(s *session.Session) error {
		s.Groceries().Clear()
		return nil
	})
	if err != nil {
		log.Printf("Error clearing list %s: %v", id, err)
		b.reply(chatID, "❌ Could not clear your shopping list.")
		return
	}
	b.reply(chatID, "🧹 Shopping list cleared. Your planned meals are unchanged.")
}

func (b *Bot) handleClearPlans(ctx context.Context, chatID int64, id string) {
	err := b.sessions.Do(ctx, id, "clear_plans", func(s *session.Session) error {
		for _, p := range s.Plans().Plans() {
			if err := s.RemoveMealPlan(p.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("Error clearing session %s: %v", id, err)
		b.reply(chatID, "❌ Could not clear your plans.")
		return
	}
	b.reply(chatID, "🧹 All meals and the shopping list were cleared.")
}

// renderList snapshots a session's list as text plus keyboard.
func (b *Bot) renderList(ctx context.Context, id string) (string, *tgbotapi.InlineKeyboardMarkup, error) {
	var (
		text     string
		keyboard *tgbotapi.InlineKeyboardMarkup
	)
	err := b.sessions.View(ctx, id, func(s *session.Session) {
		list := s.Groceries()
		text = shopping.RenderMarkdown(list)
		keyboard = listKeyboard(list.Items(), list.Removed())
	})
	return text, keyboard, err
}

func (b *Bot) sendList(ctx context.Context, chatID int64, id string) {
	text, keyboard, err := b.renderList(ctx, id)
	if err != nil {
		log.Printf("Error loading session %s: %v", id, err)
		b.reply(chatID, "❌ Could not load your shopping list.")
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Failed to send shopping list: %v", err)
	}
}

func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Answer callback to remove spinner
	b.api.Request(tgbotapi.NewCallback(query.ID, ""))

	if query.Message == nil {
		return
	}

	id := sessionID(query.From.ID)
	action, itemID := parseCallback(query.Data)

	var op func(*shopping.List)
	switch action {
	case actionCheck:
		op = func(l *shopping.List) { l.ToggleChecked(itemID) }
	case actionHome:
		op = func(l *shopping.List) { l.ToggleHaveAtHome(itemID) }
	case actionRemove:
		op = func(l *shopping.List) { l.RemoveItem(itemID) }
	case actionUndo:
		op = func(l *shopping.List) { l.UndoRemove(itemID) }
	case actionUndoAll:
		op = func(l *shopping.List) { l.UndoAll() }
	case actionInc:
		op = func(l *shopping.List) { l.StepQuantity(itemID, true) }
	case actionDec:
		op = func(l *shopping.List) { l.StepQuantity(itemID, false) }
	default:
		log.Printf("Unknown callback action %q", action)
		return
	}

	err := b.sessions.Do(ctx, id, callbackOperation(action), func(s *session.Session) error {
		op(s.Groceries())
		return nil
	})
	if err != nil {
		log.Printf("Error applying %s for %s: %v", action, id, err)
		return
	}

	text, keyboard, err := b.renderList(ctx, id)
	if err != nil {
		log.Printf("Error loading session %s: %v", id, err)
		return
	}
	var edit tgbotapi.EditMessageTextConfig
	if keyboard != nil {
		edit = tgbotapi.NewEditMessageTextAndMarkup(query.Message.Chat.ID, query.Message.MessageID, text, *keyboard)
	} else {
		edit = tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID, text)
	}
	edit.ParseMode = "Markdown"
	b.api.Send(edit)
}

func callbackOperation(action string) string {
	switch action {
	case actionCheck:
		return "toggle_checked"
	case actionHome:
		return "toggle_have_at_home"
	case actionRemove:
		return "remove_item"
	case actionUndo:
		return "undo_remove"
	case actionInc, actionDec:
		return "update_servings"
	default:
		return "undo_all"
	}
}

func (b *Bot) handleClipperRequest(ctx context.Context, msg *tgbotapi.Message) {
	statusText := "✂️ *Clipping recipe...* \n(Extracting and saving to your blog)"
	replyMsg := tgbotapi.NewMessage(msg.Chat.ID, statusText)
	replyMsg.ParseMode = "Markdown"
	sentMsg, err := b.api.Send(replyMsg)
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	res, err := b.app.ClipRecipe(ctx, strings.TrimSpace(msg.Text))
	var finalText string
	if err != nil {
		log.Printf("Error clipping recipe: %v", err)
		safeErr := strings.ReplaceAll(err.Error(), "`", "'")
		finalText = fmt.Sprintf("❌ *Error clipping recipe:*\n```\n%v\n```", safeErr)
	} else {
		finalText = fmt.Sprintf("✅ *Recipe Saved!*\n\n*Title:* %s\n*ID:* `%s`\n\nPlan it with `/add %s today dinner`",
			res.Recipe.Name, res.Recipe.ID, res.Recipe.ID)
	}
	edit := tgbotapi.NewEditMessageText(msg.Chat.ID, sentMsg.MessageID, finalText)
	edit.ParseMode = "Markdown"
	b.api.Send(edit)
}

func (b *Bot) handleMetricsRequest(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From.ID != b.cfg.AdminTelegramID {
		b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, "⛔ Access Denied: Admin only."))
		return
	}

	usage, err := b.metricsStore.GetDailyUsage(ctx, 7)
	if err != nil {
		log.Printf("Error fetching metrics: %v", err)
		b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, "❌ Error fetching metrics."))
		return
	}

	health := metrics.GetSysHealth(b.cfg.DatabasePath, b.sessions.Active())
	b.reply(msg.Chat.ID, formatUsageReport(usage, health))
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}
