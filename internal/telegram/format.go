package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"ciboway/internal/metrics"
	"ciboway/internal/planner"
	"ciboway/internal/recipe"
	"ciboway/internal/shopping"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data is limited to 64 bytes by Telegram.
const maxCallbackData = 64

// Callback actions.
const (
	actionCheck   = "chk"
	actionHome    = "home"
	actionRemove  = "rm"
	actionUndo    = "undo"
	actionUndoAll = "undoall"
	actionInc     = "inc"
	actionDec     = "dec"
)

func sessionID(userID int64) string {
	return fmt.Sprintf("tg-%d", userID)
}

// addArgs is the parsed form of "/add <recipe-id> <date> <meal> [servings]".
type addArgs struct {
	RecipeID string
	Date     string
	MealType string
	Servings int
}

// parseAddArgs parses /add arguments. The date accepts YYYY-MM-DD, "today"
// and "tomorrow" relative to now. Missing servings are left at zero.
func parseAddArgs(args string, now time.Time) (addArgs, error) {
	fields := strings.Fields(args)
	if len(fields) < 3 || len(fields) > 4 {
		return addArgs{}, fmt.Errorf("usage: /add <recipe-id> <YYYY-MM-DD|today|tomorrow> <breakfast|lunch|dinner|snack> [servings]")
	}

	out := addArgs{RecipeID: fields[0], MealType: strings.ToLower(fields[2])}

	switch strings.ToLower(fields[1]) {
	case "today":
		out.Date = now.Format(planner.DateLayout)
	case "tomorrow":
		out.Date = now.AddDate(0, 0, 1).Format(planner.DateLayout)
	default:
		out.Date = fields[1]
	}

	if len(fields) == 4 {
		n, err := strconv.Atoi(fields[3])
		if err != nil {
			return addArgs{}, fmt.Errorf("servings must be a number, got %q", fields[3])
		}
		out.Servings = n
	}
	return out, nil
}

// parseServingsArgs parses "/servings <plan-id> <n>".
func parseServingsArgs(args string) (string, int, error) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return "", 0, fmt.Errorf("usage: /servings <plan-id> <n>")
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return "", 0, fmt.Errorf("servings must be a number, got %q", fields[1])
	}
	return fields[0], n, nil
}

// parseCallback splits "action|item-id" callback data.
func parseCallback(data string) (string, string) {
	action, id, _ := strings.Cut(data, "|")
	return action, id
}

func formatRecipes(recipes []recipe.Recipe) string {
	if len(recipes) == 0 {
		return "📚 No recipes yet. Send me a recipe link to clip one."
	}
	var sb strings.Builder
	sb.WriteString("📚 *Recipes*\n\n")
	for _, rec := range recipes {
		sb.WriteString(fmt.Sprintf("• %s (serves %d)\n  `%s`\n", rec.Name, rec.Servings, rec.ID))
	}
	sb.WriteString("\nAdd one with `/add <id> <date> <meal> [servings]`")
	return sb.String()
}

func formatPlans(plans []planner.MealPlan) string {
	if len(plans) == 0 {
		return "📅 No meals planned yet."
	}
	var sb strings.Builder
	sb.WriteString("📅 *Meal Plans*\n\n")
	for _, p := range plans {
		day := p.Date
		if t, err := p.Day(); err == nil {
			day = t.Format("Mon Jan 2")
		}
		sb.WriteString(fmt.Sprintf("*%s* %s: %s (%d servings)\n  `%s`\n", day, p.MealType, p.Recipe.Name, p.Servings, p.ID))
	}
	return sb.String()
}

func callbackButton(text, action, id string) (tgbotapi.InlineKeyboardButton, bool) {
	data := action
	if id != "" {
		data = action + "|" + id
	}
	if len(data) > maxCallbackData {
		return tgbotapi.InlineKeyboardButton{}, false
	}
	return tgbotapi.NewInlineKeyboardButtonData(text, data), true
}

// listKeyboard builds one row of buttons per active item (check, quantity
// down and up, at home, remove), an undo row per
// removed item and an undo-all row when anything was removed. Items whose
// id does not fit in callback data get no buttons.
func listKeyboard(items, removed []shopping.GroceryItem) *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	for _, group := range shopping.GroupByCategory(items) {
		for _, item := range group.Items {
			mark := "▫️"
			if item.Checked {
				mark = "✅"
			}
			check, ok1 := callbackButton(mark+" "+shopping.Describe(item), actionCheck, item.ID)
			home, ok2 := callbackButton("🏠", actionHome, item.ID)
			remove, ok3 := callbackButton("🗑", actionRemove, item.ID)
			dec, ok4 := callbackButton("➖", actionDec, item.ID)
			inc, ok5 := callbackButton("➕", actionInc, item.ID)
			if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
				continue
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(check, dec, inc, home, remove))
		}
	}

	for _, item := range removed {
		if undo, ok := callbackButton("↩️ "+item.Name, actionUndo, item.ID); ok {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(undo))
		}
	}
	if len(removed) > 1 {
		undoAll, _ := callbackButton("↩️ Undo all", actionUndoAll, "")
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(undoAll))
	}

	if len(rows) == 0 {
		return nil
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

func formatUsageReport(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Active sessions: %d\n", health.ActiveSessions))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))
	return sb.String()
}

const helpText = `🥕 *Ciboway*

/recipes - list recipes
/add <id> <date> <meal> [servings] - plan a meal
/plans - show planned meals
/remove <plan-id> - unplan a meal
/servings <plan-id> <n> - change servings
/list - shopping list
/clear - empty the shopping list
/clearplans - remove every planned meal

Send a recipe link to clip it.`
