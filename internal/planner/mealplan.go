package planner

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ciboway/internal/recipe"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/google/uuid"
)

// MealType is the slot of the day a meal is planned for.
type MealType string

const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
	MealTypeSnack     MealType = "snack"
)

// DateLayout is the calendar day format used for MealPlan.Date.
const DateLayout = "2006-01-02"

// ErrInvalidMealPlan is returned by Validate.
var ErrInvalidMealPlan = errors.New("invalid meal plan")

// MealPlan schedules a recipe snapshot for one meal slot.
// Servings is the requested head count for this plan and is independent of
// Recipe.Servings.
type MealPlan struct {
	ID       string        `json:"id" validate:"required"`
	Date     string        `json:"date" validate:"required,datetime=2006-01-02"`
	MealType MealType      `json:"meal_type" validate:"required,oneof=breakfast lunch dinner snack"`
	Recipe   recipe.Recipe `json:"recipe"`
	Servings int           `json:"servings" validate:"min=1"`
}

// NewMealPlan builds a plan with a fresh id.
func NewMealPlan(rec recipe.Recipe, date time.Time, mealType MealType, servings int) MealPlan {
	return MealPlan{
		ID:       uuid.NewString(),
		Date:     date.Format(DateLayout),
		MealType: mealType,
		Recipe:   rec,
		Servings: servings,
	}
}

// Day parses the plan's calendar day.
func (p MealPlan) Day() (time.Time, error) {
	return time.Parse(DateLayout, p.Date)
}

// ClampServings coerces a requested serving count to the minimum of 1.
func ClampServings(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

var (
	validate   = validator.New(validator.WithRequiredStructEnabled())
	translator ut.Translator
)

func init() {
	eng := en.New()
	uni := ut.New(eng, eng)
	translator, _ = uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, translator); err != nil {
		panic(fmt.Sprintf("failed to register validator translations: %v", err))
	}
}

// Validate checks a plan supplied from outside the process.
func (p MealPlan) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidMealPlan, err)
	}

	messages := make([]string, 0, len(verrs))
	for _, e := range verrs {
		messages = append(messages, e.Translate(translator))
	}
	return fmt.Errorf("%w: %s", ErrInvalidMealPlan, strings.Join(messages, ", "))
}
