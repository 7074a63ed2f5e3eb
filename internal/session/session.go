package session

import (
	"errors"

	"ciboway/internal/planner"
	"ciboway/internal/shopping"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a session operation addresses an unknown meal plan.
var ErrNotFound = errors.New("not found")

// State is the serialisable form of a session.
type State struct {
	MealPlans          []planner.MealPlan      `json:"meal_plans"`
	GroceryList        []shopping.GroceryItem `json:"grocery_list"`
	RemovedIngredients []shopping.GroceryItem `json:"removed_ingredients"`
}

// Session is the per-user context object owning the meal plans and the grocery
// list derived from them. It is not safe for concurrent use; Manager
// serialises access.
type Session struct {
	ID        string
	plans     *planner.Store
	groceries *shopping.List
}

// New creates an empty session.
func New(id string) *Session {
	groceries := shopping.NewList()
	return &Session{
		ID:        id,
		plans:     planner.NewStore(groceries),
		groceries: groceries,
	}
}

// FromState rebuilds a session exactly as it was persisted, user flags and
// manual quantities included.
func FromState(id string, state State) *Session {
	s := New(id)
	s.plans.Restore(state.MealPlans)
	s.groceries.Restore(state.GroceryList, state.RemovedIngredients)
	return s
}

// State snapshots the session.
func (s *Session) State() State {
	return State{
		MealPlans:          s.plans.Plans(),
		GroceryList:        s.groceries.Items(),
		RemovedIngredients: s.groceries.Removed(),
	}
}

// Plans exposes the meal plan store.
func (s *Session) Plans() *planner.Store {
	return s.plans
}

// Groceries exposes the grocery list.
func (s *Session) Groceries() *shopping.List {
	return s.groceries
}

// AddMealPlan validates an externally supplied plan and schedules it.
func (s *Session) AddMealPlan(plan planner.MealPlan) (string, error) {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if err := plan.Validate(); err != nil {
		return "", err
	}
	return s.plans.AddMealPlan(plan), nil
}

// RemoveMealPlan unschedules a plan.
func (s *Session) RemoveMealPlan(planID string) error {
	if _, ok := s.plans.Plan(planID); !ok {
		return ErrNotFound
	}
	s.plans.RemoveMealPlan(planID)
	return nil
}

// UpdateMealPlanServings changes a plan's servings, clamped to at least 1.
func (s *Session) UpdateMealPlanServings(planID string, servings int) error {
	if _, ok := s.plans.Plan(planID); !ok {
		return ErrNotFound
	}
	s.plans.UpdateMealPlanServings(planID, planner.ClampServings(servings))
	return nil
}
