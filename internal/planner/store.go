package planner

import "github.com/google/uuid"

// GroceryList is reconciled by the Store after every meal plan mutation.
type GroceryList interface {
	Reconcile(plans []MealPlan)
	Clear()
}

// Store owns the ordered collection of meal plans for one session.
//
// Every mutation re-aggregates the whole collection and returns only after
// the grocery list has been reconciled. There is no incremental diffing;
// plan counts are in the tens.
type Store struct {
	plans     []MealPlan
	groceries GroceryList
}

// NewStore creates an empty Store wired to the given grocery list.
func NewStore(groceries GroceryList) *Store {
	return &Store{groceries: groceries}
}

// Restore replaces the collection with persisted plans without touching the
// grocery list, which is restored separately with its user state.
func (s *Store) Restore(plans []MealPlan) {
	s.plans = append([]MealPlan(nil), plans...)
}

// AddMealPlan appends a plan and returns its id. An empty id is filled in.
// Servings are not validated here; callers validate input at the boundary.
func (s *Store) AddMealPlan(plan MealPlan) string {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	s.plans = append(s.plans, plan)
	s.refresh()
	return plan.ID
}

// RemoveMealPlan drops the plan with the given id. When no plans remain the
// grocery list and its undo buffer are cleared unconditionally.
func (s *Store) RemoveMealPlan(planID string) {
	kept := s.plans[:0]
	for _, p := range s.plans {
		if p.ID != planID {
			kept = append(kept, p)
		}
	}
	s.plans = kept

	if len(s.plans) == 0 {
		s.plans = nil
		s.groceries.Clear()
		return
	}
	s.refresh()
}

// UpdateMealPlanServings sets the requested servings of a plan in place.
// Callers clamp servings to at least 1 (see ClampServings).
func (s *Store) UpdateMealPlanServings(planID string, servings int) {
	for i := range s.plans {
		if s.plans[i].ID == planID {
			s.plans[i].Servings = servings
			break
		}
	}
	s.refresh()
}

// Plans returns a copy of the collection in insertion order.
func (s *Store) Plans() []MealPlan {
	return append([]MealPlan(nil), s.plans...)
}

// Plan looks up a plan by id.
func (s *Store) Plan(planID string) (MealPlan, bool) {
	for _, p := range s.plans {
		if p.ID == planID {
			return p, true
		}
	}
	return MealPlan{}, false
}

// Len returns the number of planned meals.
func (s *Store) Len() int {
	return len(s.plans)
}

func (s *Store) refresh() {
	if len(s.plans) == 0 {
		s.groceries.Clear()
		return
	}
	s.groceries.Reconcile(s.Plans())
}
