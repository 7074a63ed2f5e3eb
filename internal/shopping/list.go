package shopping

import (
	"ciboway/internal/planner"

	"github.com/shopspring/decimal"
)

// List is the user-editable grocery list layered over the aggregate, plus the
// buffer of explicitly removed items kept for undo.
//
// Operations addressing an unknown item id are no-ops.
type List struct {
	items   []GroceryItem
	removed []GroceryItem
}

// NewList creates an empty List.
func NewList() *List {
	return &List{}
}

// Restore replaces the list state with persisted items.
func (l *List) Restore(items, removed []GroceryItem) {
	l.items = append([]GroceryItem(nil), items...)
	l.removed = append([]GroceryItem(nil), removed...)
}

// Reconcile recomputes the aggregate for plans and merges it into the list.
func (l *List) Reconcile(plans []planner.MealPlan) {
	l.merge(Aggregate(plans))
}

// merge replaces the active list with fresh while carrying the checked and
// have-at-home flags of rows whose key survives. Every key in fresh gets a
// row, including keys that also sit in the undo buffer. Manual quantity
// edits are not carried over.
func (l *List) merge(fresh []GroceryItem) {
	previous := make(map[string]GroceryItem, len(l.items))
	for _, item := range l.items {
		previous[item.ID] = item
	}

	next := make([]GroceryItem, 0, len(fresh))
	for _, item := range fresh {
		if old, ok := previous[item.ID]; ok {
			item.Checked = old.Checked
			item.HaveAtHome = old.HaveAtHome
		}
		next = append(next, item)
	}
	l.items = next
}

// ToggleChecked flips the checked flag of an item.
func (l *List) ToggleChecked(itemID string) {
	if i := l.indexOf(itemID); i >= 0 {
		l.items[i].Checked = !l.items[i].Checked
	}
}

// ToggleHaveAtHome flips the have-at-home flag of an item.
func (l *List) ToggleHaveAtHome(itemID string) {
	if i := l.indexOf(itemID); i >= 0 {
		l.items[i].HaveAtHome = !l.items[i].HaveAtHome
	}
}

// UpdateServings overwrites an item's quantity with a caller-supplied
// decimal. The override lasts until the next meal plan mutation recomputes
// the aggregate. Values that are not decimals are ignored.
func (l *List) UpdateServings(itemID, newQuantity string) {
	i := l.indexOf(itemID)
	if i < 0 {
		return
	}
	qty, err := decimal.NewFromString(newQuantity)
	if err != nil {
		return
	}
	l.items[i].Quantity = qty
}

// StepQuantity raises an item's quantity by one, or lowers it by one with a
// floor of one. Like UpdateServings it lasts until the next aggregation.
func (l *List) StepQuantity(itemID string, up bool) {
	i := l.indexOf(itemID)
	if i < 0 {
		return
	}
	if up {
		l.items[i].Quantity = l.items[i].Quantity.Add(decimal.NewFromInt(1))
		return
	}
	l.items[i].Quantity = decimal.Max(decimal.NewFromInt(1), l.items[i].Quantity.Sub(decimal.NewFromInt(1)))
}

// RemoveItem moves an item into the undo buffer with its full state. A key
// removed again replaces its older buffered record.
func (l *List) RemoveItem(itemID string) {
	i := l.indexOf(itemID)
	if i < 0 {
		return
	}
	item := l.items[i]
	l.items = append(l.items[:i:i], l.items[i+1:]...)
	if j := l.removedIndex(itemID); j >= 0 {
		l.removed = append(l.removed[:j:j], l.removed[j+1:]...)
	}
	l.removed = append(l.removed, item)
}

// UndoRemove moves an item from the undo buffer back to the active list.
func (l *List) UndoRemove(itemID string) {
	i := l.removedIndex(itemID)
	if i < 0 {
		return
	}
	item := l.removed[i]
	l.removed = append(l.removed[:i:i], l.removed[i+1:]...)
	l.restore(item)
}

// UndoAll restores every removed item in removal order.
func (l *List) UndoAll() {
	removed := l.removed
	l.removed = nil
	for _, item := range removed {
		l.restore(item)
	}
}

// restore puts a buffered item back. When the key is active again the row
// keeps its current quantity and takes the buffered flags.
func (l *List) restore(item GroceryItem) {
	if i := l.indexOf(item.ID); i >= 0 {
		item.Quantity = l.items[i].Quantity
		l.items[i] = item
		return
	}
	l.items = append(l.items, item)
}

// Clear empties the active list and the undo buffer.
func (l *List) Clear() {
	l.items = nil
	l.removed = nil
}

// Items returns a copy of the active list.
func (l *List) Items() []GroceryItem {
	return append([]GroceryItem{}, l.items...)
}

// Removed returns a copy of the undo buffer.
func (l *List) Removed() []GroceryItem {
	return append([]GroceryItem{}, l.removed...)
}

// Item looks up an active item by id.
func (l *List) Item(itemID string) (GroceryItem, bool) {
	if i := l.indexOf(itemID); i >= 0 {
		return l.items[i], true
	}
	return GroceryItem{}, false
}

// Remaining counts items that are neither checked nor at home.
func (l *List) Remaining() int {
	n := 0
	for _, item := range l.items {
		if item.Remaining() {
			n++
		}
	}
	return n
}

func (l *List) indexOf(itemID string) int {
	for i, item := range l.items {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}

func (l *List) removedIndex(itemID string) int {
	for i, item := range l.removed {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}
