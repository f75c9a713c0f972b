package model

// Category is the semantic type of a notification, used for preference gating.
type Category string

const (
	CategoryDevotion  Category = "devotion"
	CategoryPrayer    Category = "prayer"
	CategoryEvent     Category = "event"
	CategoryCommunity Category = "community"

	// CategoryReminder bypasses per-category toggles: a reminder is only
	// suppressed by the global switch, quiet hours or the daily cap.
	CategoryReminder Category = "reminder"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryDevotion, CategoryPrayer, CategoryEvent, CategoryCommunity, CategoryReminder:
		return true
	}
	return false
}
