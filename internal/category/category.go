// Package category is the closed registry of transaction categories.
// Keys outside the registry are rejected at the boundary instead of being
// rendered with a fallback icon.
package category

// Category pairs a display icon with a human label.
type Category struct {
	Key   string `json:"key"`
	Icon  string `json:"icon"`
	Label string `json:"label"`
}

var registry = []Category{
	{Key: "FOOD", Icon: "🍔", Label: "Food"},
	{Key: "TRANSPORT", Icon: "🚗", Label: "Transport"},
	{Key: "SHOPPING", Icon: "🥦", Label: "Groceries"},
	{Key: "BILLS", Icon: "💼", Label: "Business"},
	{Key: "RENT", Icon: "🏠", Label: "Rent"},
	{Key: "TRAVEL", Icon: "✈️", Label: "Travel"},
	{Key: "ENTERTAINMENT", Icon: "🎬", Label: "Entertainment"},
	{Key: "HEALTH", Icon: "⚕️", Label: "Healthcare"},
	{Key: "OTHER", Icon: "📌", Label: "Other"},
}

var byKey = func() map[string]Category {
	m := make(map[string]Category, len(registry))
	for _, c := range registry {
		m[c.Key] = c
	}
	return m
}()

// Lookup returns the category for a key.
func Lookup(key string) (Category, bool) {
	c, ok := byKey[key]
	return c, ok
}

// Valid reports whether the key is registered.
func Valid(key string) bool {
	_, ok := byKey[key]
	return ok
}

// All returns the registry in declaration order.
func All() []Category {
	out := make([]Category, len(registry))
	copy(out, registry)
	return out
}
