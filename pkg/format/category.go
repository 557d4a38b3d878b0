package format

// DefaultCategoryIcon is shown for categories without a dedicated icon.
const DefaultCategoryIcon = "📦"

var categoryOrder = []string{
	"Food Delivery",
	"Groceries",
	"Online Shopping",
	"Travel & Transport",
	"Entertainment",
	"Utilities & Bills",
	"Healthcare",
	"Education",
	"EMI & Loans",
	"Investments",
	"Other",
}

var categoryIcons = map[string]string{
	"Food Delivery":      "🍕",
	"Groceries":          "🛒",
	"Online Shopping":    "🛍️",
	"Travel & Transport": "🚗",
	"Entertainment":      "🎬",
	"Utilities & Bills":  "💡",
	"Healthcare":         "🏥",
	"Education":          "📚",
	"EMI & Loans":        "🏦",
	"Investments":        "📈",
	"Other":              "📦",
}

// CategoryIcon returns the emoji for an expense category, or
// DefaultCategoryIcon when the category is unknown.
func CategoryIcon(category string) string {
	if icon, ok := categoryIcons[category]; ok {
		return icon
	}
	return DefaultCategoryIcon
}

// Categories lists the known expense categories in display order.
func Categories() []string {
	return append([]string(nil), categoryOrder...)
}
