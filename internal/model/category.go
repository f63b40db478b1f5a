package model

import "time"

// Category groups tasks by area (work, study, fitness, etc.).
// Tasks point at a category by name only, so deleting one leaves its tasks untouched.
type Category struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex;not null"`
	Icon      string
	Color     string
	CreatedAt time.Time
}

const DefaultIcon = "📝"

// PresetColors are offered when creating a category; the first one is the fallback.
var PresetColors = []string{
	"#FF9B9B",
	"#FFB74D",
	"#FFE59B",
	"#A5FF9B",
	"#9BB8FF",
	"#D89BFF",
	"#FF9BDB",
	"#9BFFF3",
}

// DefaultCategories returns the set restored by a category reset.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Work", Icon: "💼", Color: "#FF9B9B"},
		{Name: "Study", Icon: "📚", Color: "#9BB8FF"},
		{Name: "Fitness", Icon: "💪", Color: "#A5FF9B"},
		{Name: "Shopping", Icon: "🛒", Color: "#FFE59B"},
		{Name: "Personal", Icon: "🎯", Color: "#D89BFF"},
	}
}
