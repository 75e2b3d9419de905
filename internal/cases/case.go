package cases

// Category groups cases by the SQL skills they exercise.
type Category string

const (
	CategoryBeginner     Category = "beginner"
	CategoryIntermediate Category = "intermediate"
	CategoryAdvanced     Category = "advanced"
)

// AllCategories returns all categories in display order.
func AllCategories() []Category {
	return []Category{
		CategoryBeginner,
		CategoryIntermediate,
		CategoryAdvanced,
	}
}

// CategoryDisplayName returns a human-readable name for a category.
func CategoryDisplayName(c Category) string {
	switch c {
	case CategoryBeginner:
		return "Beginner"
	case CategoryIntermediate:
		return "Intermediate"
	case CategoryAdvanced:
		return "Advanced"
	default:
		return string(c)
	}
}

// Solution holds the canonical answer for a case and the texts shown once
// the player has matched it.
type Solution struct {
	Answer         string
	SuccessMessage string
	Explanation    string
}

// Case is one self-contained investigation. Cases are immutable once the
// registry is built.
type Case struct {
	ID          string
	Title       string
	Description string
	Brief       string
	Objectives  []string
	Difficulty  int
	XPReward    int
	Category    Category
	Solution    Solution

	// Tables lists the dataset tables exposed to the player for this case.
	Tables []string

	// SubCases references other cases by ID. Every entry must resolve.
	SubCases []string
}
