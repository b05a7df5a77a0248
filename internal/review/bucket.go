// Package review holds the pure pieces of the job review pipeline: grouping
// change records, paging, filtering, status normalization and table layout.
package review

import "github.com/noah-isme/pricelist-review-api/internal/models"

// Category names one of the five fixed buckets.
type Category string

const (
	CategoryAdditions          Category = "additions"
	CategoryDeletions          Category = "deletions"
	CategoryPriceIncreases     Category = "priceIncreases"
	CategoryPriceDecreases     Category = "priceDecreases"
	CategoryDescriptionChanges Category = "descriptionChanges"
)

// Categories lists every bucket in display order.
var Categories = []Category{
	CategoryAdditions,
	CategoryDeletions,
	CategoryPriceIncreases,
	CategoryPriceDecreases,
	CategoryDescriptionChanges,
}

var categoryTitles = map[Category]string{
	CategoryAdditions:          "Additions",
	CategoryDeletions:          "Deletions",
	CategoryPriceIncreases:     "Price Increases",
	CategoryPriceDecreases:     "Price Decreases",
	CategoryDescriptionChanges: "Description Changes",
}

// Title is the human label, also used as the export sheet name.
func (c Category) Title() string {
	return categoryTitles[c]
}

// ParseCategory resolves a path or query value into a Category.
func ParseCategory(raw string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == raw {
			return c, true
		}
	}
	return "", false
}

// CategoryFor maps an action type to its bucket.
func CategoryFor(action models.ActionType) (Category, bool) {
	switch action {
	case models.ActionNewProduct:
		return CategoryAdditions, true
	case models.ActionRemovedProduct:
		return CategoryDeletions, true
	case models.ActionPriceIncrease:
		return CategoryPriceIncreases, true
	case models.ActionPriceDecrease:
		return CategoryPriceDecreases, true
	case models.ActionDescriptionChange:
		return CategoryDescriptionChanges, true
	}
	return "", false
}

// CategorizedActions always has all five keys, each a non-nil slice.
type CategorizedActions map[Category][]models.Change

// Total counts every bucketed change.
func (c CategorizedActions) Total() int {
	total := 0
	for _, cat := range Categories {
		total += len(c[cat])
	}
	return total
}

// Counts returns the per-bucket sizes.
func (c CategorizedActions) Counts() map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, cat := range Categories {
		counts[cat] = len(c[cat])
	}
	return counts
}

// Bucketed is the result of Bucketize. Dropped counts records whose
// action_type was not recognised; they appear in no bucket.
type Bucketed struct {
	Actions CategorizedActions
	Dropped int
}

// Bucketize groups records by action type, preserving input order inside
// each bucket. Unrecognised records are dropped.
func Bucketize(records []models.ModificationAction) Bucketed {
	out := Bucketed{Actions: emptyBuckets()}
	for _, record := range records {
		change, ok := record.Decode()
		if !ok {
			out.Dropped++
			continue
		}
		cat, _ := CategoryFor(change.Action())
		out.Actions[cat] = append(out.Actions[cat], change)
	}
	return out
}

func emptyBuckets() CategorizedActions {
	buckets := make(CategorizedActions, len(Categories))
	for _, cat := range Categories {
		buckets[cat] = []models.Change{}
	}
	return buckets
}
