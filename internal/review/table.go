package review

import (
	"unicode/utf8"

	"github.com/noah-isme/pricelist-review-api/internal/models"
)

// EmptyCategoryMessage fills the single row of an empty table.
const EmptyCategoryMessage = "No modifications found for this category"

// TruncateLength bounds the old description in description tables.
const TruncateLength = 80

// Align is the horizontal alignment of a column.
type Align string

const (
	AlignLeft  Align = "left"
	AlignRight Align = "right"
)

// Emphasis is the text weight of a cell.
type Emphasis string

const (
	EmphasisNormal     Emphasis = "normal"
	EmphasisMuted      Emphasis = "muted"
	EmphasisEmphasized Emphasis = "emphasized"
)

// Column describes one table column.
type Column struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Align    Align    `json:"align"`
	Emphasis Emphasis `json:"emphasis"`
	Truncate bool     `json:"truncate,omitempty"`
}

// Row is one rendered record; cells are keyed by column key.
type Row struct {
	ActionID string            `json:"action_id,omitempty"`
	Cells    map[string]string `json:"cells"`
}

// Table is a category rendered for display.
type Table struct {
	Category Category `json:"category"`
	Title    string   `json:"title"`
	Columns  []Column `json:"columns"`
	Rows     []Row    `json:"rows"`
	// EmptyMessage is set, with ColSpan, when the category has no records.
	EmptyMessage string `json:"empty_message,omitempty"`
	ColSpan      int    `json:"col_span,omitempty"`
}

var (
	colPartNumber = Column{Key: "part_number", Label: "Part Number", Align: AlignLeft, Emphasis: EmphasisNormal}
	colName       = Column{Key: "product_name", Label: "Product Name", Align: AlignLeft, Emphasis: EmphasisNormal}
	colDesc       = Column{Key: "description", Label: "Description", Align: AlignLeft, Emphasis: EmphasisNormal}
	colPrice      = Column{Key: "price", Label: "Price", Align: AlignRight, Emphasis: EmphasisNormal}
	colOldPrice   = Column{Key: "old_price", Label: "Old Price", Align: AlignRight, Emphasis: EmphasisMuted}
	colNewPrice   = Column{Key: "new_price", Label: "New Price", Align: AlignRight, Emphasis: EmphasisEmphasized}
	colOldDesc    = Column{Key: "old_description", Label: "Old Description", Align: AlignLeft, Emphasis: EmphasisMuted, Truncate: true}
	colNewDesc    = Column{Key: "new_description", Label: "New Description", Align: AlignLeft, Emphasis: EmphasisNormal}
)

// ColumnsFor returns the layout for a category.
func ColumnsFor(category Category) []Column {
	switch category {
	case CategoryPriceIncreases, CategoryPriceDecreases:
		return []Column{colPartNumber, colName, colOldPrice, colNewPrice}
	case CategoryDescriptionChanges:
		return []Column{colPartNumber, colName, colOldDesc, colNewDesc}
	default:
		return []Column{colPartNumber, colName, colDesc, colPrice}
	}
}

// RenderTable lays out one category's changes.
func RenderTable(category Category, changes []models.Change) Table {
	t := Table{
		Category: category,
		Title:    category.Title(),
		Columns:  ColumnsFor(category),
		Rows:     make([]Row, 0, len(changes)),
	}
	for _, change := range changes {
		t.Rows = append(t.Rows, RenderRow(change))
	}
	if len(t.Rows) == 0 {
		t.EmptyMessage = EmptyCategoryMessage
		t.ColSpan = len(t.Columns)
	}
	return t
}

// RenderRow renders a single change. Missing values become placeholders.
func RenderRow(change models.Change) Row {
	ref := change.Product()
	cells := map[string]string{
		colPartNumber.Key: placeholder(ref.PartNumber, PlaceholderPartNumber),
		colName.Key:       placeholder(ref.Name, PlaceholderProductName),
	}

	switch c := change.(type) {
	case models.Addition:
		cells[colDesc.Key] = placeholder(c.Description, PlaceholderValue)
		cells[colPrice.Key] = FormatPrice(c.Price)
	case models.Deletion:
		cells[colDesc.Key] = placeholder(c.Description, PlaceholderValue)
		cells[colPrice.Key] = FormatPrice(c.Price)
	case models.PriceIncrease:
		cells[colOldPrice.Key] = FormatPrice(c.OldPrice)
		cells[colNewPrice.Key] = FormatPrice(c.NewPrice)
	case models.PriceDecrease:
		cells[colOldPrice.Key] = FormatPrice(c.OldPrice)
		cells[colNewPrice.Key] = FormatPrice(c.NewPrice)
	case models.DescriptionChange:
		cells[colOldDesc.Key] = truncate(placeholder(c.OldDescription, PlaceholderValue), TruncateLength)
		cells[colNewDesc.Key] = placeholder(c.NewDescription, PlaceholderValue)
	}
	return Row{ActionID: ref.ActionID, Cells: cells}
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}
