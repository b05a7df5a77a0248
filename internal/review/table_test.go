package review

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pricelist-review-api/internal/models"
)

func price(v float64) *float64 { return &v }

func TestRenderTableLayouts(t *testing.T) {
	require.Equal(t, []string{"part_number", "product_name", "description", "price"}, keys(ColumnsFor(CategoryAdditions)))
	require.Equal(t, []string{"part_number", "product_name", "old_price", "new_price"}, keys(ColumnsFor(CategoryPriceDecreases)))
	require.Equal(t, []string{"part_number", "product_name", "old_description", "new_description"}, keys(ColumnsFor(CategoryDescriptionChanges)))

	cols := ColumnsFor(CategoryPriceIncreases)
	require.Equal(t, AlignRight, cols[2].Align)
	require.Equal(t, EmphasisMuted, cols[2].Emphasis)
	require.Equal(t, EmphasisEmphasized, cols[3].Emphasis)
}

func keys(cols []Column) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		out = append(out, c.Key)
	}
	return out
}

func TestRenderRowPlaceholdersAndPrices(t *testing.T) {
	row := RenderRow(models.Addition{})
	require.Equal(t, "N/A", row.Cells["part_number"])
	require.Equal(t, "Unknown Product", row.Cells["product_name"])
	require.Equal(t, "-", row.Cells["description"])
	require.Equal(t, "-", row.Cells["price"])

	row = RenderRow(models.PriceIncrease{
		ProductRef: models.ProductRef{Name: "Widget", PartNumber: "W-1"},
		OldPrice:   price(1234.5),
		NewPrice:   price(1500000),
	})
	require.Equal(t, "$1,234.50", row.Cells["old_price"])
	require.Equal(t, "$1,500,000.00", row.Cells["new_price"])
}

func TestRenderRowBlankPricesUsePlaceholder(t *testing.T) {
	var actions []models.ModificationAction
	require.NoError(t, json.Unmarshal([]byte(`[
		{"action_id": 1, "action_type": "NEW_PRODUCT", "product_name": "Widget", "new_price": ""},
		{"action_id": 2, "action_type": "PRICE_DECREASE", "old_price": "  ", "new_price": "8.50"}
	]`), &actions))

	bucketed := Bucketize(actions)
	addition := RenderTable(CategoryAdditions, bucketed.Actions[CategoryAdditions])
	require.Len(t, addition.Rows, 1)
	require.Equal(t, "-", addition.Rows[0].Cells["price"])

	decrease := RenderTable(CategoryPriceDecreases, bucketed.Actions[CategoryPriceDecreases])
	require.Len(t, decrease.Rows, 1)
	require.Equal(t, "-", decrease.Rows[0].Cells["old_price"])
	require.Equal(t, "$8.50", decrease.Rows[0].Cells["new_price"])
}

func TestRenderRowTruncatesOldDescription(t *testing.T) {
	long := strings.Repeat("x", 200)
	row := RenderRow(models.DescriptionChange{OldDescription: long, NewDescription: long})
	require.Equal(t, TruncateLength, len([]rune(row.Cells["old_description"])))
	require.Equal(t, long, row.Cells["new_description"])
}

func TestRenderTableEmptyCategory(t *testing.T) {
	table := RenderTable(CategoryDeletions, nil)
	require.Empty(t, table.Rows)
	require.Equal(t, EmptyCategoryMessage, table.EmptyMessage)
	require.Equal(t, 4, table.ColSpan)
	require.Equal(t, "Deletions", table.Title)
}

func TestFormatPriceNegative(t *testing.T) {
	require.Equal(t, "-$12.00", FormatPrice(price(-12)))
}
