package review

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pricelist-review-api/internal/models"
)

func TestBuildWorkbookSingleCategory(t *testing.T) {
	categorized := Bucketize([]models.ModificationAction{
		{ActionID: "1", ActionType: models.ActionNewProduct, ProductName: strPtr("Widget"), NewPrice: pricePtr(9.99)},
	}).Actions

	sheets := BuildWorkbook(categorized)
	require.Len(t, sheets, 1)
	require.Equal(t, "Additions", sheets[0].Name)
	require.Equal(t, ExportHeaders, sheets[0].Headers)
	require.Equal(t, []interface{}{"", "Widget", "", 9.99, "", ""}, sheets[0].Rows[0])
}

func TestBuildWorkbookSkipsEmptyCategoriesAndKeepsOrder(t *testing.T) {
	categorized := Bucketize([]models.ModificationAction{
		{ActionID: "1", ActionType: models.ActionDescriptionChange, OldDescription: strPtr("old"), NewDescription: strPtr("new")},
		{ActionID: "2", ActionType: models.ActionRemovedProduct, OldPrice: pricePtr(5)},
	}).Actions

	sheets := BuildWorkbook(categorized)
	require.Len(t, sheets, 2)
	require.Equal(t, "Deletions", sheets[0].Name)
	require.Equal(t, []interface{}{"", "", 5.0, "", "", ""}, sheets[0].Rows[0])
	require.Equal(t, "Description Changes", sheets[1].Name)
	require.Equal(t, []interface{}{"", "", "", "", "old", "new"}, sheets[1].Rows[0])

	require.Empty(t, BuildWorkbook(Bucketize(nil).Actions))
}

func TestBuildWorkbookLeavesBlankPricesEmpty(t *testing.T) {
	var actions []models.ModificationAction
	require.NoError(t, json.Unmarshal([]byte(`[
		{"action_id": 1, "action_type": "NEW_PRODUCT", "product_name": "Widget", "new_price": ""}
	]`), &actions))
	categorized := Bucketize(actions).Actions

	sheets := BuildWorkbook(categorized)
	require.Len(t, sheets, 1)
	require.Equal(t, []interface{}{"", "Widget", "", "", "", ""}, sheets[0].Rows[0])

	data := CategoryDataset(categorized[CategoryAdditions])
	require.NotContains(t, data.Rows[0], "New Price")
}

func TestCategoryDatasetFormatsPrices(t *testing.T) {
	categorized := Bucketize([]models.ModificationAction{
		{ActionID: "3", ActionType: models.ActionPriceIncrease, ManufacturerPartNumber: strPtr("W-1"), OldPrice: pricePtr(1000), NewPrice: pricePtr(1234.56)},
	}).Actions

	data := CategoryDataset(categorized[CategoryPriceIncreases])
	require.Len(t, data.Rows, 1)
	require.Equal(t, "$1,000.00", data.Rows[0]["Old Price"])
	require.Equal(t, "$1,234.56", data.Rows[0]["New Price"])
	require.Equal(t, "", data.Rows[0]["Old Description"])
}

func TestFilenames(t *testing.T) {
	require.Equal(t, "ANAL-JOB-42-analysis.xlsx", ExportFilename("42"))
	require.Equal(t, "ANAL-JOB-42-summary.pdf", SummaryFilename("42"))
	require.Equal(t, "ANAL-JOB-42-price-increases.csv", CategoryFilename("42", CategoryPriceIncreases))
}

func TestSummaryDocumentSections(t *testing.T) {
	job := models.AnalysisJob{JobID: "42", Client: "Acme", Status: "pending"}
	categorized := Bucketize([]models.ModificationAction{
		{ActionID: "1", ActionType: models.ActionNewProduct},
	}).Actions

	doc := SummaryDocument(job, categorized)
	require.Equal(t, "Pricelist Analysis - Job 42", doc.Title)
	require.Equal(t, "ANAL-JOB-42", doc.Footer)
	require.Len(t, doc.Sections, 2)
	require.Equal(t, "Summary", doc.Sections[0].Heading)
	require.Len(t, doc.Sections[0].Data.Rows, 5)
	require.Equal(t, "Additions", doc.Sections[1].Heading)
	require.Equal(t, "Unknown Product", doc.Sections[1].Data.Rows[0]["Product Name"])
}

func strPtr(s string) *string { return &s }

func pricePtr(v float64) *models.Price {
	return models.NewPrice(v)
}
