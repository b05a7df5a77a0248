package review

import (
	"fmt"
	"strings"

	"github.com/noah-isme/pricelist-review-api/internal/models"
	"github.com/noah-isme/pricelist-review-api/pkg/export"
)

// ExportHeaders is the column set of every exported sheet.
var ExportHeaders = []string{"Part Number", "Product Name", "Old Price", "New Price", "Old Description", "New Description"}

// ExportFilename is the default workbook name for a job.
func ExportFilename(jobID string) string {
	return fmt.Sprintf("ANAL-JOB-%s-analysis.xlsx", jobID)
}

// SummaryFilename is the default PDF summary name for a job.
func SummaryFilename(jobID string) string {
	return fmt.Sprintf("ANAL-JOB-%s-summary.pdf", jobID)
}

// CategoryFilename is the default CSV name for one category of a job.
func CategoryFilename(jobID string, category Category) string {
	return fmt.Sprintf("ANAL-JOB-%s-%s.csv", jobID, strings.ReplaceAll(strings.ToLower(category.Title()), " ", "-"))
}

// exportRecord holds the six export columns of one change. Prices are nil
// when the column does not apply.
type exportRecord struct {
	partNumber, name   string
	oldPrice, newPrice *float64
	oldDesc, newDesc   string
}

func toExportRecord(change models.Change) exportRecord {
	ref := change.Product()
	rec := exportRecord{partNumber: ref.PartNumber, name: ref.Name}
	switch c := change.(type) {
	case models.Addition:
		rec.newPrice, rec.newDesc = c.Price, c.Description
	case models.Deletion:
		rec.oldPrice, rec.oldDesc = c.Price, c.Description
	case models.PriceIncrease:
		rec.oldPrice, rec.newPrice = c.OldPrice, c.NewPrice
	case models.PriceDecrease:
		rec.oldPrice, rec.newPrice = c.OldPrice, c.NewPrice
	case models.DescriptionChange:
		rec.oldDesc, rec.newDesc = c.OldDescription, c.NewDescription
	}
	return rec
}

// BuildWorkbook produces one sheet per non-empty category, in display
// order. Empty categories get no sheet.
func BuildWorkbook(categorized CategorizedActions) []export.Sheet {
	sheets := make([]export.Sheet, 0, len(Categories))
	for _, category := range Categories {
		changes := categorized[category]
		if len(changes) == 0 {
			continue
		}
		sheet := export.Sheet{Name: category.Title(), Headers: ExportHeaders, Rows: make([][]interface{}, 0, len(changes))}
		for _, change := range changes {
			rec := toExportRecord(change)
			sheet.Rows = append(sheet.Rows, []interface{}{
				rec.partNumber, rec.name, cellPrice(rec.oldPrice), cellPrice(rec.newPrice), rec.oldDesc, rec.newDesc,
			})
		}
		sheets = append(sheets, sheet)
	}
	return sheets
}

func cellPrice(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

// CategoryDataset renders one category with the export columns, prices
// formatted for display.
func CategoryDataset(changes []models.Change) export.Dataset {
	data := export.Dataset{Headers: ExportHeaders, Rows: make([]map[string]string, 0, len(changes))}
	for _, change := range changes {
		rec := toExportRecord(change)
		row := map[string]string{
			ExportHeaders[0]: rec.partNumber,
			ExportHeaders[1]: rec.name,
			ExportHeaders[4]: rec.oldDesc,
			ExportHeaders[5]: rec.newDesc,
		}
		if rec.oldPrice != nil {
			row[ExportHeaders[2]] = FormatPrice(rec.oldPrice)
		}
		if rec.newPrice != nil {
			row[ExportHeaders[3]] = FormatPrice(rec.newPrice)
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}

// SummaryDocument lays out a printable overview of a job: the header
// fields, the per-category counts and every non-empty table.
func SummaryDocument(job models.AnalysisJob, categorized CategorizedActions) export.Document {
	badge := Badge(job.Status)
	doc := export.Document{
		Title: fmt.Sprintf("Pricelist Analysis - Job %s", job.JobID),
		Fields: []export.Field{
			{Label: "Client", Value: placeholder(job.Client, "Unknown Client")},
			{Label: "Contract", Value: placeholder(job.ContractNumber, PlaceholderPartNumber)},
			{Label: "Submitted by", Value: placeholder(job.User, PlaceholderValue)},
			{Label: "Status", Value: badge.Label},
			{Label: "Created", Value: formatTime(job.CreatedTime)},
		},
		Footer: strings.TrimSuffix(ExportFilename(job.JobID.String()), "-analysis.xlsx"),
	}

	counts := export.Dataset{Headers: []string{"Category", "Changes"}}
	for _, category := range Categories {
		counts.Rows = append(counts.Rows, map[string]string{
			"Category": category.Title(),
			"Changes":  fmt.Sprintf("%d", len(categorized[category])),
		})
	}
	doc.Sections = append(doc.Sections, export.Section{Heading: "Summary", Data: counts})

	for _, category := range Categories {
		changes := categorized[category]
		if len(changes) == 0 {
			continue
		}
		table := RenderTable(category, changes)
		data := export.Dataset{Headers: make([]string, 0, len(table.Columns))}
		for _, col := range table.Columns {
			data.Headers = append(data.Headers, col.Label)
		}
		for _, row := range table.Rows {
			cells := make(map[string]string, len(table.Columns))
			for _, col := range table.Columns {
				cells[col.Label] = row.Cells[col.Key]
			}
			data.Rows = append(data.Rows, cells)
		}
		doc.Sections = append(doc.Sections, export.Section{Heading: table.Title, Data: data})
	}
	return doc
}

func formatTime(ts models.Timestamp) string {
	if ts.IsZero() {
		return PlaceholderValue
	}
	return ts.UTC().Format("2006-01-02 15:04 MST")
}
