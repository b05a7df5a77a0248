package export

import "errors"

// ErrNoSheets is returned when a workbook would contain no sheets.
var ErrNoSheets = errors.New("export: workbook has no sheets")

// Dataset is tabular content keyed by header.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Sheet is one worksheet. Row values are written with their Go type, so
// float64 cells stay numeric in the spreadsheet.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]interface{}
}

// Section is a titled table inside a Document.
type Section struct {
	Heading string
	Data    Dataset
}

// Field is a label/value pair printed above the sections of a Document.
type Field struct {
	Label string
	Value string
}

// Document is a printable report.
type Document struct {
	Title    string
	Fields   []Field
	Sections []Section
	Footer   string
}
