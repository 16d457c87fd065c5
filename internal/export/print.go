package export

import (
	"fmt"
	"html/template"
	"strings"
)

// Print documents are self-contained HTML pages the browser's print dialog
// can render directly, mirroring the layout the front desk is used to.

var tablePrintTmpl = template.Must(template.New("table").Parse(`<!DOCTYPE html>
<html>
<head>
<title>{{.Title}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 24px; }
h2 { text-align: center; }
table { width: 100%; border-collapse: collapse; margin-top: 16px; }
th, td { border: 1px solid #444; padding: 6px 8px; font-size: 12px; text-align: left; }
th { background: #f0f0f0; }
</style>
</head>
<body>
<h2>{{.Title}}</h2>
<table>
<thead><tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
</body>
</html>
`))

var recordPrintTmpl = template.Must(template.New("record").Parse(`<!DOCTYPE html>
<html>
<head>
<title>{{.Title}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 24px; }
h2 { text-align: center; }
table { width: 100%; border-collapse: collapse; margin-top: 16px; }
td { border: 1px solid #444; padding: 6px 8px; font-size: 13px; }
td.label { width: 35%; font-weight: bold; background: #f0f0f0; }
</style>
</head>
<body>
<h2>{{.Title}}</h2>
<table>
{{range .Fields}}<tr><td class="label">{{.Label}}</td><td>{{.Value}}</td></tr>
{{end}}</table>
</body>
</html>
`))

// TableDocument holds a tabular print document.
type TableDocument struct {
	Title  string
	Header []string
	Rows   [][]string
}

// PrintTable renders a tabular print document.
func PrintTable(doc TableDocument) (string, error) {
	var b strings.Builder
	if err := tablePrintTmpl.Execute(&b, doc); err != nil {
		return "", fmt.Errorf("render table document: %w", err)
	}
	return b.String(), nil
}

// LabeledValue is one row of a single-record print document.
type LabeledValue struct {
	Label string
	Value string
}

// RecordDocument holds a single-record print document.
type RecordDocument struct {
	Title  string
	Fields []LabeledValue
}

// PrintRecord renders a single record as a label/value print document.
func PrintRecord(doc RecordDocument) (string, error) {
	var b strings.Builder
	if err := recordPrintTmpl.Execute(&b, doc); err != nil {
		return "", fmt.Errorf("render record document: %w", err)
	}
	return b.String(), nil
}
