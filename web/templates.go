// Package web carries the embedded HTML templates for the site.
package web

import (
	"embed"
	"html/template"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Templates parses the embedded page set with the shared template funcs.
func Templates() (*template.Template, error) {
	funcs := template.FuncMap{
		"usd": USD,
	}
	return template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
}

// USD renders a decimal amount as a dollar string with two decimal places.
func USD(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}
