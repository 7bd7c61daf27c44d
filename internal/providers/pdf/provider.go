// Package pdf renders billing documents for email attachments and downloads.
package pdf

import "context"

// Document carries everything the renderer needs, already formatted. The
// renderer does no lookups and no arithmetic.
type Document struct {
	CompanyName    string
	CompanyAddress string
	CompanyContact string
	TaxNumber      string

	Title  string
	Number string

	CustomerName    string
	CustomerAddress string

	DateLabel    string
	Date         string
	DueDateLabel string
	DueDate      string

	Items []Line

	Subtotal   string
	TaxLabel   string
	TaxAmount  string
	Total      string
	TaxApplied bool

	Notes string

	BankName string
	IBAN     string
	BIC      string
	Footer   string
}

type Line struct {
	Position    int
	Description string
	Quantity    string
	UnitPrice   string
	Total       string
}

type Provider interface {
	Render(ctx context.Context, doc Document) ([]byte, error)
}
