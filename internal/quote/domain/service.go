package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/faktura/internal/billing/calc"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
)

type CreateQuoteRequest struct {
	CustomerID string           `json:"customer_id"`
	Items      []calc.ItemInput `json:"items"`
	QuoteDate  string           `json:"quote_date"`
	ValidUntil string           `json:"valid_until"`
	Notes      string           `json:"notes"`
	TaxRate    *float64         `json:"tax_rate"`
}

type Service interface {
	Create(context.Context, CreateQuoteRequest) (Quote, error)
	List(context.Context) ([]Quote, error)
	GetByID(context.Context, string) (Quote, error)
	UpdateStatus(ctx context.Context, id string, status string) (Quote, error)
	// Convert builds an invoice from an accepted quote. Totals are copied
	// verbatim; invoking it twice on the same quote fails instead of creating
	// a duplicate invoice.
	Convert(ctx context.Context, id string) (invoicedomain.Invoice, error)
	Delete(context.Context, string) error
}

var (
	ErrInvalidID        = errors.New("invalid_quote_id")
	ErrInvalidDate      = errors.New("invalid_date")
	ErrNotFound         = errors.New("quote_not_found")
	ErrUnknownStatus    = errors.New("unknown_quote_status")
	ErrNotAccepted      = errors.New("quote_not_accepted")
	ErrAlreadyConverted = errors.New("quote_already_converted")
)
