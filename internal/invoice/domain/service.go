package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/faktura/internal/billing/calc"
)

type CreateInvoiceRequest struct {
	CustomerID  string           `json:"customer_id"`
	Items       []calc.ItemInput `json:"items"`
	InvoiceDate string           `json:"invoice_date"`
	DueDate     string           `json:"due_date"`
	Notes       string           `json:"notes"`
	TaxRate     *float64         `json:"tax_rate"`
	ApplyTax    *bool            `json:"apply_tax"`
}

type Service interface {
	Create(context.Context, CreateInvoiceRequest) (Invoice, error)
	List(context.Context) ([]Invoice, error)
	GetByID(context.Context, string) (Invoice, error)
	// UpdateStatus applies a lifecycle transition. Unknown status values and
	// backward moves are rejected.
	UpdateStatus(ctx context.Context, id string, status string) (Invoice, error)
	// MarkSent is the dispatch success callback: draft -> sent with a send
	// timestamp. Returns false when the invoice already left draft.
	MarkSent(ctx context.Context, id string, at time.Time) (bool, error)
	Delete(context.Context, string) error
}

var (
	ErrInvalidID     = errors.New("invalid_invoice_id")
	ErrInvalidDate   = errors.New("invalid_date")
	ErrNotFound      = errors.New("invoice_not_found")
	ErrUnknownStatus = errors.New("unknown_invoice_status")
)
