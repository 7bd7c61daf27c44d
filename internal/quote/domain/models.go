// Package domain contains persistence models and contracts for quotes.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/faktura/internal/billing/lifecycle"
	"gorm.io/datatypes"
)

// Status represents quote lifecycle states.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusConverted Status = "converted"
)

// Lifecycle is the quote state machine. The accepted -> converted edge is
// reserved for the conversion service; manual status updates cannot take it.
var Lifecycle = lifecycle.New(map[Status][]Status{
	StatusDraft:     {StatusSent},
	StatusSent:      {StatusAccepted, StatusRejected},
	StatusAccepted:  {StatusConverted},
	StatusRejected:  {},
	StatusConverted: {},
})

// Quote mirrors Invoice except for its lifecycle, a validity date instead of
// a due date, and the one-shot conversion link. Quotes always apply tax.
type Quote struct {
	ID                   snowflake.ID      `gorm:"primaryKey" json:"id"`
	Number               string            `gorm:"column:quote_number;uniqueIndex;not null" json:"quote_number"`
	SequenceNo           int64             `gorm:"not null;index" json:"-"`
	CustomerID           snowflake.ID      `gorm:"not null;index" json:"customer_id"`
	CustomerName         string            `gorm:"not null" json:"customer_name"`
	Status               Status            `gorm:"type:text;not null;default:'draft'" json:"status"`
	Subtotal             float64           `gorm:"not null;default:0" json:"subtotal"`
	TaxRate              float64           `gorm:"not null;default:19" json:"tax_rate"`
	TaxAmount            float64           `gorm:"not null;default:0" json:"tax_amount"`
	TotalAmount          float64           `gorm:"not null;default:0" json:"total_amount"`
	QuoteDate            time.Time         `gorm:"not null" json:"quote_date"`
	ValidUntil           time.Time         `gorm:"not null" json:"valid_until"`
	Notes                string            `gorm:"type:text" json:"notes,omitempty"`
	ConvertedToInvoiceID *snowflake.ID     `gorm:"uniqueIndex" json:"converted_to_invoice_id,omitempty"`
	Metadata             datatypes.JSONMap `gorm:"serializer:json" json:"metadata,omitempty"`
	CreatedAt            time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time         `gorm:"not null" json:"updated_at"`

	Items []QuoteItem `gorm:"foreignKey:QuoteID" json:"items"`
}

func (Quote) TableName() string { return "quotes" }

type QuoteItem struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	QuoteID     snowflake.ID `gorm:"not null;index" json:"-"`
	Position    int          `gorm:"not null" json:"position"`
	Kind        string       `gorm:"column:item_type;not null" json:"type"`
	Description string       `gorm:"type:text;not null" json:"description"`
	Unit        string       `gorm:"type:text" json:"unit"`
	Quantity    float64      `gorm:"not null" json:"quantity"`
	UnitPrice   float64      `gorm:"not null" json:"unit_price"`
	Total       float64      `gorm:"not null" json:"total_price"`
	CreatedAt   time.Time    `gorm:"not null" json:"-"`
}

func (QuoteItem) TableName() string { return "quote_items" }
