// Package domain contains persistence models and contracts for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/faktura/internal/billing/lifecycle"
	"gorm.io/datatypes"
)

// Status represents invoice lifecycle states.
type Status string

const (
	StatusDraft Status = "draft"
	StatusSent  Status = "sent"
	StatusPaid  Status = "paid"
)

// Lifecycle is the forward-only invoice state machine. Dispatch success (or a
// manual send) moves draft to sent; payment is recorded manually; paid is
// terminal.
var Lifecycle = lifecycle.New(map[Status][]Status{
	StatusDraft: {StatusSent},
	StatusSent:  {StatusPaid},
	StatusPaid:  {},
})

// Invoice is a billing document. CustomerName is a snapshot taken at creation
// time and is never re-synced from the customer record.
type Invoice struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	Number       string            `gorm:"column:invoice_number;uniqueIndex;not null" json:"invoice_number"`
	SequenceNo   int64             `gorm:"not null;index" json:"-"`
	CustomerID   snowflake.ID      `gorm:"not null;index" json:"customer_id"`
	CustomerName string            `gorm:"not null" json:"customer_name"`
	Status       Status            `gorm:"type:text;not null;default:'draft'" json:"status"`
	Subtotal     float64           `gorm:"not null;default:0" json:"subtotal"`
	TaxRate      float64           `gorm:"not null;default:19" json:"tax_rate"`
	TaxApplied   bool              `gorm:"not null;default:true" json:"tax_applied"`
	TaxAmount    float64           `gorm:"not null;default:0" json:"tax_amount"`
	TotalAmount  float64           `gorm:"not null;default:0" json:"total_amount"`
	InvoiceDate  time.Time         `gorm:"not null" json:"invoice_date"`
	DueDate      time.Time         `gorm:"not null" json:"due_date"`
	Notes        string            `gorm:"type:text" json:"notes,omitempty"`
	EmailSentAt  *time.Time        `json:"email_sent_at,omitempty"`
	Metadata     datatypes.JSONMap `gorm:"serializer:json" json:"metadata,omitempty"`
	CreatedAt    time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null" json:"updated_at"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items"`
}

func (Invoice) TableName() string { return "invoices" }

// InvoiceItem is a line on an invoice. Immutable once the invoice is created.
type InvoiceItem struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	InvoiceID   snowflake.ID `gorm:"not null;index" json:"-"`
	Position    int          `gorm:"not null" json:"position"`
	Kind        string       `gorm:"column:item_type;not null" json:"type"`
	Description string       `gorm:"type:text;not null" json:"description"`
	Unit        string       `gorm:"type:text" json:"unit"`
	Quantity    float64      `gorm:"not null" json:"quantity"`
	UnitPrice   float64      `gorm:"not null" json:"unit_price"`
	Total       float64      `gorm:"not null" json:"total_price"`
	CreatedAt   time.Time    `gorm:"not null" json:"-"`
}

func (InvoiceItem) TableName() string { return "invoice_items" }
