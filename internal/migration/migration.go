// Package migration creates the schema on startup so a fresh install is
// usable without any manual steps. AutoMigrate is used instead of versioned
// SQL because the same binary must work on sqlite, postgres and mysql.
package migration

import (
	"errors"

	companydomain "github.com/smallbiznis/faktura/internal/company/domain"
	customerdomain "github.com/smallbiznis/faktura/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	quotedomain "github.com/smallbiznis/faktura/internal/quote/domain"
	"github.com/smallbiznis/faktura/internal/sequence"
	tododomain "github.com/smallbiznis/faktura/internal/todo/domain"
	"gorm.io/gorm"
)

func Run(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}

	return conn.AutoMigrate(
		&customerdomain.Customer{},
		&companydomain.Profile{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&quotedomain.Quote{},
		&quotedomain.QuoteItem{},
		&tododomain.Task{},
		&sequence.Counter{},
	)
}
