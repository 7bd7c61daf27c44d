package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, quote *Quote) error
	InsertItems(ctx context.Context, db *gorm.DB, items []QuoteItem) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Quote, error)
	List(ctx context.Context, db *gorm.DB) ([]*Quote, error)
	SetStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status Status, now time.Time) error
	// MarkConverted flips an accepted, unconverted quote to converted and
	// records the invoice id. Returns false when another writer got there
	// first.
	MarkConverted(ctx context.Context, db *gorm.DB, id, invoiceID snowflake.ID, now time.Time) (bool, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
}
