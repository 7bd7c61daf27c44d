// Package sequence assigns human-readable document numbers. Each document
// kind owns a counter row that is incremented inside the caller's transaction,
// so allocations commit together with the document they number. Counters are
// seeded from the highest number ever issued, which keeps numbers monotonic
// and never reused even after a document is deleted.
package sequence

import (
	"context"
	"fmt"
	"time"

	"github.com/smallbiznis/faktura/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Kind identifies a numbered document series.
type Kind struct {
	Name   string
	Prefix string
	Table  string
}

var (
	KindInvoice = Kind{Name: "invoice", Prefix: "INV", Table: "invoices"}
	KindQuote   = Kind{Name: "quote", Prefix: "QUO", Table: "quotes"}
)

// Counter is the persisted sequence state per document kind.
type Counter struct {
	Kind      string    `gorm:"primaryKey;type:text"`
	LastValue int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Counter) TableName() string { return "document_sequences" }

type Allocator struct {
	log *zap.Logger
}

type Params struct {
	fx.In

	Log *zap.Logger
}

func New(p Params) *Allocator {
	return &Allocator{log: p.Log.Named("sequence.allocator")}
}

var Module = fx.Module("sequence",
	fx.Provide(New),
)

// Next increments the counter for kind within tx and returns the formatted
// number plus its numeric value. The counter row stays write-locked until the
// surrounding transaction commits, so two concurrent allocations for the same
// kind serialize instead of racing a shared count.
func (a *Allocator) Next(ctx context.Context, tx *gorm.DB, kind Kind) (string, int64, error) {
	now := time.Now().UTC()

	res := tx.WithContext(ctx).Exec(
		`UPDATE document_sequences
		 SET last_value = last_value + 1, updated_at = ?
		 WHERE kind = ?`,
		now,
		kind.Name,
	)
	if res.Error != nil {
		return "", 0, res.Error
	}
	if res.RowsAffected == 0 {
		if err := a.seed(ctx, tx, kind, now); err != nil {
			return "", 0, err
		}
		res = tx.WithContext(ctx).Exec(
			`UPDATE document_sequences
			 SET last_value = last_value + 1, updated_at = ?
			 WHERE kind = ?`,
			now,
			kind.Name,
		)
		if res.Error != nil {
			return "", 0, res.Error
		}
	}

	var value int64
	err := tx.WithContext(ctx).Raw(
		`SELECT last_value FROM document_sequences WHERE kind = ?`,
		kind.Name,
	).Scan(&value).Error
	if err != nil {
		return "", 0, err
	}

	return Format(kind, value), value, nil
}

// seed initializes the counter from the highest number already issued for the
// kind. Existing installations pick up exactly where their documents left off.
func (a *Allocator) seed(ctx context.Context, tx *gorm.DB, kind Kind, now time.Time) error {
	var max int64
	err := tx.WithContext(ctx).Raw(
		fmt.Sprintf(`SELECT COALESCE(MAX(sequence_no), 0) FROM %s`, kind.Table),
	).Scan(&max).Error
	if err != nil {
		return err
	}

	a.log.Info("seeding document sequence",
		zap.String("kind", kind.Name),
		zap.Int64("seed", max),
	)

	// Two transactions can race to seed the same kind; the loser's insert
	// hits the primary key and is safe to ignore.
	err = tx.WithContext(ctx).Exec(
		`INSERT INTO document_sequences (kind, last_value, updated_at)
		 VALUES (?, ?, ?)`,
		kind.Name,
		max,
		now,
	).Error
	if err != nil && !db.IsDuplicateKeyErr(err) {
		return err
	}
	return nil
}

// Format renders a sequence value as PREFIX-NNNN, zero-padded to 4 digits.
func Format(kind Kind, value int64) string {
	return fmt.Sprintf("%s-%04d", kind.Prefix, value)
}
