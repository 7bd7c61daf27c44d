package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/faktura/internal/billing/calc"
	"github.com/smallbiznis/faktura/internal/config"
	customerdomain "github.com/smallbiznis/faktura/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	"github.com/smallbiznis/faktura/internal/notification"
	quotedomain "github.com/smallbiznis/faktura/internal/quote/domain"
	"github.com/smallbiznis/faktura/internal/sequence"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// validityDays is how long a quote stays open when the request omits
// valid_until.
const validityDays = 14

// dueDays is the payment term seeded onto converted invoices.
const dueDays = 30

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Config      config.Config
	Repo        quotedomain.Repository
	InvoiceRepo invoicedomain.Repository
	CustomerSvc customerdomain.Service
	Sequences   *sequence.Allocator
	Queue       *notification.Queue `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	cfg         config.Config
	repo        quotedomain.Repository
	invoiceRepo invoicedomain.Repository
	customerSvc customerdomain.Service
	sequences   *sequence.Allocator
	queue       *notification.Queue
}

func New(p Params) quotedomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("quote.service"),
		genID:       p.GenID,
		cfg:         p.Config,
		repo:        p.Repo,
		invoiceRepo: p.InvoiceRepo,
		customerSvc: p.CustomerSvc,
		sequences:   p.Sequences,
		queue:       p.Queue,
	}
}

func (s *Service) Create(ctx context.Context, req quotedomain.CreateQuoteRequest) (quotedomain.Quote, error) {
	customer, err := s.customerSvc.GetByID(ctx, req.CustomerID)
	if err != nil {
		return quotedomain.Quote{}, err
	}

	// Quotes always apply tax; only invoices carry an apply_tax switch.
	tax := calc.TaxPolicy{RatePercent: s.cfg.DefaultTaxRate, Enabled: true}
	if req.TaxRate != nil {
		tax.RatePercent = *req.TaxRate
	}

	lines, totals, err := calc.Build(req.Items, tax)
	if err != nil {
		return quotedomain.Quote{}, err
	}

	now := time.Now().UTC()
	quoteDate, err := parseDate(req.QuoteDate, now)
	if err != nil {
		return quotedomain.Quote{}, err
	}
	validUntil, err := parseDate(req.ValidUntil, quoteDate.AddDate(0, 0, validityDays))
	if err != nil {
		return quotedomain.Quote{}, err
	}

	quote := quotedomain.Quote{
		ID:           s.genID.Generate(),
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		Status:       quotedomain.StatusDraft,
		Subtotal:     totals.Subtotal,
		TaxRate:      totals.TaxRate,
		TaxAmount:    totals.TaxAmount,
		TotalAmount:  totals.TotalAmount,
		QuoteDate:    quoteDate,
		ValidUntil:   validUntil,
		Notes:        strings.TrimSpace(req.Notes),
		Metadata:     datatypes.JSONMap{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, seqNo, err := s.sequences.Next(ctx, tx, sequence.KindQuote)
		if err != nil {
			return err
		}
		quote.Number = number
		quote.SequenceNo = seqNo

		if err := s.repo.Insert(ctx, tx, &quote); err != nil {
			return err
		}

		items := make([]quotedomain.QuoteItem, 0, len(lines))
		for i, line := range lines {
			items = append(items, quotedomain.QuoteItem{
				ID:          s.genID.Generate(),
				QuoteID:     quote.ID,
				Position:    i + 1,
				Kind:        line.Kind,
				Description: line.Description,
				Unit:        line.Unit,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
				Total:       line.Total,
				CreatedAt:   now,
			})
		}
		if err := s.repo.InsertItems(ctx, tx, items); err != nil {
			return err
		}
		quote.Items = items
		return nil
	})
	if err != nil {
		return quotedomain.Quote{}, err
	}

	return quote, nil
}

func (s *Service) List(ctx context.Context) ([]quotedomain.Quote, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	quotes := make([]quotedomain.Quote, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		quotes = append(quotes, *item)
	}
	return quotes, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (quotedomain.Quote, error) {
	quoteID, err := parseID(id)
	if err != nil {
		return quotedomain.Quote{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, quoteID)
	if err != nil {
		return quotedomain.Quote{}, err
	}
	if item == nil {
		return quotedomain.Quote{}, quotedomain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status string) (quotedomain.Quote, error) {
	target := quotedomain.Status(strings.TrimSpace(strings.ToLower(status)))
	if !quotedomain.Lifecycle.Known(target) {
		return quotedomain.Quote{}, quotedomain.ErrUnknownStatus
	}
	// The converted edge belongs to Convert; a manual update may not take it.
	if target == quotedomain.StatusConverted {
		return quotedomain.Quote{}, quotedomain.ErrNotAccepted
	}

	quote, err := s.GetByID(ctx, id)
	if err != nil {
		return quotedomain.Quote{}, err
	}

	if err := quotedomain.Lifecycle.Transition(quote.Status, target); err != nil {
		return quotedomain.Quote{}, err
	}

	now := time.Now().UTC()
	if err := s.repo.SetStatus(ctx, s.db, quote.ID, target, now); err != nil {
		return quotedomain.Quote{}, err
	}
	quote.Status = target
	quote.UpdatedAt = now

	s.log.Info("quote status updated",
		zap.String("quote_number", quote.Number),
		zap.String("status", string(target)),
	)
	return quote, nil
}

func (s *Service) Convert(ctx context.Context, id string) (invoicedomain.Invoice, error) {
	quoteID, err := parseID(id)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	var invoice invoicedomain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quote, err := s.repo.FindByID(ctx, tx, quoteID)
		if err != nil {
			return err
		}
		if quote == nil {
			return quotedomain.ErrNotFound
		}
		if quote.ConvertedToInvoiceID != nil || quote.Status == quotedomain.StatusConverted {
			return quotedomain.ErrAlreadyConverted
		}
		if quote.Status != quotedomain.StatusAccepted {
			return quotedomain.ErrNotAccepted
		}

		number, seqNo, err := s.sequences.Next(ctx, tx, sequence.KindInvoice)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		notes := fmt.Sprintf("Based on quote %s", quote.Number)
		if quote.Notes != "" {
			notes += "\n\n" + quote.Notes
		}

		// Totals were validated when the quote was created; copy them
		// verbatim rather than recomputing.
		invoice = invoicedomain.Invoice{
			ID:           s.genID.Generate(),
			Number:       number,
			SequenceNo:   seqNo,
			CustomerID:   quote.CustomerID,
			CustomerName: quote.CustomerName,
			Status:       invoicedomain.StatusDraft,
			Subtotal:     quote.Subtotal,
			TaxRate:      quote.TaxRate,
			TaxApplied:   true,
			TaxAmount:    quote.TaxAmount,
			TotalAmount:  quote.TotalAmount,
			InvoiceDate:  now,
			DueDate:      now.AddDate(0, 0, dueDays),
			Notes:        notes,
			Metadata:     datatypes.JSONMap{"source_quote_number": quote.Number},
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.invoiceRepo.Insert(ctx, tx, &invoice); err != nil {
			return err
		}

		items := make([]invoicedomain.InvoiceItem, 0, len(quote.Items))
		for _, item := range quote.Items {
			items = append(items, invoicedomain.InvoiceItem{
				ID:          s.genID.Generate(),
				InvoiceID:   invoice.ID,
				Position:    item.Position,
				Kind:        item.Kind,
				Description: item.Description,
				Unit:        item.Unit,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				Total:       item.Total,
				CreatedAt:   now,
			})
		}
		if err := s.invoiceRepo.InsertItems(ctx, tx, items); err != nil {
			return err
		}
		invoice.Items = items

		converted, err := s.repo.MarkConverted(ctx, tx, quote.ID, invoice.ID, now)
		if err != nil {
			return err
		}
		if !converted {
			return quotedomain.ErrAlreadyConverted
		}
		return nil
	})
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	s.log.Info("quote converted",
		zap.String("invoice_number", invoice.Number),
		zap.String("quote_id", quoteID.String()),
	)

	if s.queue != nil {
		s.queue.EnqueueInvoice(invoice.ID)
	}

	return invoice, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	quoteID, err := parseID(id)
	if err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, s.db, quoteID)
	if err != nil {
		return err
	}
	if !deleted {
		return quotedomain.ErrNotFound
	}
	return nil
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, quotedomain.ErrInvalidID
	}
	return id, nil
}

func parseDate(raw string, def time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, quotedomain.ErrInvalidDate
}
