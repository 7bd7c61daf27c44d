package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/faktura/internal/billing/calc"
	"github.com/smallbiznis/faktura/internal/config"
	customerdomain "github.com/smallbiznis/faktura/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	"github.com/smallbiznis/faktura/internal/notification"
	"github.com/smallbiznis/faktura/internal/sequence"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Config      config.Config
	Repo        invoicedomain.Repository
	CustomerSvc customerdomain.Service
	Sequences   *sequence.Allocator
	Queue       *notification.Queue `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	cfg         config.Config
	repo        invoicedomain.Repository
	customerSvc customerdomain.Service
	sequences   *sequence.Allocator
	queue       *notification.Queue
}

func New(p Params) invoicedomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("invoice.service"),
		genID:       p.GenID,
		cfg:         p.Config,
		repo:        p.Repo,
		customerSvc: p.CustomerSvc,
		sequences:   p.Sequences,
		queue:       p.Queue,
	}
}

func (s *Service) Create(ctx context.Context, req invoicedomain.CreateInvoiceRequest) (invoicedomain.Invoice, error) {
	customer, err := s.customerSvc.GetByID(ctx, req.CustomerID)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	tax := calc.TaxPolicy{RatePercent: s.cfg.DefaultTaxRate, Enabled: true}
	if req.TaxRate != nil {
		tax.RatePercent = *req.TaxRate
	}
	if req.ApplyTax != nil {
		tax.Enabled = *req.ApplyTax
	}

	lines, totals, err := calc.Build(req.Items, tax)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	now := time.Now().UTC()
	invoiceDate, err := parseDate(req.InvoiceDate, now)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	dueDate, err := parseDate(req.DueDate, invoiceDate.AddDate(0, 0, 30))
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	invoice := invoicedomain.Invoice{
		ID:           s.genID.Generate(),
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		Status:       invoicedomain.StatusDraft,
		Subtotal:     totals.Subtotal,
		TaxRate:      totals.TaxRate,
		TaxApplied:   totals.TaxApplied,
		TaxAmount:    totals.TaxAmount,
		TotalAmount:  totals.TotalAmount,
		InvoiceDate:  invoiceDate,
		DueDate:      dueDate,
		Notes:        strings.TrimSpace(req.Notes),
		Metadata:     datatypes.JSONMap{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, seqNo, err := s.sequences.Next(ctx, tx, sequence.KindInvoice)
		if err != nil {
			return err
		}
		invoice.Number = number
		invoice.SequenceNo = seqNo

		if err := s.repo.Insert(ctx, tx, &invoice); err != nil {
			return err
		}

		items := buildItems(s.genID, invoice.ID, lines, now)
		if err := s.repo.InsertItems(ctx, tx, items); err != nil {
			return err
		}
		invoice.Items = items
		return nil
	})
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	// Delivery runs off the request path; a full queue is logged by the
	// queue itself and never fails the create.
	if s.queue != nil {
		s.queue.EnqueueInvoice(invoice.ID)
	}

	return invoice, nil
}

func (s *Service) List(ctx context.Context) ([]invoicedomain.Invoice, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	invoices := make([]invoicedomain.Invoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}
	return invoices, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (invoicedomain.Invoice, error) {
	invoiceID, err := parseID(id)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, invoiceID)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if item == nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status string) (invoicedomain.Invoice, error) {
	target := invoicedomain.Status(strings.TrimSpace(strings.ToLower(status)))
	if !invoicedomain.Lifecycle.Known(target) {
		return invoicedomain.Invoice{}, invoicedomain.ErrUnknownStatus
	}

	invoice, err := s.GetByID(ctx, id)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	if err := invoicedomain.Lifecycle.Transition(invoice.Status, target); err != nil {
		return invoicedomain.Invoice{}, err
	}

	now := time.Now().UTC()
	if err := s.repo.SetStatus(ctx, s.db, invoice.ID, target, now); err != nil {
		return invoicedomain.Invoice{}, err
	}
	invoice.Status = target
	invoice.UpdatedAt = now

	s.log.Info("invoice status updated",
		zap.String("invoice_number", invoice.Number),
		zap.String("status", string(target)),
	)
	return invoice, nil
}

func (s *Service) MarkSent(ctx context.Context, id string, at time.Time) (bool, error) {
	invoiceID, err := parseID(id)
	if err != nil {
		return false, err
	}
	return s.repo.MarkSent(ctx, s.db, invoiceID, at.UTC())
}

func (s *Service) Delete(ctx context.Context, id string) error {
	invoiceID, err := parseID(id)
	if err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, s.db, invoiceID)
	if err != nil {
		return err
	}
	if !deleted {
		return invoicedomain.ErrNotFound
	}
	return nil
}

func buildItems(genID *snowflake.Node, invoiceID snowflake.ID, lines []calc.Line, now time.Time) []invoicedomain.InvoiceItem {
	items := make([]invoicedomain.InvoiceItem, 0, len(lines))
	for i, line := range lines {
		items = append(items, invoicedomain.InvoiceItem{
			ID:          genID.Generate(),
			InvoiceID:   invoiceID,
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
	return items
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, invoicedomain.ErrInvalidID
	}
	return id, nil
}

// parseDate accepts 2006-01-02 or RFC 3339; an empty value falls back to def.
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
	return time.Time{}, invoicedomain.ErrInvalidDate
}
