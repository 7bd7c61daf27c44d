package notification

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/smallbiznis/faktura/internal/billing/money"
	"github.com/smallbiznis/faktura/internal/clock"
	companydomain "github.com/smallbiznis/faktura/internal/company/domain"
	"github.com/smallbiznis/faktura/internal/config"
	customerdomain "github.com/smallbiznis/faktura/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	"github.com/smallbiznis/faktura/internal/observability/metrics"
	"github.com/smallbiznis/faktura/internal/providers/email"
	"github.com/smallbiznis/faktura/internal/providers/pdf"
	tododomain "github.com/smallbiznis/faktura/internal/todo/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Dispatch outcomes recorded per attempt. A config_missing outcome leaves
// the document untouched so it can be re-sent once SMTP is set up.
const (
	OutcomeSent          = "sent"
	OutcomeFailed        = "failed"
	OutcomeSkipped       = "skipped"
	OutcomeConfigMissing = "config_missing"
)

const dateLayout = "02.01.2006"

type DispatcherParams struct {
	fx.In

	Log         *zap.Logger
	Config      config.Config
	Clock       clock.Clock
	InvoiceSvc  invoicedomain.Service
	CustomerSvc customerdomain.Service
	CompanySvc  companydomain.Service
	TodoSvc     tododomain.Service
	Email       email.Provider
	PDF         pdf.Provider
	Stats       *metrics.Metrics `optional:"true"`
}

// Dispatcher consumes queue jobs and turns them into rendered, delivered
// emails. It is safe to run from several goroutines over one queue.
type Dispatcher struct {
	log         *zap.Logger
	cfg         config.Config
	clock       clock.Clock
	invoiceSvc  invoicedomain.Service
	customerSvc customerdomain.Service
	companySvc  companydomain.Service
	todoSvc     tododomain.Service
	email       email.Provider
	pdf         pdf.Provider
	stats       *metrics.Metrics
}

func NewDispatcher(p DispatcherParams) *Dispatcher {
	return &Dispatcher{
		log:         p.Log.Named("notification.dispatcher"),
		cfg:         p.Config,
		clock:       p.Clock,
		invoiceSvc:  p.InvoiceSvc,
		customerSvc: p.CustomerSvc,
		companySvc:  p.CompanySvc,
		todoSvc:     p.TodoSvc,
		email:       p.Email,
		pdf:         p.PDF,
		stats:       p.Stats,
	}
}

// Run consumes jobs until the context is cancelled or the queue closes.
func (d *Dispatcher) Run(ctx context.Context, queue *Queue) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-queue.Jobs():
			if !ok {
				return
			}
			d.Dispatch(ctx, job)
		}
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, job Job) string {
	var outcome string
	var err error

	switch job.Kind {
	case KindInvoice:
		outcome, err = d.DispatchInvoice(ctx, job.TargetID.String())
	case KindReminder:
		outcome, err = d.DispatchReminder(ctx, job.TargetID.String())
	default:
		outcome = OutcomeSkipped
		err = fmt.Errorf("unknown job kind %q", job.Kind)
	}

	d.stats.IncDispatch(string(job.Kind), outcome)
	fields := []zap.Field{
		zap.String("job_id", job.ID.String()),
		zap.String("kind", string(job.Kind)),
		zap.String("target_id", job.TargetID.String()),
		zap.String("outcome", outcome),
	}
	if err != nil {
		d.stats.IncDeadLetter(outcome)
		d.log.Error("dispatch failed", append(fields, zap.Error(err))...)
	} else {
		d.log.Info("dispatch finished", fields...)
	}
	return outcome
}

// DispatchInvoice emails a draft invoice with its PDF attached and marks it
// sent. Non-draft invoices are skipped; missing SMTP configuration leaves
// the invoice draft so the send can be repeated later.
func (d *Dispatcher) DispatchInvoice(ctx context.Context, id string) (string, error) {
	invoice, err := d.invoiceSvc.GetByID(ctx, id)
	if err != nil {
		return OutcomeFailed, err
	}
	if invoice.Status != invoicedomain.StatusDraft {
		return OutcomeSkipped, nil
	}

	if !d.email.Configured() {
		return OutcomeConfigMissing, fmt.Errorf("smtp not configured, invoice %s stays draft", invoice.Number)
	}

	customer, err := d.customerSvc.GetByID(ctx, invoice.CustomerID.String())
	if err != nil {
		return OutcomeFailed, fmt.Errorf("customer lookup for invoice %s: %w", invoice.Number, err)
	}

	company := d.companySvc.Resolve(ctx)

	attachment, err := d.pdf.Render(ctx, BuildInvoiceDocument(invoice, customer, company))
	if err != nil {
		return OutcomeFailed, fmt.Errorf("render invoice %s: %w", invoice.Number, err)
	}

	textBody, htmlBody, err := renderInvoiceMail(invoiceMail{
		CompanyName: company.CompanyName,
		Number:      invoice.Number,
		Total:       money.Format(invoice.TotalAmount),
		DueDate:     invoice.DueDate.Format(dateLayout),
	})
	if err != nil {
		return OutcomeFailed, err
	}

	msg := email.Message{
		To:       customer.Email,
		Subject:  fmt.Sprintf("Rechnung %s", invoice.Number),
		TextBody: textBody,
		HTMLBody: htmlBody,
		Attachments: []email.Attachment{{
			Filename:    fmt.Sprintf("%s.pdf", invoice.Number),
			ContentType: "application/pdf",
			Data:        attachment,
		}},
	}
	if err := d.email.Send(ctx, msg); err != nil {
		return OutcomeFailed, err
	}

	marked, err := d.invoiceSvc.MarkSent(ctx, id, d.clock.Now().UTC())
	if err != nil {
		return OutcomeFailed, err
	}
	if !marked {
		// Lost the race with another worker; the email went out twice but
		// the state is consistent.
		d.log.Warn("invoice already marked sent", zap.String("invoice_number", invoice.Number))
	}
	return OutcomeSent, nil
}

// DispatchReminder emails a due task notification. The reminder_sent guard
// in the todo service keeps overlapping sweeps from double-sending.
func (d *Dispatcher) DispatchReminder(ctx context.Context, id string) (string, error) {
	task, err := d.todoSvc.GetByID(ctx, id)
	if err != nil {
		return OutcomeFailed, err
	}
	if task.Status != tododomain.StatusPending || task.ReminderSent {
		return OutcomeSkipped, nil
	}

	if !d.email.Configured() {
		return OutcomeConfigMissing, fmt.Errorf("smtp not configured, reminder for task %s not sent", task.ID)
	}

	to := d.cfg.OpsEmail
	if task.CustomerID != nil {
		customer, err := d.customerSvc.GetByID(ctx, task.CustomerID.String())
		if err == nil && customer.Email != "" {
			to = customer.Email
		}
	}

	company := d.companySvc.Resolve(ctx)
	textBody, err := renderReminderMail(reminderMail{
		CompanyName:  company.CompanyName,
		Title:        task.Title,
		Description:  task.Description,
		CustomerName: task.CustomerName,
		DueDate:      task.DueDate,
		DueTime:      task.DueTime,
	})
	if err != nil {
		return OutcomeFailed, err
	}

	msg := email.Message{
		To:       to,
		Subject:  fmt.Sprintf("Erinnerung: %s", task.Title),
		TextBody: textBody,
	}
	if err := d.email.Send(ctx, msg); err != nil {
		return OutcomeFailed, err
	}

	marked, err := d.todoSvc.MarkReminderSent(ctx, task.ID, d.clock.Now().UTC())
	if err != nil {
		return OutcomeFailed, err
	}
	if !marked {
		return OutcomeSkipped, nil
	}
	return OutcomeSent, nil
}

// BuildInvoiceDocument maps an invoice with its customer and company data
// onto the renderer input. The download endpoint shares it with dispatch so
// the attachment and the on-demand PDF are identical.
func BuildInvoiceDocument(invoice invoicedomain.Invoice, customer customerdomain.Customer, company companydomain.Profile) pdf.Document {
	items := make([]pdf.Line, 0, len(invoice.Items))
	for _, item := range invoice.Items {
		qty := strconv.FormatFloat(item.Quantity, 'f', -1, 64)
		if item.Unit != "" {
			qty += " " + item.Unit
		}
		items = append(items, pdf.Line{
			Position:    item.Position,
			Description: item.Description,
			Quantity:    qty,
			UnitPrice:   money.Format(item.UnitPrice),
			Total:       money.Format(item.Total),
		})
	}

	var footer []string
	if company.BankName != "" {
		footer = append(footer, fmt.Sprintf("Bankverbindung: %s", company.BankName))
	}
	if company.IBAN != "" {
		line := fmt.Sprintf("IBAN: %s", company.IBAN)
		if company.BIC != "" {
			line += fmt.Sprintf("  BIC: %s", company.BIC)
		}
		footer = append(footer, line)
	}
	footer = append(footer, fmt.Sprintf("Bitte geben Sie bei der Zahlung die Rechnungsnummer %s an.", invoice.Number))

	contact := strings.TrimSpace(company.Phone)
	if company.Email != "" {
		if contact != "" {
			contact += "  "
		}
		contact += company.Email
	}

	return pdf.Document{
		CompanyName:     company.CompanyName,
		CompanyAddress:  fmt.Sprintf("%s, %s %s", company.Address, company.PostalCode, company.City),
		CompanyContact:  contact,
		TaxNumber:       company.TaxNumber,
		Title:           "Rechnung",
		Number:          invoice.Number,
		CustomerName:    invoice.CustomerName,
		CustomerAddress: fmt.Sprintf("%s\n%s %s", customer.Address, customer.PostalCode, customer.City),
		DateLabel:       "Rechnungsdatum",
		Date:            invoice.InvoiceDate.Format(dateLayout),
		DueDateLabel:    "Fällig am",
		DueDate:         invoice.DueDate.Format(dateLayout),
		Items:           items,
		Subtotal:        money.Format(invoice.Subtotal),
		TaxLabel:        fmt.Sprintf("USt. %s%%", strconv.FormatFloat(invoice.TaxRate, 'f', -1, 64)),
		TaxAmount:       money.Format(invoice.TaxAmount),
		Total:           money.Format(invoice.TotalAmount),
		TaxApplied:      invoice.TaxApplied,
		Notes:           invoice.Notes,
		BankName:        company.BankName,
		IBAN:            company.IBAN,
		BIC:             company.BIC,
		Footer:          strings.Join(footer, "\n"),
	}
}
