package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/faktura/internal/billing/calc"
	"github.com/smallbiznis/faktura/internal/config"
	customerdomain "github.com/smallbiznis/faktura/internal/customer/domain"
	customerrepo "github.com/smallbiznis/faktura/internal/customer/repository"
	customerservice "github.com/smallbiznis/faktura/internal/customer/service"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	"github.com/smallbiznis/faktura/internal/invoice/repository"
	"github.com/smallbiznis/faktura/internal/sequence"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db          *gorm.DB
	invoiceSvc  invoicedomain.Service
	customerSvc customerdomain.Service
}

func setup(t *testing.T, name string) testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&customerdomain.Customer{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&sequence.Counter{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, _ := snowflake.NewNode(1)
	log := zap.NewNop()
	cfg := config.Config{DefaultTaxRate: 19}

	customerSvc := customerservice.New(customerservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Repo:  customerrepo.Provide(),
	})
	invoiceSvc := New(Params{
		DB:          db,
		Log:         log,
		GenID:       node,
		Config:      cfg,
		Repo:        repository.Provide(),
		CustomerSvc: customerSvc,
		Sequences:   sequence.New(sequence.Params{Log: log}),
	})

	return testEnv{db: db, invoiceSvc: invoiceSvc, customerSvc: customerSvc}
}

func (e testEnv) createCustomer(t *testing.T) customerdomain.Customer {
	t.Helper()
	customer, err := e.customerSvc.Create(context.Background(), customerdomain.CreateCustomerRequest{
		Name:  "Musterfirma GmbH",
		Email: "buchhaltung@musterfirma.de",
		City:  "Berlin",
	})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	return customer
}

func TestCreateInvoice(t *testing.T) {
	env := setup(t, "invoice_create")
	ctx := context.Background()
	customer := env.createCustomer(t)

	invoice, err := env.invoiceSvc.Create(ctx, invoicedomain.CreateInvoiceRequest{
		CustomerID:  customer.ID.String(),
		InvoiceDate: "2026-09-01",
		Items: []calc.ItemInput{
			{Kind: "service", Description: "Beratung", Unit: "h", Quantity: 10, UnitPrice: 85},
			{Kind: "product", Description: "Versand", Quantity: 1, UnitPrice: 15},
		},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	if invoice.Number != "INV-0001" {
		t.Fatalf("number = %s", invoice.Number)
	}
	if invoice.Status != invoicedomain.StatusDraft {
		t.Fatalf("status = %s", invoice.Status)
	}
	if invoice.Subtotal != 865.00 || invoice.TaxAmount != 164.35 || invoice.TotalAmount != 1029.35 {
		t.Fatalf("totals = %.2f / %.2f / %.2f", invoice.Subtotal, invoice.TaxAmount, invoice.TotalAmount)
	}
	if invoice.CustomerName != customer.Name {
		t.Fatalf("customer snapshot = %q", invoice.CustomerName)
	}
	if len(invoice.Items) != 2 || invoice.Items[0].Position != 1 || invoice.Items[1].Position != 2 {
		t.Fatalf("items = %+v", invoice.Items)
	}

	// Payment term defaults to 30 days after the invoice date.
	wantDue := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	if !invoice.DueDate.Equal(wantDue) {
		t.Fatalf("due date = %s, want %s", invoice.DueDate, wantDue)
	}

	second, err := env.invoiceSvc.Create(ctx, invoicedomain.CreateInvoiceRequest{
		CustomerID: customer.ID.String(),
		Items:      []calc.ItemInput{{Kind: "service", Description: "Wartung", Quantity: 1, UnitPrice: 100}},
	})
	if err != nil {
		t.Fatalf("create second invoice: %v", err)
	}
	if second.Number != "INV-0002" {
		t.Fatalf("second number = %s", second.Number)
	}
}

func TestCreateInvoiceWithoutTax(t *testing.T) {
	env := setup(t, "invoice_no_tax")
	customer := env.createCustomer(t)

	applyTax := false
	invoice, err := env.invoiceSvc.Create(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID: customer.ID.String(),
		ApplyTax:   &applyTax,
		Items:      []calc.ItemInput{{Kind: "service", Description: "Kleinunternehmer", Quantity: 1, UnitPrice: 200}},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	if invoice.TaxApplied || invoice.TaxAmount != 0 || invoice.TotalAmount != 200.00 {
		t.Fatalf("tax applied = %v, amounts = %.2f / %.2f", invoice.TaxApplied, invoice.TaxAmount, invoice.TotalAmount)
	}
}

func TestCreateInvoiceRejectsUnknownCustomer(t *testing.T) {
	env := setup(t, "invoice_unknown_customer")

	node, _ := snowflake.NewNode(2)
	_, err := env.invoiceSvc.Create(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID: node.Generate().String(),
		Items:      []calc.ItemInput{{Kind: "service", Description: "x", Quantity: 1, UnitPrice: 1}},
	})
	if err != customerdomain.ErrNotFound {
		t.Fatalf("err = %v, want customer not found", err)
	}
}

func TestUpdateInvoiceStatus(t *testing.T) {
	env := setup(t, "invoice_status")
	ctx := context.Background()
	customer := env.createCustomer(t)

	invoice, err := env.invoiceSvc.Create(ctx, invoicedomain.CreateInvoiceRequest{
		CustomerID: customer.ID.String(),
		Items:      []calc.ItemInput{{Kind: "service", Description: "x", Quantity: 1, UnitPrice: 100}},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	id := invoice.ID.String()

	updated, err := env.invoiceSvc.UpdateStatus(ctx, id, "sent")
	if err != nil || updated.Status != invoicedomain.StatusSent {
		t.Fatalf("draft -> sent: %v (%s)", err, updated.Status)
	}

	updated, err = env.invoiceSvc.UpdateStatus(ctx, id, "paid")
	if err != nil || updated.Status != invoicedomain.StatusPaid {
		t.Fatalf("sent -> paid: %v (%s)", err, updated.Status)
	}

	if _, err := env.invoiceSvc.UpdateStatus(ctx, id, "draft"); err == nil {
		t.Fatal("paid -> draft must fail")
	}
	if _, err := env.invoiceSvc.UpdateStatus(ctx, id, "archived"); err != invoicedomain.ErrUnknownStatus {
		t.Fatalf("unknown status err = %v", err)
	}
}

func TestMarkSentGuard(t *testing.T) {
	env := setup(t, "invoice_mark_sent")
	ctx := context.Background()
	customer := env.createCustomer(t)

	invoice, err := env.invoiceSvc.Create(ctx, invoicedomain.CreateInvoiceRequest{
		CustomerID: customer.ID.String(),
		Items:      []calc.ItemInput{{Kind: "service", Description: "x", Quantity: 1, UnitPrice: 100}},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	id := invoice.ID.String()
	at := time.Now().UTC()

	marked, err := env.invoiceSvc.MarkSent(ctx, id, at)
	if err != nil || !marked {
		t.Fatalf("first MarkSent = %v, %v", marked, err)
	}

	reloaded, err := env.invoiceSvc.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if reloaded.Status != invoicedomain.StatusSent || reloaded.EmailSentAt == nil {
		t.Fatalf("after MarkSent: status = %s, email_sent_at = %v", reloaded.Status, reloaded.EmailSentAt)
	}

	marked, err = env.invoiceSvc.MarkSent(ctx, id, at.Add(time.Minute))
	if err != nil {
		t.Fatalf("second MarkSent: %v", err)
	}
	if marked {
		t.Fatal("second MarkSent must report false")
	}
}

func TestDeleteInvoice(t *testing.T) {
	env := setup(t, "invoice_delete")
	ctx := context.Background()
	customer := env.createCustomer(t)

	invoice, err := env.invoiceSvc.Create(ctx, invoicedomain.CreateInvoiceRequest{
		CustomerID: customer.ID.String(),
		Items:      []calc.ItemInput{{Kind: "service", Description: "x", Quantity: 1, UnitPrice: 100}},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	if err := env.invoiceSvc.Delete(ctx, invoice.ID.String()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := env.invoiceSvc.GetByID(ctx, invoice.ID.String()); err != invoicedomain.ErrNotFound {
		t.Fatalf("get after delete err = %v", err)
	}

	var itemCount int64
	env.db.Model(&invoicedomain.InvoiceItem{}).Count(&itemCount)
	if itemCount != 0 {
		t.Fatalf("items left behind: %d", itemCount)
	}

	// The deleted number is never reissued.
	next, err := env.invoiceSvc.Create(ctx, invoicedomain.CreateInvoiceRequest{
		CustomerID: customer.ID.String(),
		Items:      []calc.ItemInput{{Kind: "service", Description: "x", Quantity: 1, UnitPrice: 100}},
	})
	if err != nil {
		t.Fatalf("create after delete: %v", err)
	}
	if next.Number != "INV-0002" {
		t.Fatalf("number after delete = %s, want INV-0002", next.Number)
	}
}
