package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/faktura/internal/billing/calc"
	"github.com/smallbiznis/faktura/internal/clock"
	companydomain "github.com/smallbiznis/faktura/internal/company/domain"
	companyrepo "github.com/smallbiznis/faktura/internal/company/repository"
	companyservice "github.com/smallbiznis/faktura/internal/company/service"
	"github.com/smallbiznis/faktura/internal/config"
	customerdomain "github.com/smallbiznis/faktura/internal/customer/domain"
	customerrepo "github.com/smallbiznis/faktura/internal/customer/repository"
	customerservice "github.com/smallbiznis/faktura/internal/customer/service"
	"github.com/smallbiznis/faktura/internal/dashboard"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	invoicerepo "github.com/smallbiznis/faktura/internal/invoice/repository"
	invoiceservice "github.com/smallbiznis/faktura/internal/invoice/service"
	"github.com/smallbiznis/faktura/internal/notification"
	"github.com/smallbiznis/faktura/internal/providers/pdf"
	quotedomain "github.com/smallbiznis/faktura/internal/quote/domain"
	quoterepo "github.com/smallbiznis/faktura/internal/quote/repository"
	quoteservice "github.com/smallbiznis/faktura/internal/quote/service"
	"github.com/smallbiznis/faktura/internal/sequence"
	tododomain "github.com/smallbiznis/faktura/internal/todo/domain"
	todorepo "github.com/smallbiznis/faktura/internal/todo/repository"
	todoservice "github.com/smallbiznis/faktura/internal/todo/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stubPDF struct{}

func (stubPDF) Render(ctx context.Context, doc pdf.Document) ([]byte, error) {
	return []byte("%PDF-1.4 " + doc.Number), nil
}

type apiEnv struct {
	engine      *gin.Engine
	customerSvc customerdomain.Service
	invoiceSvc  invoicedomain.Service
}

func setupAPI(t *testing.T, name string) apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&customerdomain.Customer{},
		&companydomain.Profile{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&quotedomain.Quote{},
		&quotedomain.QuoteItem{},
		&tododomain.Task{},
		&sequence.Counter{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, _ := snowflake.NewNode(1)
	log := zap.NewNop()
	cfg := config.Config{DefaultTaxRate: 19, DispatchQueueSize: 8}
	fakeClock := clock.NewFakeClock(time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC))

	customerSvc := customerservice.New(customerservice.Params{
		DB: db, Log: log, GenID: node, Repo: customerrepo.Provide(),
	})
	companySvc := companyservice.New(companyservice.Params{
		DB: db, Log: log, GenID: node, Repo: companyrepo.Provide(),
	})
	sequences := sequence.New(sequence.Params{Log: log})
	invoiceSvc := invoiceservice.New(invoiceservice.Params{
		DB: db, Log: log, GenID: node, Config: cfg,
		Repo:        invoicerepo.Provide(),
		CustomerSvc: customerSvc,
		Sequences:   sequences,
	})
	quoteSvc := quoteservice.New(quoteservice.Params{
		DB: db, Log: log, GenID: node, Config: cfg,
		Repo:        quoterepo.Provide(),
		InvoiceRepo: invoicerepo.Provide(),
		CustomerSvc: customerSvc,
		Sequences:   sequences,
	})
	todoSvc := todoservice.New(todoservice.Params{
		DB: db, Log: log, GenID: node, Clock: fakeClock,
		Repo:        todorepo.Provide(),
		CustomerSvc: customerSvc,
	})
	dashboardSvc := dashboard.New(dashboard.Params{
		DB: db, Log: log, Clock: fakeClock, CustomerRepo: customerrepo.Provide(),
	})
	queue := notification.NewQueue(notification.QueueParams{
		Config: cfg, Log: log, Clock: fakeClock,
	})

	engine := NewEngine(log)
	NewServer(ServerParams{
		Gin:          engine,
		Cfg:          cfg,
		Log:          log,
		CustomerSvc:  customerSvc,
		CompanySvc:   companySvc,
		InvoiceSvc:   invoiceSvc,
		QuoteSvc:     quoteSvc,
		TodoSvc:      todoSvc,
		DashboardSvc: dashboardSvc,
		Queue:        queue,
		PDF:          stubPDF{},
	})

	return apiEnv{engine: engine, customerSvc: customerSvc, invoiceSvc: invoiceSvc}
}

func (e apiEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return resp.Error
}

func TestCustomerRoutes(t *testing.T) {
	env := setupAPI(t, "api_customers")

	rec := env.do(t, http.MethodPost, "/api/customers", gin.H{
		"name":  "Musterfirma GmbH",
		"email": "info@musterfirma.de",
		"city":  "Berlin",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d body = %s", rec.Code, rec.Body.String())
	}

	var created struct {
		Data customerdomain.Customer `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Data.Name != "Musterfirma GmbH" {
		t.Fatalf("name = %q", created.Data.Name)
	}

	rec = env.do(t, http.MethodGet, "/api/customers/"+created.Data.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
}

func TestValidationErrorsMapTo400(t *testing.T) {
	env := setupAPI(t, "api_validation")

	rec := env.do(t, http.MethodPost, "/api/customers", gin.H{"name": "", "email": "x@y.de"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if payload := decodeError(t, rec); payload.Type != "validation_error" {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestUnknownIDsMapTo404(t *testing.T) {
	env := setupAPI(t, "api_not_found")

	rec := env.do(t, http.MethodGet, "/api/invoices/999999999", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if payload := decodeError(t, rec); payload.Type != "not_found" {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestIllegalTransitionMapsTo409(t *testing.T) {
	env := setupAPI(t, "api_conflict")
	ctx := context.Background()

	customer, err := env.customerSvc.Create(ctx, customerdomain.CreateCustomerRequest{
		Name: "Musterfirma GmbH", Email: "info@musterfirma.de",
	})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	invoice, err := env.invoiceSvc.Create(ctx, invoicedomain.CreateInvoiceRequest{
		CustomerID: customer.ID.String(),
		Items:      []calc.ItemInput{{Kind: "service", Description: "Beratung", Quantity: 1, UnitPrice: 100}},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	// Draft invoices cannot jump straight to paid.
	rec := env.do(t, http.MethodPut, "/api/invoices/"+invoice.ID.String()+"/status", gin.H{"status": "paid"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if payload := decodeError(t, rec); payload.Type != "conflict" {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestSendInvoiceQueues(t *testing.T) {
	env := setupAPI(t, "api_send")
	ctx := context.Background()

	customer, err := env.customerSvc.Create(ctx, customerdomain.CreateCustomerRequest{
		Name: "Musterfirma GmbH", Email: "info@musterfirma.de",
	})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	invoice, err := env.invoiceSvc.Create(ctx, invoicedomain.CreateInvoiceRequest{
		CustomerID: customer.ID.String(),
		Items:      []calc.ItemInput{{Kind: "service", Description: "Beratung", Quantity: 1, UnitPrice: 100}},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	rec := env.do(t, http.MethodPost, "/api/invoices/"+invoice.ID.String()+"/send", nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	// Already sent invoices are rejected instead of queued again.
	if _, err := env.invoiceSvc.UpdateStatus(ctx, invoice.ID.String(), "sent"); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	rec = env.do(t, http.MethodPost, "/api/invoices/"+invoice.ID.String()+"/send", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("resend status = %d body = %s", rec.Code, rec.Body.String())
	}
}

func TestSweepWithoutScheduler(t *testing.T) {
	env := setupAPI(t, "api_sweep")

	rec := env.do(t, http.MethodPost, "/api/todos/sweep", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if payload := decodeError(t, rec); payload.Type != "service_unavailable" {
		t.Fatalf("payload = %+v", payload)
	}
}
