// Package dashboard computes the read-only rollups behind the start page:
// top customers by revenue, revenue per month and the headline counters.
// Revenue only counts paid invoices.
package dashboard

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/faktura/internal/billing/money"
	"github.com/smallbiznis/faktura/internal/clock"
	customerdomain "github.com/smallbiznis/faktura/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const topCustomerLimit = 5

var monthLabels = [12]string{"Jan", "Feb", "Mär", "Apr", "Mai", "Jun", "Jul", "Aug", "Sep", "Okt", "Nov", "Dez"}

type TopCustomer struct {
	CustomerID   snowflake.ID `json:"customer_id"`
	Name         string       `json:"name"`
	City         string       `json:"city,omitempty"`
	PostalCode   string       `json:"postal_code,omitempty"`
	InvoiceCount int64        `json:"invoice_count"`
	Revenue      float64      `json:"revenue"`
}

type MonthRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

type Stats struct {
	TotalCustomers  int64   `json:"total_customers"`
	TotalInvoices   int64   `json:"total_invoices"`
	TotalRevenue    float64 `json:"total_revenue"`
	PendingInvoices int64   `json:"pending_invoices"`
}

type Service interface {
	TopCustomers(context.Context) ([]TopCustomer, error)
	// MonthlyRevenue returns 12 buckets for the given year; a zero year
	// means the current one.
	MonthlyRevenue(ctx context.Context, year int) ([]MonthRevenue, error)
	Stats(context.Context) (Stats, error)
}

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Clock        clock.Clock
	CustomerRepo customerdomain.Repository
}

type service struct {
	db           *gorm.DB
	log          *zap.Logger
	clock        clock.Clock
	customerRepo customerdomain.Repository
}

func New(p Params) Service {
	return &service{
		db:           p.DB,
		log:          p.Log.Named("dashboard.service"),
		clock:        p.Clock,
		customerRepo: p.CustomerRepo,
	}
}

func (s *service) TopCustomers(ctx context.Context) ([]TopCustomer, error) {
	var rows []TopCustomer
	err := s.db.WithContext(ctx).Raw(`
		SELECT customer_id,
		       customer_name AS name,
		       COUNT(*) AS invoice_count,
		       SUM(total_amount) AS revenue
		FROM invoices
		WHERE status = ?
		GROUP BY customer_id, customer_name
		ORDER BY revenue DESC
		LIMIT ?`,
		invoicedomain.StatusPaid, topCustomerLimit,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	// City and postal code come from the live customer record; deleted
	// customers keep their snapshot name and empty address fields.
	for i := range rows {
		customer, err := s.customerRepo.FindByID(ctx, s.db, rows[i].CustomerID)
		if err != nil {
			return nil, err
		}
		if customer != nil {
			rows[i].City = customer.City
			rows[i].PostalCode = customer.PostalCode
		}
		rows[i].Revenue = money.Round(rows[i].Revenue)
	}
	return rows, nil
}

func (s *service) MonthlyRevenue(ctx context.Context, year int) ([]MonthRevenue, error) {
	if year <= 0 {
		year = s.clock.Now().UTC().Year()
	}

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	var invoices []invoicedomain.Invoice
	err := s.db.WithContext(ctx).
		Select("invoice_date", "total_amount").
		Where("status = ? AND invoice_date >= ? AND invoice_date < ?", invoicedomain.StatusPaid, from, to).
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}

	// Bucketing happens here rather than in SQL so the query stays
	// identical across the supported dialects.
	var totals [12]float64
	for _, invoice := range invoices {
		totals[invoice.InvoiceDate.UTC().Month()-1] += invoice.TotalAmount
	}

	result := make([]MonthRevenue, 0, 12)
	for i, label := range monthLabels {
		result = append(result, MonthRevenue{
			Month:   label,
			Revenue: money.Round(totals[i]),
		})
	}
	return result, nil
}

func (s *service) Stats(ctx context.Context) (Stats, error) {
	var stats Stats

	if err := s.db.WithContext(ctx).Model(&customerdomain.Customer{}).Count(&stats.TotalCustomers).Error; err != nil {
		return Stats{}, err
	}
	if err := s.db.WithContext(ctx).Model(&invoicedomain.Invoice{}).Count(&stats.TotalInvoices).Error; err != nil {
		return Stats{}, err
	}

	var revenue *float64
	if err := s.db.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Select("SUM(total_amount)").
		Where("status = ?", invoicedomain.StatusPaid).
		Scan(&revenue).Error; err != nil {
		return Stats{}, err
	}
	if revenue != nil {
		stats.TotalRevenue = money.Round(*revenue)
	}

	if err := s.db.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Where("status <> ?", invoicedomain.StatusPaid).
		Count(&stats.PendingInvoices).Error; err != nil {
		return Stats{}, err
	}

	return stats, nil
}
