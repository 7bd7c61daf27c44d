// Package server exposes the HTTP API. Handlers bind requests, call the
// domain services and push errors onto the gin context; the error middleware
// owns the status mapping.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/faktura/internal/company"
	companydomain "github.com/smallbiznis/faktura/internal/company/domain"
	"github.com/smallbiznis/faktura/internal/config"
	"github.com/smallbiznis/faktura/internal/customer"
	customerdomain "github.com/smallbiznis/faktura/internal/customer/domain"
	"github.com/smallbiznis/faktura/internal/dashboard"
	"github.com/smallbiznis/faktura/internal/invoice"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	"github.com/smallbiznis/faktura/internal/notification"
	"github.com/smallbiznis/faktura/internal/providers"
	"github.com/smallbiznis/faktura/internal/providers/pdf"
	"github.com/smallbiznis/faktura/internal/quote"
	quotedomain "github.com/smallbiznis/faktura/internal/quote/domain"
	"github.com/smallbiznis/faktura/internal/scheduler"
	"github.com/smallbiznis/faktura/internal/todo"
	tododomain "github.com/smallbiznis/faktura/internal/todo/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	providers.Module,
	notification.Module,
	customer.Module,
	company.Module,
	invoice.Module,
	quote.Module,
	todo.Module,
	dashboard.Module,
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log.Named("http")))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			log.Info("http server started", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	log          *zap.Logger
	customerSvc  customerdomain.Service
	companySvc   companydomain.Service
	invoiceSvc   invoicedomain.Service
	quoteSvc     quotedomain.Service
	todoSvc      tododomain.Service
	dashboardSvc dashboard.Service
	queue        *notification.Queue
	pdf          pdf.Provider

	sched *scheduler.Scheduler
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Log          *zap.Logger
	CustomerSvc  customerdomain.Service
	CompanySvc   companydomain.Service
	InvoiceSvc   invoicedomain.Service
	QuoteSvc     quotedomain.Service
	TodoSvc      tododomain.Service
	DashboardSvc dashboard.Service
	Queue        *notification.Queue
	PDF          pdf.Provider
	Sched        *scheduler.Scheduler `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		log:          p.Log.Named("server"),
		customerSvc:  p.CustomerSvc,
		companySvc:   p.CompanySvc,
		invoiceSvc:   p.InvoiceSvc,
		quoteSvc:     p.QuoteSvc,
		todoSvc:      p.TodoSvc,
		dashboardSvc: p.DashboardSvc,
		queue:        p.Queue,
		pdf:          p.PDF,
		sched:        p.Sched,
	}
	s.RegisterAPIRoutes()
	return s
}

func (s *Server) RegisterAPIRoutes() {
	api := s.engine.Group("/api")

	customers := api.Group("/customers")
	customers.POST("", s.CreateCustomer)
	customers.GET("", s.ListCustomers)
	customers.GET("/:id", s.GetCustomerByID)
	customers.PUT("/:id", s.UpdateCustomer)
	customers.DELETE("/:id", s.DeleteCustomer)

	api.GET("/company", s.GetCompanyProfile)
	api.POST("/company", s.UpsertCompanyProfile)

	invoices := api.Group("/invoices")
	invoices.POST("", s.CreateInvoice)
	invoices.GET("", s.ListInvoices)
	invoices.GET("/:id", s.GetInvoiceByID)
	invoices.GET("/:id/pdf", s.DownloadInvoicePDF)
	invoices.PUT("/:id/status", s.UpdateInvoiceStatus)
	invoices.POST("/:id/send", s.SendInvoice)
	invoices.DELETE("/:id", s.DeleteInvoice)

	quotes := api.Group("/quotes")
	quotes.POST("", s.CreateQuote)
	quotes.GET("", s.ListQuotes)
	quotes.GET("/:id", s.GetQuoteByID)
	quotes.PUT("/:id/status", s.UpdateQuoteStatus)
	quotes.POST("/:id/convert", s.ConvertQuote)
	quotes.DELETE("/:id", s.DeleteQuote)

	todos := api.Group("/todos")
	todos.POST("", s.CreateTodo)
	todos.GET("", s.ListTodos)
	todos.POST("/sweep", s.SweepTodos)
	todos.GET("/:id", s.GetTodoByID)
	todos.PUT("/:id", s.UpdateTodo)
	todos.PUT("/:id/status", s.UpdateTodoStatus)
	todos.DELETE("/:id", s.DeleteTodo)

	dashboardGroup := api.Group("/dashboard")
	dashboardGroup.GET("/top-customers", s.DashboardTopCustomers)
	dashboardGroup.GET("/monthly-revenue", s.DashboardMonthlyRevenue)
	dashboardGroup.GET("/stats", s.DashboardStats)
}
