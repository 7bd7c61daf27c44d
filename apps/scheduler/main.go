package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/faktura/internal/clock"
	"github.com/smallbiznis/faktura/internal/company"
	"github.com/smallbiznis/faktura/internal/config"
	"github.com/smallbiznis/faktura/internal/customer"
	"github.com/smallbiznis/faktura/internal/invoice"
	"github.com/smallbiznis/faktura/internal/migration"
	"github.com/smallbiznis/faktura/internal/notification"
	"github.com/smallbiznis/faktura/internal/observability"
	"github.com/smallbiznis/faktura/internal/providers"
	"github.com/smallbiznis/faktura/internal/scheduler"
	"github.com/smallbiznis/faktura/internal/sequence"
	"github.com/smallbiznis/faktura/internal/todo"
	"github.com/smallbiznis/faktura/pkg/db"
	"go.uber.org/fx"
)

// Sweeper-only deployment: runs the reminder sweep and the dispatch workers
// without the HTTP API.
func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		sequence.Module,

		// Domain services required by the dispatcher
		providers.Module,
		notification.Module,
		customer.Module,
		company.Module,
		invoice.Module,
		todo.Module,

		scheduler.Module,
		migration.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
