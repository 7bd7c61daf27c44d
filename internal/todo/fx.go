package todo

import (
	"github.com/smallbiznis/faktura/internal/todo/repository"
	"github.com/smallbiznis/faktura/internal/todo/service"
	"go.uber.org/fx"
)

var Module = fx.Module("todo.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
