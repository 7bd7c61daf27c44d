package email

import (
	"github.com/smallbiznis/faktura/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewFromConfig returns the SMTP provider when credentials are present and
// the NoOp provider otherwise.
func NewFromConfig(cfg config.Config, log *zap.Logger) Provider {
	if cfg.SMTP.Configured() {
		return NewSMTP(cfg.SMTP, log)
	}
	log.Warn("smtp not configured, outbound email disabled")
	return NoOp{}
}

var Module = fx.Module("providers.email",
	fx.Provide(NewFromConfig),
)
