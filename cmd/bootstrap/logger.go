package bootstrap

import (
	"log/slog"

	"github.com/Thegreatsura/merchant/internal/handler/middleware"
	"github.com/Thegreatsura/merchant/internal/pkg/config"

	"go.uber.org/fx"
)

var LoggerModule = fx.Module("logger",
	fx.Provide(
		NewLogger,
	),
	// Built eagerly so the default logger is configured even when nothing injects it.
	fx.Invoke(func(*slog.Logger) {}),
)

// NewLogger also installs the logger as the slog default.
func NewLogger(cfg config.Config) *slog.Logger {
	return middleware.NewLogger(cfg.Log).GetSlogLogger()
}
