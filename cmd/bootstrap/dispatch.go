package bootstrap

import (
	"context"
	"log/slog"

	"github.com/Thegreatsura/merchant/internal/infra/dispatch"
	"github.com/Thegreatsura/merchant/internal/pkg/clock"
	"github.com/Thegreatsura/merchant/internal/pkg/config"
	"github.com/Thegreatsura/merchant/internal/usecase/shared"

	"go.uber.org/fx"
)

var DispatchModule = fx.Module("dispatch",
	fx.Provide(
		fx.Annotate(
			func(cfg config.Config) *dispatch.HTTPDispatcher {
				return dispatch.NewHTTPDispatcher(cfg.Dispatch)
			},
			fx.As(new(shared.Dispatcher)),
		),
		fx.Annotate(
			NewEventStream,
			fx.As(new(shared.EventStream)),
		),
	),
)

func NewEventStream(lc fx.Lifecycle, cfg config.Config, clk clock.Clock) *dispatch.KafkaStream {
	stream := dispatch.NewKafkaStream(cfg.Kafka, clk)
	if !stream.Enabled() {
		slog.Info("kafka brokers not configured, order stream disabled")
		return stream
	}
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return stream.Close()
		},
	})
	return stream
}
