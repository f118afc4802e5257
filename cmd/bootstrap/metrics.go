package bootstrap

import (
	"github.com/Thegreatsura/merchant/internal/pkg/metrics"

	"go.uber.org/fx"
)

var MetricsModule = fx.Module("metrics",
	fx.Provide(
		metrics.NewDefault,
	),
)
