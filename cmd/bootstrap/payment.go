package bootstrap

import (
	"github.com/Thegreatsura/merchant/internal/infra/payment"
	"github.com/Thegreatsura/merchant/internal/pkg/config"
	"github.com/Thegreatsura/merchant/internal/usecase/shared"

	"go.uber.org/fx"
)

var PaymentModule = fx.Module("payment",
	fx.Provide(
		fx.Annotate(
			func(cfg config.Config) *payment.StripeGateway {
				return payment.NewStripeGateway(cfg.Stripe)
			},
			fx.As(new(shared.PaymentGateway)),
		),
	),
)
