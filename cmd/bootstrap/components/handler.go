package components

import (
	"github.com/Thegreatsura/merchant/internal/handler"
	"github.com/Thegreatsura/merchant/internal/handler/api"
	"github.com/Thegreatsura/merchant/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	ValidatorsModule,
	fx.Provide(
		api.NewCartHandler,
		api.NewWebhookHandler,
		api.NewAdminHandler,
		middleware.NewAuthMiddleware,
		func(cart *api.CartHandler, webhook *api.WebhookHandler, admin *api.AdminHandler) handler.Handlers {
			return handler.Handlers{Cart: cart, Webhook: webhook, Admin: admin}
		},
	),
	fx.Invoke(handler.NewRouter),
)
