package components

import (
	"github.com/Thegreatsura/merchant/internal/pkg/clock"
	"github.com/Thegreatsura/merchant/internal/usecase"
	"github.com/Thegreatsura/merchant/internal/usecase/commands"
	"github.com/Thegreatsura/merchant/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewCartCommands,
		commands.NewDeliveryCommands,
		commands.NewWebhookCommands,
		commands.NewSweepCommands,
		commands.NewInventoryCommands,
		commands.NewOrderCommands,
	),
	fx.Invoke(func(lc fx.Lifecycle, webhooks commands.WebhookCommands) {
		lc.Append(fx.Hook{OnStop: webhooks.Drain})
	}),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewCartQueries,
		queries.NewOrderQueries,
		queries.NewInventoryQueries,
	),
)

// ValidatorsModule needs the JWT service and is only part of the HTTP application.
var ValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)
