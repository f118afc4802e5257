package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/Thegreatsura/merchant/cmd/bootstrap"
	"github.com/Thegreatsura/merchant/internal/pkg/clock"
	"github.com/Thegreatsura/merchant/internal/usecase/commands"

	"go.uber.org/fx"
)

// jobs runs the cart sweep and the delivery retry pass once and exits.
// An external scheduler invokes it.
func main() {
	only := flag.String("only", "", "run a single job: sweep or deliveries")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall deadline")
	flag.Parse()

	var (
		sweep      commands.SweepCommands
		deliveries commands.DeliveryCommands
		clk        clock.Clock
	)
	app := fx.New(
		bootstrap.CoreModule,
		fx.NopLogger,
		fx.Populate(&sweep, &deliveries, &clk),
	)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		slog.Error("jobs failed to start", "error", err)
		os.Exit(1)
	}

	code := run(ctx, *only, sweep, deliveries, clk)

	if err := app.Stop(context.Background()); err != nil {
		slog.Error("jobs failed to stop cleanly", "error", err)
	}
	os.Exit(code)
}

func run(ctx context.Context, only string, sweep commands.SweepCommands, deliveries commands.DeliveryCommands, clk clock.Clock) int {
	code := 0
	if only == "" || only == "sweep" {
		res, err := sweep.SweepExpiredCarts(ctx, clk.Now())
		if err != nil {
			slog.Error("cart sweep failed", "error", err)
			code = 1
		} else {
			slog.Info("cart sweep done", "scanned", res.Scanned, "expired", res.Expired, "units_released", res.UnitsReleased, "failed", res.Failed)
		}
	}
	if only == "" || only == "deliveries" {
		res, err := deliveries.RetryFailedDeliveries(ctx, clk.Now())
		if err != nil {
			slog.Error("delivery retry failed", "error", err)
			code = 1
		} else {
			slog.Info("delivery retry done", "attempted", res.Attempted, "delivered", res.Delivered, "failed", res.Failed)
		}
	}
	return code
}
