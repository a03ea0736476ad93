package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robalyx/fuzzy/internal/bot"
	"github.com/robalyx/fuzzy/internal/setup"
	"github.com/robalyx/fuzzy/internal/setup/telemetry"
	"github.com/sourcegraph/conc/pool"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const (
	// BotLogDir specifies where bot log files are stored.
	BotLogDir = "logs/bot_logs"
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.Command{
		Name:  "bot",
		Usage: "Run the moderation bot and its restriction scheduler",
		Action: func(ctx context.Context, _ *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Initialize application with required dependencies
			app, err := setup.InitializeApp(ctx, telemetry.ServiceBot, BotLogDir)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			defer app.Cleanup(context.Background())

			discordBot, err := bot.New(app)
			if err != nil {
				return fmt.Errorf("failed to create bot: %w", err)
			}

			return runComponents(ctx, discordBot, app.Logger)
		},
	}

	return app.Run(context.Background(), os.Args)
}

// runComponents runs the gateway, scheduler and heartbeat until the context is
// cancelled or the gateway fails.
func runComponents(ctx context.Context, discordBot *bot.Bot, logger *zap.Logger) error {
	p := pool.New().WithContext(ctx).WithCancelOnError()

	p.Go(func(ctx context.Context) error {
		return discordBot.Run(ctx)
	})
	p.Go(func(ctx context.Context) error {
		discordBot.Scheduler().Run(ctx)
		return nil
	})
	p.Go(func(ctx context.Context) error {
		discordBot.Reporter().Run(ctx)
		return nil
	})

	logger.Info("Bot started, waiting for shutdown signal",
		zap.Duration("schedulerInterval", discordBot.Scheduler().Interval()))

	err := p.Wait()
	discordBot.Reporter().Stop()
	logger.Info("Bot stopped")

	return err
}
