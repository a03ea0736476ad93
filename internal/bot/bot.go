package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/disgo/rest"
	"github.com/robalyx/fuzzy/internal/discord/platform"
	"github.com/robalyx/fuzzy/internal/moderation"
	"github.com/robalyx/fuzzy/internal/restriction"
	"github.com/robalyx/fuzzy/internal/setup"
	"github.com/robalyx/fuzzy/internal/setup/telemetry"
	"github.com/robalyx/fuzzy/internal/worker/core"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// SchedulerWorkerType identifies the restriction scheduler in heartbeat records.
const SchedulerWorkerType = "restriction_scheduler"

// closeTimeout bounds how long the gateway may take to shut down.
const closeTimeout = 10 * time.Second

// ErrMissingToken is returned when no bot token is configured.
var ErrMissingToken = errors.New("discord token is not configured")

// Bot wires the Discord client to the moderation services and runs the gateway.
type Bot struct {
	client         bot.Client
	platform       *platform.Discord
	ledger         *moderation.Ledger
	publisher      *moderation.Publisher
	locks          *restriction.Locks
	enforcer       *restriction.Enforcer
	scheduler      *restriction.Scheduler
	reporter       *core.StatusReporter
	requestTimeout time.Duration
	handlers       conc.WaitGroup
	logger         *zap.Logger
}

// New creates the Discord client and every service that depends on it.
func New(app *setup.App) (*Bot, error) {
	cfg := app.Config
	if cfg.Bot.Discord.Token == "" {
		return nil, ErrMissingToken
	}

	b := &Bot{
		requestTimeout: telemetry.ServiceBot.GetRequestTimeout(cfg),
		logger:         app.Logger.Named("bot"),
	}

	// Configure Discord client with required gateway intents and event handlers
	client, err := disgo.New(cfg.Bot.Discord.Token,
		bot.WithRestClientConfigOpts(
			rest.WithHTTPClient(&http.Client{Timeout: b.requestTimeout}),
		),
		bot.WithGatewayConfigOpts(
			gateway.WithIntents(
				gateway.IntentGuilds,
				gateway.IntentGuildMessages,
			),
		),
		bot.WithEventListeners(&events.ListenerAdapter{
			OnReady:              b.handleReady,
			OnGuildMessageCreate: b.handleGuildMessage,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord client: %w", err)
	}
	b.client = client

	models := app.DB.Model()
	b.platform = platform.New(client, models.GuildSettings(), cfg.Bot.Discord.OwnerID, app.Logger)

	// Publication reconciler first since the ledger refreshes through it
	b.publisher = moderation.NewPublisher(
		models.Infraction(), models.Publication(), models.GuildSettings(),
		b.platform, app.Logger, moderation.WithAuditLog(b.platform),
	)
	b.ledger = moderation.NewLedger(models.Infraction(), models.Pardon(), b.publisher, app.Logger)

	b.locks = restriction.NewLocks(models.Lock(), models.ThreadLock(), b.platform, app.Logger)
	b.enforcer = restriction.NewEnforcer(models.ThreadLock(), b.platform, app.Logger)

	b.reporter = core.NewStatusReporter(app.StatusClient, SchedulerWorkerType, app.Logger)
	b.scheduler = restriction.NewScheduler(cfg.Bot.Scheduler.Interval(), app.Logger,
		restriction.WithReporter(b.reporter))
	restriction.Register(b.scheduler, b.locks.ChannelKind())
	restriction.Register(b.scheduler, b.locks.ThreadKind())

	return b, nil
}

// Ledger returns the infraction ledger.
func (b *Bot) Ledger() *moderation.Ledger {
	return b.ledger
}

// Publisher returns the publication reconciler.
func (b *Bot) Publisher() *moderation.Publisher {
	return b.publisher
}

// Locks returns the lock service.
func (b *Bot) Locks() *restriction.Locks {
	return b.locks
}

// Scheduler returns the restriction scheduler.
func (b *Bot) Scheduler() *restriction.Scheduler {
	return b.scheduler
}

// Reporter returns the scheduler's heartbeat reporter.
func (b *Bot) Reporter() *core.StatusReporter {
	return b.reporter
}

// Run opens the gateway and keeps it open until the context is cancelled.
// In-flight message handlers finish before Run returns.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Opening gateway")
	if err := b.client.OpenGateway(ctx); err != nil {
		return fmt.Errorf("failed to open gateway: %w", err)
	}

	<-ctx.Done()

	b.logger.Info("Closing gateway")
	closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	b.client.Close(closeCtx)
	b.handlers.Wait()

	return nil
}

func (b *Bot) handleReady(event *events.Ready) {
	b.logger.Info("Gateway ready",
		zap.String("user", event.User.Username),
		zap.Int("guilds", len(event.Guilds)))
}

// mayBeThread reports whether a message in the channel could hit a thread lock.
// Channels missing from the cache are left to the enforcer.
func mayBeThread(channel discord.GuildChannel, cached bool) bool {
	if !cached {
		return true
	}
	_, ok := channel.(discord.GuildThread)
	return ok
}

// handleGuildMessage enforces thread locks off the gateway goroutine.
func (b *Bot) handleGuildMessage(event *events.GuildMessageCreate) {
	if event.Message.Author.Bot {
		return
	}
	if !mayBeThread(b.client.Caches().Channel(event.ChannelID)) {
		return
	}

	msg := restriction.Message{
		GuildID:   uint64(event.GuildID),
		ChannelID: uint64(event.ChannelID),
		MessageID: uint64(event.MessageID),
		AuthorID:  uint64(event.Message.Author.ID),
	}

	b.handlers.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("Panic in message handler", zap.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), b.requestTimeout)
		defer cancel()

		if _, err := b.enforcer.HandleMessage(ctx, msg); err != nil {
			b.logger.Warn("Failed to enforce thread lock",
				zap.Uint64("channelID", msg.ChannelID),
				zap.Uint64("messageID", msg.MessageID),
				zap.Error(err))
		}
	})
}
