package bot

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/celestix/gotgproto"
	"github.com/celestix/gotgproto/dispatcher/handlers"
	"github.com/celestix/gotgproto/dispatcher/handlers/filters"
	"github.com/celestix/gotgproto/ext"
	"github.com/celestix/gotgproto/sessionMaker"
	"github.com/glebarez/sqlite"
	"github.com/gotd/td/tg"
	"go.uber.org/zap"

	"ai-planner-bot/config"
)

// TelegramBot wraps the gotgproto client and provides bot lifecycle management
type TelegramBot struct {
	client *gotgproto.Client
	logger *zap.Logger
	config *config.BotConfig
	router *CommandRouter
	ctx    context.Context
	cancel context.CancelFunc
}

// NewTelegramBot creates a new TelegramBot instance with proper gotgproto client setup
func NewTelegramBot(cfg *config.BotConfig, logger *zap.Logger) (*TelegramBot, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &TelegramBot{
		config: cfg,
		logger: logger,
		router: NewCommandRouter(logger),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Start initializes the gotgproto client, wires incoming messages to
// the router and begins receiving updates.
func (b *TelegramBot) Start() error {
	b.logger.Info("starting Telegram bot")

	sessionPath := filepath.Join(b.config.DataDir, "bot_session.db")
	clientOpts := &gotgproto.ClientOpts{
		Session: sessionMaker.SqlSession(sqlite.Open(sessionPath)),
		Logger:  b.logger.Named("gotgproto"),
	}

	client, err := gotgproto.NewClient(b.config.APIID, b.config.APIHash, gotgproto.ClientTypeBot(b.config.Token), clientOpts)
	if err != nil {
		return fmt.Errorf("failed to create gotgproto client: %w", err)
	}

	b.client = client

	// Bridge all incoming messages into the command router. Routing
	// errors are logged here so the update loop is never interrupted.
	client.Dispatcher.AddHandler(handlers.NewMessage(filters.Message.All, func(ctx *ext.Context, u *ext.Update) error {
		update, ok := u.UpdateClass.(*tg.UpdateNewMessage)
		if !ok {
			return nil
		}
		if msg, ok := update.Message.(*tg.Message); ok && msg.Out {
			return nil
		}
		if err := b.router.RouteUpdate(ctx, update); err != nil {
			b.logger.Error("failed to route update", zap.Error(err))
		}
		return nil
	}))

	b.logger.Info("Telegram bot client initialized")

	// Idle blocks, run it in a goroutine.
	go func() {
		b.client.Idle()
	}()

	b.logger.Info("Telegram bot started")
	return nil
}

// Stop gracefully shuts down the bot
func (b *TelegramBot) Stop() error {
	b.logger.Info("stopping Telegram bot")

	if b.cancel != nil {
		b.cancel()
	}

	if b.client != nil {
		// Give the client time to clean up.
		time.Sleep(100 * time.Millisecond)
	}

	b.logger.Info("Telegram bot stopped")
	return nil
}

// SendMessage sends a text message to the given chat.
func (b *TelegramBot) SendMessage(ctx context.Context, chatID int64, text string) error {
	if b.client == nil {
		return fmt.Errorf("bot client is not initialized")
	}

	// Positive IDs are private chats, negative ones are groups.
	var peer tg.InputPeerClass
	if chatID > 0 {
		peer = &tg.InputPeerUser{UserID: chatID}
	} else {
		peer = &tg.InputPeerChat{ChatID: -chatID}
	}

	request := &tg.MessagesSendMessageRequest{
		Peer:     peer,
		Message:  text,
		RandomID: time.Now().UnixNano(),
	}

	if _, err := b.client.API().MessagesSendMessage(ctx, request); err != nil {
		return fmt.Errorf("failed to send message via Telegram API: %w", err)
	}

	return nil
}

// GetClient returns the underlying gotgproto client for advanced usage
func (b *TelegramBot) GetClient() *gotgproto.Client {
	return b.client
}

// IsRunning returns true if the bot is currently running
func (b *TelegramBot) IsRunning() bool {
	return b.client != nil && b.ctx.Err() == nil
}

// Router returns the command router so handlers can be registered.
func (b *TelegramBot) Router() *CommandRouter {
	return b.router
}
