package app

import (
	"context"
	"time"

	"github.com/cryptocast/cryptocast/internal/billing"
	"github.com/cryptocast/cryptocast/internal/config"
	"github.com/cryptocast/cryptocast/internal/domains/broadcast"
	"github.com/cryptocast/cryptocast/internal/domains/user"
	newsRepo "github.com/cryptocast/cryptocast/internal/repository/news"
	userRepo "github.com/cryptocast/cryptocast/internal/repository/user"
	"github.com/cryptocast/cryptocast/internal/server"
	"github.com/cryptocast/cryptocast/pkg/Logger"
	"github.com/cryptocast/cryptocast/pkg/io"
	"github.com/cryptocast/cryptocast/pkg/io/chat"
	"github.com/cryptocast/cryptocast/pkg/io/registry"
	"github.com/cryptocast/cryptocast/pkg/io/registry/memoryregistry"
	"github.com/cryptocast/cryptocast/pkg/io/tts/viseme"
	"github.com/go-redis/redis"
	"gorm.io/gorm"
)

// App represents the application with all its dependencies
type App struct {
	Config         *config.Settings
	Logger         *Logger.Logger
	DB             *gorm.DB
	RC             *redis.Client
	ViewerRegistry registry.Registry
	Credits        *billing.CreditLedger
	// repos
	NewsRepo   broadcast.NewsRepository
	UserRepo   user.UserRepository
	ServerDeps server.Dependencies
	// domains
	BroadcastService broadcast.BroadcastService
}

// NewApp creates a new application instance with all dependencies properly wired
func NewApp(cfg *config.Settings, logger *Logger.Logger, db *gorm.DB, rc *redis.Client) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
		DB:     db,
		RC:     rc,
	}

	if err := app.setupDependencies(); err != nil {
		return nil, err
	}

	return app, nil
}

// setupDependencies initializes all application dependencies
func (a *App) setupDependencies() error {
	// 1. Shared viewer registry and fan-out publisher
	a.ViewerRegistry = memoryregistry.New()
	pub := io.New(a.ViewerRegistry)

	// 2. Repositories
	a.NewsRepo = newsRepo.NewGormNewsRepo(a.DB)
	a.UserRepo = userRepo.NewGormUserRepo(a.DB)

	// 3. Billing ledger, hooked into generation usage
	a.Credits = billing.NewCreditLedger(a.RC, a.Config.Broadcast.CreditsKey, a.Logger)

	// 4. Script generation
	generator, err := NewGenerator(a.Config.Generation, a.Credits.Hook(), a.Logger.Named("scriptgen"))
	if err != nil {
		return err
	}

	// 5. Speech synthesis
	synth := viseme.NewClient(
		a.Config.Voice.SynthURL,
		a.Config.Voice.MaxAttempts,
		a.Config.Voice.RetryDelay(),
		a.Logger.Named("viseme"),
	)
	voices := broadcast.VoicesFromConfig(a.Config.Voice.Voices)

	// 6. Viewer chat, disabled when no live chat is configured
	chatFactory := a.buildChatFactory()

	// 7. The broadcast control surface
	a.BroadcastService = broadcast.NewBroadcastService(
		a.Config.Broadcast,
		a.Config.Generation,
		generator,
		synth,
		voices,
		a.NewsRepo,
		chatFactory,
		&pub,
		a.Logger.Named("broadcast"),
	)

	// JWT settings from config
	jwtSecret := a.Config.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret = "default-secret-key-change-in-production"
		a.Logger.Warn("JWT secret not configured, using default (not secure for production)")
	}
	tokenTTLHours := a.Config.Auth.TokenTTLHours
	if tokenTTLHours == 0 {
		tokenTTLHours = 24
	}
	tokenTTL := time.Duration(tokenTTLHours) * time.Hour

	userService := user.NewUserService(a.UserRepo, a.Logger, jwtSecret, tokenTTL)

	a.ServerDeps = server.NewServerDependencies(
		a.ViewerRegistry,
		userService,
		a.NewsRepo,
		a.BroadcastService,
		a.Credits,
		a.Logger,
		a.Config,
	)

	return nil
}

// buildChatFactory returns a per-stream chat poller constructor, or nil when
// chat is not configured. A fresh poller per stream keeps dedupe state from
// bleeding across sessions.
func (a *App) buildChatFactory() broadcast.ChatPollerFactory {
	cc := a.Config.Chat
	if cc.APIKey == "" || cc.LiveChatID == "" {
		a.Logger.Info("live chat not configured, running without viewer chat")
		return nil
	}
	logger := a.Logger.Named("chat")
	return func() broadcast.ChatPoller {
		src, err := chat.NewYouTubeSource(context.Background(), cc.APIKey, cc.LiveChatID, logger)
		if err != nil {
			logger.Errorf("chat source unavailable for this stream: %v", err)
			return nil
		}
		return chat.NewPoller(
			src,
			cc.MaxRetries,
			time.Duration(cc.BaseDelayMs)*time.Millisecond,
			logger,
		)
	}
}

// GetServerDependencies returns the server dependencies
func (a *App) GetServerDependencies() server.Dependencies {
	return a.ServerDeps
}
