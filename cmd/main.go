package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/TeddyKahwaji/spice-data-go/internal/config"
	"github.com/TeddyKahwaji/spice-data-go/internal/entities"
	applogger "github.com/TeddyKahwaji/spice-data-go/internal/logger"
	"github.com/TeddyKahwaji/spice-data-go/pkg/entitystore"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newDiscordBotClient(token string, httpClient *http.Client) (*discordgo.Session, error) {
	bot, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating bot: %w", err)
	}

	bot.Client = httpClient

	return bot, nil
}

func openDataStores(cfg *config.Config, logger *zap.Logger) (*entities.ServerDataStore, *entities.EntityDataStore, error) {
	codec, err := cfg.Codec()
	if err != nil {
		return nil, nil, err
	}

	if cfg.CreateMissingDataFiles {
		for _, path := range []string{cfg.ServerDataPath, cfg.EntityDataPath} {
			created, err := entitystore.EnsureFile(path, codec)
			if err != nil {
				return nil, nil, fmt.Errorf("creating data file: %w", err)
			}

			if created {
				logger.Info("created empty data file", applogger.Path(path))
			}
		}
	}

	serverData, err := entitystore.Open[string](cfg.ServerDataPath, entities.NewServerData,
		entitystore.WithCodec(codec),
		entitystore.WithLogger(logger.Named("server_data")),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("opening server data: %w", err)
	}

	entityData, err := entitystore.OpenCategories[string](cfg.EntityDataPath, entities.NewEntityData,
		entitystore.WithCodec(codec),
		entitystore.WithLogger(logger.Named("entity_data")),
		entitystore.WithCategories(entities.Categories...),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("opening entity data: %w", err)
	}

	return serverData, entityData, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		applogger.NewLogger(false).Fatal("invalid configuration", zap.Error(err))
	}

	logger := applogger.NewLogger(cfg.IsProd())

	defer func() {
		if err := logger.Sync(); err != nil {
			logger.Warn("could not sync logger", zap.Error(err))
		}
	}()

	serverData, entityData, err := openDataStores(cfg, logger)
	if err != nil {
		logger.Fatal("unable to open data files", zap.Error(err))
	}

	httpClient := http.Client{
		Timeout: 5 * time.Second,
	}

	bot, err := newDiscordBotClient(cfg.DiscordToken, &httpClient)
	if err != nil {
		logger.Fatal("bot could not be booted", zap.Error(err))
	}

	bot.Identify.Intents = discordgo.IntentsGuilds
	bot.StateEnabled = true
	bot.Identify.Presence = discordgo.GatewayStatusUpdate{
		Game: discordgo.Activity{
			Name: "/settings",
			Type: discordgo.ActivityTypeGame,
		},
	}

	var (
		once    sync.Once
		cogMu   sync.Mutex
		dataCog *entities.DataCog
	)

	// Ready fires again after every reconnect; the cog is only built once.
	bot.AddHandler(func(session *discordgo.Session, _ *discordgo.Ready) {
		once.Do(func() {
			cog, err := entities.NewDataCog(&entities.CogConfig{
				Session:    session,
				Logger:     logger.Named("data"),
				ServerData: serverData,
				EntityData: entityData,
				OwnerID:    cfg.BotOwnerID,
				FlushDelay: cfg.FlushDelay,
			})
			if err != nil {
				logger.Fatal("unable to instantiate data cog", zap.Error(err))
			}

			if err := cog.RegisterCommands(session, cfg.UpdateCommandsAtLaunch); err != nil {
				logger.Fatal("unable to register data commands", zap.Error(err))
			}

			cogMu.Lock()
			dataCog = cog
			cogMu.Unlock()

			logger.Info("Bot has connected", zap.Int("guilds", len(session.State.Guilds)))
		})
	})

	if err := bot.Open(); err != nil {
		logger.Fatal("error opening connection", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	if err := bot.Close(); err != nil {
		logger.Warn("couldn't close bot", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	cogMu.Lock()
	defer cogMu.Unlock()

	if dataCog != nil {
		err = dataCog.Close(shutdownCtx)
	} else {
		err = entitystore.PersistAll(shutdownCtx, serverData, entityData)
	}

	if err != nil {
		logger.Error("unable to persist data on shutdown", zap.Error(err))
		return
	}

	logger.Info("data persisted, shutting down")
}
