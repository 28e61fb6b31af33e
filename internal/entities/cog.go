package entities

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/TeddyKahwaji/spice-data-go/internal/logger"
	"github.com/TeddyKahwaji/spice-data-go/internal/util"
	"github.com/TeddyKahwaji/spice-data-go/pkg/entitystore"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type CogConfig struct {
	Session    *discordgo.Session
	Logger     *zap.Logger
	ServerData *ServerDataStore
	EntityData *EntityDataStore
	// OwnerID may change server settings in any guild.
	OwnerID string
	// FlushDelay is how long setting changes wait before being written.
	FlushDelay time.Duration
}

// DataCog owns the bot's data files: it keeps guild records in line with the guilds the bot
// is in and serves the commands that read and change them.
type DataCog struct {
	session       *discordgo.Session
	ownerID       string
	logger        *zap.Logger
	serverData    *ServerDataStore
	entityData    *EntityDataStore
	serverFlusher *entitystore.Flusher
	entityFlusher *entitystore.Flusher

	mu                  sync.Mutex
	alreadyJoinedGuilds map[string]struct{}
}

func NewDataCog(config *CogConfig) (*DataCog, error) {
	if config.Logger == nil ||
		config.Session == nil ||
		config.ServerData == nil ||
		config.EntityData == nil {
		return nil, errors.New("config was populated with nil value")
	}

	dataCog := &DataCog{
		session:             config.Session,
		ownerID:             config.OwnerID,
		logger:              config.Logger,
		serverData:          config.ServerData,
		entityData:          config.EntityData,
		alreadyJoinedGuilds: make(map[string]struct{}),
	}

	dataCog.serverFlusher = entitystore.NewFlusher(config.ServerData, config.FlushDelay, entitystore.WithErrorHandler(func(err error) {
		dataCog.logger.Error("unable to write server data", zap.Error(err), logger.Path(config.ServerData.Path()))
	}))

	dataCog.entityFlusher = entitystore.NewFlusher(config.EntityData, config.FlushDelay, entitystore.WithErrorHandler(func(err error) {
		dataCog.logger.Error("unable to write entity data", zap.Error(err), logger.Path(config.EntityData.Path()))
	}))

	for _, category := range Categories {
		if err := config.EntityData.EnsureCategory(category); err != nil {
			return nil, fmt.Errorf("ensuring %s category: %w", category, err)
		}
	}

	joined := make([]string, 0, len(config.Session.State.Guilds))
	for _, guild := range config.Session.State.Guilds {
		joined = append(joined, guild.ID)
		dataCog.alreadyJoinedGuilds[guild.ID] = struct{}{}
	}

	added, removed, err := reconcileGuilds(config.ServerData, config.EntityData, joined)
	if err != nil {
		return nil, fmt.Errorf("reconciling guild data: %w", err)
	}

	if err := entitystore.PersistAll(context.Background(), config.ServerData, config.EntityData); err != nil {
		return nil, fmt.Errorf("persisting reconciled data: %w", err)
	}

	dataCog.logger.Info("guild data reconciled",
		zap.Int("guilds", len(joined)),
		zap.Int("added", added),
		zap.Int("removed", removed),
	)

	return dataCog, nil
}

// Close cancels pending delayed writes and persists both data files.
func (d *DataCog) Close(ctx context.Context) error {
	if err := errors.Join(d.serverFlusher.Stop(), d.entityFlusher.Stop()); err != nil {
		d.logger.Warn("pending data write failed during shutdown", zap.Error(err))
	}

	if err := entitystore.PersistAll(ctx, d.serverData, d.entityData); err != nil {
		return fmt.Errorf("persisting data on close: %w", err)
	}

	return nil
}

func (d *DataCog) scheduleFlush() {
	d.serverFlusher.Schedule()
	d.entityFlusher.Schedule()
}

func (d *DataCog) canManageServer(interaction *discordgo.Interaction) bool {
	if d.ownerID != "" && util.InteractionUserID(interaction) == d.ownerID {
		return true
	}

	return util.HasAnyPermission(interaction.Member, discordgo.PermissionManageGuild, discordgo.PermissionAdministrator)
}
