package entities

import (
	"github.com/TeddyKahwaji/spice-data-go/internal/logger"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func (d *DataCog) guildJoinedEvent(_ *discordgo.Session, guildJoinedEvent *discordgo.GuildCreate) {
	if guildJoinedEvent.Unavailable {
		return
	}

	guildID := guildJoinedEvent.ID

	d.mu.Lock()
	_, exists := d.alreadyJoinedGuilds[guildID]
	d.alreadyJoinedGuilds[guildID] = struct{}{}
	d.mu.Unlock()

	// guilds from the initial state arrive again as GuildCreate events
	if exists {
		return
	}

	if err := addGuild(d.serverData, d.entityData, guildID); err != nil {
		d.logger.Error("unable to create data for joined guild", zap.Error(err), logger.GuildID(guildID))
		return
	}

	d.scheduleFlush()

	d.logger.Info("created data for joined guild", logger.GuildID(guildID))
}

func (d *DataCog) guildDeleteEvent(_ *discordgo.Session, guildDeleteEvent *discordgo.GuildDelete) {
	// an unavailable guild is an outage, not the bot leaving
	if guildDeleteEvent.Unavailable {
		return
	}

	guildID := guildDeleteEvent.ID

	d.mu.Lock()
	delete(d.alreadyJoinedGuilds, guildID)
	d.mu.Unlock()

	if !removeGuild(d.serverData, d.entityData, guildID) {
		return
	}

	d.scheduleFlush()

	d.logger.Info("removed data for departed guild", logger.GuildID(guildID))
}
