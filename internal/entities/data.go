package entities

import (
	"errors"
	"fmt"
)

var errCustomDataTooLong = errors.New("custom data is too long")

const maxCustomDataLength = 1000

// reconcileGuilds makes both stores hold exactly one guild record per joined guild.
func reconcileGuilds(servers *ServerDataStore, entities *EntityDataStore, joined []string) (added int, removed int, err error) {
	joinedSet := make(map[string]struct{}, len(joined))
	for _, guildID := range joined {
		joinedSet[guildID] = struct{}{}

		if !servers.Has(guildID) || !entities.Has(GuildCategory, guildID) {
			added++
		}

		if err := addGuild(servers, entities, guildID); err != nil {
			return 0, 0, err
		}
	}

	stillJoined := func(guildID string) bool {
		_, ok := joinedSet[guildID]
		return ok
	}

	removedEntities, err := entities.Retain(GuildCategory, stillJoined)
	if err != nil {
		return 0, 0, fmt.Errorf("dropping departed guilds: %w", err)
	}

	removedServers := servers.Retain(stillJoined)

	return added, max(removedEntities, removedServers), nil
}

func addGuild(servers *ServerDataStore, entities *EntityDataStore, guildID string) error {
	servers.Get(guildID)

	if _, err := entities.Get(GuildCategory, guildID); err != nil {
		return fmt.Errorf("creating guild entity data: %w", err)
	}

	return nil
}

func removeGuild(servers *ServerDataStore, entities *EntityDataStore, guildID string) bool {
	removedServer := servers.Delete(guildID)
	removedEntity := entities.Delete(GuildCategory, guildID)

	return removedServer || removedEntity
}

// isEphemeral reports whether replies in guildID should only be visible to the invoker.
// Direct messages are never ephemeral.
func isEphemeral(entities *EntityDataStore, guildID string) bool {
	if guildID == "" {
		return false
	}

	var ephemeral bool
	if err := entities.With(GuildCategory, guildID, func(data *EntityData) {
		ephemeral = data.OnlyEphemeral
	}); err != nil {
		return true
	}

	return ephemeral
}

func showsFullErrors(entities *EntityDataStore, userID string) bool {
	if userID == "" {
		return false
	}

	var show bool
	_ = entities.With(UserCategory, userID, func(data *EntityData) {
		show = data.ShowFullStackTrace
	})

	return show
}

// toggleOnlyEphemeral flips the guild's ephemeral setting and returns the new value.
// The change is not persisted.
func toggleOnlyEphemeral(entities *EntityDataStore, guildID string) (bool, error) {
	var enabled bool
	err := entities.With(GuildCategory, guildID, func(data *EntityData) {
		data.OnlyEphemeral = !data.OnlyEphemeral
		enabled = data.OnlyEphemeral
	})

	return enabled, err
}

// toggleFullStackTrace flips the user's full error setting and returns the new value.
// The change is not persisted.
func toggleFullStackTrace(entities *EntityDataStore, userID string) (bool, error) {
	var enabled bool
	err := entities.With(UserCategory, userID, func(data *EntityData) {
		data.ShowFullStackTrace = !data.ShowFullStackTrace
		enabled = data.ShowFullStackTrace
	})

	return enabled, err
}

func customData(servers *ServerDataStore, guildID string) string {
	var value string
	servers.With(guildID, func(data *ServerData) {
		value = data.CustomData
	})

	return value
}

// setCustomData stores value for the guild and persists the server data file.
func setCustomData(servers *ServerDataStore, guildID string, value string) error {
	if len(value) > maxCustomDataLength {
		return fmt.Errorf("%w: %d characters, the limit is %d", errCustomDataTooLong, len(value), maxCustomDataLength)
	}

	if err := servers.Update(guildID, func(data *ServerData) error {
		data.CustomData = value
		return nil
	}); err != nil {
		return fmt.Errorf("saving custom data: %w", err)
	}

	return nil
}

func resetCustomData(servers *ServerDataStore, guildID string) error {
	if err := servers.Update(guildID, func(data *ServerData) error {
		*data = *NewServerData()
		return nil
	}); err != nil {
		return fmt.Errorf("resetting custom data: %w", err)
	}

	return nil
}
