package entities

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCog(t *testing.T, guildIDs ...string) *DataCog {
	t.Helper()

	servers, entities := openStores(t, `{"stale": {}}`, `{"guild": {"stale": {}}}`)

	state := discordgo.NewState()
	for _, guildID := range guildIDs {
		state.Guilds = append(state.Guilds, &discordgo.Guild{ID: guildID})
	}

	cog, err := NewDataCog(&CogConfig{
		Session:    &discordgo.Session{State: state},
		Logger:     zap.NewNop(),
		ServerData: servers,
		EntityData: entities,
		FlushDelay: time.Hour,
	})
	require.NoError(t, err)

	return cog
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(raw)
}

func TestNewDataCogValidatesConfig(t *testing.T) {
	_, err := NewDataCog(&CogConfig{Logger: zap.NewNop()})
	require.Error(t, err)
}

func TestNewDataCogReconcilesAndPersists(t *testing.T) {
	cog := newTestCog(t, "1", "2")

	require.JSONEq(t, `{
		"1": {"customData": "This is custom data!"},
		"2": {"customData": "This is custom data!"}
	}`, readFile(t, cog.serverData.Path()))

	require.JSONEq(t, `{
		"guild": {"1": {"onlyEphemeral": true}, "2": {"onlyEphemeral": true}},
		"user": {}
	}`, readFile(t, cog.entityData.Path()))
}

func TestGuildEventsScheduleWrites(t *testing.T) {
	cog := newTestCog(t, "1")

	cog.guildJoinedEvent(nil, &discordgo.GuildCreate{Guild: &discordgo.Guild{ID: "2"}})
	require.True(t, cog.serverData.Has("2"))
	require.True(t, cog.entityFlusher.Pending())

	// already known guilds are not recreated
	cog.serverData.Get("1").CustomData = "kept"
	cog.guildJoinedEvent(nil, &discordgo.GuildCreate{Guild: &discordgo.Guild{ID: "1"}})
	require.Equal(t, "kept", cog.serverData.Get("1").CustomData)

	cog.guildDeleteEvent(nil, &discordgo.GuildDelete{Guild: &discordgo.Guild{ID: "2", Unavailable: true}})
	require.True(t, cog.serverData.Has("2"))

	cog.guildDeleteEvent(nil, &discordgo.GuildDelete{Guild: &discordgo.Guild{ID: "2"}})
	require.False(t, cog.serverData.Has("2"))
	require.False(t, cog.entityData.Has(GuildCategory, "2"))

	require.NoError(t, cog.Close(context.Background()))
	require.False(t, cog.entityFlusher.Pending())

	require.JSONEq(t, `{"1": {"customData": "kept"}}`, readFile(t, cog.serverData.Path()))
}

func TestUnavailableGuildCreateIsIgnored(t *testing.T) {
	cog := newTestCog(t)

	cog.guildJoinedEvent(nil, &discordgo.GuildCreate{Guild: &discordgo.Guild{ID: "3", Unavailable: true}})
	require.False(t, cog.serverData.Has("3"))
	require.False(t, cog.serverFlusher.Pending())
}

func TestApplicationCommandsAreConsistent(t *testing.T) {
	for name, command := range (&DataCog{}).getApplicationCommands() {
		require.Equal(t, name, command.CommandConfiguration.Name)
		require.NotNil(t, command.Handler)
		require.NotEmpty(t, command.CommandConfiguration.Description)
	}
}
