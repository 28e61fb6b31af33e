package entities

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TeddyKahwaji/spice-data-go/pkg/entitystore"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
)

func openStores(t *testing.T, serverContent string, entityContent string) (*ServerDataStore, *EntityDataStore) {
	t.Helper()

	dir := t.TempDir()
	serverPath := filepath.Join(dir, "server_data.json")
	entityPath := filepath.Join(dir, "entity_data.json")

	require.NoError(t, os.WriteFile(serverPath, []byte(serverContent), 0o644))
	require.NoError(t, os.WriteFile(entityPath, []byte(entityContent), 0o644))

	servers, err := entitystore.Open[string](serverPath, NewServerData)
	require.NoError(t, err)

	entities, err := entitystore.OpenCategories[string](entityPath, NewEntityData, entitystore.WithCategories(Categories...))
	require.NoError(t, err)

	return servers, entities
}

func TestRecordDefaults(t *testing.T) {
	require.Equal(t, "This is custom data!", NewServerData().CustomData)
	require.True(t, NewEntityData(GuildCategory).OnlyEphemeral)
	require.False(t, NewEntityData(UserCategory).OnlyEphemeral)
	require.False(t, NewEntityData(UserCategory).ShowFullStackTrace)
}

func TestReconcileGuilds(t *testing.T) {
	servers, entities := openStores(t,
		`{"1": {"customData": "kept"}, "2": {"customData": "gone"}}`,
		`{"guild": {"1": {"onlyEphemeral": false}, "2": {}}, "user": {"9": {"showFullStackTrace": true}}}`,
	)

	added, removed, err := reconcileGuilds(servers, entities, []string{"1", "3"})
	require.NoError(t, err)
	require.Equal(t, 1, added)
	require.Equal(t, 1, removed)

	require.Equal(t, []string{"1", "3"}, servers.Keys())

	guildKeys, err := entities.Keys(GuildCategory)
	require.NoError(t, err)
	require.Equal(t, []string{"1", "3"}, guildKeys)

	require.Equal(t, "kept", customData(servers, "1"))
	require.Equal(t, "This is custom data!", customData(servers, "3"))
	require.False(t, isEphemeral(entities, "1"))
	require.True(t, isEphemeral(entities, "3"))

	// users are never reconciled
	require.True(t, showsFullErrors(entities, "9"))
}

func TestReconcileGuildsNothingToDo(t *testing.T) {
	servers, entities := openStores(t, `{"1": {}}`, `{"guild": {"1": {}}, "user": {}}`)

	added, removed, err := reconcileGuilds(servers, entities, []string{"1"})
	require.NoError(t, err)
	require.Zero(t, added)
	require.Zero(t, removed)
}

func TestAddAndRemoveGuild(t *testing.T) {
	servers, entities := openStores(t, "{}", "{}")

	require.NoError(t, addGuild(servers, entities, "5"))
	require.True(t, servers.Has("5"))
	require.True(t, entities.Has(GuildCategory, "5"))

	require.True(t, removeGuild(servers, entities, "5"))
	require.False(t, servers.Has("5"))
	require.False(t, entities.Has(GuildCategory, "5"))

	require.False(t, removeGuild(servers, entities, "5"))
}

func TestIsEphemeralInDirectMessages(t *testing.T) {
	_, entities := openStores(t, "{}", "{}")

	require.False(t, isEphemeral(entities, ""))
	require.False(t, entities.Has(GuildCategory, ""))
}

func TestToggles(t *testing.T) {
	_, entities := openStores(t, "{}", "{}")

	enabled, err := toggleOnlyEphemeral(entities, "1")
	require.NoError(t, err)
	require.False(t, enabled)
	require.False(t, isEphemeral(entities, "1"))

	enabled, err = toggleFullStackTrace(entities, "7")
	require.NoError(t, err)
	require.True(t, enabled)
	require.True(t, showsFullErrors(entities, "7"))

	require.False(t, showsFullErrors(entities, ""))
}

func TestTogglesAreNotPersisted(t *testing.T) {
	_, entities := openStores(t, "{}", "{}")

	_, err := toggleFullStackTrace(entities, "7")
	require.NoError(t, err)

	require.NoError(t, entities.Reload())
	require.False(t, entities.Has(UserCategory, "7"))
}

func TestSetAndResetCustomData(t *testing.T) {
	servers, _ := openStores(t, "{}", "{}")

	require.NoError(t, setCustomData(servers, "1", "hello"))

	reopened, err := entitystore.Open[string](servers.Path(), NewServerData)
	require.NoError(t, err)
	require.Equal(t, "hello", customData(reopened, "1"))

	require.NoError(t, resetCustomData(servers, "1"))

	require.NoError(t, reopened.Reload())
	require.Equal(t, "This is custom data!", customData(reopened, "1"))
}

func TestSetCustomDataTooLong(t *testing.T) {
	servers, _ := openStores(t, `{"1": {"customData": "before"}}`, "{}")

	err := setCustomData(servers, "1", strings.Repeat("a", maxCustomDataLength+1))
	require.ErrorIs(t, err, errCustomDataTooLong)
	require.Equal(t, "before", customData(servers, "1"))

	require.NoError(t, setCustomData(servers, "1", strings.Repeat("a", maxCustomDataLength)))
}

func TestCanManageServer(t *testing.T) {
	cog := &DataCog{ownerID: "owner"}

	owner := &discordgo.Interaction{Member: &discordgo.Member{User: &discordgo.User{ID: "owner"}}}
	manager := &discordgo.Interaction{Member: &discordgo.Member{
		User:        &discordgo.User{ID: "manager"},
		Permissions: discordgo.PermissionManageGuild,
	}}
	member := &discordgo.Interaction{Member: &discordgo.Member{User: &discordgo.User{ID: "member"}}}

	require.True(t, cog.canManageServer(owner))
	require.True(t, cog.canManageServer(manager))
	require.False(t, cog.canManageServer(member))
	require.False(t, (&DataCog{}).canManageServer(member))
}
