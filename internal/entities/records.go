package entities

import "github.com/TeddyKahwaji/spice-data-go/pkg/entitystore"

const (
	GuildCategory = "guild"
	UserCategory  = "user"

	defaultCustomData = "This is custom data!"
)

// Categories lists the entity types kept in the entity data file.
var Categories = []string{GuildCategory, UserCategory}

// ServerData is the per-guild record of the server data file.
type ServerData struct {
	CustomData string `json:"customData"`
}

func NewServerData() *ServerData {
	return &ServerData{CustomData: defaultCustomData}
}

// EntityData is the record of the entity data file. Guild records use OnlyEphemeral and user
// records use ShowFullStackTrace.
type EntityData struct {
	OnlyEphemeral      bool `json:"onlyEphemeral,omitempty"`
	ShowFullStackTrace bool `json:"showFullStackTrace,omitempty"`
}

func NewEntityData(category string) *EntityData {
	switch category {
	case GuildCategory:
		return &EntityData{OnlyEphemeral: true}
	default:
		return &EntityData{}
	}
}

type (
	ServerDataStore = entitystore.Store[string, ServerData]
	EntityDataStore = entitystore.CategoryStore[string, EntityData]
)
