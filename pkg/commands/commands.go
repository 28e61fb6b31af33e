package commands

import (
	"maps"
	"slices"

	"github.com/TeddyKahwaji/spice-data-go/pkg/funcs"
	"github.com/bwmarrin/discordgo"
)

type ApplicationCommandHandler func(*discordgo.Session, *discordgo.InteractionCreate) error

type ApplicationCommand struct {
	CommandConfiguration *discordgo.ApplicationCommand
	Handler              ApplicationCommandHandler
}

// Mapping routes a command name to its configuration and handler.
type Mapping map[string]*ApplicationCommand

// Configurations returns the command definitions to publish, ordered by name.
func (m Mapping) Configurations() []*discordgo.ApplicationCommand {
	names := slices.Sorted(maps.Keys(m))

	return funcs.Map(names, func(name string) *discordgo.ApplicationCommand {
		return m[name].CommandConfiguration
	})
}
