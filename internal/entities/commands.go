package entities

import (
	"errors"
	"fmt"
	"time"

	"github.com/TeddyKahwaji/spice-data-go/internal/embeds"
	"github.com/TeddyKahwaji/spice-data-go/internal/logger"
	"github.com/TeddyKahwaji/spice-data-go/internal/util"
	"github.com/TeddyKahwaji/spice-data-go/pkg/commands"
	"github.com/TeddyKahwaji/spice-data-go/pkg/views"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const resetViewLifetime = 2 * time.Minute

// RegisterCommands publishes the cog's commands and attaches its handlers to session. When
// overwrite is false the commands already known to Discord are left as they are.
func (d *DataCog) RegisterCommands(session *discordgo.Session, overwrite bool) error {
	if overwrite {
		commandsToRegister := d.getApplicationCommands().Configurations()

		if _, err := session.ApplicationCommandBulkOverwrite(session.State.User.ID, "", commandsToRegister); err != nil {
			return fmt.Errorf("registering commands: %w", err)
		}
	}

	session.AddHandler(d.commandHandler)
	session.AddHandler(d.guildJoinedEvent)
	session.AddHandler(d.guildDeleteEvent)

	return nil
}

func (d *DataCog) commandHandler(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if interaction.Type != discordgo.InteractionApplicationCommand {
		return
	}

	commandName := interaction.ApplicationCommandData().Name

	command, ok := d.getApplicationCommands()[commandName]
	if !ok {
		return
	}

	err := command.Handler(session, interaction)
	if err == nil {
		return
	}

	userID := util.InteractionUserID(interaction.Interaction)
	d.logger.Error("an error occurred when executing command", zap.Error(err),
		logger.Command(commandName),
		logger.GuildID(interaction.GuildID),
		logger.ChannelID(interaction.ChannelID),
		logger.UserID(userID),
	)

	var detail string
	if showsFullErrors(d.entityData, userID) {
		detail = err.Error()
	}

	msgData := util.MessageData{
		Embeds:    []*discordgo.MessageEmbed{embeds.UnexpectedErrorEmbed(detail)},
		Ephemeral: true,
	}

	// the handler may already have acknowledged the interaction
	if err := util.SendMessage(session, interaction.Interaction, false, msgData); err != nil {
		if err := util.SendMessage(session, interaction.Interaction, true, msgData); err != nil {
			d.logger.Warn("failed to send unexpected error message", zap.Error(err))
		}
	}
}

func (d *DataCog) getApplicationCommands() commands.Mapping {
	dmPermission := false

	return commands.Mapping{
		"settings": {
			Handler: d.settings,
			CommandConfiguration: &discordgo.ApplicationCommand{
				Name:        "settings",
				Description: "Change how the bot behaves for you or this server",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        "user",
						Description: "Settings that only apply to you",
						Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
						Options: []*discordgo.ApplicationCommandOption{
							{
								Name:        "fullerror",
								Description: "Toggle whether error messages include the full error",
								Type:        discordgo.ApplicationCommandOptionSubCommand,
							},
						},
					},
					{
						Name:        "server",
						Description: "Settings that apply to the whole server",
						Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
						Options: []*discordgo.ApplicationCommandOption{
							{
								Name:        "ephemeral",
								Description: "Toggle whether replies are only visible to the user invoking a command",
								Type:        discordgo.ApplicationCommandOptionSubCommand,
							},
						},
					},
				},
			},
		},
		"customdata": {
			Handler: d.customDataCommand,
			CommandConfiguration: &discordgo.ApplicationCommand{
				Name:         "customdata",
				Description:  "View or change the custom data stored for this server",
				DMPermission: &dmPermission,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        "view",
						Description: "Shows the custom data of this server",
						Type:        discordgo.ApplicationCommandOptionSubCommand,
					},
					{
						Name:        "set",
						Description: "Sets the custom data of this server",
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Options: []*discordgo.ApplicationCommandOption{
							{
								Name:        "data",
								Description: "The new custom data",
								Type:        discordgo.ApplicationCommandOptionString,
								Required:    true,
								MaxLength:   maxCustomDataLength,
							},
						},
					},
					{
						Name:        "reset",
						Description: "Restores the default custom data of this server",
						Type:        discordgo.ApplicationCommandOptionSubCommand,
					},
				},
			},
		},
	}
}

func (d *DataCog) sendInvalidUsage(session *discordgo.Session, interaction *discordgo.Interaction, msg string) error {
	if err := util.SendMessage(session, interaction, false, util.MessageData{
		Embeds:    []*discordgo.MessageEmbed{embeds.ErrorMessageEmbed(msg)},
		Ephemeral: true,
	}); err != nil {
		return fmt.Errorf("sending invalid usage message: %w", err)
	}

	return nil
}

func (d *DataCog) settings(session *discordgo.Session, interaction *discordgo.InteractionCreate) error {
	options := interaction.ApplicationCommandData().Options
	if len(options) == 0 || len(options[0].Options) == 0 {
		return errors.New("settings invoked without a subcommand")
	}

	group, subcommand := options[0].Name, options[0].Options[0].Name

	switch group + " " + subcommand {
	case "user fullerror":
		return d.toggleFullErrors(session, interaction)
	case "server ephemeral":
		return d.toggleServerEphemeral(session, interaction)
	default:
		return fmt.Errorf("unknown settings subcommand %q", group+" "+subcommand)
	}
}

func (d *DataCog) toggleFullErrors(session *discordgo.Session, interaction *discordgo.InteractionCreate) error {
	userID := util.InteractionUserID(interaction.Interaction)
	if userID == "" {
		return errors.New("interaction has no user")
	}

	enabled, err := toggleFullStackTrace(d.entityData, userID)
	if err != nil {
		return fmt.Errorf("toggling full errors: %w", err)
	}

	d.entityFlusher.Schedule()

	description := "Errors will only show a short message."
	if enabled {
		description = "Errors will now include the full error."
	}

	if err := util.SendMessage(session, interaction.Interaction, false, util.MessageData{
		Embeds:    []*discordgo.MessageEmbed{embeds.SettingsEmbed("⚙️ Full errors", description)},
		Ephemeral: true,
	}); err != nil {
		return fmt.Errorf("sending settings message: %w", err)
	}

	return nil
}

func (d *DataCog) toggleServerEphemeral(session *discordgo.Session, interaction *discordgo.InteractionCreate) error {
	if interaction.GuildID == "" {
		return d.sendInvalidUsage(session, interaction.Interaction, "Server settings can only be changed inside a server.")
	}

	if !d.canManageServer(interaction.Interaction) {
		return d.sendInvalidUsage(session, interaction.Interaction, "You need the **Manage Server** permission to change server settings.")
	}

	enabled, err := toggleOnlyEphemeral(d.entityData, interaction.GuildID)
	if err != nil {
		return fmt.Errorf("toggling ephemeral replies: %w", err)
	}

	d.entityFlusher.Schedule()

	description := "Replies are now visible to everyone in the channel."
	if enabled {
		description = "Replies are now only visible to the user invoking a command."
	}

	if err := util.SendMessage(session, interaction.Interaction, false, util.MessageData{
		Embeds:    []*discordgo.MessageEmbed{embeds.SettingsEmbed("⚙️ Ephemeral replies", description)},
		Ephemeral: enabled,
	}); err != nil {
		return fmt.Errorf("sending settings message: %w", err)
	}

	return nil
}

func (d *DataCog) customDataCommand(session *discordgo.Session, interaction *discordgo.InteractionCreate) error {
	guildID := interaction.GuildID
	if guildID == "" {
		return d.sendInvalidUsage(session, interaction.Interaction, "Custom data only exists inside a server.")
	}

	options := interaction.ApplicationCommandData().Options
	if len(options) == 0 {
		return errors.New("customdata invoked without a subcommand")
	}

	subcommand := options[0]
	if subcommand.Name != "view" &&
		!d.canManageServer(interaction.Interaction) {
		return d.sendInvalidUsage(session, interaction.Interaction, "You need the **Manage Server** permission to change custom data.")
	}

	ephemeral := isEphemeral(d.entityData, guildID)

	switch subcommand.Name {
	case "view":
		guildName := guildID
		if guild, err := session.State.Guild(guildID); err == nil {
			guildName = guild.Name
		}

		if err := util.SendMessage(session, interaction.Interaction, false, util.MessageData{
			Embeds:    []*discordgo.MessageEmbed{embeds.CustomDataEmbed(guildName, customData(d.serverData, guildID))},
			Ephemeral: ephemeral,
		}); err != nil {
			return fmt.Errorf("sending custom data message: %w", err)
		}

		return nil
	case "set":
		if len(subcommand.Options) == 0 {
			return errors.New("customdata set invoked without data")
		}

		value := subcommand.Options[0].StringValue()

		err := setCustomData(d.serverData, guildID, value)
		if errors.Is(err, errCustomDataTooLong) {
			return d.sendInvalidUsage(session, interaction.Interaction,
				fmt.Sprintf("Custom data can be at most %d characters long.", maxCustomDataLength))
		}

		if err != nil {
			return err
		}

		if err := util.SendMessage(session, interaction.Interaction, false, util.MessageData{
			Embeds:    []*discordgo.MessageEmbed{embeds.CustomDataSetEmbed(value)},
			Ephemeral: ephemeral,
		}); err != nil {
			return fmt.Errorf("sending custom data set message: %w", err)
		}

		return nil
	case "reset":
		return d.sendResetView(session, interaction, ephemeral)
	default:
		return fmt.Errorf("unknown customdata subcommand %q", subcommand.Name)
	}
}

func (d *DataCog) sendResetView(session *discordgo.Session, interaction *discordgo.InteractionCreate, ephemeral bool) error {
	if err := util.SendMessage(session, interaction.Interaction, false, util.MessageData{
		Type:      discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Ephemeral: ephemeral,
	}); err != nil {
		return fmt.Errorf("deferring reset: %w", err)
	}

	guildID := interaction.GuildID
	invokerID := util.InteractionUserID(interaction.Interaction)

	resetView := views.NewView(views.Config{
		Embeds: []*discordgo.MessageEmbed{embeds.ResetConfirmationEmbed()},
		Components: &views.ComponentHandler{
			MessageComponents: embeds.GetResetButtons(embeds.ResetButtonsConfig{}),
		},
	}, views.WithLogger(d.logger), views.WithEphemeral(ephemeral), views.WithDeletion(resetViewLifetime))

	handler := func(passedInteraction *discordgo.Interaction) error {
		if util.InteractionUserID(passedInteraction) != invokerID {
			return util.SendMessage(session, passedInteraction, false, util.MessageData{
				Embeds:    []*discordgo.MessageEmbed{embeds.ErrorMessageEmbed("Only the user who asked for the reset can answer it.")},
				Ephemeral: true,
			})
		}

		reset := passedInteraction.MessageComponentData().CustomID == embeds.ResetConfirmButtonID
		if reset {
			if err := resetCustomData(d.serverData, guildID); err != nil {
				return err
			}
		}

		resetView.Stop()

		return views.UpdateResponse(session, passedInteraction, views.Config{
			Embeds: []*discordgo.MessageEmbed{embeds.ResetResultEmbed(reset)},
			Components: &views.ComponentHandler{
				MessageComponents: embeds.GetResetButtons(embeds.ResetButtonsConfig{Disabled: true}),
			},
		})
	}

	if err := resetView.SendView(interaction.Interaction, session, handler); err != nil {
		return fmt.Errorf("sending reset view: %w", err)
	}

	// unanswered confirmations stop listening once the message is gone
	time.AfterFunc(resetViewLifetime, resetView.Stop)

	return nil
}
