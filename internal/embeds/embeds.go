package embeds

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

const (
	colorError   = 0x992D22
	colorSuccess = 0x2ECC71
	colorInfo    = 0x3498DB
)

func ErrorMessageEmbed(msg string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "❌ **Invalid usage**",
		Description: msg,
		Color:       colorError,
	}
}

// UnexpectedErrorEmbed is sent when a command fails. detail is only shown to users who asked
// for full errors through /settings.
func UnexpectedErrorEmbed(detail string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "⚠️ **Something went wrong**",
		Description: "An unexpected error occurred, please try again later.",
		Color:       colorError,
	}

	if detail != "" {
		embed.Fields = []*discordgo.MessageEmbedField{
			{
				Name:  "`Error:`",
				Value: fmt.Sprintf("```%s```", detail),
			},
		}
	}

	return embed
}

func SettingsEmbed(title string, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       colorInfo,
	}
}

func CustomDataEmbed(guildName string, customData string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🗂️ Custom data",
		Description: fmt.Sprintf("The custom data of **%s** is:\n```%s```", guildName, customData),
		Color:       colorInfo,
	}
}

func CustomDataSetEmbed(customData string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "✅ Custom data updated",
		Description: fmt.Sprintf("The custom data of this server has been set to:\n```%s```", customData),
		Color:       colorSuccess,
	}
}

func ResetConfirmationEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "♻️ Reset custom data?",
		Description: "This restores the default custom data for this server.",
		Color:       colorInfo,
	}
}

func ResetResultEmbed(reset bool) *discordgo.MessageEmbed {
	if !reset {
		return &discordgo.MessageEmbed{
			Title:       "Reset cancelled",
			Description: "The custom data was left untouched.",
			Color:       colorInfo,
		}
	}

	return &discordgo.MessageEmbed{
		Title:       "✅ Custom data reset",
		Description: "The custom data of this server is back to its default.",
		Color:       colorSuccess,
	}
}
