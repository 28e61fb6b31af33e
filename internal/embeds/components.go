package embeds

import "github.com/bwmarrin/discordgo"

const (
	ResetConfirmButtonID = "ResetConfirmBtn"
	ResetCancelButtonID  = "ResetCancelBtn"
)

type ResetButtonsConfig struct {
	Disabled bool
}

func GetResetButtons(config ResetButtonsConfig) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Disabled: config.Disabled,
					CustomID: ResetConfirmButtonID,
					Label:    "Reset",
					Style:    discordgo.DangerButton,
					Emoji: &discordgo.ComponentEmoji{
						Name: "🗑️",
					},
				},
				discordgo.Button{
					Disabled: config.Disabled,
					CustomID: ResetCancelButtonID,
					Label:    "Cancel",
					Style:    discordgo.SecondaryButton,
				},
			},
		},
	}
}
