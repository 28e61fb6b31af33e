package util

import (
	"fmt"
	"time"

	"github.com/TeddyKahwaji/spice-data-go/pkg/funcs"
	"github.com/bwmarrin/discordgo"
)

func DeleteMessageAfterTime(session *discordgo.Session, channelID string, messageID string, timeDelay time.Duration) error {
	message, err := session.ChannelMessage(channelID, messageID)
	if err != nil {
		return fmt.Errorf("getting channel message: %w", err)
	}

	_ = time.AfterFunc(timeDelay, func() {
		_ = session.ChannelMessageDelete(channelID, message.ID)
	})

	return nil
}

// InteractionUserID returns the invoking user, whether the interaction came from a guild or a DM.
func InteractionUserID(interaction *discordgo.Interaction) string {
	if interaction.Member != nil && interaction.Member.User != nil {
		return interaction.Member.User.ID
	}

	if interaction.User != nil {
		return interaction.User.ID
	}

	return ""
}

// HasAnyPermission reports whether the interaction member holds at least one of permissions.
// Members outside a guild have none.
func HasAnyPermission(member *discordgo.Member, permissions ...int64) bool {
	if member == nil {
		return false
	}

	return funcs.Any(permissions, func(permission int64) bool {
		return member.Permissions&permission == permission
	})
}

type sendMessageOption struct {
	deletion      bool
	deletionTimer time.Duration
	channelID     string
}

type SendMessageOpt func(*sendMessageOption)

type MessageData struct {
	Embeds     []*discordgo.MessageEmbed
	Components []discordgo.MessageComponent
	Ephemeral  bool
	Type       discordgo.InteractionResponseType
}

func WithDeletion(deletionTimer time.Duration, channelID string) SendMessageOpt {
	return func(opt *sendMessageOption) {
		opt.deletionTimer = deletionTimer
		opt.deletion = true
		opt.channelID = channelID
	}
}

func (m MessageData) flags() discordgo.MessageFlags {
	if m.Ephemeral {
		return discordgo.MessageFlagsEphemeral
	}

	return 0
}

func SendMessage(session *discordgo.Session, interaction *discordgo.Interaction, isFollowUp bool, msgData MessageData, opts ...SendMessageOpt) error {
	sendMessageOptions := sendMessageOption{}
	for _, opt := range opts {
		opt(&sendMessageOptions)
	}

	if isFollowUp {
		params := &discordgo.WebhookParams{
			Embeds:     msgData.Embeds,
			Components: msgData.Components,
			Flags:      msgData.flags(),
		}

		if _, err := session.FollowupMessageCreate(interaction, true, params); err != nil {
			return fmt.Errorf("sending follow up message: %w", err)
		}
	} else {
		responseType := msgData.Type
		if responseType == 0 {
			responseType = discordgo.InteractionResponseChannelMessageWithSource
		}

		err := session.InteractionRespond(interaction, &discordgo.InteractionResponse{
			Type: responseType,
			Data: &discordgo.InteractionResponseData{
				Embeds:     msgData.Embeds,
				Components: msgData.Components,
				Flags:      msgData.flags(),
			},
		})
		if err != nil {
			return fmt.Errorf("sending interaction response: %w", err)
		}
	}

	if sendMessageOptions.deletion {
		message, err := session.InteractionResponse(interaction)
		if err != nil {
			return fmt.Errorf("retrieving messageID from interaction response: %w", err)
		}

		if err := DeleteMessageAfterTime(session, sendMessageOptions.channelID, message.ID, sendMessageOptions.deletionTimer); err != nil {
			return fmt.Errorf("deleting message: %w", err)
		}
	}

	return nil
}
