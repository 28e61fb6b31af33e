package views

import (
	"fmt"
	"sync"
	"time"

	"github.com/TeddyKahwaji/spice-data-go/internal/util"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// ComponentHandler holds the interactive elements attached to a view message.
type ComponentHandler struct {
	MessageComponents []discordgo.MessageComponent
}

// Config represents the configuration for a view: its components, embeds, content and options.
type Config struct {
	Components *ComponentHandler         // Interactive components of the message.
	Embeds     []*discordgo.MessageEmbed // Embeds sent with the message.
	Content    string                    // The message content.
	customConfigOptions
}

// customConfigOptions holds the settings applied through ConfigOpts.
type customConfigOptions struct {
	logger          *zap.Logger   // Logger for component handler failures.
	ephemeral       bool          // Whether only the invoking user sees the message.
	deletionEnabled bool          // Whether the message is deleted after deletionTimer.
	deletionTimer   time.Duration // Delay before the message is deleted.
}

// ConfigOpts is a functional option modifying a Config.
type ConfigOpts func(*Config)

// WithLogger sets the logger used to report component handler failures.
func WithLogger(logger *zap.Logger) ConfigOpts {
	return func(v *Config) {
		v.logger = logger
	}
}

// WithEphemeral sends the view so that only the invoking user can see it.
func WithEphemeral(ephemeral bool) ConfigOpts {
	return func(v *Config) {
		v.ephemeral = ephemeral
	}
}

// WithDeletion removes the view message after deletionTimer. Ephemeral views cannot be deleted
// by the bot and ignore this option.
func WithDeletion(deletionTimer time.Duration) ConfigOpts {
	return func(v *Config) {
		v.deletionEnabled = true
		v.deletionTimer = deletionTimer
	}
}

// View is a message with components whose interactions are routed to a single handler until
// the view is stopped.
type View struct {
	Config    Config // Holds the configuration for the view.
	MessageID string // The ID of the sent message.
	ChannelID string // The ID of the channel the message was sent to.

	mu            sync.Mutex
	removeHandler func()
}

// Handler receives every component interaction on the view message.
type Handler func(*discordgo.Interaction) error

// NewView creates a View from config with opts applied.
func NewView(config Config, opts ...ConfigOpts) *View {
	for _, opt := range opts {
		opt(&config)
	}

	return &View{
		Config: config,
	}
}

func (v *View) webhookParams() *discordgo.WebhookParams {
	params := &discordgo.WebhookParams{
		Content: v.Config.Content,
		Embeds:  v.Config.Embeds,
	}

	if v.Config.Components != nil {
		params.Components = v.Config.Components.MessageComponents
	}

	if v.Config.ephemeral {
		params.Flags = discordgo.MessageFlagsEphemeral
	}

	return params
}

// SendView sends the view as a follow-up to a deferred interaction and routes component
// interactions on the sent message to handler.
func (v *View) SendView(interaction *discordgo.Interaction, session *discordgo.Session, handler Handler) error {
	message, err := session.FollowupMessageCreate(interaction, true, v.webhookParams())
	if err != nil {
		return fmt.Errorf("follow-up message create: %w", err)
	}

	if message == nil {
		return fmt.Errorf("empty message returned for interaction %s", interaction.ID)
	}

	v.MessageID = message.ID
	v.ChannelID = message.ChannelID

	if v.Config.deletionEnabled && !v.Config.ephemeral {
		if err := util.DeleteMessageAfterTime(session, v.ChannelID, v.MessageID, v.Config.deletionTimer); err != nil {
			return fmt.Errorf("deleting message after time threshold: %w", err)
		}
	}

	componentHandler := func(_ *discordgo.Session, passedInteraction *discordgo.InteractionCreate) {
		if passedInteraction.Type != discordgo.InteractionMessageComponent {
			return
		}

		if passedInteraction.Message == nil || passedInteraction.Message.ID != v.MessageID {
			return
		}

		if err := handler(passedInteraction.Interaction); err != nil && v.Config.logger != nil {
			v.Config.logger.Error("message component handler failed",
				zap.Error(err), zap.String("messageID", v.MessageID),
				zap.String("customMessageID", passedInteraction.MessageComponentData().CustomID))
		}
	}

	v.mu.Lock()
	v.removeHandler = session.AddHandler(componentHandler)
	v.mu.Unlock()

	return nil
}

// Stop detaches the view from the session. Further component interactions are ignored.
func (v *View) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.removeHandler != nil {
		v.removeHandler()
		v.removeHandler = nil
	}
}

// UpdateResponse answers a component interaction by replacing the view message in place.
func UpdateResponse(session *discordgo.Session, interaction *discordgo.Interaction, config Config) error {
	data := &discordgo.InteractionResponseData{
		Content: config.Content,
		Embeds:  config.Embeds,
	}

	if config.Components != nil {
		data.Components = config.Components.MessageComponents
	}

	if err := session.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: data,
	}); err != nil {
		return fmt.Errorf("sending update message: %w", err)
	}

	return nil
}
