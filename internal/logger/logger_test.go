package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger(t *testing.T) {
	require.False(t, NewLogger(true).Core().Enabled(zap.DebugLevel))
	require.True(t, NewLogger(false).Core().Enabled(zap.DebugLevel))
}

func TestFieldHelpers(t *testing.T) {
	require.Equal(t, zap.String("channel_id", "c"), ChannelID("c"))
	require.Equal(t, zap.String("guild_id", "g"), GuildID("g"))
	require.Equal(t, zap.String("user_id", "u"), UserID("u"))
}
