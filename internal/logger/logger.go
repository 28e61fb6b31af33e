package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func GuildID(guildID string) zapcore.Field {
	return zap.String("guild_id", guildID)
}

func ChannelID(channelID string) zapcore.Field {
	return zap.String("channel_id", channelID)
}

func UserID(userID string) zapcore.Field {
	return zap.String("user_id", userID)
}

func Command(name string) zapcore.Field {
	return zap.String("command", name)
}

func Path(path string) zapcore.Field {
	return zap.String("path", path)
}

// NewLogger returns a JSON production logger when prod is set and a development logger otherwise.
func NewLogger(prod bool) *zap.Logger {
	if prod {
		return zap.Must(zap.NewProduction(zap.WithCaller(true)))
	}

	return zap.Must(zap.NewDevelopment())
}
