package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const (
	ColorInfo  = 0x00ff00 // Green
	ColorWarn  = 0xffff00 // Yellow
	ColorError = 0xff0000 // Red
)

// NewLogger builds the process logger. An unknown level falls back to info.
func NewLogger(level string, pretty bool) zerolog.Logger {
	var out io.Writer = os.Stderr
	if pretty {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// EmbedSender posts an embed to a channel. *discordgo.Session satisfies it.
type EmbedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// AdminChannelHook mirrors warnings and errors to an admin channel as embeds.
type AdminChannelHook struct {
	sender    EmbedSender
	channelID string
	async     bool
}

// NewAdminChannelHook creates a hook posting to channelID.
func NewAdminChannelHook(sender EmbedSender, channelID string) *AdminChannelHook {
	return &AdminChannelHook{sender: sender, channelID: channelID, async: true}
}

// WithAdminChannel returns logger with an AdminChannelHook attached, or
// logger unchanged when no channel is configured.
func WithAdminChannel(logger zerolog.Logger, sender EmbedSender, channelID string) zerolog.Logger {
	if channelID == "" {
		logger.Warn().Msg("bot.admin_channel_id is not set, logging to channel is disabled")
		return logger
	}
	return logger.Hook(NewAdminChannelHook(sender, channelID))
}

func (h *AdminChannelHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	if level < zerolog.WarnLevel || level == zerolog.NoLevel || level == zerolog.Disabled {
		return
	}
	embed := levelEmbed(level, msg)
	if h.async {
		go h.send(embed)
		return
	}
	h.send(embed)
}

func (h *AdminChannelHook) send(embed *discordgo.MessageEmbed) {
	if _, err := h.sender.ChannelMessageSendEmbed(h.channelID, embed); err != nil {
		// Writing through the hooked logger would recurse.
		fmt.Fprintf(os.Stderr, "Error sending log message to Discord: %v\n", err)
	}
}

func levelEmbed(level zerolog.Level, msg string) *discordgo.MessageEmbed {
	color := ColorInfo
	switch {
	case level >= zerolog.ErrorLevel:
		color = ColorError
	case level == zerolog.WarnLevel:
		color = ColorWarn
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Log Level: %s", strings.ToUpper(level.String())),
		Color:       color,
		Description: msg,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

type cronLogger struct {
	log zerolog.Logger
}

// CronLogger adapts a zerolog.Logger to cron.Logger. Cron's own chatter is
// logged at debug level.
func CronLogger(log zerolog.Logger) cron.Logger {
	return cronLogger{log: log}
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
