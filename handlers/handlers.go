package handlers

import (
	"drive-linkbot/bot"

	"github.com/bwmarrin/discordgo"
)

// Register all handlers to the bot.
func Register(b *bot.Bot) {
	b.Session.AddHandler(InteractionCreate(b))
	b.Session.AddHandler(GuildCreate(b))
	b.Session.AddHandler(GuildDelete(b))

	// Add a ready handler to log when the bot is connected.
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.Log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("Logged in")
	})
}
