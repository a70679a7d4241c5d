package handlers

import (
	"drive-linkbot/bot"

	"github.com/bwmarrin/discordgo"
)

// GuildCreate installs the slash commands in a guild and starts its publish
// schedule. It fires for every guild on connect and whenever the bot joins one.
func GuildCreate(b *bot.Bot) func(s *discordgo.Session, g *discordgo.GuildCreate) {
	return func(s *discordgo.Session, g *discordgo.GuildCreate) {
		if g.Unavailable {
			return
		}
		log := b.Log.With().Str("guild_id", g.ID).Logger()

		if _, err := s.ApplicationCommandBulkOverwrite(s.State.User.ID, g.ID, b.Commands); err != nil {
			log.Error().Err(err).Msg("Cannot register commands")
		} else {
			log.Info().Str("guild", g.Name).Int("commands", len(b.Commands)).Msg("Registered commands")
		}

		b.Scheduler.InitGuild(g.ID)
	}
}

// GuildDelete stops the schedule of a guild the bot was removed from.
// Outages also produce GuildDelete events; those keep the schedule.
func GuildDelete(b *bot.Bot) func(s *discordgo.Session, g *discordgo.GuildDelete) {
	return func(s *discordgo.Session, g *discordgo.GuildDelete) {
		if g.Guild == nil || g.Unavailable {
			return
		}
		b.Scheduler.RemoveGuild(g.ID)
	}
}
