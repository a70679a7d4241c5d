package handlers

import (
	"drive-linkbot/bot"
	"drive-linkbot/utils"

	"github.com/bwmarrin/discordgo"
)

type commandHandler func(b *bot.Bot, s Responder, i *discordgo.InteractionCreate)

// commandHandlers maps a command name to its handler.
var commandHandlers = map[string]commandHandler{
	"update":    HandleUpdate,
	"configure": HandleConfigure,
	"link":      HandleLink,
	"pattern":   HandlePattern,
}

// commandPermissions maps "command" or "command subcommand" to the level it
// requires. The more specific key wins.
var commandPermissions = map[string]string{
	"update":         utils.LevelAdmin,
	"configure":      utils.LevelAdmin,
	"configure list": utils.LevelGuest,
	"link":           utils.LevelAdmin,
	"pattern":        utils.LevelAdmin,
}

// requiredLevel returns the permission level for an invocation, or "" when
// the command is unknown.
func requiredLevel(data discordgo.ApplicationCommandInteractionData) string {
	if len(data.Options) > 0 {
		if level, ok := commandPermissions[data.Name+" "+data.Options[0].Name]; ok {
			return level
		}
	}
	return commandPermissions[data.Name]
}

// CommandDispatcher is the central handler for all application command interactions.
// It performs permission checks and then dispatches the interaction to the appropriate handler.
func CommandDispatcher(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()

	if i.GuildID == "" {
		respond(s, i, "🚫 This command can only be used in a server.", true)
		return
	}

	handler, ok := commandHandlers[data.Name]
	if !ok {
		respond(s, i, "🚫 Internal error: Unknown command.", true)
		return
	}

	if !b.Auth.CheckPermission(i, requiredLevel(data)) {
		respond(s, i, "🚫 You do not have permission to use this command.", true)
		return
	}

	handler(b, s, i)
}
