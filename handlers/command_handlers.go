package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"drive-linkbot/bot"
	"drive-linkbot/database"
	"drive-linkbot/models"
	"drive-linkbot/publisher"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
)

const unknownSubcommand = "Failed: unknown subcommand."

// updateTimeout bounds a manual cycle; interaction tokens expire after 15 minutes.
const updateTimeout = 14 * time.Minute

type optionMap map[string]*discordgo.ApplicationCommandInteractionDataOption

func toOptionMap(options []*discordgo.ApplicationCommandInteractionDataOption) optionMap {
	m := make(optionMap, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func (m optionMap) str(name string) string {
	if opt, ok := m[name]; ok {
		return opt.StringValue()
	}
	return ""
}

// subcommand returns the first option of data, which is the invoked
// subcommand or subcommand group.
func subcommand(options []*discordgo.ApplicationCommandInteractionDataOption) *discordgo.ApplicationCommandInteractionDataOption {
	if len(options) == 0 {
		return nil
	}
	return options[0]
}

// HandleUpdate handles the logic for the /update command.
func HandleUpdate(b *bot.Bot, s Responder, i *discordgo.InteractionCreate) {
	if err := deferEphemeral(s, i); err != nil {
		b.Log.Error().Err(err).Msg("Error deferring update interaction")
		return
	}

	// Run the cycle in a goroutine.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), updateTimeout)
		defer cancel()

		_, err := b.Scheduler.Trigger(ctx, i.GuildID)
		followup(s, i, updateReply(err))
	}()
}

// updateReply turns the outcome of a manual cycle into a short message.
func updateReply(err error) string {
	if err == nil {
		return "Successfully updated posts."
	}
	return "Failed: " + describeError(err)
}

func describeError(err error) string {
	switch {
	case errors.Is(err, models.ErrNoTargetChannel):
		return "No target channel is set, use /configure set updatechannel to set one."
	case errors.Is(err, models.ErrInvalidTargetChannel):
		return "updatechannel is not a valid text channel."
	case errors.Is(err, models.ErrRemoteList):
		return "Could not read the drive folder, try again later."
	case errors.Is(err, models.ErrChannelWrite):
		return "Could not update the posts, check my permissions in the update channel."
	case errors.Is(err, models.ErrConfigCorrupt):
		return "The stored configuration for this server is corrupt."
	case errors.Is(err, models.ErrLinkNotFound):
		return "Link was not found."
	case errors.Is(err, models.ErrPatternNotFound):
		return "Pattern was not found."
	case errors.Is(err, context.DeadlineExceeded):
		return "The update took too long."
	default:
		return "An unexpected error occurred."
	}
}

// HandleConfigure handles the logic for the /configure command.
func HandleConfigure(b *bot.Bot, s Responder, i *discordgo.InteractionCreate) {
	sub := subcommand(i.ApplicationCommandData().Options)
	if sub == nil {
		respond(s, i, "Failed to set config value.", true)
		return
	}

	switch sub.Name {
	case "list":
		config, err := b.Store.Get(i.GuildID)
		if err != nil {
			respond(s, i, "Failed: "+describeError(err), true)
			return
		}
		last, err := b.History.LastRun(i.GuildID)
		if err != nil {
			b.Log.Warn().Err(err).Str("guild_id", i.GuildID).Msg("Could not read last run")
		}
		next, _ := b.Scheduler.NextRun(i.GuildID)
		respondEmbed(s, i, configEmbed(config, last, next, time.Now()))
	case "set":
		setting := subcommand(sub.Options)
		if setting == nil {
			respond(s, i, "Failed to set config value.", true)
			return
		}
		var err error
		switch setting.Name {
		case "updatechannel":
			channelID := ""
			if opt, ok := toOptionMap(setting.Options)["channel"]; ok {
				channelID = opt.ChannelValue(nil).ID
			}
			err = setUpdateChannel(b.Store, i.GuildID, channelID)
		default:
			err = fmt.Errorf("unknown setting %q", setting.Name)
		}
		if err != nil {
			b.Log.Warn().Err(err).Str("guild_id", i.GuildID).Msg("Failed to set config value")
			respond(s, i, "Failed to set config value.", true)
			return
		}
		respond(s, i, "Successfully set config value.", true)
	default:
		respond(s, i, unknownSubcommand, true)
	}
}

func setUpdateChannel(store *database.GuildStore, guildID, channelID string) error {
	_, err := store.Update(guildID, func(c *models.GuildConfig) error {
		return c.SetTargetChannel(channelID)
	})
	return err
}

// configEmbed renders the guild's configuration for /configure list.
func configEmbed(config models.GuildConfig, last *models.RunRecord, next, now time.Time) *discordgo.MessageEmbed {
	var values strings.Builder

	channel := "Unset"
	if id := config.TargetChannelID(); id != "" {
		channel = "<#" + id + ">"
	}
	fmt.Fprintf(&values, "updatechannel: %s\n", channel)

	lastUpdate := "Never"
	if !config.LastUpdate.IsZero() {
		lastUpdate = humanize.RelTime(config.LastUpdate, now, "ago", "from now")
	}
	fmt.Fprintf(&values, "last update: %s\n", lastUpdate)
	if !next.IsZero() {
		fmt.Fprintf(&values, "next update: %s\n", humanize.RelTime(next, now, "ago", "from now"))
	}
	if last != nil {
		kind := "automatic"
		if last.Manual {
			kind = "manual"
		}
		outcome := fmt.Sprintf("ok, %d folders in %d posts", last.Folders, last.Pages)
		if last.Error != "" {
			outcome = "failed: " + last.Error
		}
		fmt.Fprintf(&values, "last cycle (%s, %s): %s\n", kind, humanize.RelTime(last.FinishedAt, now, "ago", "from now"), outcome)
	}

	links := "None"
	if len(config.Links) > 0 {
		lines := make([]string, len(config.Links))
		for n, l := range config.Links {
			lines[n] = fmt.Sprintf("%s / [%s](%s)", l.FolderName, l.Name, l.URL)
		}
		links = strings.Join(lines, "\n")
	}

	patterns := "None"
	if len(config.IgnorePatterns) > 0 {
		lines := make([]string, len(config.IgnorePatterns))
		for n, p := range config.IgnorePatterns {
			lines[n] = "`" + p.String() + "`"
		}
		patterns = strings.Join(lines, "\n")
	}

	return &discordgo.MessageEmbed{
		Title:       "Config",
		Color:       publisher.ColorPurple,
		Description: values.String(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Links", Value: truncate(links, 1024)},
			{Name: "Ignore patterns", Value: truncate(patterns, 1024)},
		},
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	const ellipsis = "…"
	cut := strings.LastIndexByte(s[:limit-len(ellipsis)], '\n')
	if cut < 0 {
		cut = limit - len(ellipsis)
	}
	return s[:cut] + ellipsis
}

// HandleLink handles the logic for the /link command.
func HandleLink(b *bot.Bot, s Responder, i *discordgo.InteractionCreate) {
	sub := subcommand(i.ApplicationCommandData().Options)
	if sub == nil {
		respond(s, i, unknownSubcommand, true)
		return
	}
	opts := toOptionMap(sub.Options)

	switch sub.Name {
	case "add":
		link := models.CustomLink{
			FolderName: opts.str("foldername"),
			Name:       opts.str("linkname"),
			URL:        opts.str("url"),
		}
		if err := addLink(b.Store, i.GuildID, link); err != nil {
			respond(s, i, "Failed: "+describeError(err), true)
			return
		}
		respond(s, i, "Successfully added link.", true)
	case "remove":
		if err := removeLink(b.Store, i.GuildID, opts.str("name")); err != nil {
			respond(s, i, "Failed: "+describeError(err), true)
			return
		}
		respond(s, i, "Successfully removed link.", true)
	default:
		respond(s, i, unknownSubcommand, true)
	}
}

func addLink(store *database.GuildStore, guildID string, link models.CustomLink) error {
	_, err := store.Update(guildID, func(c *models.GuildConfig) error {
		c.Links = append(c.Links, link)
		return nil
	})
	return err
}

func removeLink(store *database.GuildStore, guildID, name string) error {
	_, err := store.Update(guildID, func(c *models.GuildConfig) error {
		return c.RemoveLink(name)
	})
	return err
}

// HandlePattern handles the logic for the /pattern command.
func HandlePattern(b *bot.Bot, s Responder, i *discordgo.InteractionCreate) {
	sub := subcommand(i.ApplicationCommandData().Options)
	if sub == nil {
		respond(s, i, unknownSubcommand, true)
		return
	}
	source := toOptionMap(sub.Options).str("pattern")

	switch sub.Name {
	case "add":
		pattern, err := models.NewIgnorePattern(source)
		if err != nil {
			respond(s, i, "Failed: invalid regular expression.", true)
			return
		}
		if err := addPattern(b.Store, i.GuildID, pattern); err != nil {
			respond(s, i, "Failed: "+describeError(err), true)
			return
		}
		respond(s, i, "Successfully added pattern.", true)
	case "remove":
		if err := removePattern(b.Store, i.GuildID, source); err != nil {
			respond(s, i, "Failed: "+describeError(err), true)
			return
		}
		respond(s, i, "Successfully removed pattern.", true)
	default:
		respond(s, i, unknownSubcommand, true)
	}
}

func addPattern(store *database.GuildStore, guildID string, pattern models.IgnorePattern) error {
	_, err := store.Update(guildID, func(c *models.GuildConfig) error {
		c.IgnorePatterns = append(c.IgnorePatterns, pattern)
		return nil
	})
	return err
}

func removePattern(store *database.GuildStore, guildID, source string) error {
	_, err := store.Update(guildID, func(c *models.GuildConfig) error {
		return c.RemovePattern(source)
	})
	return err
}
