package command

import "github.com/bwmarrin/discordgo"

var textChannelTypes = []discordgo.ChannelType{
	discordgo.ChannelTypeGuildText,
	discordgo.ChannelTypeGuildNews,
}

// UpdateCommand defines the structure for the /update command.
type UpdateCommand struct{}

// Definition returns the application command definition.
func (c *UpdateCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "update",
		Description: "Poll endpoints for updates immediately.",
	}
}

// ConfigureCommand defines the structure for the /configure command.
type ConfigureCommand struct{}

// Definition returns the application command definition.
func (c *ConfigureCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "configure",
		Description: "Update or view server configuration values.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "list",
				Description: "Show all configuration options and their values.",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
			},
			{
				Name:        "set",
				Description: "Set a configuration value.",
				Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        "updatechannel",
						Description: "Channel the bot will send and edit messages in.",
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Options: []*discordgo.ApplicationCommandOption{
							{
								Name:         "channel",
								Description:  "The target channel.",
								Type:         discordgo.ApplicationCommandOptionChannel,
								ChannelTypes: textChannelTypes,
								Required:     true,
							},
						},
					},
				},
			},
		},
	}
}

// LinkCommand defines the structure for the /link command.
type LinkCommand struct{}

// Definition returns the application command definition.
func (c *LinkCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "link",
		Description: "Add or remove custom links.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "add",
				Description: "Add a custom link under a folder.",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        "foldername",
						Description: "Folder name to put link under.",
						Type:        discordgo.ApplicationCommandOptionString,
						Required:    true,
					},
					{
						Name:        "linkname",
						Description: "Visible name of the link.",
						Type:        discordgo.ApplicationCommandOptionString,
						Required:    true,
					},
					{
						Name:        "url",
						Description: "URL of the custom link.",
						Type:        discordgo.ApplicationCommandOptionString,
						Required:    true,
					},
				},
			},
			{
				Name:        "remove",
				Description: "Remove an existing custom link.",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        "name",
						Description: "Name of the link to remove.",
						Type:        discordgo.ApplicationCommandOptionString,
						Required:    true,
					},
				},
			},
		},
	}
}

// PatternCommand defines the structure for the /pattern command.
type PatternCommand struct{}

// Definition returns the application command definition.
func (c *PatternCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "pattern",
		Description: "Add or remove ignore patterns.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "add",
				Description: "Ignore every path matching a regular expression.",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        "pattern",
						Description: "Regular expression tested against folder and file paths.",
						Type:        discordgo.ApplicationCommandOptionString,
						Required:    true,
					},
				},
			},
			{
				Name:        "remove",
				Description: "Remove an existing ignore pattern.",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        "pattern",
						Description: "The pattern exactly as it was added.",
						Type:        discordgo.ApplicationCommandOptionString,
						Required:    true,
					},
				},
			},
		},
	}
}
