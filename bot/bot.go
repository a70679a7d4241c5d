package bot

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"drive-linkbot/command"
	"drive-linkbot/config"
	"drive-linkbot/database"
	"drive-linkbot/drive"
	"drive-linkbot/grpc"
	"drive-linkbot/publisher"
	"drive-linkbot/scanner"
	"drive-linkbot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// Bot encapsulates the bot's state.
type Bot struct {
	Session   *discordgo.Session
	Settings  *config.Settings
	Store     *database.GuildStore
	History   *database.History
	Publisher *publisher.Publisher
	Scheduler *Scheduler
	Health    *grpc.HealthServer
	Auth      *utils.Auth
	Commands  []*discordgo.ApplicationCommand
	Log       zerolog.Logger
}

// NewBot creates and wires a new Bot instance.
func NewBot(ctx context.Context, settings *config.Settings, log zerolog.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + settings.BotToken)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds

	log = utils.WithAdminChannel(log, dg, settings.Bot.AdminChannelID)

	lister, err := drive.NewClient(ctx, drive.Config{
		CredentialsFile: settings.Drive.CredentialsFile,
		TokenFile:       settings.Drive.TokenFile,
		RequestTimeout:  settings.Drive.RequestTimeout,
	}, log)
	if err != nil {
		return nil, err
	}

	history, err := database.OpenHistory(settings.Data.HistoryDB, log)
	if err != nil {
		return nil, err
	}

	b := &Bot{
		Session:  dg,
		Settings: settings,
		Store:    database.NewGuildStore(settings.Data.Dir, log),
		History:  history,
		Auth:     utils.NewAuth(settings.Commands.Auth.Developers, settings.Commands.Auth.AdminRoles),
		Commands: command.GetCommandDefinitions(),
		Log:      log,
	}

	options := []publisher.Option{
		publisher.WithPageCapacity(settings.Bot.PageCapacity),
		publisher.WithObserver(history),
	}
	if settings.Health.Addr != "" {
		b.Health = grpc.NewHealthServer(settings.Health.Addr, log)
		options = append(options, publisher.WithObserver(b.Health))
	}

	root := drive.RootEntry(settings.Drive.RootID, settings.Drive.RootName, settings.Drive.RootURL)
	b.Publisher = publisher.New(
		b.Store,
		scanner.New(lister, settings.Drive.MaxConcurrentRequests, log),
		dg,
		root,
		log,
		options...,
	)
	b.Scheduler = NewScheduler(b.Publisher, b.Store, settings.Bot.UpdateInterval, log)
	return b, nil
}

// Start opens the bot's session and registers handlers.
func (b *Bot) Start(registerHandlers func(*Bot)) error {
	registerHandlers(b)

	if b.Health != nil {
		if err := b.Health.Start(); err != nil {
			return err
		}
	}

	if err := b.Scheduler.AddJob("@daily", b.History.CleanupOldRuns); err != nil {
		return fmt.Errorf("could not set up history cleanup job: %w", err)
	}
	b.Scheduler.Start()

	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}
	if b.Health != nil {
		b.Health.SetServing(true)
	}

	b.Log.Info().Msg("Bot is now running. Press CTRL-C to exit.")
	return nil
}

// Stop gracefully closes the bot's session.
func (b *Bot) Stop() {
	b.Scheduler.Stop()
	if b.Health != nil {
		b.Health.Stop()
	}
	if b.Session != nil {
		b.Session.Close()
	}
	if err := b.History.Close(); err != nil {
		b.Log.Error().Err(err).Msg("Error closing history database")
	}
	b.Log.Info().Msg("Bot stopped gracefully.")
}

// Run is the main entry point for the bot application.
func Run(settings *config.Settings, log zerolog.Logger, registerHandlers func(*Bot)) {
	b, err := NewBot(context.Background(), settings, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing bot")
	}

	if err := b.Start(registerHandlers); err != nil {
		log.Fatal().Err(err).Msg("Error starting bot")
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	b.Stop()
}
