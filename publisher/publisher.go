package publisher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"drive-linkbot/models"
	"drive-linkbot/scanner"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store is the guild config contract the publish cycle depends on.
type Store interface {
	Get(guildID string) (models.GuildConfig, error)
	Update(guildID string, fn func(*models.GuildConfig) error) (models.GuildConfig, error)
}

// TreeScanner lists the remote tree.
type TreeScanner interface {
	Scan(ctx context.Context, root models.RemoteEntry, patterns []models.IgnorePattern) (*models.FolderMap, error)
}

// Observer is notified after every publish cycle.
type Observer interface {
	ObserveCycle(run models.Run)
}

// Publisher runs scan, merge, render and reconcile for one guild.
type Publisher struct {
	store     Store
	scanner   TreeScanner
	channel   Channel
	root      models.RemoteEntry
	capacity  int
	observers []Observer
	log       zerolog.Logger
	now       func() time.Time
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithPageCapacity sets how many folder sections go into one message.
func WithPageCapacity(capacity int) Option {
	return func(p *Publisher) {
		p.capacity = capacity
	}
}

// WithObserver registers an observer for cycle results.
func WithObserver(o Observer) Option {
	return func(p *Publisher) {
		p.observers = append(p.observers, o)
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		p.now = now
	}
}

// New creates a Publisher scanning from root.
func New(store Store, treeScanner TreeScanner, channel Channel, root models.RemoteEntry, log zerolog.Logger, options ...Option) *Publisher {
	p := &Publisher{
		store:    store,
		scanner:  treeScanner,
		channel:  channel,
		root:     root,
		capacity: DefaultPageCapacity,
		log:      log.With().Str("component", "publisher").Logger(),
		now:      time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Publish runs one cycle for guildID. Tracked message IDs and the last
// update time are only persisted when every step succeeds.
func (p *Publisher) Publish(ctx context.Context, guildID string, isManual bool) (models.Run, error) {
	run := models.Run{
		ID:        uuid.NewString(),
		GuildID:   guildID,
		Manual:    isManual,
		StartedAt: p.now(),
	}
	log := p.log.With().Str("guild_id", guildID).Str("run_id", run.ID).Bool("manual", isManual).Logger()
	log.Info().Msg("Starting publish cycle")

	run.Err = p.publish(ctx, guildID, isManual, &run)
	run.FinishedAt = p.now()

	if errors.Is(run.Err, models.ErrNoTargetChannel) {
		log.Info().Msg("No update channel configured, skipping")
		return run, run.Err
	}

	var partial *PartialWriteError
	if errors.As(run.Err, &partial) {
		log.Warn().Strs("message_ids", partial.Sent).Str("channel_id", partial.ChannelID).
			Msg("Messages posted by the failed cycle are not tracked, delete them by hand")
	}

	switch {
	case run.Err != nil:
		log.Error().Err(run.Err).Msg("Publish cycle failed")
	default:
		log.Info().Int("folders", run.Folders).Int("pages", run.Pages).
			Dur("took", run.FinishedAt.Sub(run.StartedAt)).Msg("Publish cycle finished")
	}
	for _, o := range p.observers {
		o.ObserveCycle(run)
	}
	return run, run.Err
}

func (p *Publisher) publish(ctx context.Context, guildID string, isManual bool, run *models.Run) error {
	config, err := p.store.Get(guildID)
	if err != nil {
		return err
	}

	channelID := config.TargetChannelID()
	if channelID == "" {
		return models.ErrNoTargetChannel
	}
	if err := p.checkChannel(channelID); err != nil {
		return err
	}

	folders, err := p.scanner.Scan(ctx, p.root, config.IgnorePatterns)
	if err != nil {
		return err
	}
	folders = scanner.Merge(folders, config.Links)
	run.Folders = folders.Len()

	pages := Render(folders, isManual, p.capacity, p.now())
	run.Pages = len(pages)
	for i, page := range pages {
		if n := PageLength(page); n > MaxPageLength {
			p.log.Warn().Str("guild_id", guildID).Int("page", i).Int("length", n).
				Msg("Page exceeds Discord's embed text limit, lower bot.page_capacity")
		}
	}

	ids, err := Reconcile(p.channel, channelID, config.MessageIDs(), pages)
	if err != nil {
		return err
	}

	_, err = p.store.Update(guildID, func(c *models.GuildConfig) error {
		if err := c.SetMessageIDs(ids); err != nil {
			return fmt.Errorf("invalid message id: %w", err)
		}
		c.LastUpdate = p.now()
		return nil
	})
	return err
}

func (p *Publisher) checkChannel(channelID string) error {
	ch, err := p.channel.Channel(channelID)
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: channel %s not found", models.ErrInvalidTargetChannel, channelID)
		}
		return fmt.Errorf("%w: resolve channel %s: %v", models.ErrChannelWrite, channelID, err)
	}
	switch ch.Type {
	case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews:
		return nil
	default:
		return fmt.Errorf("%w: channel %s", models.ErrInvalidTargetChannel, channelID)
	}
}
