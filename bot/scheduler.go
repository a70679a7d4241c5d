package bot

import (
	"context"
	"errors"
	"sync"
	"time"

	"drive-linkbot/models"
	"drive-linkbot/utils"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultUpdateInterval is the cadence of automatic publish cycles.
const DefaultUpdateInterval = time.Hour

// Publisher runs one publish cycle for a guild.
type Publisher interface {
	Publish(ctx context.Context, guildID string, isManual bool) (models.Run, error)
}

// UpdateClock reports when a guild was last published.
type UpdateClock interface {
	LastUpdate(guildID string) (time.Time, error)
}

// cadence fires at anchor + k*interval, so cycles keep a fixed wall-clock
// rhythm instead of drifting by the duration of each cycle.
type cadence struct {
	anchor   time.Time
	interval time.Duration
}

func (c cadence) Next(t time.Time) time.Time {
	next := c.anchor.Add(c.interval)
	if next.After(t) {
		return next
	}
	periods := t.Sub(c.anchor)/c.interval + 1
	return c.anchor.Add(periods * c.interval)
}

type guildTask struct {
	cycle sync.Mutex // serializes publish cycles for the guild
	entry cron.EntryID
}

// Scheduler owns one recurring publish entry per guild.
type Scheduler struct {
	cron      *cron.Cron
	publisher Publisher
	clock     UpdateClock
	interval  time.Duration
	log       zerolog.Logger
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mutex  sync.Mutex
	guilds map[string]*guildTask
}

// NewScheduler creates a Scheduler. It does not fire anything until Start.
func NewScheduler(publisher Publisher, clock UpdateClock, interval time.Duration, log zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultUpdateInterval
	}
	log = log.With().Str("component", "scheduler").Logger()
	cronLog := utils.CronLogger(log)
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:      cron.New(cron.WithLogger(cronLog), cron.WithChain(cron.Recover(cronLog))),
		publisher: publisher,
		clock:     clock,
		interval:  interval,
		log:       log,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
		guilds:    make(map[string]*guildTask),
	}
}

// Start begins firing scheduled entries.
func (s *Scheduler) Start() {
	s.log.Info().Dur("interval", s.interval).Msg("Initializing scheduler...")
	s.cron.Start()
}

// Stop halts the timers, cancels running cycles and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.log.Info().Msg("Scheduler stopped.")
}

// AddJob registers a job on a standard cron spec such as "@daily".
func (s *Scheduler) AddJob(spec string, job func()) error {
	_, err := s.cron.AddFunc(spec, job)
	return err
}

// InitGuild arms the guild's timer once. A guild whose last update is older
// than one interval is published right away before the timer is armed.
func (s *Scheduler) InitGuild(guildID string) {
	s.mutex.Lock()
	if _, ok := s.guilds[guildID]; ok {
		s.mutex.Unlock()
		return
	}
	task := &guildTask{}
	s.guilds[guildID] = task
	task.cycle.Lock()
	s.mutex.Unlock()
	defer task.cycle.Unlock()

	now := s.now()
	anchor := now
	last, err := s.clock.LastUpdate(guildID)
	switch {
	case err != nil:
		s.log.Error().Err(err).Str("guild_id", guildID).Msg("Could not read last update, publishing on next interval")
	case now.Sub(last) > s.interval:
		s.log.Info().Str("guild_id", guildID).Time("last_update", last).Msg("Guild is stale, publishing now")
		s.run(guildID, false)
		anchor = s.now()
	case last.After(now):
		// clock skew: never schedule further out than one interval
	default:
		anchor = last
	}

	s.arm(guildID, task, anchor)
}

// Trigger runs a manual cycle for the guild and restarts its timer with a
// full interval from the moment the cycle finishes.
func (s *Scheduler) Trigger(ctx context.Context, guildID string) (models.Run, error) {
	task := s.task(guildID)

	s.mutex.Lock()
	if task.entry != 0 {
		s.cron.Remove(task.entry)
		task.entry = 0
	}
	s.mutex.Unlock()

	task.cycle.Lock()
	defer task.cycle.Unlock()

	run, err := s.publisher.Publish(ctx, guildID, true)
	s.arm(guildID, task, s.now())
	return run, err
}

// RemoveGuild drops the guild's timer.
func (s *Scheduler) RemoveGuild(guildID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	task, ok := s.guilds[guildID]
	if !ok {
		return
	}
	if task.entry != 0 {
		s.cron.Remove(task.entry)
	}
	delete(s.guilds, guildID)
	s.log.Info().Str("guild_id", guildID).Msg("Removed guild schedule")
}

// NextRun returns when the guild's timer will fire next, if armed.
func (s *Scheduler) NextRun(guildID string) (time.Time, bool) {
	s.mutex.Lock()
	task, ok := s.guilds[guildID]
	var id cron.EntryID
	if ok {
		id = task.entry
	}
	s.mutex.Unlock()
	if id == 0 {
		return time.Time{}, false
	}
	entry := s.cron.Entry(id)
	if !entry.Valid() {
		return time.Time{}, false
	}
	return entry.Next, !entry.Next.IsZero()
}

func (s *Scheduler) task(guildID string) *guildTask {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	task, ok := s.guilds[guildID]
	if !ok {
		task = &guildTask{}
		s.guilds[guildID] = task
	}
	return task
}

func (s *Scheduler) arm(guildID string, task *guildTask, anchor time.Time) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if current, ok := s.guilds[guildID]; !ok || current != task {
		return
	}
	if task.entry != 0 {
		s.cron.Remove(task.entry)
	}
	task.entry = s.cron.Schedule(cadence{anchor: anchor, interval: s.interval}, cron.FuncJob(func() {
		s.fire(guildID, task)
	}))
	s.log.Debug().Str("guild_id", guildID).Time("anchor", anchor).Msg("Armed guild timer")
}

// fire runs an automatic cycle unless one is already running for the guild.
func (s *Scheduler) fire(guildID string, task *guildTask) {
	if !task.cycle.TryLock() {
		s.log.Info().Str("guild_id", guildID).Msg("Cycle already running, skipping scheduled fire")
		return
	}
	defer task.cycle.Unlock()
	s.run(guildID, false)
}

func (s *Scheduler) run(guildID string, isManual bool) {
	_, err := s.publisher.Publish(s.ctx, guildID, isManual)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrNoTargetChannel):
		s.log.Debug().Str("guild_id", guildID).Msg("No update channel configured, nothing to publish")
	default:
		s.log.Warn().Err(err).Str("guild_id", guildID).Msg("Scheduled publish failed, will retry next interval")
	}
}
