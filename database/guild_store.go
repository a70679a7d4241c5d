package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"drive-linkbot/models"

	"github.com/rs/zerolog"
)

// GuildStore keeps one cached GuildConfig per guild, backed by a JSON file per guild.
type GuildStore struct {
	dir string
	log zerolog.Logger

	mutex  sync.Mutex
	guilds map[string]*guildEntry
}

type guildEntry struct {
	mutex  sync.Mutex
	config models.GuildConfig
}

// NewGuildStore creates a store that persists records under dir.
func NewGuildStore(dir string, log zerolog.Logger) *GuildStore {
	return &GuildStore{
		dir:    dir,
		log:    log.With().Str("component", "guild_store").Logger(),
		guilds: make(map[string]*guildEntry),
	}
}

func (gs *GuildStore) path(guildID string) string {
	return filepath.Join(gs.dir, guildID+".json")
}

// entry returns the cached entry for guildID, loading it on first access.
// A corrupt record is not cached so a repaired file is picked up next time.
func (gs *GuildStore) entry(guildID string) (*guildEntry, error) {
	gs.mutex.Lock()
	defer gs.mutex.Unlock()

	if e, ok := gs.guilds[guildID]; ok {
		return e, nil
	}

	config, err := gs.load(guildID)
	if err != nil {
		return nil, err
	}
	e := &guildEntry{config: config}
	gs.guilds[guildID] = e
	return e, nil
}

func (gs *GuildStore) load(guildID string) (models.GuildConfig, error) {
	data, err := os.ReadFile(gs.path(guildID))
	if errors.Is(err, fs.ErrNotExist) {
		gs.log.Debug().Str("guild_id", guildID).Msg("No stored config, using defaults")
		return models.NewGuildConfig(guildID), nil
	}
	if err != nil {
		return models.GuildConfig{}, fmt.Errorf("failed to read config for guild %s: %w", guildID, err)
	}

	config := models.NewGuildConfig(guildID)
	if err := json.Unmarshal(data, &config); err != nil {
		if errors.Is(err, models.ErrConfigCorrupt) {
			return models.GuildConfig{}, fmt.Errorf("guild %s: %w", guildID, err)
		}
		return models.GuildConfig{}, fmt.Errorf("guild %s: %w: %v", guildID, models.ErrConfigCorrupt, err)
	}
	config.GuildID = guildID
	return config, nil
}

// Get returns a snapshot of the guild's record.
func (gs *GuildStore) Get(guildID string) (models.GuildConfig, error) {
	e, err := gs.entry(guildID)
	if err != nil {
		return models.GuildConfig{}, err
	}
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.config.Clone(), nil
}

// LastUpdate returns the time of the guild's last completed publish cycle.
func (gs *GuildStore) LastUpdate(guildID string) (time.Time, error) {
	config, err := gs.Get(guildID)
	if err != nil {
		return time.Time{}, err
	}
	return config.LastUpdate, nil
}

// Update applies fn to a copy of the guild's record and persists it. The
// cached record only changes if both fn and the save succeed.
func (gs *GuildStore) Update(guildID string, fn func(*models.GuildConfig) error) (models.GuildConfig, error) {
	e, err := gs.entry(guildID)
	if err != nil {
		return models.GuildConfig{}, err
	}
	e.mutex.Lock()
	defer e.mutex.Unlock()

	next := e.config.Clone()
	if err := fn(&next); err != nil {
		return models.GuildConfig{}, err
	}
	if err := gs.save(next); err != nil {
		return models.GuildConfig{}, err
	}
	e.config = next
	return next.Clone(), nil
}

// save writes the record to a temporary file and renames it over the old one.
func (gs *GuildStore) save(config models.GuildConfig) error {
	if err := os.MkdirAll(gs.dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal config for guild %s: %w", config.GuildID, err)
	}

	tmp, err := os.CreateTemp(gs.dir, config.GuildID+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for guild %s: %w", config.GuildID, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config for guild %s: %w", config.GuildID, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync config for guild %s: %w", config.GuildID, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close config for guild %s: %w", config.GuildID, err)
	}
	if err := os.Rename(tmpName, gs.path(config.GuildID)); err != nil {
		return fmt.Errorf("failed to replace config for guild %s: %w", config.GuildID, err)
	}

	gs.log.Debug().Str("guild_id", config.GuildID).Msg("Saved guild config")
	return nil
}
