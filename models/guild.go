package models

import (
	"slices"
	"strconv"
	"time"
)

// GuildConfig is the persisted per-guild record.
type GuildConfig struct {
	GuildID        string          `json:"-"`
	TargetChannel  *uint64         `json:"targetChannel"`
	LinkMessageIDs []uint64        `json:"linkMessageIds"`
	Links          []CustomLink    `json:"links"`
	IgnorePatterns []IgnorePattern `json:"ignorePatterns"`
	LastUpdate     time.Time       `json:"lastUpdate"`
}

// NewGuildConfig returns the default record for a guild with no persisted state.
func NewGuildConfig(guildID string) GuildConfig {
	return GuildConfig{
		GuildID:        guildID,
		LinkMessageIDs: []uint64{},
		Links:          []CustomLink{},
		IgnorePatterns: []IgnorePattern{},
	}
}

// Clone returns a deep copy of c.
func (c GuildConfig) Clone() GuildConfig {
	out := c
	if c.TargetChannel != nil {
		ch := *c.TargetChannel
		out.TargetChannel = &ch
	}
	out.LinkMessageIDs = slices.Clone(c.LinkMessageIDs)
	out.Links = slices.Clone(c.Links)
	out.IgnorePatterns = slices.Clone(c.IgnorePatterns)
	return out
}

// TargetChannelID returns the update channel as a Discord snowflake string, or "" if unset.
func (c GuildConfig) TargetChannelID() string {
	if c.TargetChannel == nil {
		return ""
	}
	return strconv.FormatUint(*c.TargetChannel, 10)
}

// SetTargetChannel parses a Discord channel ID and stores it as the update channel.
func (c *GuildConfig) SetTargetChannel(channelID string) error {
	id, err := strconv.ParseUint(channelID, 10, 64)
	if err != nil {
		return err
	}
	c.TargetChannel = &id
	return nil
}

// MessageIDs returns the tracked message IDs as Discord snowflake strings.
func (c GuildConfig) MessageIDs() []string {
	ids := make([]string, len(c.LinkMessageIDs))
	for i, id := range c.LinkMessageIDs {
		ids[i] = strconv.FormatUint(id, 10)
	}
	return ids
}

// SetMessageIDs replaces the tracked message IDs.
func (c *GuildConfig) SetMessageIDs(ids []string) error {
	parsed := make([]uint64, len(ids))
	for i, id := range ids {
		v, err := strconv.ParseUint(id, 10, 64)
		if err != nil {
			return err
		}
		parsed[i] = v
	}
	c.LinkMessageIDs = parsed
	return nil
}

// RemoveLink drops the first link named name.
func (c *GuildConfig) RemoveLink(name string) error {
	i := slices.IndexFunc(c.Links, func(l CustomLink) bool { return l.Name == name })
	if i < 0 {
		return ErrLinkNotFound
	}
	c.Links = slices.Delete(c.Links, i, i+1)
	return nil
}

// RemovePattern drops the first ignore pattern whose source equals source.
func (c *GuildConfig) RemovePattern(source string) error {
	i := slices.IndexFunc(c.IgnorePatterns, func(p IgnorePattern) bool { return p.String() == source })
	if i < 0 {
		return ErrPatternNotFound
	}
	c.IgnorePatterns = slices.Delete(c.IgnorePatterns, i, i+1)
	return nil
}
