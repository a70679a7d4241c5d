package models

import "errors"

// ErrRemoteList indicates a transport, auth or rate-limit failure while listing the remote store.
var ErrRemoteList = errors.New("remote listing failed")

// ErrChannelWrite indicates a failed send, edit, fetch or delete against the target channel.
var ErrChannelWrite = errors.New("channel write failed")

// ErrConfigCorrupt indicates a persisted guild record that could not be parsed.
var ErrConfigCorrupt = errors.New("guild config is corrupt")

// ErrNoTargetChannel indicates that no update channel has been configured for the guild.
var ErrNoTargetChannel = errors.New("no target channel is set")

// ErrInvalidTargetChannel indicates that the configured update channel is not a text channel.
var ErrInvalidTargetChannel = errors.New("target channel is not a valid text channel")

// ErrLinkNotFound indicates that no custom link matched the given name.
var ErrLinkNotFound = errors.New("link was not found")

// ErrPatternNotFound indicates that no ignore pattern matched the given source.
var ErrPatternNotFound = errors.New("pattern was not found")
