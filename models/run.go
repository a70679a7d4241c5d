package models

import "time"

// Run describes one publish cycle for a guild, successful or not.
type Run struct {
	ID         string
	GuildID    string
	Manual     bool
	StartedAt  time.Time
	FinishedAt time.Time
	Folders    int
	Pages      int
	Err        error
}

// Succeeded reports whether the cycle completed without a fatal error.
func (r Run) Succeeded() bool {
	return r.Err == nil
}

// RunRecord is a Run as read back from the cycle history.
type RunRecord struct {
	ID         string
	GuildID    string
	Manual     bool
	StartedAt  time.Time
	FinishedAt time.Time
	Folders    int
	Pages      int
	Error      string
}
