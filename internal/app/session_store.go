package app

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// SessionStore is the durable side of the engine: the full session corpus,
// the id to restore on next launch, and the user settings.
//
// Reads never fail loudly: corrupt or missing storage degrades to "nothing
// persisted" so the conversation can continue in memory. Writes are
// last-writer-wins with no transactional guarantee across keys.
type SessionStore interface {
	// ListSessions returns every persisted session, most recent first
	// (ids are creation timestamps, so descending id is recency order).
	ListSessions() []Session
	GetSession(id string) (*Session, bool)
	// UpsertSession overwrites any existing entry with the same id.
	UpsertSession(sess *Session) error

	LastActiveID() string
	SetLastActiveID(id string) error

	LoadSettings() Settings
	SaveSettings(s Settings) error
}

// DefaultStorageRoot prefers the XDG data dir, then ~/.local/share, then a
// tmp fallback.
func DefaultStorageRoot() string {
	if base := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); base != "" {
		return filepath.Join(base, "elaina", "storage")
	}
	if base, err := os.UserHomeDir(); err == nil && base != "" {
		return filepath.Join(base, ".local", "share", "elaina", "storage")
	}
	return filepath.Join(os.TempDir(), "elaina", "storage")
}

// sortSessionsByRecency orders by id descending, comparing numerically when
// both ids parse as timestamps.
func sortSessionsByRecency(sessions []Session) {
	sort.Slice(sessions, func(i, j int) bool {
		a, errA := strconv.ParseInt(sessions[i].ID, 10, 64)
		b, errB := strconv.ParseInt(sessions[j].ID, 10, 64)
		if errA == nil && errB == nil {
			return a > b
		}
		return sessions[i].ID > sessions[j].ID
	})
}

// mergeSettingsDefaults fills unset fields on load: missing values fall
// back to the shipped defaults.
func mergeSettingsDefaults(s Settings) Settings {
	if strings.TrimSpace(s.Model) == "" {
		s.Model = DefaultModel
	}
	if strings.TrimSpace(s.SystemInstruction) == "" {
		s.SystemInstruction = DefaultSystemInstruction
	}
	return s
}
