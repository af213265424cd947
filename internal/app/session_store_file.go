package app

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// FileSessionStore is the JSON-on-disk store.
//
// Layout:
//
//	<root>/sessions.json       map of session id -> session
//	<root>/active-session-id   scalar, session to restore on launch
//	<root>/settings.json       user settings
type FileSessionStore struct {
	Root string
}

func NewFileSessionStore(root string) *FileSessionStore {
	if strings.TrimSpace(root) == "" {
		root = DefaultStorageRoot()
	}
	return &FileSessionStore{Root: filepath.Clean(root)}
}

func (s *FileSessionStore) sessionsPath() string {
	return filepath.Join(s.Root, "sessions.json")
}

func (s *FileSessionStore) activeIDPath() string {
	return filepath.Join(s.Root, "active-session-id")
}

func (s *FileSessionStore) settingsPath() string {
	return filepath.Join(s.Root, "settings.json")
}

// readSessions loads the whole corpus. Missing or unparseable storage yields
// an empty map, never an error.
func (s *FileSessionStore) readSessions() map[string]Session {
	b, err := os.ReadFile(s.sessionsPath())
	if err != nil {
		return map[string]Session{}
	}
	var sessions map[string]Session
	if err := json.Unmarshal(b, &sessions); err != nil || sessions == nil {
		return map[string]Session{}
	}
	return sessions
}

func (s *FileSessionStore) writeSessions(sessions map[string]Session) error {
	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.sessionsPath(), b, 0o644)
}

func (s *FileSessionStore) ListSessions() []Session {
	sessions := s.readSessions()
	out := make([]Session, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sess)
	}
	sortSessionsByRecency(out)
	return out
}

func (s *FileSessionStore) GetSession(id string) (*Session, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, false
	}
	sess, ok := s.readSessions()[id]
	if !ok {
		return nil, false
	}
	return &sess, true
}

func (s *FileSessionStore) UpsertSession(sess *Session) error {
	if sess == nil {
		return errors.New("nil session")
	}
	if strings.TrimSpace(sess.ID) == "" {
		return errors.New("missing session id")
	}
	sessions := s.readSessions()
	sessions[sess.ID] = *sess
	return s.writeSessions(sessions)
}

func (s *FileSessionStore) LastActiveID() string {
	b, err := os.ReadFile(s.activeIDPath())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func (s *FileSessionStore) SetLastActiveID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		// Clearing the pointer removes the file.
		err := os.Remove(s.activeIDPath())
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.activeIDPath(), []byte(id), 0o644)
}

func (s *FileSessionStore) LoadSettings() Settings {
	b, err := os.ReadFile(s.settingsPath())
	if err != nil {
		return DefaultSettings()
	}
	var settings Settings
	if err := json.Unmarshal(b, &settings); err != nil {
		return DefaultSettings()
	}
	return mergeSettingsDefaults(settings)
}

func (s *FileSessionStore) SaveSettings(settings Settings) error {
	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.settingsPath(), b, 0o644)
}
