package app

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteSessionStore keeps the corpus in a single database file. Sessions
// are one row each with the message list as a JSON column; the last-active
// pointer and settings live in a small kv table.
type SQLiteSessionStore struct {
	Root   string
	dbPath string

	mu   sync.Mutex
	db   *sql.DB
	once sync.Once
	err  error
}

const (
	kvKeyActiveSession = "active-session-id"
	kvKeySettings      = "settings"
)

func NewSQLiteSessionStore(root string) (*SQLiteSessionStore, error) {
	if strings.TrimSpace(root) == "" {
		root = DefaultStorageRoot()
	}
	root = filepath.Clean(root)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	st := &SQLiteSessionStore{
		Root:   root,
		dbPath: filepath.Join(root, "elaina.db"),
	}
	// Initialize eagerly so callers fail fast.
	if err := st.init(); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *SQLiteSessionStore) init() error {
	s.once.Do(func() {
		db, err := sql.Open("sqlite", s.dbPath)
		if err != nil {
			s.err = err
			return
		}
		// Keep sqlite responsive under contention.
		_, _ = db.Exec("PRAGMA busy_timeout = 5000;")
		_, _ = db.Exec("PRAGMA journal_mode = WAL;")
		_, _ = db.Exec("PRAGMA synchronous = NORMAL;")

		schema := []string{
			`CREATE TABLE IF NOT EXISTS sessions (
				id TEXT PRIMARY KEY,
				title TEXT,
				messages TEXT NOT NULL,
				updated_at_ns INTEGER NOT NULL
			);`,
			`CREATE TABLE IF NOT EXISTS kv (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL
			);`,
		}
		for _, stmt := range schema {
			if _, err := db.Exec(stmt); err != nil {
				_ = db.Close()
				s.err = err
				return
			}
		}

		s.db = db
	})
	return s.err
}

func (s *SQLiteSessionStore) dbConn() (*sql.DB, error) {
	if err := s.init(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	db := s.db
	s.mu.Unlock()
	if db == nil {
		return nil, errors.New("sqlite store unavailable")
	}
	return db, nil
}

func (s *SQLiteSessionStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteSessionStore) ListSessions() []Session {
	db, err := s.dbConn()
	if err != nil {
		return []Session{}
	}
	rows, err := db.Query(`SELECT id, title, messages FROM sessions`)
	if err != nil {
		return []Session{}
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var sess Session
		var messages string
		if err := rows.Scan(&sess.ID, &sess.Title, &messages); err != nil {
			continue
		}
		// A row whose messages column no longer parses is skipped, not fatal.
		if err := json.Unmarshal([]byte(messages), &sess.Messages); err != nil {
			continue
		}
		out = append(out, sess)
	}
	if out == nil {
		return []Session{}
	}
	sortSessionsByRecency(out)
	return out
}

func (s *SQLiteSessionStore) GetSession(id string) (*Session, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, false
	}
	db, err := s.dbConn()
	if err != nil {
		return nil, false
	}
	var sess Session
	var messages string
	err = db.QueryRow(`SELECT id, title, messages FROM sessions WHERE id = ?`, id).
		Scan(&sess.ID, &sess.Title, &messages)
	if err != nil {
		return nil, false
	}
	if err := json.Unmarshal([]byte(messages), &sess.Messages); err != nil {
		return nil, false
	}
	return &sess, true
}

func (s *SQLiteSessionStore) UpsertSession(sess *Session) error {
	if sess == nil {
		return errors.New("nil session")
	}
	if strings.TrimSpace(sess.ID) == "" {
		return errors.New("missing session id")
	}
	db, err := s.dbConn()
	if err != nil {
		return err
	}
	messages, err := json.Marshal(sess.Messages)
	if err != nil {
		return err
	}
	_, err = db.Exec(
		`INSERT INTO sessions(id, title, messages, updated_at_ns)
		 VALUES(?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title=excluded.title, messages=excluded.messages, updated_at_ns=excluded.updated_at_ns`,
		sess.ID, sess.Title, string(messages), time.Now().UnixNano(),
	)
	return err
}

func (s *SQLiteSessionStore) getKV(key string) string {
	db, err := s.dbConn()
	if err != nil {
		return ""
	}
	var value string
	if err := db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value); err != nil {
		return ""
	}
	return value
}

func (s *SQLiteSessionStore) setKV(key, value string) error {
	db, err := s.dbConn()
	if err != nil {
		return err
	}
	_, err = db.Exec(
		`INSERT INTO kv(key, value) VALUES(?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		key, value,
	)
	return err
}

func (s *SQLiteSessionStore) LastActiveID() string {
	return strings.TrimSpace(s.getKV(kvKeyActiveSession))
}

func (s *SQLiteSessionStore) SetLastActiveID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		db, err := s.dbConn()
		if err != nil {
			return err
		}
		_, err = db.Exec(`DELETE FROM kv WHERE key = ?`, kvKeyActiveSession)
		return err
	}
	return s.setKV(kvKeyActiveSession, id)
}

func (s *SQLiteSessionStore) LoadSettings() Settings {
	raw := s.getKV(kvKeySettings)
	if raw == "" {
		return DefaultSettings()
	}
	var settings Settings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return DefaultSettings()
	}
	return mergeSettingsDefaults(settings)
}

func (s *SQLiteSessionStore) SaveSettings(settings Settings) error {
	b, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return s.setKV(kvKeySettings, string(b))
}
