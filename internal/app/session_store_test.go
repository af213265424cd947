package app

import (
	"os"
	"path/filepath"
	"testing"
)

// storeDrivers lets every store test run against both backends.
func storeDrivers(t *testing.T) map[string]SessionStore {
	t.Helper()
	sqlite, err := NewSQLiteSessionStore(t.TempDir())
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })
	return map[string]SessionStore{
		"file":   NewFileSessionStore(t.TempDir()),
		"sqlite": sqlite,
	}
}

func TestSessionStoreRoundTrip(t *testing.T) {
	for name, store := range storeDrivers(t) {
		t.Run(name, func(t *testing.T) {
			sess := &Session{
				ID:    "1700000000000",
				Title: "Halo Elaina",
				Messages: []Message{
					NewUserMessage("Halo Elaina", []FilePart{{Name: "a.png", MimeType: "image/png", Data: "data:image/png;base64,xx"}}),
					NewModelMessage("Halo juga!"),
				},
			}
			if err := store.UpsertSession(sess); err != nil {
				t.Fatalf("upsert: %v", err)
			}

			got, ok := store.GetSession(sess.ID)
			if !ok {
				t.Fatal("session not found after upsert")
			}
			if got.Title != sess.Title || len(got.Messages) != 2 {
				t.Fatalf("round trip lost data: %+v", got)
			}
			if got.Messages[0].Parts[1].File == nil || got.Messages[0].Parts[1].File.Name != "a.png" {
				t.Fatalf("file part lost: %+v", got.Messages[0].Parts)
			}

			// Upsert with the same id overwrites.
			sess.Messages = append(sess.Messages, NewUserMessage("lagi", nil))
			if err := store.UpsertSession(sess); err != nil {
				t.Fatalf("second upsert: %v", err)
			}
			got, _ = store.GetSession(sess.ID)
			if len(got.Messages) != 3 {
				t.Fatalf("overwrite lost messages: %d", len(got.Messages))
			}
		})
	}
}

func TestSessionStoreListOrdering(t *testing.T) {
	for name, store := range storeDrivers(t) {
		t.Run(name, func(t *testing.T) {
			for _, id := range []string{"100", "30", "250"} {
				if err := store.UpsertSession(&Session{ID: id, Title: id, Messages: []Message{NewUserMessage(id, nil)}}); err != nil {
					t.Fatalf("upsert %s: %v", id, err)
				}
			}
			list := store.ListSessions()
			if len(list) != 3 {
				t.Fatalf("expected 3 sessions, got %d", len(list))
			}
			// Ids are creation timestamps; newest first means numeric
			// descending, not lexicographic.
			want := []string{"250", "100", "30"}
			for i, w := range want {
				if list[i].ID != w {
					t.Fatalf("position %d: got %s, want %s", i, list[i].ID, w)
				}
			}
		})
	}
}

func TestSessionStoreGetUnknown(t *testing.T) {
	for name, store := range storeDrivers(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok := store.GetSession("missing"); ok {
				t.Fatal("unknown id must not resolve")
			}
			if _, ok := store.GetSession(""); ok {
				t.Fatal("blank id must not resolve")
			}
		})
	}
}

func TestSessionStoreUpsertValidation(t *testing.T) {
	for name, store := range storeDrivers(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.UpsertSession(nil); err == nil {
				t.Fatal("nil session must be rejected")
			}
			if err := store.UpsertSession(&Session{ID: "  "}); err == nil {
				t.Fatal("blank id must be rejected")
			}
		})
	}
}

func TestSessionStoreActivePointer(t *testing.T) {
	for name, store := range storeDrivers(t) {
		t.Run(name, func(t *testing.T) {
			if got := store.LastActiveID(); got != "" {
				t.Fatalf("fresh store has active id %q", got)
			}
			if err := store.SetLastActiveID("1700000000000"); err != nil {
				t.Fatalf("set: %v", err)
			}
			if got := store.LastActiveID(); got != "1700000000000" {
				t.Fatalf("got %q", got)
			}
			// Blank clears the pointer.
			if err := store.SetLastActiveID(""); err != nil {
				t.Fatalf("clear: %v", err)
			}
			if got := store.LastActiveID(); got != "" {
				t.Fatalf("pointer survived clear: %q", got)
			}
		})
	}
}

func TestSessionStoreSettings(t *testing.T) {
	for name, store := range storeDrivers(t) {
		t.Run(name, func(t *testing.T) {
			got := store.LoadSettings()
			if got.Model != DefaultModel {
				t.Fatalf("fresh store must return defaults, got model %q", got.Model)
			}
			if got.SystemInstruction == "" {
				t.Fatal("default system instruction missing")
			}

			custom := Settings{Model: "gemini-exp", SystemInstruction: "jadi serius", Grounding: true, DarkTheme: true}
			if err := store.SaveSettings(custom); err != nil {
				t.Fatalf("save: %v", err)
			}
			got = store.LoadSettings()
			if got != custom {
				t.Fatalf("round trip lost settings: %+v", got)
			}

			// Unset fields fall back to defaults on load.
			if err := store.SaveSettings(Settings{Grounding: true}); err != nil {
				t.Fatalf("save partial: %v", err)
			}
			got = store.LoadSettings()
			if got.Model != DefaultModel || got.SystemInstruction != DefaultSystemInstruction {
				t.Fatalf("defaults not merged: %+v", got)
			}
			if !got.Grounding {
				t.Fatal("saved field lost during merge")
			}
		})
	}
}

func TestFileStoreCorruptSessionsDegrade(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "sessions.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	store := NewFileSessionStore(root)

	if got := store.ListSessions(); len(got) != 0 {
		t.Fatalf("corrupt storage must yield no sessions, got %d", len(got))
	}
	// Writing must still work afterwards.
	if err := store.UpsertSession(&Session{ID: "1", Messages: []Message{NewUserMessage("hai", nil)}}); err != nil {
		t.Fatalf("upsert after corruption: %v", err)
	}
	if _, ok := store.GetSession("1"); !ok {
		t.Fatal("store did not recover")
	}
}

func TestSQLiteStoreReopen(t *testing.T) {
	root := t.TempDir()
	store, err := NewSQLiteSessionStore(root)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.UpsertSession(&Session{ID: "42", Title: "t", Messages: []Message{NewUserMessage("hai", nil)}}); err != nil {
		t.Fatal(err)
	}
	if err := store.SetLastActiveID("42"); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewSQLiteSessionStore(root)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	if _, ok := reopened.GetSession("42"); !ok {
		t.Fatal("session lost across reopen")
	}
	if reopened.LastActiveID() != "42" {
		t.Fatal("active pointer lost across reopen")
	}
}
