package store

import "testing"

func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(&Config{
		Type:   DatabaseTypeSQLite,
		SQLite: SQLiteConfig{Path: ":memory:"},
	})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	return s
}

func TestOpen(t *testing.T) {
	t.Run("default config uses sqlite", func(t *testing.T) {
		config := &Config{}
		config.ApplyDefaults()
		if config.Type != DatabaseTypeSQLite {
			t.Errorf("expected sqlite, got %s", config.Type)
		}
	})

	t.Run("invalid config returns error", func(t *testing.T) {
		_, err := Open(&Config{Type: "invalid"})
		if err == nil {
			t.Error("expected error for invalid config")
		}
	})

	t.Run("creates in-memory store and migrates schema", func(t *testing.T) {
		s := createTestStore(t)
		defer s.Close()

		if s == nil {
			t.Fatal("expected non-nil store")
		}
		if !s.DB().Migrator().HasTable("auth_attempts") {
			t.Error("expected auth_attempts table to exist after migration")
		}
		if !s.DB().Migrator().HasTable("file_uploads") {
			t.Error("expected file_uploads table to exist after migration")
		}
	})
}
