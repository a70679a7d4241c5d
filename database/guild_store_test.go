package database

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"drive-linkbot/models"

	"github.com/rs/zerolog"
)

func TestGuildStore_GetDefaults(t *testing.T) {
	store := NewGuildStore(t.TempDir(), zerolog.Nop())

	config, err := store.Get("42")
	if err != nil {
		t.Fatalf("Unexpected error: %+v", err)
	}
	if config.GuildID != "42" || config.TargetChannel != nil || len(config.LinkMessageIDs) != 0 || !config.LastUpdate.IsZero() {
		t.Errorf("Expected default config, got %+v", config)
	}
}

func TestGuildStore_UpdatePersists(t *testing.T) {
	dir := t.TempDir()
	store := NewGuildStore(dir, zerolog.Nop())
	when := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	_, err := store.Update("42", func(c *models.GuildConfig) error {
		if err := c.SetTargetChannel("100"); err != nil {
			return err
		}
		c.LinkMessageIDs = []uint64{7, 8}
		c.Links = append(c.Links, models.CustomLink{FolderName: "A", Name: "f3", URL: "http://x"})
		c.IgnorePatterns = append(c.IgnorePatterns, models.MustIgnorePattern(`^Drafts`))
		c.LastUpdate = when
		return nil
	})
	if err != nil {
		t.Fatalf("Unexpected error: %+v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "42.json"))
	if err != nil {
		t.Fatalf("Expected record on disk: %+v", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("Unexpected error: %+v", err)
	}
	for _, key := range []string{"targetChannel", "linkMessageIds", "links", "ignorePatterns", "lastUpdate"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("Expected field %q in %s", key, raw)
		}
	}

	reloaded, err := NewGuildStore(dir, zerolog.Nop()).Get("42")
	if err != nil {
		t.Fatalf("Unexpected error: %+v", err)
	}
	if reloaded.TargetChannelID() != "100" {
		t.Errorf("Unexpected channel %q", reloaded.TargetChannelID())
	}
	if len(reloaded.LinkMessageIDs) != 2 || reloaded.LinkMessageIDs[1] != 8 {
		t.Errorf("Unexpected ids %v", reloaded.LinkMessageIDs)
	}
	if len(reloaded.IgnorePatterns) != 1 || !reloaded.IgnorePatterns[0].Match("Drafts/x") {
		t.Errorf("Unexpected patterns %+v", reloaded.IgnorePatterns)
	}
	if !reloaded.LastUpdate.Equal(when) {
		t.Errorf("Unexpected last update %s", reloaded.LastUpdate)
	}

	leftovers, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if len(leftovers) != 0 {
		t.Errorf("Temporary files left behind: %v", leftovers)
	}
}

func TestGuildStore_UpdateFailureKeepsState(t *testing.T) {
	store := NewGuildStore(t.TempDir(), zerolog.Nop())
	_, _ = store.Update("1", func(c *models.GuildConfig) error {
		c.LinkMessageIDs = []uint64{1}
		return nil
	})

	boom := errors.New("boom")
	_, err := store.Update("1", func(c *models.GuildConfig) error {
		c.LinkMessageIDs = append(c.LinkMessageIDs, 2)
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %+v", err)
	}

	config, _ := store.Get("1")
	if len(config.LinkMessageIDs) != 1 {
		t.Errorf("Failed update leaked into cache: %v", config.LinkMessageIDs)
	}
}

func TestGuildStore_Corrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "9.json")
	if err := os.WriteFile(path, []byte(`{"ignorePatterns":["(bad"]}`), 0644); err != nil {
		t.Fatal(err)
	}
	store := NewGuildStore(dir, zerolog.Nop())

	if _, err := store.Get("9"); !errors.Is(err, models.ErrConfigCorrupt) {
		t.Fatalf("Expected ErrConfigCorrupt, got %+v", err)
	}
	if _, err := store.Update("9", func(*models.GuildConfig) error { return nil }); !errors.Is(err, models.ErrConfigCorrupt) {
		t.Fatalf("Expected ErrConfigCorrupt on update, got %+v", err)
	}

	if err := os.WriteFile(path, []byte(`{"ignorePatterns":["good"]}`), 0644); err != nil {
		t.Fatal(err)
	}
	config, err := store.Get("9")
	if err != nil {
		t.Fatalf("Expected repaired file to load, got %+v", err)
	}
	if len(config.IgnorePatterns) != 1 {
		t.Errorf("Unexpected patterns %+v", config.IgnorePatterns)
	}
}

func TestGuildStore_MalformedJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "3.json"), []byte(`{not json`), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := NewGuildStore(dir, zerolog.Nop()).Get("3")
	if !errors.Is(err, models.ErrConfigCorrupt) {
		t.Errorf("Expected ErrConfigCorrupt, got %+v", err)
	}
}

func TestGuildStore_ConcurrentUpdates(t *testing.T) {
	store := NewGuildStore(t.TempDir(), zerolog.Nop())

	var wg sync.WaitGroup
	for n := 0; n < 20; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Update("5", func(c *models.GuildConfig) error {
				c.Links = append(c.Links, models.CustomLink{Name: "l"})
				return nil
			})
			if err != nil {
				t.Errorf("Unexpected error: %+v", err)
			}
		}()
	}
	wg.Wait()

	config, _ := store.Get("5")
	if len(config.Links) != 20 {
		t.Errorf("Expected 20 links, got %d", len(config.Links))
	}
}
