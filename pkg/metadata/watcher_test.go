package metadata

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func writeCatalog(t *testing.T, path string, build func(*Catalog)) {
	t.Helper()
	c := NewCatalog()
	build(c)
	if err := c.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
}

func TestWatcherServesInitialCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	writeCatalog(t, path, func(c *Catalog) {
		c.AddSObject("Account").AddField("Id", "id")
	})

	w, err := NewWatcher(path, nil, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Stop()

	if w.Catalog().SObject("Account") == nil {
		t.Error("Initial catalog not loaded")
	}

	names, err := w.SObjectNames(context.Background(), "")
	if err != nil {
		t.Fatalf("SObjectNames: %v", err)
	}
	if len(names) != 1 || names[0] != "Account" {
		t.Errorf("SObjectNames = %v, want [Account]", names)
	}
}

func TestNewWatcherMissingFile(t *testing.T) {
	if _, err := NewWatcher(filepath.Join(t.TempDir(), "nope.json"), nil, nil); err == nil {
		t.Error("NewWatcher should fail for a missing file")
	}
}

func TestWatcherHandleEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	writeCatalog(t, path, func(c *Catalog) {
		c.AddSObject("Account").AddField("Id", "id")
	})

	var reloads atomic.Int32
	w, err := NewWatcher(path, nil, func(*Catalog) { reloads.Add(1) })
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Stop()

	// A rewrite of the watched file swaps the catalog.
	writeCatalog(t, path, func(c *Catalog) {
		c.AddSObject("Account").AddField("Id", "id")
		c.AddSObject("Contact").AddField("Id", "id")
	})
	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Write})

	if w.Catalog().SObject("Contact") == nil {
		t.Error("Catalog not swapped after write event")
	}
	if reloads.Load() != 1 {
		t.Errorf("Reload callbacks = %d, want 1", reloads.Load())
	}

	// Events for other files in the directory are ignored.
	other := filepath.Join(filepath.Dir(path), "other.json")
	w.handleEvent(fsnotify.Event{Name: other, Op: fsnotify.Write})
	if reloads.Load() != 1 {
		t.Errorf("Reload callbacks = %d, want 1 after unrelated event", reloads.Load())
	}

	// Non-write ops are ignored.
	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Chmod})
	if reloads.Load() != 1 {
		t.Errorf("Reload callbacks = %d, want 1 after chmod", reloads.Load())
	}
}

func TestWatcherKeepsCatalogOnBadReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	writeCatalog(t, path, func(c *Catalog) {
		c.AddSObject("Account").AddField("Id", "id")
	})

	w, err := NewWatcher(path, nil, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Write})

	if w.Catalog().SObject("Account") == nil {
		t.Error("Previous catalog should survive a failed reload")
	}
}

func TestWatcherLiveReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	writeCatalog(t, path, func(c *Catalog) {
		c.AddSObject("Account").AddField("Id", "id")
	})

	w, err := NewWatcher(path, nil, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	writeCatalog(t, path, func(c *Catalog) {
		c.AddSObject("Account").AddField("Id", "id")
		c.AddSObject("Lead").AddField("Id", "id")
	})

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if w.Catalog().SObject("Lead") != nil {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("Catalog was not reloaded after the file changed")
}
