package catalog

import (
	"context"
	"testing"
	"time"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeDB(t, dir, `{"brands": {}}`)

	s := NewStore(path, nil)
	if _, err := s.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewWatcher(s, nil).Run(ctx) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	writeDB(t, dir, sampleDB)

	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, ok := s.Current().Lookup("HP", "EliteBook 840 G5"); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("catalog was not reloaded after write")
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run: %v", err)
	}
}

func TestWatcherNeedsPath(t *testing.T) {
	if err := NewWatcher(NewStaticStore(nil), nil).Run(context.Background()); err == nil {
		t.Errorf("expected error for store without a file")
	}
}
