package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestDatasetName(t *testing.T) {
	tests := []struct {
		ev   fsnotify.Event
		name string
		ok   bool
	}{
		{fsnotify.Event{Name: "/d/cluster_3.json", Op: fsnotify.Write}, "cluster_3", true},
		{fsnotify.Event{Name: "/d/lookup.json", Op: fsnotify.Create}, "lookup", true},
		{fsnotify.Event{Name: "/d/notes.txt", Op: fsnotify.Write}, "", false},
		{fsnotify.Event{Name: "/d/cluster_3.json", Op: fsnotify.Chmod}, "", false},
	}
	for _, tt := range tests {
		name, ok := datasetName(tt.ev)
		assert.Equal(t, tt.ok, ok, tt.ev.String())
		assert.Equal(t, tt.name, name)
	}
}

func TestDatasetWatcherDebounces(t *testing.T) {
	dir := t.TempDir()
	w := NewDatasetWatcher(dir, 100*time.Millisecond, zaptest.NewLogger(t).Sugar())
	changes := make(chan string, 10)
	w.OnChange(func(name string) { changes <- name })
	require.NoError(t, w.Start())
	defer w.Stop()

	path := filepath.Join(dir, "g1.json")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte(`{"data":[]}`), 0o644))
	}

	select {
	case name := <-changes:
		assert.Equal(t, "g1", name)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
	select {
	case name := <-changes:
		t.Fatalf("unexpected second notification for %s", name)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestDatasetWatcherMissingDir(t *testing.T) {
	w := NewDatasetWatcher(filepath.Join(t.TempDir(), "absent"), time.Millisecond, nil)
	assert.Error(t, w.Start())
	w.Stop()
}
