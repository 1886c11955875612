package app

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DatasetWatcher watches a local dataset directory and reports which
// dataset changed, so the level showing it can be reloaded. Bursts of
// events for the same file (editors often write, chmod and rename) are
// collapsed into one notification after the debounce interval.
type DatasetWatcher struct {
	dir      string
	debounce time.Duration
	log      *zap.SugaredLogger

	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	doneCh   chan struct{}
	onChange func(name string) // dataset name without extension
}

// NewDatasetWatcher creates a watcher for dir.
func NewDatasetWatcher(dir string, debounce time.Duration, log *zap.SugaredLogger) *DatasetWatcher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &DatasetWatcher{dir: dir, debounce: debounce, log: log}
}

// OnChange sets the callback invoked with the name of a changed dataset.
// The callback is called from a background goroutine.
func (w *DatasetWatcher) OnChange(callback func(name string)) {
	w.onChange = callback
}

// Start begins watching in a background goroutine.
func (w *DatasetWatcher) Start() error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	if err := fw.Add(w.dir); err != nil {
		fw.Close()
		return errors.Wrapf(err, "watch %s", w.dir)
	}
	w.watcher = fw
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	go w.watchLoop()
	return nil
}

// Stop stops the watcher goroutine and waits for it to exit.
func (w *DatasetWatcher) Stop() {
	if w.stopCh == nil {
		return
	}
	close(w.stopCh)
	<-w.doneCh
	w.watcher.Close()
	w.stopCh = nil
}

func (w *DatasetWatcher) watchLoop() {
	defer close(w.doneCh)

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			name, ok := datasetName(ev)
			if !ok {
				continue
			}
			if len(pending) == 0 {
				timer.Reset(w.debounce)
			}
			pending[name] = struct{}{}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warnw("dataset watcher", "error", err)
		case <-timer.C:
			for name := range pending {
				w.log.Infow("dataset changed", "cluster", name)
				if w.onChange != nil {
					w.onChange(name)
				}
			}
			clear(pending)
		}
	}
}

// datasetName extracts the dataset name from a write or create event on a
// .json file.
func datasetName(ev fsnotify.Event) (string, bool) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return "", false
	}
	base := filepath.Base(ev.Name)
	if filepath.Ext(base) != ".json" {
		return "", false
	}
	return strings.TrimSuffix(base, ".json"), true
}
