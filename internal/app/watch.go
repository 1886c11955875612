package app

import (
	"time"

	"constellation/internal/interact"
	"constellation/internal/logger"
)

// watchDebounce collapses bursts of file events.
const watchDebounce = 200 * time.Millisecond

// StartWatching reloads the current level whenever its dataset file in the
// local data directory changes. It does nothing unless a data directory
// and watching are configured.
func (s *State) StartWatching() error {
	if s.cfg.Data.Dir == "" || !s.cfg.Data.Watch {
		return nil
	}
	w := NewDatasetWatcher(s.cfg.Data.Dir, watchDebounce, s.log.Named("watch"))
	w.OnChange(s.datasetChanged)
	if err := w.Start(); err != nil {
		return err
	}
	s.mu.Lock()
	s.watcher = w
	s.mu.Unlock()
	return nil
}

// StopWatching stops the dataset watcher if one is running.
func (s *State) StopWatching() {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()
	if w != nil {
		w.Stop()
	}
}

func (s *State) datasetChanged(name string) {
	s.mu.Lock()
	shown := s.cfg.Data.RootCluster
	if s.nav.Level() == interact.SubLevel {
		shown, _ = s.nav.Group()
	}
	if name == s.cfg.Data.Lookup {
		s.lookup = nil
	}
	if name == s.cfg.Data.RootCluster {
		s.root = nil
	}
	if name != shown {
		s.mu.Unlock()
		return
	}
	t := s.nav.Reload()
	s.mu.Unlock()

	s.log.Infow("reload dataset", logger.FieldCluster, name, logger.FieldEpoch, t.Epoch)
	s.load(t)
}
