package playback

import (
	"os/exec"
	"strconv"
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// NopSink discards audio but remembers the desired state.
type NopSink struct {
	mu      sync.Mutex
	source  string
	playing bool
	calls   int
}

// Set implements Sink.
func (s *NopSink) Set(source string, playing bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source, s.playing = source, playing
	s.calls++
	return nil
}

// Close implements Sink.
func (s *NopSink) Close() error { return nil }

// State returns the last desired state and how many times it was set.
func (s *NopSink) State() (source string, playing bool, calls int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source, s.playing, s.calls
}

// ExecSink plays streams through an external command-line player, one
// process at a time. The player is started with the stream URL as its last
// argument and killed to pause or switch sources.
type ExecSink struct {
	Command string
	Volume  float64
	log     *zap.SugaredLogger

	mu       sync.Mutex
	cmd      *exec.Cmd
	source   string
	finished func(source string)
}

// NewExecSink creates a sink for command (for example "ffplay") at volume
// in [0,1].
func NewExecSink(command string, volume float64, log *zap.SugaredLogger) *ExecSink {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ExecSink{Command: command, Volume: volume, log: log}
}

// Args returns the player arguments for a source.
func (s *ExecSink) Args(source string) []string {
	vol := int(s.Volume*100 + 0.5)
	vol = max(0, min(vol, 100))
	return []string{"-nodisp", "-autoexit", "-loglevel", "quiet", "-volume", strconv.Itoa(vol), source}
}

// Set implements Sink.
func (s *ExecSink) Set(source string, playing bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !playing || source == "" {
		s.killLocked()
		return nil
	}
	if s.cmd != nil && s.source == source {
		return nil
	}
	s.killLocked()

	cmd := exec.Command(s.Command, s.Args(source)...)
	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "start %s", s.Command)
	}
	s.cmd, s.source = cmd, source
	go s.reap(cmd)
	return nil
}

// NotifyFinished implements Finisher.
func (s *ExecSink) NotifyFinished(fn func(source string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished = fn
}

// reap waits for the player. A player that exits on its own reached the
// end of the stream; one that was killed has already been replaced.
func (s *ExecSink) reap(cmd *exec.Cmd) {
	err := cmd.Wait()
	s.mu.Lock()
	if s.cmd != cmd {
		s.mu.Unlock()
		return
	}
	source, fn := s.source, s.finished
	s.cmd, s.source = nil, ""
	s.mu.Unlock()

	if err != nil {
		s.log.Debugw("player exited", "error", err)
	}
	if fn != nil {
		fn(source)
	}
}

func (s *ExecSink) killLocked() {
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	s.cmd, s.source = nil, ""
}

// Close implements Sink.
func (s *ExecSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.killLocked()
	return nil
}
