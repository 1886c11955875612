// Package playback plays a user's top track on an audio sink. Requests
// resolve asynchronously; the most recently initiated request wins and
// superseded lookups finish as no-ops.
package playback

import (
	"context"
	"sync"

	"constellation/internal/audius"
	"constellation/internal/logger"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Resolver finds the stream to play for a user.
type Resolver interface {
	TopTrack(ctx context.Context, userID string) (*audius.Track, error)
	StreamURL(trackID string) string
}

// Sink is an audio output driven by desired state: the source to play and
// whether it should be playing.
type Sink interface {
	Set(source string, playing bool) error
	Close() error
}

// Finisher is implemented by sinks that stop by themselves at the end of a
// stream. The callback runs on a sink goroutine.
type Finisher interface {
	NotifyFinished(fn func(source string))
}

// Controller serialises playback requests onto a sink.
type Controller struct {
	res  Resolver
	sink Sink
	log  *zap.SugaredLogger

	// Ended, when set, is called with the user id of a request that
	// resolved to nothing playable or whose stream finished.
	Ended func(userID string)

	mu      sync.Mutex
	epoch   uint64
	source  string
	playing bool
	current string

	wg sync.WaitGroup
}

// New creates a controller.
func New(res Resolver, sink Sink, log *zap.SugaredLogger) *Controller {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	c := &Controller{res: res, sink: sink, log: log}
	if f, ok := sink.(Finisher); ok {
		f.NotifyFinished(c.finished)
	}
	return c
}

// Play starts resolving userID's top track and returns immediately.
func (c *Controller) Play(ctx context.Context, userID string) {
	c.mu.Lock()
	c.epoch++
	epoch := c.epoch
	c.current = userID
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.resolve(ctx, epoch, userID)
	}()
}

func (c *Controller) resolve(ctx context.Context, epoch uint64, userID string) {
	track, err := c.res.TopTrack(ctx, userID)

	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		c.log.Debugw("discard superseded playback", logger.FieldUser, userID, logger.FieldEpoch, epoch)
		return
	}
	if err == nil {
		c.log.Debugw("play", logger.FieldUser, userID, logger.FieldTrack, track.ID)
		c.applyLocked(c.res.StreamURL(track.ID), true)
		c.mu.Unlock()
		return
	}
	if !errors.Is(err, audius.ErrNoTrack) && !errors.Is(err, context.Canceled) {
		c.log.Warnw("top track lookup failed", logger.FieldUser, userID, logger.FieldError, err)
	}
	c.applyLocked(c.source, false)
	c.current = ""
	ended := c.Ended
	c.mu.Unlock()

	// Called unlocked: the callback may call back into the controller.
	if ended != nil {
		ended(userID)
	}
}

// finished handles a stream that played to its end. Reports for a source
// that is no longer wanted are ignored.
func (c *Controller) finished(source string) {
	c.mu.Lock()
	if !c.playing || c.source != source {
		c.mu.Unlock()
		return
	}
	c.playing = false
	userID := c.current
	c.current = ""
	ended := c.Ended
	c.mu.Unlock()

	c.log.Debugw("stream finished", logger.FieldUser, userID)
	if ended != nil && userID != "" {
		ended(userID)
	}
}

// Stop silences the sink and supersedes any lookup in flight.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.current = ""
	if c.playing {
		c.applyLocked(c.source, false)
	}
}

func (c *Controller) applyLocked(source string, playing bool) {
	c.source, c.playing = source, playing
	if err := c.sink.Set(source, playing); err != nil {
		c.log.Warnw("audio sink", logger.FieldError, err)
		c.playing = false
	}
}

// State returns the desired sink state.
func (c *Controller) State() (source string, playing bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.source, c.playing
}

// Current returns the user whose request is pending or playing.
func (c *Controller) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Wait blocks until every lookup started so far has resolved.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close stops playback and releases the sink.
func (c *Controller) Close() error {
	c.Stop()
	c.Wait()
	return c.sink.Close()
}
