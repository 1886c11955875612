// Package app wires the chart together: navigation, interaction, dataset
// loading, playback, profiles and search, behind one State shared by the
// user interface.
package app

import (
	"context"
	"sync"
	"time"

	"constellation/internal/audius"
	"constellation/internal/catalog"
	"constellation/internal/config"
	"constellation/internal/interact"
	"constellation/internal/logger"
	"constellation/internal/nav"
	"constellation/internal/playback"
	"constellation/internal/profile"
	"constellation/pkg/geometry"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Catalog is the subset of the catalog service the application uses.
type Catalog interface {
	playback.Resolver
	profile.Users
	SearchUsers(ctx context.Context, query string, limit int) ([]audius.User, error)
}

// EventType identifies different application events.
type EventType int

const (
	// EventDatasetLoaded fires when a dataset load is applied. Data is the
	// nav.Ticket.
	EventDatasetLoaded EventType = iota
	// EventLevelChanged fires on entering a level. Data is the nav.Ticket.
	EventLevelChanged
	// EventViewChanged fires when anything drawn on the chart or anchored
	// to it changes. Data is the interact.Snapshot.
	EventViewChanged
	// EventStatus fires when the status message changes. Data is the text.
	EventStatus
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// ErrNoMatch is returned by search when no cluster matches the query.
var ErrNoMatch = errors.New("no matching cluster")

// View is what the user interface draws.
type View struct {
	interact.Snapshot
	Dataset   *catalog.Dataset
	GroupID   string
	GroupName string
	Status    string
}

// CanBack reports whether the back control is shown.
func (v View) CanBack() bool { return v.Level == interact.SubLevel }

// Info is the info bar text: the hovered cluster at the top level, the
// open cluster at the sublevel.
func (v View) Info() string {
	if v.Level == interact.SubLevel {
		return v.GroupName
	}
	return v.Hover
}

// State holds the application state. Methods may be called from any
// goroutine; listeners run on the calling goroutine without locks held.
type State struct {
	mu sync.Mutex

	cfg      *config.Config
	log      *zap.SugaredLogger
	source   catalog.Source
	catalog  Catalog
	machine  *interact.Machine
	nav      *nav.Controller
	audio    *playback.Controller
	profiles *profile.Service

	root        *catalog.Dataset
	lookup      catalog.Lookup
	status      string
	searchEpoch uint64
	watcher     *DatasetWatcher

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	listenerMu sync.RWMutex
	listeners  map[EventType][]EventListener
}

// NewState creates the application state. sink may be nil when audio is
// disabled in cfg.
func NewState(cfg *config.Config, src catalog.Source, cat Catalog, sink playback.Sink, log *zap.SugaredLogger) *State {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &State{
		cfg:       cfg,
		log:       log,
		source:    src,
		catalog:   cat,
		ctx:       ctx,
		cancel:    cancel,
		listeners: make(map[EventType][]EventListener),
	}

	if cat != nil {
		s.profiles = profile.NewService(cat, log.Named("profile"))
	}

	audio := cfg.Features.Audio && sink != nil && cat != nil
	s.machine = interact.New(interact.Options{
		MaxOffset:   cfg.Viewport.MaxOffset,
		ClampOffset: cfg.Viewport.ClampOffset,
		HitRadius:   cfg.Viewport.HitRadius,
		Bias:        cfg.Viewport.HeaderHeight,
		Audio:       audio,
		Logger:      log.Named("interact"),
	})

	var stopper nav.Stopper
	if audio {
		s.audio = playback.New(cat, sink, log.Named("playback"))
		s.audio.Ended = s.playbackEnded
		stopper = s.audio
	}
	s.nav = nav.New(cfg.Data.RootCluster, s.machine, stopper, log.Named("nav"))
	return s
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.listenerMu.RLock()
	listeners := s.listeners[event]
	s.listenerMu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Start enters the top level and begins loading the root dataset.
func (s *State) Start() {
	s.mu.Lock()
	t := s.nav.Start()
	s.mu.Unlock()
	s.Emit(EventLevelChanged, t)
	s.load(t)
}

// load fetches the dataset for t in the background.
func (s *State) load(t nav.Ticket) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		start := time.Now()
		ds, err := nav.Fetch(s.ctx, s.source, t)

		s.mu.Lock()
		applied := s.nav.Complete(t, ds, err)
		if applied && err == nil && t.Level == interact.TopLevel {
			s.root = ds
		}
		snap := s.machine.Snapshot()
		s.mu.Unlock()

		if !applied {
			return
		}
		s.log.Debugw("load finished", logger.FieldCluster, t.Cluster, logger.FieldDuration, time.Since(start).Milliseconds())
		s.Emit(EventDatasetLoaded, t)
		s.Emit(EventViewChanged, snap)
	}()
}

// Wait blocks until background loads and lookups started so far finish.
func (s *State) Wait() {
	s.wg.Wait()
	if s.audio != nil {
		s.audio.Wait()
	}
}

// Close cancels background work and releases the audio sink.
func (s *State) Close() error {
	s.StopWatching()
	s.cancel()
	s.wg.Wait()
	if s.audio != nil {
		return s.audio.Close()
	}
	return nil
}

// View returns a copy of everything the interface draws.
func (s *State) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, name := s.nav.Group()
	return View{
		Snapshot:  s.machine.Snapshot(),
		Dataset:   s.nav.Dataset(),
		GroupID:   id,
		GroupName: name,
		Status:    s.status,
	}
}

// PopupAnchor returns the popup position in window coordinates.
func (s *State) PopupAnchor() (geometry.Point2D, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.PopupAnchor()
}

// Resize records the chart surface size.
func (s *State) Resize(size geometry.Size) {
	s.mu.Lock()
	s.machine.SetSize(size)
	snap := s.machine.Snapshot()
	s.mu.Unlock()
	s.Emit(EventViewChanged, snap)
}

// PointerDown, PointerMove and PointerUp feed pointer events in window
// coordinates to the interaction state machine.
func (s *State) PointerDown(pos geometry.Point2D) {
	s.pointer((*interact.Machine).PointerDown, pos)
}

func (s *State) PointerMove(pos geometry.Point2D) {
	s.pointer((*interact.Machine).PointerMove, pos)
}

func (s *State) PointerUp(pos geometry.Point2D) {
	s.pointer((*interact.Machine).PointerUp, pos)
}

func (s *State) pointer(fn func(*interact.Machine, geometry.Point2D) []interact.Command, pos geometry.Point2D) {
	s.mu.Lock()
	before := s.machine.Snapshot()
	cmds := fn(s.machine, pos)
	after := s.machine.Snapshot()
	s.mu.Unlock()

	s.run(cmds)
	if changed(before, after) {
		s.Emit(EventViewChanged, after)
	}
}

// ZoomIn and ZoomOut step the zoom; they are inert at the bounds.
func (s *State) ZoomIn() bool { return s.zoom((*interact.Machine).ZoomIn) }

func (s *State) ZoomOut() bool { return s.zoom((*interact.Machine).ZoomOut) }

func (s *State) zoom(fn func(*interact.Machine) bool) bool {
	s.mu.Lock()
	ok := fn(s.machine)
	snap := s.machine.Snapshot()
	s.mu.Unlock()
	if ok {
		s.log.Debugw("zoom", logger.FieldZoom, snap.View.Zoom)
		s.Emit(EventViewChanged, snap)
	}
	return ok
}

func (s *State) run(cmds []interact.Command) {
	for _, c := range cmds {
		switch c.Kind {
		case interact.Navigate:
			if err := s.Enter(c.GroupID); err != nil {
				s.log.Warnw("navigate", logger.FieldCluster, c.GroupID, logger.FieldError, err)
			}
		case interact.Play:
			if s.audio != nil {
				s.audio.Play(s.ctx, c.PointID)
			}
		case interact.Stop:
			if s.audio != nil {
				s.audio.Stop()
			}
		}
	}
}

// Enter opens the sublevel of groupID.
func (s *State) Enter(groupID string) error {
	s.mu.Lock()
	t, err := s.enterLocked(groupID)
	snap := s.machine.Snapshot()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.Emit(EventLevelChanged, t)
	s.Emit(EventViewChanged, snap)
	s.load(t)
	return nil
}

// enterLocked names and enters the sublevel of groupID. s.mu must be held.
func (s *State) enterLocked(groupID string) (nav.Ticket, error) {
	name := groupID
	if g, ok := s.nav.Dataset().Group(groupID); ok && g.Name != "" {
		name = g.Name
	} else if g, ok := s.root.Group(groupID); ok && g.Name != "" {
		name = g.Name
	}
	return s.nav.Enter(groupID, name)
}

// Back returns to the top level. It reports false at the top level.
func (s *State) Back() bool {
	s.mu.Lock()
	t, ok := s.nav.Back()
	snap := s.machine.Snapshot()
	s.mu.Unlock()
	if !ok {
		return false
	}
	s.Emit(EventLevelChanged, t)
	s.Emit(EventViewChanged, snap)
	s.load(t)
	return true
}

// Card returns the profile card for userID, or the not-found card when no
// catalog is configured.
func (s *State) Card(ctx context.Context, userID string) profile.Card {
	if s.profiles == nil {
		return profile.Missing(userID)
	}
	return s.profiles.Card(ctx, userID)
}

// SearchEnabled reports whether Search can do anything.
func (s *State) SearchEnabled() bool {
	return s.cfg.Features.Search && s.catalog != nil
}

// Context is cancelled when the state is closed.
func (s *State) Context() context.Context {
	return s.ctx
}

func (s *State) setStatus(msg string) {
	s.mu.Lock()
	s.status = msg
	s.mu.Unlock()
	s.Emit(EventStatus, msg)
}

func (s *State) playbackEnded(userID string) {
	s.mu.Lock()
	s.machine.PlaybackEnded(userID)
	s.mu.Unlock()
}

// changed reports whether two snapshots draw differently.
func changed(a, b interact.Snapshot) bool {
	return a.Level != b.Level ||
		a.View != b.View ||
		a.Highlight != b.Highlight ||
		a.Frozen != b.Frozen ||
		a.Popup != b.Popup ||
		a.Panel.Visible != b.Panel.Visible ||
		a.Panel.GroupID != b.Panel.GroupID ||
		a.Hover != b.Hover
}
