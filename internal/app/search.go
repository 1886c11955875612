package app

import (
	"context"
	"fmt"
	"strings"

	"constellation/internal/catalog"
	"constellation/internal/logger"
	"constellation/internal/nav"

	"github.com/cockroachdb/errors"
)

// Search resolves query to a user, the user to a cluster through the
// lookup table, and opens that cluster. It runs in the background. The
// result is dropped when a newer search starts or the user navigates
// before it resolves. Failures are reported through the status message.
func (s *State) Search(query string) {
	query = strings.TrimSpace(query)
	if query == "" || !s.cfg.Features.Search || s.catalog == nil {
		return
	}
	s.mu.Lock()
	s.searchEpoch++
	issued := searchTicket{epoch: s.searchEpoch, visits: s.nav.Visits()}
	s.mu.Unlock()
	s.setStatus(fmt.Sprintf("Searching for %q...", query))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		groupID, err := s.resolveQuery(s.ctx, query)
		if err != nil {
			s.log.Infow("search failed", logger.FieldQuery, query, logger.FieldError, err)
		}
		if err := s.finishSearch(issued, query, groupID, err); err != nil {
			s.log.Warnw("search navigate", logger.FieldCluster, groupID, logger.FieldError, err)
		}
	}()
}

// searchTicket records the search and navigation counters when a search
// was issued.
type searchTicket struct {
	epoch  uint64
	visits uint64
}

// finishSearch applies a resolved search. The staleness check and the
// navigation happen under one lock so no navigation can slip in between.
func (s *State) finishSearch(issued searchTicket, query, groupID string, resolveErr error) error {
	s.mu.Lock()
	if issued.epoch != s.searchEpoch {
		s.mu.Unlock()
		return nil
	}
	if issued.visits != s.nav.Visits() {
		// The user went elsewhere; only the pending status is cleared.
		s.status = ""
		s.mu.Unlock()
		s.log.Debugw("discard stale search", logger.FieldQuery, query, logger.FieldCluster, groupID)
		s.Emit(EventStatus, "")
		return nil
	}
	if resolveErr != nil {
		s.status = fmt.Sprintf("No cluster found for %q", query)
		msg := s.status
		s.mu.Unlock()
		s.Emit(EventStatus, msg)
		return nil
	}

	s.status = ""
	var tickets []nav.Ticket
	if t, ok := s.nav.Back(); ok {
		tickets = append(tickets, t)
	}
	t, err := s.enterLocked(groupID)
	if err == nil {
		tickets = append(tickets, t)
	}
	snap := s.machine.Snapshot()
	s.mu.Unlock()

	s.Emit(EventStatus, "")
	for _, t := range tickets {
		s.Emit(EventLevelChanged, t)
	}
	if len(tickets) > 0 {
		s.Emit(EventViewChanged, snap)
		s.load(tickets[len(tickets)-1])
	}
	return err
}

// resolveQuery maps a free-text query to a cluster id.
func (s *State) resolveQuery(ctx context.Context, query string) (string, error) {
	users, err := s.catalog.SearchUsers(ctx, query, 1)
	if err != nil {
		return "", err
	}
	if len(users) == 0 {
		return "", errors.Wrapf(ErrNoMatch, "no user matches %q", query)
	}
	lookup, err := s.lookupTable(ctx)
	if err != nil {
		return "", err
	}
	root, err := s.rootDataset(ctx)
	if err != nil {
		return "", err
	}
	groupID, ok := lookup.Resolve(users[0].ID, root)
	if !ok {
		return "", errors.Wrapf(ErrNoMatch, "user %s is not charted", users[0].ID)
	}
	return groupID, nil
}

// lookupTable loads the entity to cluster table once.
func (s *State) lookupTable(ctx context.Context) (catalog.Lookup, error) {
	s.mu.Lock()
	l := s.lookup
	s.mu.Unlock()
	if l != nil {
		return l, nil
	}
	l, err := catalog.LoadLookup(ctx, s.source, s.cfg.Data.Lookup)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.lookup = l
	s.mu.Unlock()
	return l, nil
}

// rootDataset returns the top-level dataset, fetching it when the top
// level has not been shown yet.
func (s *State) rootDataset(ctx context.Context) (*catalog.Dataset, error) {
	s.mu.Lock()
	root := s.root
	s.mu.Unlock()
	if root != nil {
		return root, nil
	}
	root, err := catalog.LoadDataset(ctx, s.source, s.cfg.Data.RootCluster)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.root = root
	s.mu.Unlock()
	return root, nil
}
