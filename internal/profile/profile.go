// Package profile turns catalog users into the cards shown in the popup and
// the side panel.
package profile

import (
	"context"
	"sync"

	"constellation/internal/audius"
	"constellation/internal/logger"

	"go.uber.org/zap"
)

const (
	// BioLimit is the number of characters of bio shown before truncation.
	BioLimit = 120
	// SiteURL is the public site that profile links point to.
	SiteURL = "https://audius.co"
	// NotFoundHandle replaces the handle when a profile cannot be loaded.
	NotFoundHandle = "User not found"

	maxCached = 512
)

// Users fetches user profiles.
type Users interface {
	User(ctx context.Context, id string) (*audius.User, error)
}

// Card is the display form of a profile.
type Card struct {
	UserID  string
	Handle  string // "@handle"
	Name    string
	Picture string // 480x480 avatar URL, empty when unknown
	Bio     string
	Link    string
	Found   bool
}

// Service builds cards, caching successful lookups.
type Service struct {
	users Users
	log   *zap.SugaredLogger

	mu    sync.Mutex
	cache map[string]Card
}

// NewService creates a card service.
func NewService(users Users, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{users: users, log: log, cache: make(map[string]Card)}
}

// Card returns the card for userID. Lookup failures produce the
// not-found placeholder rather than an error.
func (s *Service) Card(ctx context.Context, userID string) Card {
	s.mu.Lock()
	c, ok := s.cache[userID]
	s.mu.Unlock()
	if ok {
		return c
	}

	u, err := s.users.User(ctx, userID)
	if err != nil {
		s.log.Debugw("profile unavailable", logger.FieldUser, userID, logger.FieldError, err)
		return Missing(userID)
	}
	c = FromUser(u)

	s.mu.Lock()
	if len(s.cache) >= maxCached {
		s.cache = make(map[string]Card)
	}
	s.cache[userID] = c
	s.mu.Unlock()
	return c
}

// FromUser converts a catalog user to a card.
func FromUser(u *audius.User) Card {
	c := Card{
		UserID: u.ID,
		Handle: "@" + u.Handle,
		Name:   u.Name,
		Bio:    Truncate(u.Bio, BioLimit),
		Link:   SiteURL + "/" + u.Handle,
		Found:  true,
	}
	if u.ProfilePicture != nil {
		c.Picture = u.ProfilePicture.Medium
	}
	return c
}

// Missing is the placeholder card for a user that could not be loaded.
func Missing(userID string) Card {
	return Card{UserID: userID, Handle: NotFoundHandle, Link: SiteURL}
}

// Truncate shortens s to limit characters followed by "..." when it is
// longer than limit.
func Truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
