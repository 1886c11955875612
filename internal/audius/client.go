// Package audius is a small client for the public Audius REST API: user
// profiles, a user's most played track, stream URLs and user search.
package audius

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"constellation/internal/logger"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoTrack is returned when a user has no public tracks.
	ErrNoTrack = errors.New("user has no public tracks")
)

// Options configures a Client.
type Options struct {
	BaseURL           string
	AppName           string
	APIKey            string
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
	Logger     *zap.SugaredLogger
}

// Client talks to the catalog service. It is safe for concurrent use.
type Client struct {
	baseURL string
	appName string
	apiKey  string

	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zap.SugaredLogger
}

// New creates a client. A non-positive RequestsPerSecond disables rate
// limiting.
func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		appName:    opts.AppName,
		apiKey:     opts.APIKey,
		httpClient: hc,
		limiter:    rate.NewLimiter(limit, burst),
		log:        log,
	}
}

// ProfilePicture holds the available avatar sizes.
type ProfilePicture struct {
	Small  string `json:"150x150"`
	Medium string `json:"480x480"`
	Large  string `json:"1000x1000"`
}

// User is a catalog user.
type User struct {
	ID             string          `json:"id"`
	Handle         string          `json:"handle"`
	Name           string          `json:"name"`
	Bio            string          `json:"bio"`
	FollowerCount  int             `json:"follower_count"`
	TrackCount     int             `json:"track_count"`
	ProfilePicture *ProfilePicture `json:"profile_picture"`
}

// Track is a catalog track.
type Track struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Duration  int    `json:"duration"`
	PlayCount int    `json:"play_count"`
	User      *User  `json:"user,omitempty"`
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// User fetches a user profile by id.
func (c *Client) User(ctx context.Context, id string) (*User, error) {
	var u User
	if err := c.get(ctx, "/users/"+url.PathEscape(id), nil, &u); err != nil {
		return nil, errors.Wrapf(err, "user %s", id)
	}
	return &u, nil
}

// TopTrack returns the user's public track with the most plays.
func (c *Client) TopTrack(ctx context.Context, userID string) (*Track, error) {
	q := url.Values{}
	q.Set("limit", "1")
	q.Set("sort_method", "plays")
	q.Set("sort_direction", "desc")
	q.Set("filter_tracks", "public")

	var tracks []Track
	if err := c.get(ctx, "/users/"+url.PathEscape(userID)+"/tracks", q, &tracks); err != nil {
		return nil, errors.Wrapf(err, "tracks of %s", userID)
	}
	if len(tracks) == 0 {
		return nil, errors.Wrapf(ErrNoTrack, "user %s", userID)
	}
	return &tracks[0], nil
}

// StreamURL returns the audio stream location of a track.
func (c *Client) StreamURL(trackID string) string {
	u := c.baseURL + "/tracks/" + url.PathEscape(trackID) + "/stream"
	if c.appName != "" {
		u += "?app_name=" + url.QueryEscape(c.appName)
	}
	return u
}

// SearchUsers returns users matching query, best match first.
func (c *Client) SearchUsers(ctx context.Context, query string, limit int) ([]User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	q := url.Values{}
	q.Set("query", query)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var users []User
	if err := c.get(ctx, "/users/search", q, &users); err != nil {
		return nil, errors.Wrapf(err, "search %q", query)
	}
	return users, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "rate limit")
	}
	if q == nil {
		q = url.Values{}
	}
	if c.appName != "" {
		q.Set("app_name", c.appName)
	}
	endpoint := c.baseURL + path
	if enc := q.Encode(); enc != "" {
		endpoint += "?" + enc
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	c.log.Debugw("catalog request",
		logger.FieldURL, path,
		logger.FieldRequest, reqID,
		"status", resp.StatusCode,
		logger.FieldDuration, time.Since(start).Milliseconds(),
	)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Newf("catalog returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return errors.Wrap(err, "decode response")
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return ErrNotFound
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return errors.Wrap(err, "decode data")
	}
	return nil
}
