package audius

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{
		BaseURL: srv.URL + "/v1/",
		AppName: "Constellation",
		APIKey:  "key",
		Logger:  zaptest.NewLogger(t).Sugar(),
	})
}

func TestUser(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/users/Wem1e", r.URL.Path)
		assert.Equal(t, "Constellation", r.URL.Query().Get("app_name"))
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		_, err := uuid.Parse(r.Header.Get("X-Request-ID"))
		assert.NoError(t, err)
		w.Write([]byte(`{"data":{"id":"Wem1e","handle":"dj","bio":"hi","profile_picture":{"480x480":"https://img/480.jpg"}}}`))
	})

	u, err := c.User(context.Background(), "Wem1e")
	require.NoError(t, err)
	assert.Equal(t, "dj", u.Handle)
	require.NotNil(t, u.ProfilePicture)
	assert.Equal(t, "https://img/480.jpg", u.ProfilePicture.Medium)
}

func TestUserNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	_, err := c.User(context.Background(), "nobody")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUserNullData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":null}`))
	})
	_, err := c.User(context.Background(), "x")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestTopTrack(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/v1/users/u1/tracks", r.URL.Path)
		assert.Equal(t, "1", q.Get("limit"))
		assert.Equal(t, "plays", q.Get("sort_method"))
		assert.Equal(t, "desc", q.Get("sort_direction"))
		assert.Equal(t, "public", q.Get("filter_tracks"))
		w.Write([]byte(`{"data":[{"id":"t9","title":"Hit","play_count":100}]}`))
	})

	tr, err := c.TopTrack(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "t9", tr.ID)
}

func TestTopTrackEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	})
	_, err := c.TopTrack(context.Background(), "u1")
	assert.True(t, errors.Is(err, ErrNoTrack))
}

func TestServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	_, err := c.TopTrack(context.Background(), "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestStreamURL(t *testing.T) {
	c := New(Options{BaseURL: "https://api.example/v1", AppName: "Constellation"})
	assert.Equal(t, "https://api.example/v1/tracks/t%201/stream?app_name=Constellation", c.StreamURL("t 1"))

	bare := New(Options{BaseURL: "https://api.example/v1"})
	assert.Equal(t, "https://api.example/v1/tracks/t9/stream", bare.StreamURL("t9"))
}

func TestSearchUsers(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/users/search", r.URL.Path)
		assert.Equal(t, "daft", r.URL.Query().Get("query"))
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"data":[{"id":"a"},{"id":"b"}]}`))
	})

	users, err := c.SearchUsers(context.Background(), "  daft ", 3)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "a", users[0].ID)

	none, err := c.SearchUsers(context.Background(), "   ", 3)
	assert.NoError(t, err)
	assert.Empty(t, none)
}

func TestCancelledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"id":"x"}}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.User(ctx, "x")
	assert.Error(t, err)
}
