package nhl

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/finnkampen/internal/provider"
)

func newTestServer(t *testing.T, routes map[string]string) (*httptest.Server, *[]string) {
	t.Helper()
	var hits []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits = append(hits, r.URL.Path)
		file, ok := routes[r.URL.Path]
		if !ok {
			http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
			return
		}
		data, err := os.ReadFile(filepath.Join("testdata", file))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestScheduleFiltersExactDate(t *testing.T) {
	srv, hits := newTestServer(t, map[string]string{"/schedule/2025-10-08": "schedule.json"})
	c := NewClient(srv.URL, 0, nil)

	games, err := c.Schedule(context.Background(), "2025-10-08")
	require.NoError(t, err)

	assert.Equal(t, []provider.ScheduledGame{
		{ID: 2025020004, GameType: "R"},
		{ID: 2025020005, GameType: "R"},
		{ID: 2025010099, GameType: "PR"},
	}, games)
	assert.Equal(t, []string{"/schedule/2025-10-08"}, *hits)
}

func TestScheduleNoGamesForDate(t *testing.T) {
	srv, _ := newTestServer(t, map[string]string{"/schedule/2025-10-09": "schedule.json"})
	c := NewClient(srv.URL, 0, nil)

	games, err := c.Schedule(context.Background(), "2025-10-09")
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestBoxscoreAndLandingPaths(t *testing.T) {
	srv, hits := newTestServer(t, map[string]string{
		"/gamecenter/2025020004/boxscore": "boxscore.json",
	})
	c := NewClient(srv.URL, 0, nil)

	box, err := c.Boxscore(context.Background(), 2025020004)
	require.NoError(t, err)
	assert.Equal(t, "OFF", TeamMetaFromBoxscore(box).Status)

	_, err = c.PlayerLanding(context.Background(), 8477493)
	require.Error(t, err)
	assert.Equal(t, []string{"/gamecenter/2025020004/boxscore", "/player/8477493/landing"}, *hits)
}

func TestNonSuccessStatusIsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, nil)
	_, err := c.Schedule(context.Background(), "2025-10-08")
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	assert.Equal(t, "/schedule/2025-10-08", se.Path)
	assert.Equal(t, "upstream down", se.Body)
}

func TestInvalidJSONIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 0, nil).Boxscore(context.Background(), 1)
	require.Error(t, err)
}

func TestCancelledContext(t *testing.T) {
	srv, _ := newTestServer(t, map[string]string{})
	c := NewClient(srv.URL, 60, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Schedule(ctx, "2025-10-08")
	require.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate([]byte("abc"), 5))
	assert.Equal(t, "ab...", truncate([]byte("abcdef"), 2))
}
