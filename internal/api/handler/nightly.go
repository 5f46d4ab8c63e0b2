package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/albapepper/finnkampen/internal/aggregate"
	"github.com/albapepper/finnkampen/internal/api/respond"
	"github.com/albapepper/finnkampen/internal/cache"
	"github.com/albapepper/finnkampen/internal/season"
	"github.com/albapepper/finnkampen/internal/store"
	"github.com/albapepper/finnkampen/internal/tweet"
)

const (
	defaultRecentLimit = 14
	maxRecentLimit     = 100
)

// NationView is one nation's nightly line with derived points and score.
type NationView struct {
	Nation      string  `json:"nation"`
	Goals       int     `json:"goals"`
	Assists     int     `json:"assists"`
	Points      int     `json:"points"`
	PlayerCount int     `json:"player_count"`
	GoalieWins  int     `json:"goalie_wins"`
	Score       float64 `json:"score"`
}

// NightView is the API shape of one night.
type NightView struct {
	Date        string     `json:"date"`
	NightWinner *string    `json:"night_winner"`
	FIN         NationView `json:"fin"`
	SWE         NationView `json:"swe"`
}

func nationView(n aggregate.NationNight) NationView {
	return NationView{
		Nation:      n.Nation,
		Goals:       n.Goals,
		Assists:     n.Assists,
		Points:      n.Points(),
		PlayerCount: n.PlayerCount,
		GoalieWins:  n.GoalieWins,
		Score:       n.Score(),
	}
}

func nightView(n aggregate.Night) NightView {
	v := NightView{Date: n.Date, FIN: nationView(n.FIN), SWE: nationView(n.SWE)}
	if n.Winner != aggregate.NoWinner {
		w := string(n.Winner)
		v.NightWinner = &w
	}
	return v
}

// nightTTL keeps recent nights short-lived: a late correction to last night
// is the common case.
func (h *Handler) nightTTL(date time.Time) time.Duration {
	if h.now().UTC().Sub(date) > 48*time.Hour {
		return cache.TTLPastNight
	}
	return cache.TTLRecent
}

// GetRecentNights lists the newest nights from the pivot view.
// @Summary Recent nights
// @Description Returns the newest nights, newest first, from the nightly FIN vs SWE materialized view.
// @Tags nightly
// @Produce json
// @Param limit query int false "Number of nights (1-100, default 14)"
// @Success 200 {array} NightView
// @Failure 400 {object} respond.ErrorResponse
// @Router /nightly [get]
func (h *Handler) GetRecentNights(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxRecentLimit {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_LIMIT",
				fmt.Sprintf("limit must be an integer between 1 and %d", maxRecentLimit))
			return
		}
		limit = n
	}

	h.serveCached(w, r, fmt.Sprintf("recent:%d", limit), cache.TTLRecent, func() (any, bool) {
		nights, err := h.store.RecentNights(r.Context(), limit)
		if err != nil {
			h.internalError(w, "read recent nights", err)
			return nil, false
		}
		views := make([]NightView, 0, len(nights))
		for _, n := range nights {
			views = append(views, nightView(n))
		}
		return views, true
	})
}

// GetNightly returns the stored totals and winner for one date.
// @Summary Nightly totals
// @Description Returns FIN and SWE totals for one date with the per-player normalized winner.
// @Tags nightly
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} NightView
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /nightly/{date} [get]
func (h *Handler) GetNightly(w http.ResponseWriter, r *http.Request) {
	date, d, ok := parseDateParam(w, r)
	if !ok {
		return
	}

	h.serveCached(w, r, "nightly:"+date, h.nightTTL(d), func() (any, bool) {
		n, err := h.store.Nightly(r.Context(), date)
		if err != nil {
			h.nightlyError(w, date, err)
			return nil, false
		}
		return nightView(n), true
	})
}

// GetNightlyTweet renders the post for one date without publishing it.
// @Summary Post preview
// @Description Returns the post text the publisher would send for a date, with its UTF-16 length.
// @Tags nightly
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /nightly/{date}/tweet [get]
func (h *Handler) GetNightlyTweet(w http.ResponseWriter, r *http.Request) {
	date, d, ok := parseDateParam(w, r)
	if !ok {
		return
	}

	h.serveCached(w, r, "tweet:"+date, h.nightTTL(d), func() (any, bool) {
		post, err := tweet.Compose(r.Context(), h.store, date)
		if err != nil {
			h.nightlyError(w, date, err)
			return nil, false
		}
		return map[string]any{
			"date":       post.Date,
			"text":       post.Text,
			"length":     post.Length,
			"max_length": tweet.MaxLength,
		}, true
	})
}

// GetSeason returns the season-to-date totals for one game type.
// @Summary Season totals
// @Description Returns FIN and SWE season totals and nightly win counts for one season and game type.
// @Tags season
// @Produce json
// @Param season path string true "Season label, e.g. 20252026"
// @Param gameType path string true "Game type" Enums(PR, R, P)
// @Success 200 {object} aggregate.Season
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /season/{season}/{gameType} [get]
func (h *Handler) GetSeason(w http.ResponseWriter, r *http.Request) {
	label := chi.URLParam(r, "season")
	if !validSeasonLabel(label) {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_SEASON", "season must look like 20252026")
		return
	}
	gameType := season.GameTypeCode(chi.URLParam(r, "gameType"))
	switch gameType {
	case season.PreSeason, season.RegularSeason, season.Playoffs:
	default:
		respond.WriteError(w, http.StatusBadRequest, "INVALID_GAME_TYPE", "gameType must be PR, R or P")
		return
	}

	h.serveCached(w, r, "season:"+label+":"+gameType, cache.TTLSeason, func() (any, bool) {
		s, found, err := h.store.Season(r.Context(), label, gameType)
		if err != nil {
			h.internalError(w, "read season", err)
			return nil, false
		}
		if !found {
			respond.WriteError(w, http.StatusNotFound, "NOT_FOUND",
				fmt.Sprintf("No %s totals stored for season %s", gameType, label))
			return nil, false
		}
		return s, true
	})
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

func parseDateParam(w http.ResponseWriter, r *http.Request) (string, time.Time, bool) {
	date := chi.URLParam(r, "date")
	d, err := season.ParseDate(date)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_DATE", "date must be YYYY-MM-DD")
		return "", time.Time{}, false
	}
	return date, d, true
}

// validSeasonLabel accepts two consecutive years, e.g. 20252026.
func validSeasonLabel(s string) bool {
	if len(s) != 8 {
		return false
	}
	start, err1 := strconv.Atoi(s[:4])
	end, err2 := strconv.Atoi(s[4:])
	return err1 == nil && err2 == nil && end == start+1
}

func (h *Handler) nightlyError(w http.ResponseWriter, date string, err error) {
	if errors.Is(err, store.ErrNoNightly) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "No aggregate stored for "+date)
		return
	}
	h.internalError(w, "read nightly", err)
}

func (h *Handler) internalError(w http.ResponseWriter, op string, err error) {
	h.logger.Error("Request failed", "op", op, "error", err)
	respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Internal server error")
}
