// Package aggregate recomputes nation-level nightly and season totals from
// persisted per-game rows and decides the nightly winner.
//
// Everything here is a recomputation: nightly rows are overwritten, season
// rows are overwritten and season win counts are rebuilt by replaying every
// nightly winner of the season up to the ingested date. Correcting a past
// night by re-ingesting it therefore flows into the season totals without a
// separate backfill.
package aggregate

import (
	"github.com/albapepper/finnkampen/internal/nation"
)

// Winner is the nightly outcome. NoWinner means neither cohort had a player
// on the ice; it is stored as NULL and is not a tie.
type Winner string

const (
	WinnerFIN Winner = nation.FIN
	WinnerSWE Winner = nation.SWE
	WinnerTie Winner = "TIE"
	NoWinner  Winner = ""
)

// Valid reports whether w is one of the four stored outcomes.
func (w Winner) Valid() bool {
	switch w {
	case WinnerFIN, WinnerSWE, WinnerTie, NoWinner:
		return true
	}
	return false
}

// NationNight is one nation's totals for one date.
type NationNight struct {
	Nation      string `json:"nation"`
	Goals       int    `json:"goals"`
	Assists     int    `json:"assists"`
	PlayerCount int    `json:"player_count"`
	GoalieWins  int    `json:"goalie_wins"`
}

// Points is goals plus assists.
func (n NationNight) Points() int { return n.Goals + n.Assists }

// Score is points per participating player; zero when nobody played.
func (n NationNight) Score() float64 {
	if n.PlayerCount <= 0 {
		return 0
	}
	return float64(n.Points()) / float64(n.PlayerCount)
}

// Night is the pair of nightly rows for a date plus the decided winner.
type Night struct {
	Date   string      `json:"date"`
	FIN    NationNight `json:"fin"`
	SWE    NationNight `json:"swe"`
	Winner Winner      `json:"night_winner,omitempty"`
}

// NationSeason is one nation's season-to-date totals for a game type.
type NationSeason struct {
	Nation    string `json:"nation"`
	Goals     int    `json:"goals"`
	Assists   int    `json:"assists"`
	NightWins int    `json:"night_wins"`
}

// Points is goals plus assists.
func (n NationSeason) Points() int { return n.Goals + n.Assists }

// Season is the pair of season rows for one season and game type.
type Season struct {
	Season   string       `json:"season"`
	GameType string       `json:"game_type"`
	FIN      NationSeason `json:"fin"`
	SWE      NationSeason `json:"swe"`
}

// SeasonTotal is one grouped season sum as read from the store.
type SeasonTotal struct {
	GameType string
	NationSeason
}

// NightResult is the stored winner of one date.
type NightResult struct {
	Date   string
	Winner Winner
}

// DecideWinner applies the per-player normalized rule: the strictly higher
// points-per-player wins; equal scores are a tie when anyone played; no
// players on either side is no winner at all.
func DecideWinner(fin, swe NationNight) Winner {
	if fin.PlayerCount <= 0 && swe.PlayerCount <= 0 {
		return NoWinner
	}
	fs, ss := fin.Score(), swe.Score()
	switch {
	case fs > ss:
		return WinnerFIN
	case ss > fs:
		return WinnerSWE
	default:
		return WinnerTie
	}
}

// PairNights picks the FIN and SWE rows out of grouped results, synthesizing
// zero rows for a nation that had nobody playing. Other nations are ignored.
func PairNights(rows []NationNight) (fin, swe NationNight) {
	fin = NationNight{Nation: nation.FIN}
	swe = NationNight{Nation: nation.SWE}
	for _, r := range rows {
		switch r.Nation {
		case nation.FIN:
			fin = r
		case nation.SWE:
			swe = r
		}
	}
	return fin, swe
}

// PairSeason picks the FIN and SWE rows for one game type, synthesizing zero
// rows when a nation has no points in it.
func PairSeason(rows []SeasonTotal, gameType string) (fin, swe NationSeason) {
	fin = NationSeason{Nation: nation.FIN}
	swe = NationSeason{Nation: nation.SWE}
	for _, r := range rows {
		if r.GameType != gameType {
			continue
		}
		switch r.Nation {
		case nation.FIN:
			fin = r.NationSeason
		case nation.SWE:
			swe = r.NationSeason
		}
	}
	return fin, swe
}

// TallyWins counts nightly wins per nation. Each date counts once; ties and
// no-winner nights count for nobody.
func TallyWins(nights []NightResult) map[string]int {
	wins := map[string]int{nation.FIN: 0, nation.SWE: 0}
	seen := make(map[string]bool, len(nights))
	for _, n := range nights {
		if seen[n.Date] {
			continue
		}
		seen[n.Date] = true
		switch n.Winner {
		case WinnerFIN:
			wins[nation.FIN]++
		case WinnerSWE:
			wins[nation.SWE]++
		}
	}
	return wins
}
