// Package provider defines canonical data types that upstream documents are
// projected into. These structs are the contract between the NHL handlers and
// the ingest runner: handlers output these, the store writes them to Postgres.
//
// Untyped upstream documents stay behind Node; nothing past the extraction
// boundary sees them.
package provider

// Team is the canonical team shape written to the teams table.
type Team struct {
	NHLID   int64  `json:"nhl_id"`
	Name    string `json:"name"`
	Tricode string `json:"tricode"`
}

// ScheduledGame is one game listed on a schedule day.
type ScheduledGame struct {
	ID       int64  `json:"id"`
	GameType string `json:"game_type"` // PR, R, P
}

// GameMeta is the game-level metadata carried by a boxscore.
type GameMeta struct {
	GameDate string `json:"game_date"` // YYYY-MM-DD, empty when absent
	Status   string `json:"status,omitempty"`
	Home     Team   `json:"home"`
	Away     Team   `json:"away"`
}

// StatRow is one player's line for one game. Nil fields are absent upstream
// and are written as SQL NULL, never as zero.
type StatRow struct {
	PlayerID   int64   `json:"player_id"`
	Name       string  `json:"name,omitempty"`
	TeamAbbrev string  `json:"team_abbrev,omitempty"`
	IsGoalie   bool    `json:"is_goalie"`
	Goals      *int    `json:"goals,omitempty"`
	Assists    *int    `json:"assists,omitempty"`
	Shots      *int    `json:"shots,omitempty"`
	PIM        *int    `json:"pim,omitempty"`
	TOI        *string `json:"toi,omitempty"`

	Saves        *int    `json:"saves,omitempty"`
	ShotsAgainst *int    `json:"shots_against,omitempty"`
	GoalsAgainst *int    `json:"goals_against,omitempty"`
	Decision     *string `json:"decision,omitempty"`
	Shutout      *bool   `json:"shutout,omitempty"`
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// StringPtr returns a pointer to v.
func StringPtr(v string) *string { return &v }
