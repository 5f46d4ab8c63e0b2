package nhl

import (
	"sort"
	"strings"

	"github.com/albapepper/finnkampen/internal/provider"
)

// Per-field extraction strategies, tried in order.
var (
	playerIDOf = provider.FirstOf(provider.IntAt("playerId"), provider.IntAt("id"))

	playerNameOf = provider.FirstOf(
		provider.StringAt("name", "default"),
		provider.StringAt("name", "full"),
		provider.StringAt("firstLastName"),
		provider.StringAt("fullName"),
		provider.StringAt("playerName"),
	)

	teamNameOf = provider.FirstOf(
		provider.StringAt("placeName", "default"),
		provider.StringAt("commonName", "default"),
	)

	teamAbbrevOf = provider.FirstOf(provider.StringAt("teamAbbrev"), provider.StringAt("teamAbbreviation"))

	shotsOf = provider.FirstOf(provider.IntAt("sog"), provider.IntAt("shots"))
	toiOf   = provider.FirstOf(provider.StringAt("toi"), provider.StringAt("timeOnIce"))
)

// rosterGroups are the per-team groups under playerByGameStats.<side>.
var rosterGroups = []struct {
	key    string
	goalie bool
}{
	{"forwards", false},
	{"defense", false},
	{"goalies", true},
}

// TeamMetaFromBoxscore reads team identities, game date and state.
func TeamMetaFromBoxscore(box provider.Node) provider.GameMeta {
	date, _ := box.Get("gameDate").String()
	if len(date) > 10 {
		date = date[:10]
	}
	status, _ := box.Get("gameState").String()
	return provider.GameMeta{
		GameDate: date,
		Status:   status,
		Home:     teamFrom(box.Get("homeTeam")),
		Away:     teamFrom(box.Get("awayTeam")),
	}
}

func teamFrom(n provider.Node) provider.Team {
	abbr, _ := n.Get("abbrev").String()
	abbr = strings.ToUpper(abbr)
	id, _ := n.Get("id").Int()
	name, ok := teamNameOf(n)
	if !ok {
		name = abbr
	}
	return provider.Team{NHLID: id, Name: name, Tricode: abbr}
}

// ExtractPlayerRows reads playerByGameStats.{homeTeam,awayTeam}.{forwards,
// defense,goalies}[] into stat rows, home side first.
func ExtractPlayerRows(box provider.Node) []provider.StatRow {
	var rows []provider.StatRow
	byGame := box.Get("playerByGameStats")
	for _, side := range []string{"homeTeam", "awayTeam"} {
		abbr, _ := box.Path(side, "abbrev").String()
		abbr = strings.ToUpper(abbr)
		for _, g := range rosterGroups {
			for _, p := range byGame.Path(side, g.key).Items() {
				row, ok := statRow(p, g.goalie, abbr)
				if ok {
					rows = append(rows, row)
				}
			}
		}
	}
	return rows
}

func statRow(p provider.Node, goalie bool, teamAbbrev string) (provider.StatRow, bool) {
	id, ok := playerIDOf(p)
	if !ok {
		return provider.StatRow{}, false
	}
	name, _ := playerNameOf(p)
	row := provider.StatRow{
		PlayerID:   id,
		Name:       name,
		TeamAbbrev: teamAbbrev,
		IsGoalie:   goalie,
		TOI:        provider.OptString(toiOf, p),
	}
	if !goalie {
		row.Goals = provider.OptInt(provider.IntAt("goals"), p)
		row.Assists = provider.OptInt(provider.IntAt("assists"), p)
		row.Shots = provider.OptInt(shotsOf, p)
		row.PIM = provider.OptInt(provider.IntAt("pim"), p)
		return row, true
	}

	row.Saves = provider.OptInt(provider.IntAt("saves"), p)
	row.ShotsAgainst = provider.OptInt(provider.IntAt("shotsAgainst"), p)
	row.GoalsAgainst = provider.OptInt(provider.IntAt("goalsAgainst"), p)
	row.Decision = provider.OptString(provider.StringAt("decision"), p)
	if row.Decision != nil && row.GoalsAgainst != nil {
		shutout := *row.Decision == "W" && *row.GoalsAgainst == 0
		row.Shutout = &shutout
	}
	return row, true
}

// TallyFromSummary is the fallback when playerByGameStats is empty: it walks
// the summary block (or the whole document when there is none) for scoring
// records shaped {scorer: {...}, assists: [...]} and counts goals and
// assists per player. Rows come back ordered by player id and carry no
// shots, saves or decision.
func TallyFromSummary(box provider.Node) []provider.StatRow {
	root := box.Get("summary")
	if root.IsAbsent() {
		root = box
	}

	tallies := make(map[int64]*provider.StatRow)
	add := func(n provider.Node, goal bool) {
		id, ok := playerIDOf(n)
		if !ok {
			return
		}
		t, exists := tallies[id]
		if !exists {
			name, _ := playerNameOf(n)
			abbr, _ := teamAbbrevOf(n)
			t = &provider.StatRow{
				PlayerID:   id,
				Name:       name,
				TeamAbbrev: strings.ToUpper(abbr),
				Goals:      provider.IntPtr(0),
				Assists:    provider.IntPtr(0),
			}
			tallies[id] = t
		}
		if goal {
			*t.Goals++
		} else {
			*t.Assists++
		}
	}

	var visit func(n provider.Node)
	visit = func(n provider.Node) {
		switch {
		case n.IsObject():
			scorer := n.Get("scorer")
			if scorer.IsObject() && n.Get("assists").IsArray() {
				add(scorer, true)
				for _, a := range n.Get("assists").Items() {
					add(a, false)
				}
			}
			for _, k := range n.Keys() {
				visit(n.Get(k))
			}
		case n.IsArray():
			for _, item := range n.Items() {
				visit(item)
			}
		}
	}
	visit(root)

	rows := make([]provider.StatRow, 0, len(tallies))
	for _, t := range tallies {
		rows = append(rows, *t)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].PlayerID < rows[j].PlayerID })
	return rows
}

// GameRows returns the primary roster rows, falling back to summary tallies.
// fromSummary reports which path produced them.
func GameRows(box provider.Node) (rows []provider.StatRow, fromSummary bool) {
	if rows := ExtractPlayerRows(box); len(rows) > 0 {
		return rows, false
	}
	return TallyFromSummary(box), true
}
