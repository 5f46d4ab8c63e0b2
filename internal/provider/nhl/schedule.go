package nhl

import (
	"github.com/albapepper/finnkampen/internal/provider"
	"github.com/albapepper/finnkampen/internal/season"
)

var gameIDOf = provider.FirstOf(
	provider.IntAt("id"),
	provider.IntAt("gameId"),
	provider.IntAt("gamePk"),
)

var gameTypeOf = provider.StringAt("gameType")

// ScheduledGames projects a schedule document onto the games of exactly one
// date. The endpoint returns a whole week in gameWeek[]; other days are
// dropped. Entries without a numeric id are skipped.
func ScheduledGames(doc provider.Node, date string) []provider.ScheduledGame {
	var out []provider.ScheduledGame
	for _, day := range doc.Get("gameWeek").Items() {
		d, _ := day.Get("date").String()
		if len(d) < 10 || d[:10] != date {
			continue
		}
		for _, g := range day.Get("games").Items() {
			id, ok := gameIDOf(g)
			if !ok {
				continue
			}
			gt, _ := gameTypeOf(g)
			out = append(out, provider.ScheduledGame{ID: id, GameType: season.GameTypeCode(gt)})
		}
	}
	return out
}
