// Package tweet renders the nightly FIN vs SWE summary post.
package tweet

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/albapepper/finnkampen/internal/aggregate"
	"github.com/albapepper/finnkampen/internal/season"
)

// MaxLength is the posting limit, counted in UTF-16 code units.
const MaxLength = 280

const (
	flagFIN = "🇫🇮"
	flagSWE = "🇸🇪"

	Hashtags = "#nhlfi #nhlsv #Finnkampen #jääkiekko #ishockey #leijonat #trekronor"
)

// Length counts s the way the posting service does.
func Length(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// FormatNightly renders the post for one night. s is the season pair for
// the night's game type, nil when none is stored. Trailing sections are
// dropped, hashtags first, until the text fits MaxLength; the header and
// nightly body are always kept whole.
func FormatNightly(n aggregate.Night, s *aggregate.Season) string {
	head := Header(n.Date) + "\n\n" + Body(n)

	var seasonPart string
	if s != nil {
		seasonPart = "\n\n" + SeasonSection(*s)
	}

	full := head + seasonPart + "\n\n" + Hashtags
	if Length(full) <= MaxLength {
		return full
	}
	if withSeason := head + seasonPart; Length(withSeason) <= MaxLength {
		return withSeason
	}
	return head
}

// Header is the first line with the date as DD.MM.YYYY.
func Header(date string) string {
	return "NHL i går kväll / viime yö:  " + displayDate(date)
}

func displayDate(date string) string {
	t, err := season.ParseDate(date)
	if err != nil {
		return date
	}
	return t.Format("02.01.2006")
}

// Body is the two nation lines plus the optional winner and per-player lines.
func Body(n aggregate.Night) string {
	lines := []string{
		fmt.Sprintf("%s FIN  %d G, %d A, %d P", flagFIN, n.FIN.Goals, n.FIN.Assists, n.FIN.Points()),
		fmt.Sprintf("%s SWE %d G, %d A, %d P", flagSWE, n.SWE.Goals, n.SWE.Assists, n.SWE.Points()),
	}
	if w := WinnerLine(n.Winner); w != "" {
		lines = append(lines, w)
	}
	if n.FIN.PlayerCount > 0 || n.SWE.PlayerCount > 0 {
		lines = append(lines, fmt.Sprintf("(Per player: %s %dp, %.2f | %s %dp, %.2f)",
			flagFIN, n.FIN.PlayerCount, n.FIN.Score(),
			flagSWE, n.SWE.PlayerCount, n.SWE.Score()))
	}
	return strings.Join(lines, "\n")
}

// WinnerLine announces the night; empty when there is no winner.
func WinnerLine(w aggregate.Winner) string {
	switch w {
	case aggregate.WinnerFIN:
		return flagFIN + " voitti illan/vann kvällen!"
	case aggregate.WinnerSWE:
		return flagSWE + " voitti illan/vann kvällen!"
	case aggregate.WinnerTie:
		return "Tasapeli/Oavgjort!"
	default:
		return ""
	}
}

// SeasonSection is the season header and one line per nation with wins.
func SeasonSection(s aggregate.Season) string {
	header := fmt.Sprintf("Kausitilastot - Säsongen totalt (%s):", s.Season)
	if season.IsPreSeason(s.GameType) {
		header = fmt.Sprintf("Harjoituskausi - Försäsongen (%s):", s.Season)
	}
	return strings.Join([]string{
		header,
		seasonLine(flagFIN, s.FIN, "voittoa"),
		seasonLine(flagSWE, s.SWE, "segrar"),
	}, "\n")
}

func seasonLine(flag string, n aggregate.NationSeason, wins string) string {
	return fmt.Sprintf("%s %d G, %d A, %d P (%d %s)", flag, n.Goals, n.Assists, n.Points(), n.NightWins, wins)
}

