package nhl

import (
	"strings"

	"github.com/albapepper/finnkampen/internal/provider"
)

// birthCountryOf lists the places the landing document has carried the
// birth country over API revisions.
var birthCountryOf = provider.FirstOf(
	provider.StringAt("playerBio", "birthCountry"),
	provider.StringAt("player", "birthCountry"),
	provider.StringAt("bio", "birthCountry"),
	provider.StringAt("birthCountry"),
	provider.StringAt("playerBirthCountryCode"),
)

// BirthCountry returns the upper-cased birth country code from a player
// landing document.
func BirthCountry(landing provider.Node) (string, bool) {
	raw, ok := birthCountryOf(landing)
	if !ok {
		return "", false
	}
	v := strings.ToUpper(strings.TrimSpace(raw))
	return v, v != ""
}
