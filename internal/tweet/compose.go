package tweet

import (
	"context"
	"fmt"

	"github.com/albapepper/finnkampen/internal/aggregate"
	"github.com/albapepper/finnkampen/internal/season"
)

// Source reads the stored aggregates a post is built from.
type Source interface {
	Nightly(ctx context.Context, date string) (aggregate.Night, error)
	GameTypeOn(ctx context.Context, date string) (gameType string, ok bool, err error)
	Season(ctx context.Context, seasonLabel, gameType string) (aggregate.Season, bool, error)
}

// Post is a rendered post and the aggregates behind it.
type Post struct {
	Date   string            `json:"date"`
	Text   string            `json:"text"`
	Length int               `json:"length"`
	Night  aggregate.Night   `json:"night"`
	Season *aggregate.Season `json:"season,omitempty"`
}

// Compose loads the night for date and, when stored, the season pair for
// the game type played that night, then renders the post. The nightly read
// error is returned unwrapped so callers can test for a missing night.
func Compose(ctx context.Context, src Source, date string) (Post, error) {
	night, err := src.Nightly(ctx, date)
	if err != nil {
		return Post{}, err
	}

	var s *aggregate.Season
	gameType, ok, err := src.GameTypeOn(ctx, date)
	if err != nil {
		return Post{}, err
	}
	if ok {
		label, err := season.FromDate(date)
		if err != nil {
			return Post{}, fmt.Errorf("season for %s: %w", date, err)
		}
		found, exists, err := src.Season(ctx, label, gameType)
		if err != nil {
			return Post{}, err
		}
		if exists {
			s = &found
		}
	}

	text := FormatNightly(night, s)
	return Post{Date: date, Text: text, Length: Length(text), Night: night, Season: s}, nil
}
