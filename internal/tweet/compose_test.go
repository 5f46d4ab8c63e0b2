package tweet

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/finnkampen/internal/aggregate"
)

var errNoNight = errors.New("no nightly aggregate")

type fakeSource struct {
	nights   map[string]aggregate.Night
	types    map[string]string
	seasons  map[string]aggregate.Season // keyed season+"/"+gameType
	typeErr  error
	askedFor string
}

func (f *fakeSource) Nightly(_ context.Context, date string) (aggregate.Night, error) {
	n, ok := f.nights[date]
	if !ok {
		return aggregate.Night{}, errNoNight
	}
	return n, nil
}

func (f *fakeSource) GameTypeOn(_ context.Context, date string) (string, bool, error) {
	if f.typeErr != nil {
		return "", false, f.typeErr
	}
	gt, ok := f.types[date]
	return gt, ok, nil
}

func (f *fakeSource) Season(_ context.Context, label, gameType string) (aggregate.Season, bool, error) {
	f.askedFor = label + "/" + gameType
	s, ok := f.seasons[f.askedFor]
	return s, ok, nil
}

func TestComposeWithSeason(t *testing.T) {
	src := &fakeSource{
		nights:  map[string]aggregate.Night{"2025-10-09": scenarioNight()},
		types:   map[string]string{"2025-10-09": "R"},
		seasons: map[string]aggregate.Season{"20252026/R": *regularSeason()},
	}

	post, err := Compose(context.Background(), src, "2025-10-09")
	require.NoError(t, err)

	assert.Equal(t, "20252026/R", src.askedFor)
	require.NotNil(t, post.Season)
	assert.Contains(t, post.Text, "Kausitilastot")
	assert.Equal(t, Length(post.Text), post.Length)
	assert.Equal(t, aggregate.WinnerFIN, post.Night.Winner)
}

func TestComposeWithoutGames(t *testing.T) {
	src := &fakeSource{nights: map[string]aggregate.Night{"2025-08-01": {Date: "2025-08-01"}}}

	post, err := Compose(context.Background(), src, "2025-08-01")
	require.NoError(t, err)
	assert.Nil(t, post.Season)
	assert.Empty(t, src.askedFor)
	assert.NotContains(t, post.Text, "Kausitilastot")
}

func TestComposeMissingNightPassesErrorThrough(t *testing.T) {
	_, err := Compose(context.Background(), &fakeSource{}, "2025-10-09")
	assert.ErrorIs(t, err, errNoNight)
}

func TestComposeGameTypeError(t *testing.T) {
	src := &fakeSource{
		nights:  map[string]aggregate.Night{"2025-10-09": scenarioNight()},
		typeErr: errors.New("db down"),
	}
	_, err := Compose(context.Background(), src, "2025-10-09")
	assert.EqualError(t, err, "db down")
}
