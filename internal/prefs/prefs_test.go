package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scottbw/dvnt/internal/models"
)

func TestLoadEmptyStore(t *testing.T) {
	s := NewStore(t.TempDir())
	p, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, p.FavoriteArtists)
	assert.False(t, p.SafeMode)
}

func TestToggleFavoriteRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())

	added, err := s.ToggleFavorite("stargazer")
	require.NoError(t, err)
	assert.True(t, added)

	p, err := s.Load()
	require.NoError(t, err)
	assert.True(t, p.IsFavorite("stargazer"))

	added, err = s.ToggleFavorite("stargazer")
	require.NoError(t, err)
	assert.False(t, added)

	p, err = s.Load()
	require.NoError(t, err)
	assert.False(t, p.IsFavorite("stargazer"))
}

func TestToggleBlocked(t *testing.T) {
	s := NewStore(t.TempDir())

	added, err := s.ToggleBlocked("spammer")
	require.NoError(t, err)
	assert.True(t, added)

	p, err := s.Load()
	require.NoError(t, err)
	assert.True(t, p.IsBlocked("spammer"))
	assert.False(t, p.IsBlocked("someone-else"))
}

func TestListsAreSorted(t *testing.T) {
	s := NewStore(t.TempDir())
	for _, name := range []string{"zeta", "alpha", "mid"} {
		_, err := s.ToggleFavorite(name)
		require.NoError(t, err)
	}

	p, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, p.FavoriteArtists)
}

func TestFlagsPersist(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	require.NoError(t, s.SetSafeMode(true))
	require.NoError(t, s.SetFavoritesOnly(true))

	// A fresh store over the same directory sees the saved state.
	p, err := NewStore(dir).Load()
	require.NoError(t, err)
	assert.True(t, p.SafeMode)
	assert.True(t, p.FavoritesOnly)
}

func TestAppDefaultsPersist(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	require.NoError(t, s.SetDefaultTab("newest"))
	require.NoError(t, s.SetTheme("dracula"))
	require.NoError(t, s.SetDefaultGallery("folder-1"))

	p, err := NewStore(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, "newest", p.DefaultTab)
	assert.Equal(t, "dracula", p.Theme)
	assert.Equal(t, "folder-1", p.DefaultGallery)

	// Clearing a default removes it again.
	require.NoError(t, s.SetDefaultGallery(""))
	p, err = NewStore(dir).Load()
	require.NoError(t, err)
	assert.Empty(t, p.DefaultGallery)
	assert.Equal(t, "newest", p.DefaultTab)
}

func TestCorruptedFileStartsOver(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "artists.json"), []byte("{broken"), 0600))

	p, err := NewStore(dir).Load()
	require.NoError(t, err)
	assert.Empty(t, p.FavoriteArtists)
}

func TestFilterDeviations(t *testing.T) {
	dev := func(author string, mature bool) models.Deviation {
		return models.Deviation{
			DeviationID: author + "-1",
			Author:      &models.User{Username: author},
			IsMature:    mature,
		}
	}
	items := []models.Deviation{
		dev("fav", false),
		dev("blocked", false),
		dev("other", false),
		dev("fav", true),
		{DeviationID: "anon"}, // no author
	}

	p := &Preferences{
		FavoriteArtists: []string{"fav"},
		BlockedArtists:  []string{"blocked"},
	}

	got := p.FilterDeviations(items)
	assert.Len(t, got, 4) // blocked dropped

	p.SafeMode = true
	got = p.FilterDeviations(items)
	assert.Len(t, got, 3) // mature fav dropped too

	p.FavoritesOnly = true
	got = p.FilterDeviations(items)
	require.Len(t, got, 1)
	assert.Equal(t, "fav-1", got[0].DeviationID)
}
