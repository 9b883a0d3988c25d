// Package prefs stores per-user browsing preferences: favorite and
// blocked artists, the filters built on them, and app-wide defaults
// such as the browse tab, theme and gallery folder. State lives in a
// JSON file guarded by a cross-process lock so concurrent invocations
// don't clobber each other.
package prefs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"

	"github.com/scottbw/dvnt/internal/models"
)

const fileName = "artists.json"

// LockTimeout is the maximum time to wait for the file lock. If
// exceeded, operations proceed without locking (fail-open) to avoid
// CLI hangs; a lost update on a preference list is tolerable.
const LockTimeout = 100 * time.Millisecond

// Preferences is the persisted state.
type Preferences struct {
	FavoriteArtists []string `json:"favorite_artists,omitempty"`
	BlockedArtists  []string `json:"blocked_artists,omitempty"`
	FavoritesOnly   bool     `json:"favorites_filter_enabled,omitempty"`
	SafeMode        bool     `json:"safe_mode_enabled,omitempty"`

	// App-wide defaults. Empty means the built-in default applies.
	DefaultTab     string `json:"default_tab,omitempty"`
	Theme          string `json:"theme,omitempty"`
	DefaultGallery string `json:"default_gallery_folder,omitempty"`
}

// Store handles reading and writing preferences.
type Store struct {
	dir string
}

// NewStore creates a preference store in the given directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path() string {
	return filepath.Join(s.dir, fileName)
}

func (s *Store) lockPath() string {
	return filepath.Join(s.dir, ".artists.lock")
}

// acquireLock obtains an exclusive lock. Returns nil without error on
// timeout; the caller then proceeds unlocked.
func (s *Store) acquireLock() (*flock.Flock, error) {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return nil, err
	}

	fl := flock.New(s.lockPath())
	ctx, cancel := context.WithTimeout(context.Background(), LockTimeout)
	defer cancel()

	locked, err := fl.TryLockContext(ctx, 10*time.Millisecond)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, nil
		}
		return nil, err
	}
	if !locked {
		return nil, nil
	}
	return fl, nil
}

// Load reads the preferences, returning empty preferences when the
// file is missing or corrupted.
func (s *Store) Load() (*Preferences, error) {
	lock, err := s.acquireLock()
	if err != nil {
		return nil, err
	}
	if lock != nil {
		defer func() { _ = lock.Unlock() }()
	}
	return s.loadUnsafe()
}

func (s *Store) loadUnsafe() (*Preferences, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return &Preferences{}, nil
		}
		return nil, err
	}

	var p Preferences
	if err := json.Unmarshal(data, &p); err != nil {
		// Corrupted file: start over rather than wedge every command.
		return &Preferences{}, nil
	}
	return &p, nil
}

// Update applies fn to the current preferences and persists the result
// under the lock.
func (s *Store) Update(fn func(*Preferences)) (*Preferences, error) {
	lock, err := s.acquireLock()
	if err != nil {
		return nil, err
	}
	if lock != nil {
		defer func() { _ = lock.Unlock() }()
	}

	p, err := s.loadUnsafe()
	if err != nil {
		return nil, err
	}
	fn(p)

	sort.Strings(p.FavoriteArtists)
	sort.Strings(p.BlockedArtists)

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, err
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.dir, "artists-*.json.tmp")
	if err != nil {
		return nil, err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, err
	}
	if err := os.Rename(tmpPath, s.path()); err != nil {
		os.Remove(tmpPath)
		return nil, err
	}
	return p, nil
}

// ToggleFavorite flips an artist in the favorites list and reports
// whether they are now a favorite.
func (s *Store) ToggleFavorite(username string) (bool, error) {
	var added bool
	_, err := s.Update(func(p *Preferences) {
		p.FavoriteArtists, added = toggle(p.FavoriteArtists, username)
	})
	return added, err
}

// ToggleBlocked flips an artist in the blocked list and reports whether
// they are now blocked.
func (s *Store) ToggleBlocked(username string) (bool, error) {
	var added bool
	_, err := s.Update(func(p *Preferences) {
		p.BlockedArtists, added = toggle(p.BlockedArtists, username)
	})
	return added, err
}

// SetFavoritesOnly switches the favorites-only filter.
func (s *Store) SetFavoritesOnly(enabled bool) error {
	_, err := s.Update(func(p *Preferences) { p.FavoritesOnly = enabled })
	return err
}

// SetSafeMode switches the mature-content filter.
func (s *Store) SetSafeMode(enabled bool) error {
	_, err := s.Update(func(p *Preferences) { p.SafeMode = enabled })
	return err
}

// SetDefaultTab records the feed browse opens when no feed is given.
func (s *Store) SetDefaultTab(feed string) error {
	_, err := s.Update(func(p *Preferences) { p.DefaultTab = feed })
	return err
}

// SetTheme records the named theme used for styled output.
func (s *Store) SetTheme(name string) error {
	_, err := s.Update(func(p *Preferences) { p.Theme = name })
	return err
}

// SetDefaultGallery records the folder gallery opens when no folder is
// given. Empty clears it, restoring the all-folders view.
func (s *Store) SetDefaultGallery(folderID string) error {
	_, err := s.Update(func(p *Preferences) { p.DefaultGallery = folderID })
	return err
}

func toggle(list []string, item string) ([]string, bool) {
	for i, v := range list {
		if v == item {
			return append(list[:i], list[i+1:]...), false
		}
	}
	return append(list, item), true
}

// IsFavorite reports whether an artist is in the favorites list.
func (p *Preferences) IsFavorite(username string) bool {
	return contains(p.FavoriteArtists, username)
}

// IsBlocked reports whether an artist is in the blocked list.
func (p *Preferences) IsBlocked(username string) bool {
	return contains(p.BlockedArtists, username)
}

func contains(list []string, item string) bool {
	for _, v := range list {
		if v == item {
			return true
		}
	}
	return false
}

// FilterDeviations drops deviations from blocked artists, optionally
// restricts to favorites, and hides mature content in safe mode.
func (p *Preferences) FilterDeviations(items []models.Deviation) []models.Deviation {
	out := make([]models.Deviation, 0, len(items))
	for _, d := range items {
		author := ""
		if d.Author != nil {
			author = d.Author.Username
		}
		if p.IsBlocked(author) {
			continue
		}
		if p.FavoritesOnly && !p.IsFavorite(author) {
			continue
		}
		if p.SafeMode && d.IsMature {
			continue
		}
		out = append(out, d)
	}
	return out
}
