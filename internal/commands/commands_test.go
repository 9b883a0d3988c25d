package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scottbw/dvnt/internal/api"
	"github.com/scottbw/dvnt/internal/appctx"
	"github.com/scottbw/dvnt/internal/auth"
	"github.com/scottbw/dvnt/internal/config"
	"github.com/scottbw/dvnt/internal/deviantart"
	"github.com/scottbw/dvnt/internal/output"
	"github.com/scottbw/dvnt/internal/prefs"
	"github.com/scottbw/dvnt/internal/presenter"
	"github.com/scottbw/dvnt/internal/scrape"
)

// newTestApp builds an app wired to an httptest server, with stored
// credentials and JSON output captured in a buffer.
func newTestApp(t *testing.T, mux *http.ServeMux) (*appctx.App, *bytes.Buffer) {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	t.Setenv("DVNT_NO_KEYRING", "1")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("LC_ALL", "en_US.UTF-8")

	cfg := config.Default()
	cfg.BaseURL = srv.URL
	cfg.ClientID = "client-1"

	store := auth.NewStore(config.GlobalConfigDir())
	require.NoError(t, store.Save("test-token", "refresh", 3600, "browse", "tester"))

	mgr := auth.NewManager(cfg, store, srv.Client())
	client := api.NewClient(cfg, mgr)

	var buf bytes.Buffer
	app := &appctx.App{
		Config:  cfg,
		Auth:    mgr,
		API:     client,
		Service: deviantart.New(client, cfg),
		Prefs:   prefs.NewStore(config.GlobalConfigDir()),
		Scraper: scrape.New(),
		Locale:  presenter.DetectLocale(),
		Output:  output.New(output.Options{Format: output.FormatJSON, Writer: &buf}),
	}
	return app, &buf
}

func runCommand(app *appctx.App, cmd *cobra.Command, args ...string) error {
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetContext(appctx.WithApp(context.Background(), app))
	return cmd.Execute()
}

func decodeEnvelope(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp), "output: %s", buf.String())
	return resp
}

func TestBrowseListsFeed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/browse/popular", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"has_more":false,"results":[
			{"deviationid":"d1","title":"One","author":{"username":"alice"}},
			{"deviationid":"d2","title":"Two","author":{"username":"bob"}}]}`))
	})

	app, buf := newTestApp(t, mux)
	require.NoError(t, runCommand(app, NewBrowseCmd()))

	resp := decodeEnvelope(t, buf)
	assert.Equal(t, true, resp["ok"])
	assert.Len(t, resp["data"], 2)
	assert.Equal(t, "2 deviations", resp["summary"])
}

func TestBrowseOffsetFlag(t *testing.T) {
	var offsets []string
	mux := http.NewServeMux()
	mux.HandleFunc("/browse/popular", func(w http.ResponseWriter, r *http.Request) {
		offsets = append(offsets, r.URL.Query().Get("offset"))
		w.Write([]byte(`{"has_more":false,"results":[]}`))
	})

	app, _ := newTestApp(t, mux)
	require.NoError(t, runCommand(app, NewBrowseCmd(), "--offset", "48"))
	assert.Equal(t, []string{"48"}, offsets)
}

func TestBrowseRejectsFeedWithTag(t *testing.T) {
	app, _ := newTestApp(t, http.NewServeMux())

	err := runCommand(app, NewBrowseCmd(), "daily", "--tag", "sunset")
	require.Error(t, err)
	assert.Equal(t, output.CodeUsage, output.AsError(err).Code)
}

func TestBrowseUnknownFeed(t *testing.T) {
	app, _ := newTestApp(t, http.NewServeMux())

	err := runCommand(app, NewBrowseCmd(), "bogus")
	require.Error(t, err)
}

func TestBrowseUsesDefaultTab(t *testing.T) {
	var paths []string
	mux := http.NewServeMux()
	mux.HandleFunc("/browse/newest", func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte(`{"has_more":false,"results":[]}`))
	})

	app, _ := newTestApp(t, mux)
	require.NoError(t, app.Prefs.SetDefaultTab("newest"))

	require.NoError(t, runCommand(app, NewBrowseCmd()))
	assert.Equal(t, []string{"/browse/newest"}, paths)
}

func TestBrowseSetDefaultSavesFeed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/browse/hot", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"has_more":false,"results":[]}`))
	})

	app, _ := newTestApp(t, mux)
	require.NoError(t, runCommand(app, NewBrowseCmd(), "hot", "--set-default"))

	p, err := app.Prefs.Load()
	require.NoError(t, err)
	assert.Equal(t, "hot", p.DefaultTab)
}

func TestBrowseSetDefaultNeedsFeed(t *testing.T) {
	app, _ := newTestApp(t, http.NewServeMux())

	err := runCommand(app, NewBrowseCmd(), "--set-default")
	require.Error(t, err)
	assert.Equal(t, output.CodeUsage, output.AsError(err).Code)
}

func TestBrowseSetDefaultRejectsUnknownFeed(t *testing.T) {
	app, _ := newTestApp(t, http.NewServeMux())

	err := runCommand(app, NewBrowseCmd(), "bogus", "--set-default")
	require.Error(t, err)

	p, perr := app.Prefs.Load()
	require.NoError(t, perr)
	assert.Empty(t, p.DefaultTab)
}

func TestGalleryUsesDefaultFolder(t *testing.T) {
	var paths []string
	mux := http.NewServeMux()
	mux.HandleFunc("/gallery/", func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte(`{"has_more":false,"results":[]}`))
	})

	app, _ := newTestApp(t, mux)
	require.NoError(t, app.Prefs.SetDefaultGallery("folder-9"))

	// Own gallery opens with the saved folder.
	require.NoError(t, runCommand(app, NewGalleryCmd()))
	assert.Equal(t, []string{"/gallery/folder-9"}, paths)

	// Another user's gallery ignores it.
	paths = nil
	require.NoError(t, runCommand(app, NewGalleryCmd(), "alice"))
	assert.Equal(t, []string{"/gallery/all"}, paths)
}

func TestGallerySetDefaultFolder(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/gallery/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"has_more":false,"results":[]}`))
	})

	app, _ := newTestApp(t, mux)
	require.NoError(t, runCommand(app, NewGalleryCmd(), "--folder", "folder-3", "--set-default"))

	p, err := app.Prefs.Load()
	require.NoError(t, err)
	assert.Equal(t, "folder-3", p.DefaultGallery)

	// --set-default without --folder clears it again.
	require.NoError(t, runCommand(app, NewGalleryCmd(), "--set-default"))
	p, err = app.Prefs.Load()
	require.NoError(t, err)
	assert.Empty(t, p.DefaultGallery)
}

func TestThemeSetShowClear(t *testing.T) {
	app, buf := newTestApp(t, http.NewServeMux())

	themeDir := filepath.Join(config.GlobalConfigDir(), "theme")
	require.NoError(t, os.MkdirAll(themeDir, 0o700))
	require.NoError(t, os.WriteFile(
		filepath.Join(themeDir, "dusk.toml"), []byte("accent = \"#ff00aa\"\n"), 0o600))

	require.NoError(t, runCommand(app, NewThemeCmd(), "dusk"))

	p, err := app.Prefs.Load()
	require.NoError(t, err)
	assert.Equal(t, "dusk", p.Theme)

	buf.Reset()
	require.NoError(t, runCommand(app, NewThemeCmd()))
	resp := decodeEnvelope(t, buf)
	assert.Equal(t, "theme dusk", resp["summary"])

	require.NoError(t, runCommand(app, NewThemeCmd(), "--clear"))
	p, err = app.Prefs.Load()
	require.NoError(t, err)
	assert.Empty(t, p.Theme)
}

func TestThemeRejectsMissingFile(t *testing.T) {
	app, _ := newTestApp(t, http.NewServeMux())

	err := runCommand(app, NewThemeCmd(), "no-such-theme")
	require.Error(t, err)
	assert.Equal(t, output.CodeUsage, output.AsError(err).Code)
}

func TestBrowseFiltersBlockedArtists(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/browse/popular", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"has_more":false,"results":[
			{"deviationid":"d1","title":"One","author":{"username":"alice"}},
			{"deviationid":"d2","title":"Two","author":{"username":"blocked_guy"}}]}`))
	})

	app, buf := newTestApp(t, mux)
	_, err := app.Prefs.ToggleBlocked("blocked_guy")
	require.NoError(t, err)

	require.NoError(t, runCommand(app, NewBrowseCmd()))

	resp := decodeEnvelope(t, buf)
	assert.Len(t, resp["data"], 1)
}

func TestArtistsFavoriteToggles(t *testing.T) {
	app, buf := newTestApp(t, http.NewServeMux())

	require.NoError(t, runCommand(app, NewArtistsCmd(), "favorite", "alice"))
	resp := decodeEnvelope(t, buf)
	assert.Equal(t, map[string]any{"alice": true}, resp["data"])

	buf.Reset()
	require.NoError(t, runCommand(app, NewArtistsCmd(), "favorite", "alice"))
	resp = decodeEnvelope(t, buf)
	assert.Equal(t, map[string]any{"alice": false}, resp["data"])
}

func TestArtistsFavoriteAcceptsProfileURL(t *testing.T) {
	app, buf := newTestApp(t, http.NewServeMux())

	require.NoError(t, runCommand(app, NewArtistsCmd(), "favorite", "https://www.deviantart.com/alice"))
	resp := decodeEnvelope(t, buf)
	assert.Equal(t, map[string]any{"alice": true}, resp["data"])
}

func TestArtistsFilterRejectsBadValue(t *testing.T) {
	app, _ := newTestApp(t, http.NewServeMux())

	err := runCommand(app, NewArtistsCmd(), "filter", "--safe-mode", "maybe")
	require.Error(t, err)
	assert.Equal(t, output.CodeUsage, output.AsError(err).Code)
}

func TestConfigSetAndGet(t *testing.T) {
	app, buf := newTestApp(t, http.NewServeMux())

	require.NoError(t, runCommand(app, NewConfigCmd(), "set", "page_size", "48"))

	data, err := os.ReadFile(filepath.Join(config.GlobalConfigDir(), "config.json"))
	require.NoError(t, err)
	var saved map[string]any
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Equal(t, float64(48), saved["page_size"])

	buf.Reset()
	require.NoError(t, runCommand(app, NewConfigCmd(), "get", "page_size"))
	resp := decodeEnvelope(t, buf)
	entry := resp["data"].(map[string]any)
	// The app config was loaded before the set; default still shown.
	assert.Equal(t, float64(24), entry["value"])
	assert.Equal(t, "default", entry["source"])
}

func TestConfigSetRejectsUnknownKey(t *testing.T) {
	app, _ := newTestApp(t, http.NewServeMux())

	err := runCommand(app, NewConfigCmd(), "set", "nope", "1")
	require.Error(t, err)
	assert.Equal(t, output.CodeUsage, output.AsError(err).Code)
}

func TestConfigSetValidatesValues(t *testing.T) {
	app, _ := newTestApp(t, http.NewServeMux())

	tests := [][]string{
		{"set", "page_size", "0"},
		{"set", "page_size", "121"},
		{"set", "format", "xml"},
		{"set", "base_url", "not-a-url"},
		{"set", "mature_content", "maybe"},
		{"set", "verbose", "9"},
	}
	for _, args := range tests {
		err := runCommand(app, NewConfigCmd(), args...)
		require.Error(t, err, "%v", args)
		assert.Equal(t, output.CodeUsage, output.AsError(err).Code, "%v", args)
	}
}

func TestAuthStatusAuthenticated(t *testing.T) {
	app, buf := newTestApp(t, http.NewServeMux())

	require.NoError(t, runCommand(app, NewAuthCmd(), "status"))
	resp := decodeEnvelope(t, buf)
	data := resp["data"].(map[string]any)
	assert.Equal(t, true, data["authenticated"])
	assert.Equal(t, "tester", data["username"])
	assert.Equal(t, "Authenticated as tester", resp["summary"])
}

func TestAuthStatusLoggedOut(t *testing.T) {
	app, buf := newTestApp(t, http.NewServeMux())
	require.NoError(t, app.Auth.Store().Clear())

	require.NoError(t, runCommand(app, NewAuthCmd(), "status"))
	resp := decodeEnvelope(t, buf)
	data := resp["data"].(map[string]any)
	assert.Equal(t, false, data["authenticated"])
}

func TestNotesMoveRequiresFolder(t *testing.T) {
	app, _ := newTestApp(t, http.NewServeMux())

	err := runCommand(app, NewNotesCmd(), "move", "n1")
	require.Error(t, err)
	assert.Equal(t, output.CodeUsage, output.AsError(err).Code)
}

func TestProfileWatchDefaultsStreams(t *testing.T) {
	var form map[string][]string
	mux := http.NewServeMux()
	mux.HandleFunc("/user/friends/watch/alice", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Write([]byte(`{"success":true}`))
	})

	app, buf := newTestApp(t, mux)
	require.NoError(t, runCommand(app, NewProfileCmd(), "watch", "alice"))

	assert.Equal(t, []string{"1"}, form["watch[deviations]"])
	assert.Equal(t, []string{"1"}, form["watch[journals]"])
	assert.Equal(t, []string{"0"}, form["watch[scraps]"])

	resp := decodeEnvelope(t, buf)
	assert.Equal(t, "Now watching alice", resp["summary"])
}

func TestVersionCommand(t *testing.T) {
	app, buf := newTestApp(t, http.NewServeMux())

	require.NoError(t, runCommand(app, NewVersionCmd()))
	resp := decodeEnvelope(t, buf)
	data := resp["data"].(map[string]any)
	assert.Equal(t, "dev", data["version"])
}

func TestRequireAppMissing(t *testing.T) {
	cmd := NewVersionCmd()
	cmd.SetArgs(nil)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetContext(context.Background())
	require.Error(t, cmd.Execute())
}
