package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/scottbw/dvnt/internal/config"
	"github.com/scottbw/dvnt/internal/output"
)

// Manager drives the authorization-code flow and token lifecycle.
type Manager struct {
	cfg        *config.Config
	store      *Store
	httpClient *http.Client

	mu           sync.Mutex
	pendingState string
}

// NewManager creates a new auth manager.
func NewManager(cfg *config.Config, store *Store, httpClient *http.Client) *Manager {
	return &Manager{
		cfg:        cfg,
		store:      store,
		httpClient: httpClient,
	}
}

// Store returns the credential store.
func (m *Manager) Store() *Store {
	return m.store
}

// StartFlow generates a fresh state nonce and returns the authorization
// URL the user must visit. The nonce is remembered for the callback.
func (m *Manager) StartFlow() (string, error) {
	if m.cfg.ClientID == "" {
		return "", output.ErrUsageHint("No OAuth client configured",
			"Set a client id: dvnt config set client_id <id> (register at https://www.deviantart.com/developers/)")
	}

	u, err := url.Parse(m.cfg.AuthURL)
	if err != nil {
		return "", err
	}

	state := generateState()
	m.mu.Lock()
	m.pendingState = state
	m.mu.Unlock()

	q := u.Query()
	q.Set("response_type", "code")
	q.Set("client_id", m.cfg.ClientID)
	q.Set("redirect_uri", m.cfg.RedirectURI())
	q.Set("scope", m.cfg.Scope)
	q.Set("state", state)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// HandleCallback validates a redirect URL and extracts the authorization
// code. The state is checked before anything else; a mismatch means the
// redirect did not come from the flow this client started. The nonce is
// single-use: it is discarded the moment it matches, so a replay of the
// same redirect fails the state check. A mismatch leaves it in place,
// otherwise a forged redirect could cancel the flow in progress.
func (m *Manager) HandleCallback(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", output.ErrUsage("Invalid callback URL")
	}
	q := u.Query()

	m.mu.Lock()
	expected := m.pendingState
	matched := expected != "" && q.Get("state") == expected
	if matched {
		m.pendingState = ""
	}
	m.mu.Unlock()

	if !matched {
		return "", output.ErrStateMismatch()
	}

	if errParam := q.Get("error"); errParam != "" {
		desc := q.Get("error_description")
		if desc == "" {
			desc = errParam
		}
		return "", output.ErrAuthDenied(desc)
	}

	code := q.Get("code")
	if code == "" {
		return "", output.ErrMissingCode()
	}
	return code, nil
}

// Exchange trades an authorization code for tokens and persists them.
func (m *Manager) Exchange(ctx context.Context, code string) error {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("redirect_uri", m.cfg.RedirectURI())

	tok, err := m.tokenRequest(ctx, data)
	if err != nil {
		e := output.AsError(err)
		if e.Code == output.CodeAPI {
			return output.ErrTokenExchange(e.HTTPStatus, e.Message)
		}
		return err
	}

	return m.store.Save(tok.AccessToken, tok.RefreshToken, tok.ExpiresIn, m.cfg.Scope, "")
}

// Refresh exchanges the stored refresh token for a new access token.
// When the server omits a new refresh token the old one is kept. The
// stored record is untouched on failure.
func (m *Manager) Refresh(ctx context.Context) error {
	creds, err := m.store.Load()
	if err != nil {
		return err
	}
	if creds == nil || creds.RefreshToken == "" {
		return output.ErrNotLoggedIn()
	}

	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", creds.RefreshToken)

	tok, err := m.tokenRequest(ctx, data)
	if err != nil {
		e := output.AsError(err)
		if e.Code == output.CodeAPI {
			return output.ErrRefreshFailed(e.HTTPStatus, e.Message)
		}
		return err
	}

	refresh := tok.RefreshToken
	if refresh == "" {
		refresh = creds.RefreshToken
	}
	return m.store.Save(tok.AccessToken, refresh, tok.ExpiresIn, creds.Scope, creds.Username)
}

// EnsureFresh makes sure an unexpired access token is available,
// refreshing once if the stored one has expired.
func (m *Manager) EnsureFresh(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	creds, err := m.store.Load()
	if err != nil {
		return err
	}
	if creds == nil || creds.AccessToken == "" {
		return output.ErrNotLoggedIn()
	}
	if !m.store.Expired() {
		return nil
	}
	return m.Refresh(ctx)
}

// AccessToken returns the stored access token. It does not refresh;
// call EnsureFresh first.
func (m *Manager) AccessToken() (string, error) {
	creds, err := m.store.Load()
	if err != nil {
		return "", err
	}
	if creds == nil || creds.AccessToken == "" {
		return "", output.ErrNotLoggedIn()
	}
	return creds.AccessToken, nil
}

// SetUsername records the signed-in account name on the stored
// credential without disturbing the tokens.
func (m *Manager) SetUsername(username string) error {
	creds, err := m.store.Load()
	if err != nil {
		return err
	}
	if creds == nil {
		return output.ErrNotLoggedIn()
	}
	creds.Username = username
	return m.store.SaveRecord(creds)
}

// Logout discards any pending login, revokes the access token
// server-side and clears local credentials. Revocation is best-effort:
// a failure is reported on stderr but never blocks the local clear.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.pendingState = ""
	m.mu.Unlock()

	creds, err := m.store.Load()
	if err == nil && creds != nil {
		token := creds.AccessToken
		if token == "" {
			token = creds.RefreshToken
		}
		if token != "" {
			if err := m.revoke(ctx, token); err != nil {
				fmt.Fprintf(os.Stderr, "warning: token revocation failed: %v\n", err)
			}
		}
	}
	return m.store.Clear()
}

func (m *Manager) revoke(ctx context.Context, token string) error {
	data := url.Values{}
	data.Set("token", token)

	req, err := http.NewRequestWithContext(ctx, "POST", m.revokeURL(), strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("revoke returned %d", resp.StatusCode)
	}
	return nil
}

func (m *Manager) revokeURL() string {
	return strings.TrimSuffix(m.cfg.TokenURL, "/token") + "/revoke"
}

// LoginOptions configures the login flow.
type LoginOptions struct {
	NoBrowser bool // If true, don't auto-open browser, just print URL
}

// Login runs the whole authorization-code flow: local callback server,
// browser hand-off, state validation, code exchange, credential save.
func (m *Manager) Login(ctx context.Context, opts LoginOptions) error {
	authURL, err := m.StartFlow()
	if err != nil {
		return err
	}

	code, err := m.waitForCallback(ctx, authURL, opts.NoBrowser)
	if err != nil {
		return err
	}

	return m.Exchange(ctx, code)
}

func (m *Manager) waitForCallback(ctx context.Context, authURL string, noBrowser bool) (string, error) {
	lc := net.ListenConfig{}
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("127.0.0.1:%d", m.cfg.RedirectPort))
	if err != nil {
		return "", fmt.Errorf("failed to start callback server: %w", err)
	}
	defer func() { _ = listener.Close() }()

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	server := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code, err := m.HandleCallback(r.URL.String())
			if err != nil {
				errCh <- err
				fmt.Fprint(w, "<html><body><h1>Authentication failed</h1><p>You can close this window.</p></body></html>")
				return
			}
			codeCh <- code
			fmt.Fprint(w, "<html><body><h1>Authentication successful!</h1><p>You can close this window.</p></body></html>")
		}),
	}

	go server.Serve(listener)

	if !noBrowser {
		if err := openBrowser(authURL); err != nil {
			fmt.Printf("\nCouldn't open browser automatically.\nOpen this URL in your browser:\n%s\n\nWaiting for authentication...\n", authURL)
		} else {
			fmt.Println("\nOpening browser for authentication...")
			fmt.Printf("If the browser doesn't open, visit: %s\n\nWaiting for authentication...\n", authURL)
		}
	} else {
		fmt.Printf("\nOpen this URL in your browser:\n%s\n\nWaiting for authentication...\n", authURL)
	}

	select {
	case code := <-codeCh:
		return code, nil
	case err := <-errCh:
		return "", err
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(5 * time.Minute):
		return "", fmt.Errorf("authentication timeout")
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type,omitempty"`
	Status       string `json:"status,omitempty"`
}

func (m *Manager) tokenRequest(ctx context.Context, data url.Values) (*tokenResponse, error) {
	data.Set("client_id", m.cfg.ClientID)
	if m.cfg.ClientSecret != "" {
		data.Set("client_secret", m.cfg.ClientSecret)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", m.cfg.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, output.ErrNetwork(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, output.ErrAPI(resp.StatusCode, tokenErrorDetail(body))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, fmt.Errorf("decoding token response: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, output.ErrAPI(resp.StatusCode, "token response missing access_token")
	}
	return &tok, nil
}

// tokenErrorDetail extracts the provider's error_description from a
// failed token response, falling back to the raw body.
func tokenErrorDetail(body []byte) string {
	var e struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &e); err == nil {
		if e.ErrorDescription != "" {
			return e.ErrorDescription
		}
		if e.Error != "" {
			return e.Error
		}
	}
	return strings.TrimSpace(string(body))
}

func generateState() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// openBrowser opens the specified URL in the default browser.
func openBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "linux":
		cmd = "xdg-open"
		args = []string{url}
	case "windows":
		cmd = "rundll32"
		args = []string{"url.dll,FileProtocolHandler", url}
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return exec.Command(cmd, args...).Start() //nolint:gosec,noctx // G204: cmd is hardcoded per-platform; fire-and-forget
}
