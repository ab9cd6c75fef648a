package msgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

var requiredScopes = []string{
	"https://graph.microsoft.com/User.Read.All",
	"offline_access",
}

func msEndpoint(tenantID, path string) string {
	return "https://login.microsoftonline.com/" + tenantID + "/oauth2/v2.0/" + path
}

// TokenFilePath returns the token cache location under the tick home.
func TokenFilePath(home string) string {
	return filepath.Join(home, "auth", "msgraph_tokens.json")
}

// oauth2Config returns the oauth2.Config for Microsoft Graph using the
// provided tenant and client IDs.
func oauth2Config(tenantID, clientID string) *oauth2.Config {
	return &oauth2.Config{
		ClientID: clientID,
		Scopes:   requiredScopes,
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: msEndpoint(tenantID, "devicecode"),
			TokenURL:      msEndpoint(tenantID, "token"),
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}
}

// tokenCache reads and writes the token file at path.
type tokenCache struct {
	path string
}

// load returns nil, nil when no token has been saved yet.
func (c tokenCache) load() (*oauth2.Token, error) {
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("corrupt token file (delete %s to re-authenticate): %w", c.path, err)
	}
	return &tok, nil
}

func (c tokenCache) save(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling token: %w", err)
	}
	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving token file: %w", err)
	}
	return nil
}

// Authenticator obtains Graph tokens with the device code flow and caches
// them under Home.
type Authenticator struct {
	Home     string
	TenantID string
	ClientID string
	// Out receives the sign-in instructions and warnings.
	Out io.Writer
}

// Authenticate loads a saved token, refreshes it if needed, or starts a new
// device code flow. The returned token source persists refreshed tokens.
func (a Authenticator) Authenticate(ctx context.Context) (oauth2.TokenSource, error) {
	cfg := oauth2Config(a.TenantID, a.ClientID)
	cache := tokenCache{path: TokenFilePath(a.Home)}
	out := a.Out
	if out == nil {
		out = io.Discard
	}

	tok, err := cache.load()
	if err != nil {
		// Corrupt token, warn and re-auth.
		fmt.Fprintf(out, "Warning: %v\n", err)
		tok = nil
	}

	if tok != nil && (tok.Valid() || tok.RefreshToken != "") {
		refreshed, err := cfg.TokenSource(ctx, tok).Token()
		if err == nil {
			if err := cache.save(refreshed); err != nil {
				fmt.Fprintf(out, "Warning: could not save refreshed token: %v\n", err)
			}
			return a.source(ctx, cfg, cache, refreshed), nil
		}
		fmt.Fprintf(out, "Token refresh failed (%v), re-authenticating...\n", err)
	}

	resp, err := cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("device auth request failed: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "To sign in, use a web browser to open the page:")
	fmt.Fprintf(out, "  %s\n", resp.VerificationURI)
	fmt.Fprintf(out, "Enter the code: %s\n", resp.UserCode)
	fmt.Fprintln(out)

	newTok, err := cfg.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("device authentication failed: %w", err)
	}
	if err := cache.save(newTok); err != nil {
		fmt.Fprintf(out, "Warning: could not save token: %v\n", err)
	}
	return a.source(ctx, cfg, cache, newTok), nil
}

func (a Authenticator) source(ctx context.Context, cfg *oauth2.Config, cache tokenCache, tok *oauth2.Token) oauth2.TokenSource {
	return &savingTokenSource{ts: cfg.TokenSource(ctx, tok), cache: cache, last: tok.AccessToken}
}

// savingTokenSource wraps a TokenSource and persists refreshed tokens.
type savingTokenSource struct {
	ts    oauth2.TokenSource
	cache tokenCache
	last  string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.ts.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != s.last {
		// Best-effort save; ignore errors.
		_ = s.cache.save(tok)
		s.last = tok.AccessToken
	}
	return tok, nil
}
