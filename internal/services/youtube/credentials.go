package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"

	"golang.org/x/oauth2"

	"github.com/Arsalank7862/caffeine-chronicles/internal/services"
)

const (
	tokenURL    = "https://oauth2.googleapis.com/token"
	uploadScope = "https://www.googleapis.com/auth/youtube.upload"

	envClientID     = "YOUTUBE_CLIENT_ID"
	envClientSecret = "YOUTUBE_CLIENT_SECRET"
	envRefreshToken = "YOUTUBE_REFRESH_TOKEN"
)

// ErrNoCredentials indicates that neither the environment nor a token file
// provided usable OAuth credentials.
var ErrNoCredentials = errors.New("no youtube credentials configured")

// Credentials holds the OAuth refresh-token triple used for headless
// uploads.
type Credentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RefreshToken string `json:"refresh_token"`
}

func (c Credentials) complete() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// LoadCredentials resolves credentials from the environment first, then
// from the token file when one is configured. Secrets never live in the
// TOML config. Failures carry the publish-auth marker: missing credentials
// surface during the publish stage, after content has been claimed and
// rendered, and must exit with the publish code.
func LoadCredentials(tokenFile string) (Credentials, error) {
	creds := Credentials{
		ClientID:     strings.TrimSpace(os.Getenv(envClientID)),
		ClientSecret: strings.TrimSpace(os.Getenv(envClientSecret)),
		RefreshToken: strings.TrimSpace(os.Getenv(envRefreshToken)),
	}
	if creds.complete() {
		return creds, nil
	}

	if tokenFile = strings.TrimSpace(tokenFile); tokenFile != "" {
		fileCreds, err := readTokenFile(tokenFile)
		if err == nil && fileCreds.complete() {
			return fileCreds, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return Credentials{}, services.Wrap(services.ErrPublishAuth, "publish", "credentials", "read token file", err)
		}
	}

	return Credentials{}, services.Wrap(services.ErrPublishAuth, "publish", "credentials",
		"set "+envClientID+", "+envClientSecret+" and "+envRefreshToken+" or provide a token file", ErrNoCredentials)
}

func readTokenFile(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, err
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

// TokenSource builds a reusable oauth2 token source from the refresh token.
func (c Credentials) TokenSource(ctx context.Context) oauth2.TokenSource {
	conf := &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
		Scopes:       []string{uploadScope},
	}
	return conf.TokenSource(ctx, &oauth2.Token{RefreshToken: c.RefreshToken})
}

// Verify confirms the credentials can mint an access token. Used by the
// auth command so failures surface before a scheduled run does.
func (c Credentials) Verify(ctx context.Context) error {
	if _, err := c.TokenSource(ctx).Token(); err != nil {
		return services.Wrap(services.ErrPublishAuth, "publish", "credentials", "refresh access token", err)
	}
	return nil
}
