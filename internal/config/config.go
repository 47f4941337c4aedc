// Package config holds the Noll endpoints and the user-facing settings.
//
// Settings are resolved in priority order: explicit overrides (flags or GUI
// preferences), process environment, $XDG_CONFIG_HOME/noll/.env, defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/noll-to/noll/internal/httpclient"
	"github.com/noll-to/noll/internal/language"
)

const (
	DefaultAPIURL = "https://noll.to"

	// WorkOSClientID is public; PKCE means no client secret ships with the binary.
	WorkOSClientID     = "client_01JK0M6QNFH9V7GXQJ8YDWZ5KP"
	WorkOSAuthorizeURL = "https://api.workos.com/user_management/authorize"
	OAuthScope         = "openid profile email offline_access"
	OAuthProviderHint  = "authkit"

	// PollInterval is the fixed delay between job status requests.
	PollInterval = 2 * time.Second

	EnvAPIURL         = "NOLL_API_URL"
	EnvTargetLanguage = "NOLL_TARGET_LANGUAGE"
	EnvRedirectPort   = "NOLL_REDIRECT_PORT"
	EnvHTTPTimeout    = "NOLL_HTTP_TIMEOUT"
	EnvConfigFile     = "NOLL_ENV_FILE"

	appDirName = "noll"
)

// Settings is the resolved runtime configuration for one invocation.
type Settings struct {
	APIURL         string
	TargetLanguage string
	// RedirectPort is the loopback port for the OAuth callback; 0 picks a free port.
	RedirectPort int
	OpenBrowser  bool
	HTTPTimeout  time.Duration
	PollInterval time.Duration
}

// Overrides carries values that beat everything else. Zero values are ignored.
type Overrides struct {
	APIURL         string
	TargetLanguage string
	RedirectPort   int
	HTTPTimeout    time.Duration
	NoBrowser      bool
}

// Load resolves Settings. A missing .env file is not an error; a malformed
// value is.
func Load(o Overrides) (Settings, error) {
	if err := loadEnvFile(); err != nil {
		return Settings{}, err
	}

	s := Settings{
		APIURL:         DefaultAPIURL,
		TargetLanguage: language.Default,
		OpenBrowser:    true,
		HTTPTimeout:    httpclient.DefaultTimeout,
		PollInterval:   PollInterval,
	}

	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		s.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTargetLanguage)); v != "" {
		s.TargetLanguage = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRedirectPort)); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port < 0 || port > 65535 {
			return Settings{}, fmt.Errorf("invalid %s %q", EnvRedirectPort, v)
		}
		s.RedirectPort = port
	}
	if v := strings.TrimSpace(os.Getenv(EnvHTTPTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Settings{}, fmt.Errorf("invalid %s %q", EnvHTTPTimeout, v)
		}
		s.HTTPTimeout = d
	}

	if o.APIURL != "" {
		s.APIURL = o.APIURL
	}
	if o.TargetLanguage != "" {
		s.TargetLanguage = o.TargetLanguage
	}
	if o.RedirectPort != 0 {
		s.RedirectPort = o.RedirectPort
	}
	if o.HTTPTimeout > 0 {
		s.HTTPTimeout = o.HTTPTimeout
	}
	if o.NoBrowser {
		s.OpenBrowser = false
	}

	lang, ok := language.Resolve(s.TargetLanguage)
	if !ok {
		return Settings{}, fmt.Errorf("unsupported target language %q (supported: %s)",
			s.TargetLanguage, strings.Join(language.Codes(), ", "))
	}
	s.TargetLanguage = lang.Code
	if !strings.HasPrefix(s.APIURL, "http://") && !strings.HasPrefix(s.APIURL, "https://") {
		return Settings{}, fmt.Errorf("invalid API URL %q", s.APIURL)
	}
	return s, nil
}

// EnvFilePath returns the .env location consulted by Load.
func EnvFilePath() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appDirName, ".env")
}

// godotenv.Load never overrides variables already present in the environment.
func loadEnvFile() error {
	path := EnvFilePath()
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
