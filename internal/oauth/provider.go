// Package oauth obtains access tokens for the Noll API.
//
// The flow is the OAuth 2.0 Authorization Code Grant with PKCE:
//  1. Reuse a stored, unexpired token set
//  2. Refresh an expired one through the Noll refresh endpoint
//  3. Otherwise send the user through the WorkOS hosted sign-in page and
//     exchange the returned code through the Noll token endpoint
//
// Code exchange always goes through the Noll service so the WorkOS client
// secret never leaves the server.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/noll-to/noll/internal/apperrors"
	"github.com/noll-to/noll/internal/config"
	"github.com/noll-to/noll/internal/httpclient"
	"github.com/noll-to/noll/internal/logger"
	"github.com/noll-to/noll/internal/tokenstore"
)

const (
	tokenPath   = "/api/ext/auth/token"
	refreshPath = "/api/ext/auth/refresh"
)

// AuthorizationRequest describes one browser consent round trip.
type AuthorizationRequest struct {
	// State must come back unchanged on the redirect.
	State string
	// URL builds the authorize URL once the redirect URI is known.
	URL func(redirectURI string) string
}

// Grant is what the identity provider hands back on the redirect.
type Grant struct {
	Code        string
	RedirectURI string
}

// Authorizer performs the interactive part of the flow.
type Authorizer interface {
	Authorize(ctx context.Context, req AuthorizationRequest) (Grant, error)
}

// Provider implements token acquisition on top of a Store.
type Provider struct {
	Store      tokenstore.Store
	Authorizer Authorizer
	Client     *http.Client
	BaseURL    string

	ClientID     string
	AuthorizeURL string
	Scope        string
	ProviderHint string

	Now func() time.Time
}

// NewProvider wires a Provider with the WorkOS constants from config.
func NewProvider(store tokenstore.Store, authorizer Authorizer, settings config.Settings, client *http.Client) *Provider {
	if client == nil {
		client = httpclient.GetDefaultClient()
	}
	return &Provider{
		Store:        store,
		Authorizer:   authorizer,
		Client:       client,
		BaseURL:      strings.TrimRight(settings.APIURL, "/"),
		ClientID:     config.WorkOSClientID,
		AuthorizeURL: config.WorkOSAuthorizeURL,
		Scope:        config.OAuthScope,
		ProviderHint: config.OAuthProviderHint,
		Now:          time.Now,
	}
}

// tokenResponse is the shape returned by both Noll auth endpoints.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// GetAccessToken returns a usable access token, refreshing or running the
// full sign-in flow as needed. The resulting token set is persisted before
// it is returned.
func (p *Provider) GetAccessToken(ctx context.Context) (string, error) {
	stored, err := p.Store.Load()
	if err != nil {
		// An unreadable entry is replaced by a fresh sign-in.
		logger.Warn("Stored token set unreadable, signing in again", "error", err)
		stored = nil
	}

	if stored != nil && stored.AccessToken != "" {
		if !stored.Expired(p.now()) {
			return stored.AccessToken, nil
		}
		if stored.RefreshToken != "" {
			ts, err := p.refresh(ctx, stored.RefreshToken)
			if err != nil {
				return "", err
			}
			return ts.AccessToken, nil
		}
		logger.Info("Access token expired without refresh token, signing in again")
	}

	ts, err := p.Login(ctx)
	if err != nil {
		return "", err
	}
	return ts.AccessToken, nil
}

// Login always runs the full browser flow and replaces any stored token set.
func (p *Provider) Login(ctx context.Context) (tokenstore.TokenSet, error) {
	if p.Authorizer == nil {
		return tokenstore.TokenSet{}, apperrors.Auth(fmt.Errorf("no authorizer configured"))
	}
	verifier := oauth2.GenerateVerifier()
	state := uuid.NewString()

	grant, err := p.Authorizer.Authorize(ctx, AuthorizationRequest{
		State: state,
		URL: func(redirectURI string) string {
			return p.authCodeURL(redirectURI, state, verifier)
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return tokenstore.TokenSet{}, ctx.Err()
		}
		return tokenstore.TokenSet{}, apperrors.New(apperrors.KindAuth, "Sign-in was not completed.", err)
	}

	resp, err := p.post(ctx, tokenPath, map[string]string{
		"code":         grant.Code,
		"codeVerifier": verifier,
		"redirectUri":  grant.RedirectURI,
	})
	if err != nil {
		return tokenstore.TokenSet{}, err
	}
	ts := p.tokenSet(resp)
	if err := p.Store.Save(ts); err != nil {
		return tokenstore.TokenSet{}, apperrors.New(apperrors.KindAuth, "Could not save Noll credentials.", err)
	}
	logger.Info("Signed in to Noll")
	return ts, nil
}

// Logout forgets the stored token set.
func (p *Provider) Logout() error {
	return p.Store.Delete()
}

func (p *Provider) refresh(ctx context.Context, refreshToken string) (tokenstore.TokenSet, error) {
	logger.Debug("Refreshing access token")
	resp, err := p.post(ctx, refreshPath, map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return tokenstore.TokenSet{}, err
	}
	// Providers do not always rotate the refresh token.
	if resp.RefreshToken == "" {
		resp.RefreshToken = refreshToken
	}
	ts := p.tokenSet(resp)
	if err := p.Store.Save(ts); err != nil {
		return tokenstore.TokenSet{}, apperrors.New(apperrors.KindAuth, "Could not save Noll credentials.", err)
	}
	return ts, nil
}

func (p *Provider) authCodeURL(redirectURI, state, verifier string) string {
	cfg := &oauth2.Config{
		ClientID:    p.ClientID,
		Endpoint:    oauth2.Endpoint{AuthURL: p.AuthorizeURL},
		RedirectURL: redirectURI,
		Scopes:      strings.Fields(p.Scope),
	}
	opts := []oauth2.AuthCodeOption{oauth2.S256ChallengeOption(verifier)}
	if p.ProviderHint != "" {
		opts = append(opts, oauth2.SetAuthURLParam("provider", p.ProviderHint))
	}
	return cfg.AuthCodeURL(state, opts...)
}

func (p *Provider) post(ctx context.Context, path string, payload any) (*tokenResponse, error) {
	req, err := httpclient.NewJSONRequest(ctx, http.MethodPost, p.BaseURL+path, payload, "")
	if err != nil {
		return nil, apperrors.Auth(err)
	}
	body, resp, err := httpclient.DoAndRead(p.Client, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperrors.Auth(fmt.Errorf("%s request failed: %w", path, err))
	}
	if !httpclient.IsSuccess(resp) {
		return nil, apperrors.Auth(fmt.Errorf("%s returned %s: %s", path, resp.Status, httpclient.ErrorText(resp, body)))
	}
	var out tokenResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, apperrors.Auth(fmt.Errorf("%s returned invalid JSON: %w", path, err))
	}
	return &out, nil
}

func (p *Provider) tokenSet(resp *tokenResponse) tokenstore.TokenSet {
	ts := tokenstore.TokenSet{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}
	if resp.ExpiresIn > 0 {
		ts.ExpiresAt = p.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	return ts
}

func (p *Provider) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Status summarises the stored credentials without touching the network.
type Status struct {
	SignedIn    bool
	MaskedToken string
	ExpiresAt   time.Time
	Expired     bool
	CanRefresh  bool
}

func (p *Provider) Status() (Status, error) {
	ts, err := p.Store.Load()
	if err != nil {
		return Status{}, err
	}
	if ts == nil || ts.AccessToken == "" {
		return Status{}, nil
	}
	return Status{
		SignedIn:    true,
		MaskedToken: logger.MaskToken(ts.AccessToken),
		ExpiresAt:   ts.ExpiresAt,
		Expired:     ts.Expired(p.now()),
		CanRefresh:  ts.RefreshToken != "",
	}, nil
}
