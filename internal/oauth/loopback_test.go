package oauth

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"
)

// visit simulates the browser following the identity provider's redirect.
func visit(t *testing.T, rawURL string, params url.Values) {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Errorf("parse authorize URL: %v", err)
		return
	}
	redirect := u.Query().Get("redirect_uri")
	go func() {
		resp, err := http.Get(redirect + "?" + params.Encode())
		if err == nil {
			resp.Body.Close()
		}
	}()
}

func authURLFor(redirectURI string) string {
	return "https://idp.example/authorize?" + url.Values{"redirect_uri": {redirectURI}}.Encode()
}

func TestLoopbackAuthorizer_ReceivesCode(t *testing.T) {
	var prompted string
	a := &LoopbackAuthorizer{
		OpenBrowser: true,
		OnPrompt:    func(u string) { prompted = u },
		Timeout:     5 * time.Second,
	}
	a.Open = func(u string) error {
		visit(t, u, url.Values{"code": {"the-code"}, "state": {"st-1"}})
		return nil
	}

	grant, err := a.Authorize(context.Background(), AuthorizationRequest{State: "st-1", URL: authURLFor})
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if grant.Code != "the-code" {
		t.Fatalf("code = %q", grant.Code)
	}
	if !strings.HasPrefix(grant.RedirectURI, "http://127.0.0.1:") || !strings.HasSuffix(grant.RedirectURI, "/callback") {
		t.Fatalf("redirect URI = %q", grant.RedirectURI)
	}
	if !strings.Contains(prompted, url.QueryEscape(grant.RedirectURI)) {
		t.Fatalf("prompt URL %q does not carry the redirect URI", prompted)
	}
}

func TestLoopbackAuthorizer_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		params url.Values
		want   string
	}{
		{name: "state mismatch", params: url.Values{"code": {"c"}, "state": {"other"}}, want: "state mismatch"},
		{name: "provider error", params: url.Values{"error": {"access_denied"}, "state": {"st"}}, want: "access_denied"},
		{name: "missing code", params: url.Values{"state": {"st"}}, want: "no authorization code"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := &LoopbackAuthorizer{OpenBrowser: true, Timeout: 5 * time.Second}
			a.Open = func(u string) error {
				visit(t, u, tc.params)
				return nil
			}
			_, err := a.Authorize(context.Background(), AuthorizationRequest{State: "st", URL: authURLFor})
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoopbackAuthorizer_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	a := &LoopbackAuthorizer{OpenBrowser: false, OnPrompt: func(string) { cancel() }}
	_, err := a.Authorize(ctx, AuthorizationRequest{State: "st", URL: authURLFor})
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
