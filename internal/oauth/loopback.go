package oauth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/noll-to/noll/internal/logger"
)

const callbackPath = "/callback"

const callbackPage = `<!doctype html><html><body style="font-family:sans-serif">
<h2>%s</h2><p>You can close this window and return to Noll.</p></body></html>`

// LoopbackAuthorizer receives the authorization code on a local HTTP server
// bound to 127.0.0.1.
type LoopbackAuthorizer struct {
	// Port to listen on; 0 picks a free port.
	Port int
	// OpenBrowser launches the system browser with the authorize URL.
	OpenBrowser bool
	// Open replaces the platform browser launcher (tests).
	Open func(url string) error
	// OnPrompt shows the URL in case the browser does not open.
	OnPrompt func(url string)
	// Timeout bounds the wait for the user; zero means five minutes.
	Timeout time.Duration
}

type callbackResult struct {
	code string
	err  error
}

func (a *LoopbackAuthorizer) Authorize(ctx context.Context, req AuthorizationRequest) (Grant, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", a.Port))
	if err != nil {
		return Grant{}, fmt.Errorf("starting local callback server: %w", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	redirectURI := fmt.Sprintf("http://127.0.0.1:%d%s", port, callbackPath)

	resultCh := make(chan callbackResult, 1)
	deliver := func(r callbackResult) {
		select {
		case resultCh <- r:
		default:
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		if errCode := q.Get("error"); errCode != "" {
			desc := q.Get("error_description")
			if desc == "" {
				desc = "no details provided"
			}
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, callbackPage, "Sign-in failed")
			deliver(callbackResult{err: fmt.Errorf("authorization error %s: %s", errCode, desc)})
			return
		}
		if q.Get("state") != req.State {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, callbackPage, "Sign-in failed")
			deliver(callbackResult{err: errors.New("OAuth state mismatch")})
			return
		}
		code := q.Get("code")
		if code == "" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, callbackPage, "Sign-in failed")
			deliver(callbackResult{err: errors.New("no authorization code received")})
			return
		}
		fmt.Fprintf(w, callbackPage, "Signed in to Noll")
		deliver(callbackResult{code: code})
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			deliver(callbackResult{err: fmt.Errorf("callback server error: %w", err)})
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	authURL := req.URL(redirectURI)
	if a.OnPrompt != nil {
		a.OnPrompt(authURL)
	}
	if a.OpenBrowser {
		open := a.Open
		if open == nil {
			open = openBrowser
		}
		if err := open(authURL); err != nil {
			logger.Warn("Could not open browser", "error", err)
		}
	}

	timeout := a.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return Grant{}, ctx.Err()
	case <-timer.C:
		return Grant{}, fmt.Errorf("timed out after %s waiting for sign-in", timeout)
	case res := <-resultCh:
		if res.err != nil {
			return Grant{}, res.err
		}
		return Grant{Code: res.code, RedirectURI: redirectURI}, nil
	}
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
