package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/noll-to/noll/internal/cleanup"
	"github.com/noll-to/noll/internal/clipboard"
	"github.com/noll-to/noll/internal/config"
	"github.com/noll-to/noll/internal/controller"
	"github.com/noll-to/noll/internal/files"
	"github.com/noll-to/noll/internal/httpclient"
	"github.com/noll-to/noll/internal/logger"
	"github.com/noll-to/noll/internal/notify"
	"github.com/noll-to/noll/internal/oauth"
	"github.com/noll-to/noll/internal/prompt"
	"github.com/noll-to/noll/internal/tokenstore"
)

// Stubbed in tests.
var (
	isTerminal    = term.IsTerminal
	newTokenStore = func() tokenstore.Store { return tokenstore.NewKeyring() }
	newClipboard  = func() controller.Clipboard { return &clipboard.System{} }
	newNotifier   = func() notify.Notifier { return notify.NewDesktop() }
	newConfirmer  = prompt.DefaultConfirmer
	openBrowser   func(url string) error
)

type globalOptions struct {
	apiURL       string
	httpTimeout  time.Duration
	redirectPort int
	noBrowser    bool
	debug        bool
	logFilePath  string
}

func addGlobalFlags(f *pflag.FlagSet, opts *globalOptions) {
	f.StringVar(&opts.apiURL, "api-url", "", "Noll API base URL (env "+config.EnvAPIURL+")")
	f.DurationVar(&opts.httpTimeout, "http-timeout", 0, "Per-request HTTP timeout (default 30s)")
	f.IntVar(&opts.redirectPort, "redirect-port", 0, "Local port for the sign-in callback (default: any free port)")
	f.BoolVar(&opts.noBrowser, "no-browser", false, "Print the sign-in URL instead of opening a browser")
	f.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	f.StringVar(&opts.logFilePath, "log-file", "", "Path to save machine-readable JSONL logs")
}

// setup initialises logging and resolves settings for one command.
func setup(g *globalOptions, lang string) (config.Settings, error) {
	if err := initLogging(g); err != nil {
		return config.Settings{}, err
	}
	settings, err := config.Load(config.Overrides{
		APIURL:         g.apiURL,
		TargetLanguage: lang,
		RedirectPort:   g.redirectPort,
		HTTPTimeout:    g.httpTimeout,
		NoBrowser:      g.noBrowser,
	})
	if err != nil {
		return config.Settings{}, err
	}
	logger.Debug("Settings resolved", "api", settings.APIURL, "language", settings.TargetLanguage,
		"timeout", settings.HTTPTimeout, "redirect_port", settings.RedirectPort)
	return settings, nil
}

func initLogging(g *globalOptions) error {
	logLevel := logger.LevelInfo
	if g.debug {
		logLevel = logger.LevelDebug
	}
	var logFileW io.Writer
	if g.logFilePath != "" {
		if err := files.RejectSymlinkPath(g.logFilePath); err != nil {
			return err
		}
		f, err := os.OpenFile(g.logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		cleanup.Register("log file", f.Close)
		logFileW = f
	}
	logger.Init(logLevel, logFileW)
	return nil
}

func newProvider(settings config.Settings, client *http.Client, out io.Writer) *oauth.Provider {
	authorizer := &oauth.LoopbackAuthorizer{
		Port:        settings.RedirectPort,
		OpenBrowser: settings.OpenBrowser,
		Open:        openBrowser,
		OnPrompt: func(url string) {
			fmt.Fprintf(out, "Sign in to Noll in your browser. If it does not open, visit:\n  %s\n", url)
		},
	}
	return oauth.NewProvider(newTokenStore(), authorizer, settings, client)
}

func newHTTPClient(settings config.Settings) *http.Client {
	return httpclient.NewClient(settings.HTTPTimeout)
}

func signalContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("Cancellation requested")
			cancel()
		case <-ctx.Done():
		}
	}()
	stop := func() {
		signal.Stop(sigCh)
		cancel()
	}
	return ctx, stop
}
