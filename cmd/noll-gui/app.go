package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/noll-to/noll/internal/clipboard"
	"github.com/noll-to/noll/internal/config"
	"github.com/noll-to/noll/internal/controller"
	"github.com/noll-to/noll/internal/files"
	"github.com/noll-to/noll/internal/httpclient"
	"github.com/noll-to/noll/internal/language"
	"github.com/noll-to/noll/internal/logger"
	"github.com/noll-to/noll/internal/noll"
	"github.com/noll-to/noll/internal/notify"
	"github.com/noll-to/noll/internal/oauth"
	"github.com/noll-to/noll/internal/tokenstore"
	"github.com/noll-to/noll/internal/view"
)

type nollApp struct {
	window fyne.Window
	prefs  fyne.Preferences
	store  tokenstore.Store

	markdown   *widget.RichText
	bar        *widget.ProgressBar
	spinner    *widget.ProgressBarInfinite
	imageBox   *fyne.Container
	copyBtn    *widget.Button
	saveBtn    *widget.Button
	retryBtn   *widget.Button
	langSelect *widget.Select

	// Touched on the UI goroutine only.
	ctrl  *controller.Controller
	ready *controller.Ready

	cancelMu        sync.Mutex
	activeCancel    context.CancelFunc
	activeCancelID  uint64
	panicNoticeOnce sync.Once
}

func newNollApp(w fyne.Window, prefs fyne.Preferences) *nollApp {
	a := &nollApp{window: w, prefs: prefs, store: tokenstore.NewKeyring()}
	a.setupUI()
	return a
}

func (a *nollApp) setupUI() {
	a.markdown = widget.NewRichTextFromMarkdown("")
	a.markdown.Wrapping = fyne.TextWrapWord
	a.bar = widget.NewProgressBar()
	a.bar.Hide()
	a.spinner = widget.NewProgressBarInfinite()
	a.spinner.Hide()
	a.imageBox = container.NewStack()

	a.langSelect = widget.NewSelect(languageOptions(), func(name string) {
		if lang, ok := language.Resolve(name); ok {
			a.prefs.SetString(prefTargetLanguage, lang.Code)
		}
	})
	o := overridesFromPrefs(a.prefs)
	code := o.TargetLanguage
	if code == "" {
		code = language.Default
	}
	a.langSelect.SetSelected(languageName(code))

	a.copyBtn = widget.NewButtonWithIcon(view.CopyActionName, theme.ContentCopyIcon(), a.copyResult)
	a.copyBtn.Importance = widget.HighImportance
	a.copyBtn.Hide()
	a.saveBtn = widget.NewButtonWithIcon("Save...", theme.DocumentSaveIcon(), a.saveResult)
	a.saveBtn.Hide()
	a.retryBtn = widget.NewButtonWithIcon("Translate Clipboard", theme.ViewRefreshIcon(), a.startRun)
	signOut := widget.NewButtonWithIcon("Sign Out", theme.AccountIcon(), a.signOut)

	top := container.NewHBox(widget.NewLabel("Translate to"), a.langSelect, a.retryBtn, signOut)
	bottom := container.NewVBox(a.bar, a.spinner, container.NewHBox(a.copyBtn, a.saveBtn))
	body := container.NewBorder(a.markdown, nil, nil, nil, a.imageBox)
	a.window.SetContent(container.NewBorder(top, bottom, nil, nil, container.NewPadded(body)))
}

func (a *nollApp) setActiveCancel(cancel context.CancelFunc) uint64 {
	a.cancelMu.Lock()
	if a.activeCancel != nil {
		a.activeCancel()
	}
	a.activeCancel = cancel
	a.activeCancelID++
	id := a.activeCancelID
	a.cancelMu.Unlock()
	return id
}

func (a *nollApp) clearActiveCancel(id uint64) {
	a.cancelMu.Lock()
	if a.activeCancelID == id {
		a.activeCancel = nil
	}
	a.cancelMu.Unlock()
}

func (a *nollApp) isCurrentRun(id uint64) bool {
	a.cancelMu.Lock()
	defer a.cancelMu.Unlock()
	return a.activeCancelID == id
}

func (a *nollApp) cancelActive(reason string) {
	a.cancelMu.Lock()
	cancel := a.activeCancel
	a.activeCancel = nil
	a.cancelMu.Unlock()
	if cancel != nil {
		logger.Warn("Cancellation requested", "reason", reason)
		cancel()
	}
}

// startRun cancels any run in flight and starts a fresh one. Called on the
// UI goroutine.
func (a *nollApp) startRun() {
	a.ready = nil
	ctrl, err := a.newController()
	if err != nil {
		a.show(controller.Error{Message: err.Error()})
		return
	}
	a.ctrl = ctrl

	ctx, cancel := context.WithCancel(context.Background())
	id := a.setActiveCancel(cancel)
	a.retryBtn.Disable()
	a.safeGo("translate.run", func() {
		defer a.clearActiveCancel(id)
		err := ctrl.Run(ctx, func(s controller.State) {
			a.safeDo("translate.state", func() {
				if ctx.Err() != nil {
					return
				}
				a.show(s)
			})
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Debug("Run finished with error", "error", err)
		}
		a.safeDo("translate.done", func() {
			if a.isCurrentRun(id) {
				a.retryBtn.Enable()
			}
		})
	})
}

func (a *nollApp) newController() (*controller.Controller, error) {
	settings, err := config.Load(overridesFromPrefs(a.prefs))
	if err != nil {
		return nil, err
	}
	client := httpclient.NewClient(settings.HTTPTimeout)
	authorizer := &oauth.LoopbackAuthorizer{
		Port:        settings.RedirectPort,
		OpenBrowser: settings.OpenBrowser,
		OnPrompt: func(url string) {
			logger.Info("Waiting for sign-in in the browser", "url", url)
		},
	}
	ctrl := controller.New(
		oauth.NewProvider(a.store, authorizer, settings, client),
		noll.NewClient(settings.APIURL, client),
		&clipboard.System{},
		notify.NewDesktop(),
		settings.TargetLanguage,
	)
	ctrl.PollInterval = settings.PollInterval
	return ctrl, nil
}

// show applies one state to the widgets.
func (a *nollApp) show(s controller.State) {
	v := view.Render(s)

	md := v.Markdown
	a.imageBox.RemoveAll()
	if v.Image != nil {
		img, err := imageFromView(v.Image)
		if err != nil {
			logger.Error("Could not display translated image", "error", err)
			md = "## Error\n\n" + err.Error()
		} else {
			md = readyCaption(s)
			a.imageBox.Add(img)
		}
	}
	a.markdown.ParseMarkdown(md)
	a.imageBox.Refresh()

	switch {
	case v.Loading && v.Progress >= 0:
		a.spinner.Stop()
		a.spinner.Hide()
		a.bar.SetValue(float64(v.Progress) / 100)
		a.bar.Show()
	case v.Loading:
		a.bar.Hide()
		a.spinner.Show()
		a.spinner.Start()
	default:
		a.bar.Hide()
		a.spinner.Stop()
		a.spinner.Hide()
	}

	hasCopy := false
	for _, act := range v.Actions {
		if act.Copy {
			hasCopy = true
		}
	}
	if r, ok := s.(controller.Ready); ok && hasCopy {
		a.ready = &r
		a.copyBtn.Show()
		a.saveBtn.Show()
	} else {
		a.copyBtn.Hide()
		a.saveBtn.Hide()
	}
}

func readyCaption(s controller.State) string {
	r, ok := s.(controller.Ready)
	if !ok || r.DetectedLanguage == "" {
		return "**Translated image**"
	}
	return fmt.Sprintf("**Translated image** (detected %s)", languageName(r.DetectedLanguage))
}

func imageFromView(vi *view.Image) (*canvas.Image, error) {
	data, err := base64.StdEncoding.DecodeString(vi.Base64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode translated image: %w", err)
	}
	img := canvas.NewImageFromReader(bytes.NewReader(data), "translated"+files.ExtForMime(vi.MimeType))
	img.FillMode = canvas.ImageFillContain
	img.SetMinSize(fyne.NewSize(320, 240))
	return img, nil
}

func (a *nollApp) copyResult() {
	if a.ready == nil || a.ctrl == nil {
		return
	}
	ready, ctrl := *a.ready, a.ctrl
	a.copyBtn.Disable()
	a.safeGo("copy", func() {
		_, err := ctrl.CopyResult(context.Background(), ready)
		a.safeDo("copy.done", func() {
			a.copyBtn.Enable()
			if err != nil {
				dialog.ShowError(err, a.window)
			}
		})
	})
}

func (a *nollApp) saveResult() {
	if a.ready == nil {
		return
	}
	ready := *a.ready
	d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if w == nil {
			return
		}
		defer w.Close()
		data, err := ready.Decode()
		if err == nil {
			_, err = w.Write(data)
		}
		if err != nil {
			dialog.ShowError(fmt.Errorf("failed to save image: %w", err), a.window)
			return
		}
		logger.Info("Translated image saved", "uri", w.URI().String())
	}, a.window)
	d.SetFileName("noll-translated" + files.ExtForMime(ready.MimeType))
	d.Show()
}

func (a *nollApp) signOut() {
	dialog.ShowConfirm("Sign Out", "Remove the stored Noll session?", func(ok bool) {
		if !ok {
			return
		}
		a.cancelActive("sign out")
		if err := a.store.Delete(); err != nil {
			dialog.ShowError(fmt.Errorf("error deleting session: %w", err), a.window)
			return
		}
		a.markdown.ParseMarkdown("Signed out of Noll.")
	}, a.window)
}
