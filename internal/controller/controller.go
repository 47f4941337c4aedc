// Package controller drives one translation run: sign in, read the
// screenshot, submit it, and poll until the service finishes.
package controller

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/noll-to/noll/internal/apperrors"
	"github.com/noll-to/noll/internal/config"
	"github.com/noll-to/noll/internal/files"
	"github.com/noll-to/noll/internal/logger"
	"github.com/noll-to/noll/internal/noll"
	"github.com/noll-to/noll/internal/notify"
)

const (
	NoTokenMessage = "Authentication failed - no token received"
	NoImageMessage = "No image in clipboard!\n\nTake a screenshot first"
	CopiedMessage  = "Image copied to clipboard!"
	DoneMessage    = "Translation complete!"

	tempPrefix = "noll-translated"
)

type TokenProvider interface {
	GetAccessToken(ctx context.Context) (string, error)
}

type API interface {
	Submit(ctx context.Context, token string, image []byte, targetLanguage, filename string) (noll.TranslationJob, error)
	Poll(ctx context.Context, token, jobID, providerJobID, targetLanguage string) (noll.JobStatus, error)
}

type Clipboard interface {
	ReadFileRef(ctx context.Context) (string, error)
	CopyFile(ctx context.Context, path string) error
}

// Controller runs a single invocation. It is not safe for concurrent Runs.
type Controller struct {
	Tokens    TokenProvider
	API       API
	Clipboard Clipboard
	Notifier  notify.Notifier

	TargetLanguage string
	PollInterval   time.Duration
	// TempDir receives images for the copy action. Empty means os.TempDir().
	TempDir string

	ReadFile func(path string) ([]byte, error)
	Sleep    func(ctx context.Context, d time.Duration) error
	Now      func() time.Time
}

// New returns a Controller with production defaults for the injectable hooks.
func New(tokens TokenProvider, api API, clip Clipboard, notifier notify.Notifier, targetLanguage string) *Controller {
	return &Controller{
		Tokens:         tokens,
		API:            api,
		Clipboard:      clip,
		Notifier:       notifier,
		TargetLanguage: targetLanguage,
		PollInterval:   config.PollInterval,
		ReadFile:       os.ReadFile,
		Sleep:          Sleep,
		Now:            time.Now,
	}
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run emits states in order, ending with Ready or Error. Once ctx is done no
// further state is emitted, no further call is made, and ctx.Err() is
// returned.
func (c *Controller) Run(ctx context.Context, emit func(State)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	emit(Loading{})

	err := c.run(ctx, emit)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		logger.Debug("Run cancelled", "error", err)
		return ctxErr
	}

	msg := apperrors.PublicMessage(err)
	kind, _ := apperrors.KindOf(err)
	logger.Error("Translation failed", "kind", kind, "error", err)
	emit(Error{Message: msg})
	c.notifier().Failure("Error", msg)
	return err
}

func (c *Controller) run(ctx context.Context, emit func(State)) error {
	step := func(s State) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		emit(s)
		return nil
	}

	if err := step(Authenticating{}); err != nil {
		return err
	}
	token, err := c.Tokens.GetAccessToken(ctx)
	if err != nil {
		if apperrors.Is(err, apperrors.KindAuth) {
			return err
		}
		return apperrors.Auth(err)
	}
	if token == "" {
		return apperrors.New(apperrors.KindAuth, NoTokenMessage, nil)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	ref, err := c.Clipboard.ReadFileRef(ctx)
	if err != nil {
		return apperrors.New(apperrors.KindClipboard, NoImageMessage, err)
	}
	if ref == "" {
		return apperrors.Clipboard(NoImageMessage)
	}
	img, err := ParseImageRef(ref)
	if err != nil {
		return apperrors.New(apperrors.KindClipboard, NoImageMessage, err)
	}
	data, err := c.readFile(img.Path)
	if err != nil {
		return apperrors.New(apperrors.KindClipboard, "Could not read "+img.Filename, err)
	}
	logger.Debug("Screenshot loaded", "file", img.Filename, "mime", img.MimeType, "bytes", len(data))

	if err := step(Uploading{}); err != nil {
		return err
	}
	job, err := c.API.Submit(ctx, token, data, c.TargetLanguage, img.Filename)
	if err != nil {
		return err
	}
	logger.Info("Translation started", "job", job.JobID, "language", c.TargetLanguage)
	if err := step(Translating{Progress: 0}); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		status, err := c.API.Poll(ctx, token, job.JobID, job.ProviderJobID, c.TargetLanguage)
		if err != nil {
			return err
		}
		logger.Debug("Job status", "job", job.JobID, "status", status.Status, "progress", status.ProgressValue())

		switch {
		case status.Status == noll.StatusReady && status.Result != nil && status.Result.Image != "":
			ready := Ready{
				ImageBase64:      status.Result.Image,
				MimeType:         img.MimeType,
				DetectedLanguage: status.Result.DetectedLanguage,
			}
			if err := step(ready); err != nil {
				return err
			}
			logger.Info("Translation complete", "job", job.JobID, "detected", ready.DetectedLanguage)
			c.notifier().Success(DoneMessage, "")
			return nil
		case status.Status == noll.StatusFailed:
			return apperrors.JobFailed(status.Error)
		}

		if err := step(Translating{Progress: status.ProgressValue()}); err != nil {
			return err
		}
		if err := c.sleep(ctx, c.PollInterval); err != nil {
			return err
		}
	}
}

// CopyResult writes the translated image to the temp directory and asks the
// clipboard to copy that file. It returns the written path.
func (c *Controller) CopyResult(ctx context.Context, r Ready) (string, error) {
	path, err := c.copyResult(ctx, r)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			c.notifier().Failure("Copy failed", apperrors.PublicMessage(err))
		}
		return "", err
	}
	c.notifier().Success(CopiedMessage, "")
	return path, nil
}

func (c *Controller) copyResult(ctx context.Context, r Ready) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := r.Decode()
	if err != nil {
		return "", apperrors.New(apperrors.KindValidation, "", err)
	}
	path, err := files.WriteTempImage(c.TempDir, tempPrefix, files.ExtForMime(r.MimeType), data, c.now())
	if err != nil {
		return "", err
	}
	if err := c.Clipboard.CopyFile(ctx, path); err != nil {
		return "", apperrors.New(apperrors.KindClipboard, "Could not copy image to clipboard", err)
	}
	logger.Info("Translated image copied", "path", path)
	return path, nil
}

func (c *Controller) notifier() notify.Notifier {
	if c.Notifier == nil {
		return notify.Log{}
	}
	return c.Notifier
}

func (c *Controller) readFile(path string) ([]byte, error) {
	if c.ReadFile != nil {
		return c.ReadFile(path)
	}
	return os.ReadFile(path)
}

func (c *Controller) sleep(ctx context.Context, d time.Duration) error {
	if c.Sleep != nil {
		return c.Sleep(ctx, d)
	}
	return Sleep(ctx, d)
}

func (c *Controller) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
