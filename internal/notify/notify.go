// Package notify shows transient desktop notifications.
package notify

import (
	"strings"

	"github.com/0xAX/notificator"
	"github.com/rivo/uniseg"

	"github.com/noll-to/noll/internal/logger"
)

// AppName is shown as the notification source.
const AppName = "Noll"

// MaxMessageGraphemes bounds notification bodies; longer text is cut on a
// grapheme boundary and suffixed with an ellipsis.
const MaxMessageGraphemes = 200

// Notifier reports outcomes to the user outside the main view.
type Notifier interface {
	Success(title, message string)
	Failure(title, message string)
}

// pusher is the subset of notificator used here.
type pusher interface {
	Push(title, text, iconPath, urgency string) error
}

var newPusher = func() pusher {
	return notificator.New(notificator.Options{AppName: AppName})
}

// Desktop pushes notifications through the OS notification service. Delivery
// failures are logged, never returned.
type Desktop struct {
	p pusher
}

// NewDesktop returns a Desktop notifier.
func NewDesktop() *Desktop {
	return &Desktop{p: newPusher()}
}

func (d *Desktop) Success(title, message string) {
	d.push(title, message, notificator.UR_NORMAL)
}

func (d *Desktop) Failure(title, message string) {
	d.push(title, message, notificator.UR_CRITICAL)
}

func (d *Desktop) push(title, message, urgency string) {
	body := Truncate(message, MaxMessageGraphemes)
	if err := d.p.Push(title, body, "", urgency); err != nil {
		logger.Warn("Notification failed", "title", title, "error", err)
		return
	}
	logger.Debug("Notification sent", "title", title, "urgency", urgency)
}

// Log writes notifications to the log only. Used when running headless.
type Log struct{}

func (Log) Success(title, message string) {
	logger.Info(title, "message", Truncate(message, MaxMessageGraphemes))
}

func (Log) Failure(title, message string) {
	logger.Error(title, "message", Truncate(message, MaxMessageGraphemes))
}

// Truncate shortens s to at most max grapheme clusters.
func Truncate(s string, max int) string {
	if max <= 0 || uniseg.GraphemeClusterCount(s) <= max {
		return s
	}
	var b strings.Builder
	g := uniseg.NewGraphemes(s)
	for n := 0; n < max-1 && g.Next(); n++ {
		b.WriteString(g.Str())
	}
	b.WriteString("…")
	return b.String()
}
