package notify

import (
	"errors"
	"strings"
	"testing"

	"github.com/0xAX/notificator"
	"github.com/rivo/uniseg"
)

type fakePusher struct {
	calls   []string
	urgency []string
	err     error
}

func (f *fakePusher) Push(title, text, iconPath, urgency string) error {
	f.calls = append(f.calls, title+"|"+text)
	f.urgency = append(f.urgency, urgency)
	return f.err
}

func TestDesktop(t *testing.T) {
	fp := &fakePusher{}
	orig := newPusher
	newPusher = func() pusher { return fp }
	defer func() { newPusher = orig }()

	d := NewDesktop()
	d.Success("Translation complete!", "")
	d.Failure("Error", "bad image")

	if len(fp.calls) != 2 {
		t.Fatalf("expected 2 pushes, got %d", len(fp.calls))
	}
	if fp.calls[1] != "Error|bad image" {
		t.Fatalf("unexpected push %q", fp.calls[1])
	}
	if fp.urgency[0] != notificator.UR_NORMAL || fp.urgency[1] != notificator.UR_CRITICAL {
		t.Fatalf("unexpected urgencies %v", fp.urgency)
	}
}

func TestDesktopSwallowsPushError(t *testing.T) {
	fp := &fakePusher{err: errors.New("no dbus")}
	d := &Desktop{p: fp}
	d.Failure("Error", "x")
	if len(fp.calls) != 1 {
		t.Fatalf("expected push attempt")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "short", in: "hello", max: 10, want: "hello"},
		{name: "exact", in: "hello", max: 5, want: "hello"},
		{name: "cut", in: "hello world", max: 6, want: "hello…"},
		{name: "no limit", in: "hello", max: 0, want: "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.max); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestTruncateKeepsGraphemes(t *testing.T) {
	flag := "🇯🇵"
	in := strings.Repeat(flag, 5)
	got := Truncate(in, 3)
	if got != flag+flag+"…" {
		t.Fatalf("unexpected %q", got)
	}
	if n := uniseg.GraphemeClusterCount(got); n != 3 {
		t.Fatalf("expected 3 graphemes, got %d", n)
	}
}
