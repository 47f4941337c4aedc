package view

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/noll-to/noll/internal/controller"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name  string
		state controller.State
		want  View
	}{
		{name: "loading", state: controller.Loading{}, want: View{Markdown: "Starting...", Loading: true, Progress: -1}},
		{name: "authenticating", state: controller.Authenticating{}, want: View{Markdown: "Signing in to Noll...", Loading: true, Progress: -1}},
		{name: "uploading", state: controller.Uploading{}, want: View{Markdown: "Uploading image...", Loading: true, Progress: -1}},
		{name: "translating zero", state: controller.Translating{}, want: View{Markdown: "Translating...", Loading: true, Progress: 0}},
		{
			name:  "translating",
			state: controller.Translating{Progress: 55},
			want: View{
				Markdown: "Translating...\n\n" + strings.Repeat("█", 11) + strings.Repeat("░", 9) + " 55%",
				Loading:  true,
				Progress: 55,
			},
		},
		{name: "error", state: controller.Error{Message: "bad image"}, want: View{Markdown: "## Error\n\nbad image", Progress: -1}},
		{
			name:  "ready",
			state: controller.Ready{ImageBase64: "WA==", MimeType: "image/jpeg"},
			want: View{
				Markdown: "![Translated Image](data:image/jpeg;base64,WA==)",
				Progress: -1,
				Image:    &Image{Base64: "WA==", MimeType: "image/jpeg"},
				Actions:  []Action{{Title: "Copy Image to Clipboard", Copy: true}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.state); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("unexpected view:\n got %#v\nwant %#v", got, tt.want)
			}
		})
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		percent int
		filled  int
	}{
		{0, 0}, {4, 0}, {5, 1}, {50, 10}, {99, 19}, {100, 20}, {150, 20}, {-3, 0},
	}
	for _, tt := range tests {
		bar := ProgressBar(tt.percent)
		if n := utf8.RuneCountInString(bar); n != 20 {
			t.Fatalf("ProgressBar(%d) has %d cells", tt.percent, n)
		}
		if got := strings.Count(bar, "█"); got != tt.filled {
			t.Fatalf("ProgressBar(%d) filled %d, want %d", tt.percent, got, tt.filled)
		}
	}
}
