// Package view turns controller states into a host-neutral description of
// what to show.
package view

import (
	"fmt"
	"strings"

	"github.com/noll-to/noll/internal/controller"
)

const (
	barCells       = 20
	CopyActionName = "Copy Image to Clipboard"
)

// View is what a host renders for one state.
type View struct {
	Markdown string
	Loading  bool
	// Progress is 0-100, or -1 when the state carries no progress.
	Progress int
	Image    *Image
	Actions  []Action
}

type Image struct {
	Base64   string
	MimeType string
}

// Action is a user-invoked follow-up. Copy marks the copy-to-clipboard action.
type Action struct {
	Title string
	Copy  bool
}

// Render is pure: the same state always yields the same View.
func Render(s controller.State) View {
	switch st := s.(type) {
	case controller.Loading:
		return View{Markdown: "Starting...", Loading: true, Progress: -1}
	case controller.Authenticating:
		return View{Markdown: "Signing in to Noll...", Loading: true, Progress: -1}
	case controller.Uploading:
		return View{Markdown: "Uploading image...", Loading: true, Progress: -1}
	case controller.Translating:
		p := clamp(st.Progress)
		md := "Translating..."
		if p > 0 {
			md += "\n\n" + ProgressBar(p) + " " + fmt.Sprintf("%d%%", p)
		}
		return View{Markdown: md, Loading: true, Progress: p}
	case controller.Ready:
		return View{
			Markdown: fmt.Sprintf("![Translated Image](data:%s;base64,%s)", st.MimeType, st.ImageBase64),
			Progress: -1,
			Image:    &Image{Base64: st.ImageBase64, MimeType: st.MimeType},
			Actions:  []Action{{Title: CopyActionName, Copy: true}},
		}
	case controller.Error:
		return View{Markdown: "## Error\n\n" + st.Message, Progress: -1}
	default:
		return View{Progress: -1}
	}
}

// ProgressBar draws a 20-cell bar, one filled cell per 5%.
func ProgressBar(percent int) string {
	filled := clamp(percent) * barCells / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", barCells-filled)
}

func clamp(p int) int {
	return min(max(p, 0), 100)
}
