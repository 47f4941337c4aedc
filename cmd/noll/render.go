package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/noll-to/noll/internal/controller"
	"github.com/noll-to/noll/internal/language"
	"github.com/noll-to/noll/internal/view"
)

var (
	stepStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	okStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// stateRenderer prints controller states to a terminal. On a TTY the
// translating state redraws a single progress line; elsewhere every distinct
// state becomes one plain line.
type stateRenderer struct {
	w      io.Writer
	tty    bool
	bar    progress.Model
	last   string
	inline bool
}

func newStateRenderer(w io.Writer, tty bool) *stateRenderer {
	return &stateRenderer{
		w:   w,
		tty: tty,
		bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
	}
}

func (r *stateRenderer) Render(s controller.State) {
	v := view.Render(s)
	switch st := s.(type) {
	case controller.Translating:
		if r.tty {
			fmt.Fprintf(r.w, "\r\033[K%s %s", r.style(stepStyle, "Translating..."), r.bar.ViewAs(float64(v.Progress)/100))
			r.inline = true
			return
		}
		line := "Translating..."
		if v.Progress > 0 {
			line = fmt.Sprintf("%s %d%%", line, v.Progress)
		}
		r.println(line)
	case controller.Ready:
		line := r.style(okStyle, controller.DoneMessage)
		if st.DetectedLanguage != "" {
			name := st.DetectedLanguage
			if lang, ok := language.GetLanguage(name); ok {
				name = lang.Name
			}
			line += r.style(mutedStyle, " (detected "+name+")")
		}
		r.println(line)
	case controller.Error:
		r.println(r.style(errorStyle, "Error") + "\n" + st.Message)
	default:
		r.println(r.style(stepStyle, v.Markdown))
	}
}

// Finish terminates a pending progress line.
func (r *stateRenderer) Finish() {
	if r.inline {
		fmt.Fprintln(r.w)
		r.inline = false
	}
}

func (r *stateRenderer) println(line string) {
	if line == r.last {
		return
	}
	r.Finish()
	fmt.Fprintln(r.w, line)
	r.last = line
}

func (r *stateRenderer) style(s lipgloss.Style, text string) string {
	if !r.tty {
		return text
	}
	return s.Render(text)
}
