package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

type Confirmer struct {
	In            io.Reader
	Out           io.Writer
	IsInteractive func() bool
}

func DefaultConfirmer() Confirmer {
	return Confirmer{
		In:  os.Stdin,
		Out: os.Stderr,
		IsInteractive: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

// ConfirmCopy asks whether the translated image should be copied to the
// clipboard. Enter alone means yes. Without a terminal it answers no.
func (c Confirmer) ConfirmCopy() (bool, error) {
	if !c.interactive() {
		return false, nil
	}
	resp, err := c.ask("Copy image to clipboard? [Y/n]: ")
	if err != nil {
		return false, err
	}
	return resp == "" || resp == "y" || resp == "yes", nil
}

// ConfirmOverwrite asks before replacing an existing output file. force
// skips the question; without a terminal the answer is no.
func (c Confirmer) ConfirmOverwrite(path string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	if !c.interactive() {
		return false, nil
	}
	resp, err := c.ask(fmt.Sprintf("Warning: Output file %s already exists. Overwrite? (y/n): ", path))
	if err != nil {
		return false, err
	}
	return resp == "y", nil
}

func (c Confirmer) interactive() bool {
	return c.IsInteractive != nil && c.IsInteractive()
}

func (c Confirmer) ask(question string) (string, error) {
	if c.Out != nil {
		fmt.Fprint(c.Out, question)
	}
	reader := bufio.NewReader(c.In)
	response, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(response)), nil
}
