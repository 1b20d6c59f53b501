package ui

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"

	"github.com/substantialcattle5/bulkmv/util"
)

// Prompter asks yes/no questions, through promptui on a terminal and a
// plain line read otherwise.
type Prompter struct {
	In  *os.File
	Out io.Writer
}

// NewPrompter returns a prompter on the process's standard streams.
func NewPrompter() *Prompter {
	return &Prompter{In: os.Stdin, Out: os.Stderr}
}

// Confirm asks label and returns the answer. An aborted prompt answers no.
func (p *Prompter) Confirm(label string) (bool, error) {
	if p.In == nil || !term.IsTerminal(int(p.In.Fd())) {
		return util.Confirm(label, p.In, p.Out)
	}

	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Stdin:     p.In,
	}
	_, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return true, nil
}
