package editor

import (
	"context"
	"errors"
	"fmt"
)

// ErrCancelled is returned when the user declines another edit.
var ErrCancelled = errors.New("editing cancelled")

// Session drives the edit, check and re-edit cycle.
type Session struct {
	Editor interface {
		Edit(ctx context.Context, lines []string) ([]string, error)
	}
	// Retryable decides whether a failed attempt may be edited again.
	Retryable func(error) bool
	// Ask returns true when the user wants to edit again.
	Ask func(label string) (bool, error)
	// Report is told why an attempt was rejected before the user is asked.
	Report func(error)
}

// Loop opens the editor on lines and hands the result to attempt. When
// attempt fails with a retryable error the editor reopens on the user's
// last buffer, not the original one.
func (s *Session) Loop(ctx context.Context, lines []string, attempt func([]string) error) error {
	buffer := lines
	for {
		edited, err := s.Editor.Edit(ctx, buffer)
		if err != nil {
			return err
		}
		err = attempt(edited)
		if err == nil {
			return nil
		}
		if s.Retryable == nil || !s.Retryable(err) {
			return err
		}
		if s.Report != nil {
			s.Report(err)
		}
		again, askErr := s.Ask("Edit the names again")
		if askErr != nil {
			return fmt.Errorf("%w: %w", err, askErr)
		}
		if !again {
			return fmt.Errorf("%w: %w", ErrCancelled, err)
		}
		buffer = edited
	}
}
