package rename

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/substantialcattle5/bulkmv/internal/constants"
)

// emulateExchange swaps a and b through a temporary name next to a. Each
// step is undone if a later one fails, so neither file is lost; an
// interrupted process can leave the temporary name behind.
func emulateExchange(a, b string) error {
	tmp := filepath.Join(filepath.Dir(a), constants.TempPrefix+uuid.NewString())
	if err := os.Rename(a, tmp); err != nil {
		return fmt.Errorf("exchange %s <-> %s: %w", a, b, err)
	}
	if err := os.Rename(b, a); err != nil {
		if undo := os.Rename(tmp, a); undo != nil {
			return fmt.Errorf("exchange %s <-> %s: %w (file left at %s: %v)", a, b, err, tmp, undo)
		}
		return fmt.Errorf("exchange %s <-> %s: %w", a, b, err)
	}
	if err := os.Rename(tmp, b); err != nil {
		if undo := os.Rename(a, b); undo != nil {
			return fmt.Errorf("exchange %s <-> %s: %w (files left at %s and %s: %v)", a, b, err, tmp, a, undo)
		}
		if undo := os.Rename(tmp, a); undo != nil {
			return fmt.Errorf("exchange %s <-> %s: %w (file left at %s: %v)", a, b, err, tmp, undo)
		}
		return fmt.Errorf("exchange %s <-> %s: %w", a, b, err)
	}
	return nil
}
