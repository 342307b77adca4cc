package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/eshaffer321/tuition-reconciler/internal/adapters/ocr"
)

// ReconcileFlags are the inputs of the reconcile command. At most one of
// File and Image is set; with neither, text is read from stdin.
type ReconcileFlags struct {
	File   string
	Image  string
	DryRun bool
	JSON   bool
}

// ErrConflictingInput is returned when both a text file and an image are given.
var ErrConflictingInput = errors.New("use either --file or --image, not both")

// Validate checks the flag combination.
func (f ReconcileFlags) Validate() error {
	if f.File != "" && f.Image != "" {
		return ErrConflictingInput
	}
	return nil
}

// ReadText returns the text to reconcile from --file, "-" or stdin.
func (f ReconcileFlags) ReadText(stdin io.Reader) (string, error) {
	if f.File == "" || f.File == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(f.File)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", f.File, err)
	}
	return string(data), nil
}

// ReadImage loads the --image file.
func (f ReconcileFlags) ReadImage() (ocr.Image, error) {
	data, err := os.ReadFile(f.Image)
	if err != nil {
		return ocr.Image{}, fmt.Errorf("failed to read %s: %w", f.Image, err)
	}
	return ocr.Image{Name: f.Image, Data: data}, nil
}
