package domain

import (
	"fmt"
	"strings"
	"time"
)

// Document is decoded text submitted to the core.
// It is created at invocation time and never mutated afterwards.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Text is the full decoded content.
	Text string

	// Source is the optional originating filename.
	Source string

	// IngestedAt is when the document entered the system.
	IngestedAt time.Time
}

// ValidateText rejects empty or whitespace-only text.
func ValidateText(field, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: %s must not be empty", ErrInvalidInput, field)
	}
	return nil
}
