package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/spf13/cobra"
)

// maxInputBytes bounds documents read from files or stdin.
const maxInputBytes = 32 << 20

// readDocument returns the document text and its source name.
// With no argument, or "-", the text is read from stdin.
// Invalid UTF-8 is rejected before the core sees it.
func readDocument(cmd *cobra.Command, args []string) (text, source string, err error) {
	var data []byte
	switch {
	case len(args) == 0 || args[0] == "-":
		data, err = io.ReadAll(io.LimitReader(cmd.InOrStdin(), maxInputBytes+1))
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
	default:
		data, err = os.ReadFile(args[0])
		if err != nil {
			return "", "", errUsage("reading %s: %v", args[0], err)
		}
		source = filepath.Base(args[0])
	}

	if len(data) > maxInputBytes {
		return "", "", errUsage("document exceeds %d MiB", maxInputBytes>>20)
	}
	if !utf8.Valid(data) {
		return "", "", errUsage("document is not valid UTF-8 text")
	}
	return string(data), source, nil
}
