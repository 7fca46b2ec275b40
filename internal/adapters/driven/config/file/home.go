package file

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeEnv relocates the docmind home directory when set.
const HomeEnv = "DOCMIND_HOME"

// HomeDir returns the docmind home directory: $DOCMIND_HOME if set,
// otherwise ~/.docmind. The directory is not created.
func HomeDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".docmind"), nil
}
