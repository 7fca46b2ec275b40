package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/docmind/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk,
// falling back to the built-in templates.
//
// Initialisation is lazy: the directory and default files are written on
// the first Load, not in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	defaults  map[string]string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to <docmind home>/prompts.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := HomeDir()
		if err != nil {
			return nil, err
		}
		promptDir = filepath.Join(home, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		defaults:  driven.DefaultPrompts(),
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// The user's file wins. A missing or empty file falls back to the default.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)

	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	prompt, err := s.loadFromFile(name)
	if err != nil || prompt == "" {
		def, known := s.defaults[name]
		if !known {
			if err == nil {
				err = errors.New("empty prompt file")
			}
			return "", fmt.Errorf("load prompt %q: %w", name, err)
		}
		prompt = def
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// Err reports why the prompt directory could not be initialised, if it
// could not. Loads still succeed from the defaults in that case.
func (s *PromptStore) Err() error {
	s.initOnce.Do(s.initialise)
	return s.initErr
}

func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Existing files are user edits and are never overwritten.
	for name, content := range s.defaults {
		path := s.pathFor(name)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) pathFor(name string) string {
	return filepath.Join(s.promptDir, name+".txt")
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(s.pathFor(name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		return nil
	}

	content := `# docmind prompts

These templates drive every LLM call docmind makes. Edit a file to change
its behaviour; delete it to restore the built-in default on next start.

## Files

- ` + "`summarize.txt`" + ` - first pipeline stage, takes the document (%s)
- ` + "`extract_facts.txt`" + ` - second stage, takes the document and summary (%s, %s)
- ` + "`generate_questions.txt`" + ` - third stage, takes the summary and facts (%s, %s)
- ` + "`answer.txt`" + ` - query synthesis, takes the context and question (%s, %s)
- ` + "`answer_no_context.txt`" + ` - used when nothing was retrieved, takes the question (%s)

## Placeholders

Each ` + "`%s`" + ` is filled in order. Keep the same number of placeholders
when you customise a prompt. Write a literal percent sign as ` + "`%%`" + `; a prompt
with any other ` + "`%`" + ` directive is ignored in favour of the built-in one.

The question stage expects lines of the form:

    Q: <question>
    Type: <factual|analytical|inference>
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("create prompt README: %w", err)
	}
	return nil
}
