package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/docmind/internal/core/ports/driven"
	"github.com/custodia-labs/docmind/internal/logger"
)

// verbPattern matches each formatting directive; "%%" pairs consume both
// characters so an escaped percent is never read as the start of a verb.
var verbPattern = regexp.MustCompile(`(?s)%.?`)

// promptLoader resolves prompt templates from a PromptStore, falling back
// to the built-in defaults.
type promptLoader struct {
	store    driven.PromptStore
	defaults map[string]string
}

func newPromptLoader(store driven.PromptStore) *promptLoader {
	return &promptLoader{store: store, defaults: driven.DefaultPrompts()}
}

// format loads the named template and fills its %s placeholders with args.
// A user template that does not use exactly len(args) %s placeholders, or
// that uses any other verb, falls back to the default.
func (l *promptLoader) format(name string, args ...any) string {
	tmpl := l.load(name)
	if n, ok := placeholders(tmpl); !ok || n != len(args) {
		logger.Warn("Prompt %q must use %d %%s placeholders and no other verbs; using built-in prompt",
			name, len(args))
		tmpl = l.defaults[name]
	}
	return fmt.Sprintf(tmpl, args...)
}

// placeholders counts the %s verbs in tmpl. ok is false when tmpl holds
// any directive other than %s or %%.
func placeholders(tmpl string) (n int, ok bool) {
	for _, verb := range verbPattern.FindAllString(tmpl, -1) {
		switch verb {
		case "%s":
			n++
		case "%%":
		default:
			return n, false
		}
	}
	return n, true
}

func (l *promptLoader) load(name string) string {
	if l.store == nil {
		return l.defaults[name]
	}
	prompt, err := l.store.Load(name)
	if err != nil || strings.TrimSpace(prompt) == "" {
		return l.defaults[name]
	}
	return prompt
}
