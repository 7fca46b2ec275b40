package services

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

// Model output is not contractually structured, so both decoders are
// lenient: unrecognised lines are skipped and nothing is ever an error.

var (
	numberedLine   = regexp.MustCompile(`^\d+[.)]\s*(.+)$`)
	listMarker     = regexp.MustCompile(`^(?:\d+[.)]|[-•*])\s+`)
	inlineType     = regexp.MustCompile(`(?i)\s*[(\[]?\s*type:\s*([a-z-]+)\s*[)\]]?\s*$`)
	factHeaderWord = []string{"extract", "facts", "key", "here"}
)

// ParseFacts splits raw model output into fact statements.
// Bulleted ("-", "•", "*") and numbered ("1.", "1)") lines are facts;
// headings are skipped. Output with no recognisable facts yields an empty,
// non-nil slice.
func ParseFacts(raw string) []string {
	facts := []string{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var fact string
		switch {
		case strings.HasPrefix(line, "**") && strings.HasSuffix(line, "**"):
			// A bold line is a heading, not a bullet.
			continue
		case strings.HasPrefix(line, "-"), strings.HasPrefix(line, "•"), strings.HasPrefix(line, "*"):
			fact = strings.TrimLeft(line, "-•* ")
		case isFactHeader(line):
			continue
		default:
			m := numberedLine.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			fact = m[1]
		}

		fact = strings.TrimSpace(strings.Trim(strings.TrimSpace(fact), "*"))
		if fact == "" || strings.HasSuffix(fact, ":") {
			continue
		}
		facts = append(facts, fact)
	}
	return facts
}

func isFactHeader(line string) bool {
	lower := strings.ToLower(line)
	for _, w := range factHeaderWord {
		if strings.HasPrefix(lower, w) {
			return true
		}
	}
	return false
}

// ParseQuestions decodes "Q:"/"Type:" pairs from raw model output.
// Questions without a recognisable type get domain.DefaultQuestionType.
// A bare line containing "?" starts a question unless it follows an untyped
// "Q:" line, where it is taken as that question's continuation and skipped.
// Output with no questions yields an empty, non-nil slice.
func ParseQuestions(raw string) []domain.Question {
	questions := []domain.Question{}
	var pending *domain.Question
	typed, bare := false, false

	flush := func() {
		if pending != nil && pending.Text != "" {
			questions = append(questions, *pending)
		}
		pending, typed, bare = nil, false, false
	}
	start := func(text string, isBare bool) {
		flush()
		bare = isBare
		text = strings.TrimSpace(text)
		qtype := domain.DefaultQuestionType
		if m := inlineType.FindStringSubmatch(text); m != nil {
			qtype = domain.ParseQuestionType(m[1])
			text = strings.TrimSpace(text[:len(text)-len(m[0])])
			typed = true
		}
		pending = &domain.Question{Type: qtype, Text: text}
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = listMarker.ReplaceAllString(line, "")
		line = strings.TrimSpace(strings.ReplaceAll(line, "**", ""))
		if line == "" {
			continue
		}

		if rest, ok := cutPrefixFold(line, "Question:"); ok {
			start(rest, false)
			continue
		}
		if rest, ok := cutPrefixFold(line, "Q:"); ok {
			start(rest, false)
			continue
		}
		if rest, ok := cutPrefixFold(line, "Type:"); ok {
			if pending != nil {
				pending.Type = domain.ParseQuestionType(rest)
				typed = true
			}
			continue
		}
		if strings.Contains(line, "?") && (pending == nil || typed || bare) {
			start(line, true)
		}
	}
	flush()
	return questions
}

// cutPrefixFold is strings.CutPrefix with ASCII case folding.
func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}
