package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptSummarize asks for a concise document summary.
	// The template expects a %s placeholder for the document text.
	PromptSummarize = "summarize"

	// PromptExtractFacts asks for a bulleted list of facts.
	// The template expects %s (document) and %s (summary) placeholders.
	PromptExtractFacts = "extract_facts"

	// PromptGenerateQuestions asks for typed comprehension questions.
	// The template expects %s (summary) and %s (facts) placeholders.
	PromptGenerateQuestions = "generate_questions"

	// PromptAnswer synthesises a grounded answer.
	// The template expects %s (context) and %s (question) placeholders.
	PromptAnswer = "answer"

	// PromptAnswerNoContext is used when retrieval found nothing.
	// The template expects a %s placeholder for the question.
	PromptAnswerNoContext = "answer_no_context"
)

// DefaultPrompts returns the built-in prompt templates keyed by prompt name.
// They are used when no PromptStore is configured and as the initial
// content of user-editable prompt files.
func DefaultPrompts() map[string]string {
	return map[string]string{
		PromptSummarize: `Summarize the following document concisely.
Cover the main ideas, key points and important details in clear prose.

Document:
%s

Summary:`,

		PromptExtractFacts: `Using the document and its summary below, extract the most important facts.
Write each fact as a separate bullet point starting with "- ". Be specific and factual.

Document:
%s

Summary:
%s

Key facts (5-10 bullet points):`,

		PromptGenerateQuestions: `Using the summary and key facts below, write 5-7 questions that test
understanding of the document. Mix factual and analytical questions.

Summary:
%s

Key facts:
%s

Write each question in exactly this format:
Q: <question>
Type: <factual|analytical|inference>

Questions:`,

		PromptAnswer: `Answer the question using only the context below.
If the context does not contain the answer, say so plainly.

Context:
%s

Question: %s

Answer:`,

		PromptAnswerNoContext: `No stored document matched this question.
Answer from general knowledge if you can, and state clearly that the answer
is not grounded in any stored document.

Question: %s

Answer:`,
	}
}
