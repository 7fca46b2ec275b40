package domain

import "strings"

// PipelineStage names a step of document processing.
type PipelineStage string

// Pipeline stages in execution order.
const (
	StageValidate          PipelineStage = "validate"
	StageSummarize         PipelineStage = "summarize"
	StageExtractFacts      PipelineStage = "extract_facts"
	StageGenerateQuestions PipelineStage = "generate_questions"
)

// String returns the string representation.
func (s PipelineStage) String() string {
	return string(s)
}

// PipelineState is the state of a single pipeline invocation.
type PipelineState string

// Pipeline states. Complete and Failed are terminal.
const (
	StateIdle                PipelineState = "idle"
	StateSummarizing         PipelineState = "summarizing"
	StateExtractingFacts     PipelineState = "extracting_facts"
	StateGeneratingQuestions PipelineState = "generating_questions"
	StateComplete            PipelineState = "complete"
	StateFailed              PipelineState = "failed"
)

// IsTerminal returns true if no further transition is possible.
func (s PipelineState) IsTerminal() bool {
	return s == StateComplete || s == StateFailed
}

// Stage returns the stage executed while in this state.
// Idle, Complete and Failed have no stage.
func (s PipelineState) Stage() PipelineStage {
	switch s {
	case StateSummarizing:
		return StageSummarize
	case StateExtractingFacts:
		return StageExtractFacts
	case StateGeneratingQuestions:
		return StageGenerateQuestions
	default:
		return ""
	}
}

// Next returns the successor state on stage success.
func (s PipelineState) Next() PipelineState {
	switch s {
	case StateIdle:
		return StateSummarizing
	case StateSummarizing:
		return StateExtractingFacts
	case StateExtractingFacts:
		return StateGeneratingQuestions
	case StateGeneratingQuestions:
		return StateComplete
	default:
		return s
	}
}

// QuestionType classifies a generated question.
type QuestionType string

// Question types offered to the model.
const (
	QuestionFactual    QuestionType = "factual"
	QuestionAnalytical QuestionType = "analytical"
	QuestionInference  QuestionType = "inference"
	QuestionGeneral    QuestionType = "general"
)

// DefaultQuestionType is assigned when the model omits or garbles a type.
const DefaultQuestionType = QuestionGeneral

// ParseQuestionType maps free-form model output onto the vocabulary.
// Unknown values map to DefaultQuestionType.
func ParseQuestionType(s string) QuestionType {
	s = strings.ToLower(strings.Trim(strings.TrimSpace(s), "[]*_.`"))
	for _, t := range AllQuestionTypes() {
		if s == string(t) {
			return t
		}
	}
	return DefaultQuestionType
}

// AllQuestionTypes returns the question type vocabulary.
func AllQuestionTypes() []QuestionType {
	return []QuestionType{QuestionFactual, QuestionAnalytical, QuestionInference, QuestionGeneral}
}

// Question is a generated comprehension question.
type Question struct {
	// Type is drawn from the fixed question vocabulary.
	Type QuestionType `json:"type"`

	// Text is the question itself.
	Text string `json:"question"`
}

// PipelineResult is the composite artifact of one pipeline run.
// Facts and Questions may be empty but are never nil.
type PipelineResult struct {
	// Summary is the single summary string.
	Summary string `json:"summary"`

	// Facts are the extracted fact statements, in model order.
	Facts []string `json:"facts"`

	// Questions are the generated questions, in model order.
	Questions []Question `json:"questions"`
}

// InferenceRequest is a provider-agnostic prompt request.
type InferenceRequest struct {
	// Prompt is the user prompt.
	Prompt string

	// System is an optional system instruction.
	System string

	// Temperature controls randomness. Zero selects the provider default.
	Temperature float64

	// MaxTokens bounds the completion length. Zero selects the provider default.
	MaxTokens int
}
