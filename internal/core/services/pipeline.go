package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
	"github.com/custodia-labs/docmind/internal/core/ports/driving"
	"github.com/custodia-labs/docmind/internal/logger"
)

// Ensure PipelineService implements the interface.
var _ driving.PipelineService = (*PipelineService)(nil)

// Stage temperatures. Extraction stays close to the source text; question
// generation is allowed more variety.
const (
	summarizeTemperature = 0.3
	factsTemperature     = 0.3
	questionsTemperature = 0.5
)

// PipelineService runs the three-stage document pipeline.
type PipelineService struct {
	gateway         driving.InferenceGateway
	prompts         *promptLoader
	defaultProvider *providerChoice
}

// NewPipelineService creates a pipeline over the gateway.
// promptStore may be nil, in which case built-in prompts are used.
func NewPipelineService(
	gateway driving.InferenceGateway,
	promptStore driven.PromptStore,
	defaultProvider domain.AIProvider,
) *PipelineService {
	return &PipelineService{
		gateway:         gateway,
		prompts:         newPromptLoader(promptStore),
		defaultProvider: newProviderChoice(defaultProvider),
	}
}

// SetDefaultProvider changes the provider used when a call names none.
// Calls already running keep the provider they started with.
func (s *PipelineService) SetDefaultProvider(provider domain.AIProvider) {
	s.defaultProvider.set(provider)
}

// Process runs the pipeline over text and returns the complete result.
// On failure it returns a *domain.StageError and no result.
func (s *PipelineService) Process(
	ctx context.Context, text string, provider domain.AIProvider,
) (*domain.PipelineResult, error) {
	run := s.Run(ctx, domain.Document{
		ID:         uuid.New().String(),
		Text:       text,
		IngestedAt: time.Now().UTC(),
	}, provider)
	return run.Result()
}

// Run executes a new PipelineRun for doc until it reaches a terminal state.
func (s *PipelineService) Run(ctx context.Context, doc domain.Document, provider domain.AIProvider) *PipelineRun {
	if provider == "" {
		provider = s.defaultProvider.get()
	}
	run := newPipelineRun(doc, provider)

	logger.Section("Pipeline")
	logger.Debug("Document %s: %d chars, provider=%s", doc.ID, len(doc.Text), provider)

	if err := domain.ValidateText("document text", doc.Text); err != nil {
		run.fail(domain.StageValidate, err)
		return run
	}
	// Checked once up front so an unconfigured provider never reaches a stage.
	if err := s.gateway.RequireConfigured(provider); err != nil {
		run.fail(domain.StageValidate, err)
		return run
	}

	for !run.state.IsTerminal() {
		run.advance()
		if run.state.IsTerminal() {
			break
		}
		if err := s.execute(ctx, run); err != nil {
			run.fail(run.state.Stage(), err)
		}
	}

	if run.state == domain.StateComplete {
		logger.Info("Pipeline complete: %d facts, %d questions", len(run.facts), len(run.questions))
	} else {
		logger.Warn("Pipeline failed at %s: %v", run.failedStage, run.err)
	}
	return run
}

// execute performs the stage of the run's current state.
func (s *PipelineService) execute(ctx context.Context, run *PipelineRun) error {
	if err := ctx.Err(); err != nil {
		return domain.NewProviderError(run.provider.String(), causeFromContext(ctx, err), 0, err)
	}

	switch run.state {
	case domain.StateSummarizing:
		return s.summarize(ctx, run)
	case domain.StateExtractingFacts:
		return s.extractFacts(ctx, run)
	case domain.StateGeneratingQuestions:
		return s.generateQuestions(ctx, run)
	default:
		return fmt.Errorf("no stage for state %s", run.state)
	}
}

func (s *PipelineService) summarize(ctx context.Context, run *PipelineRun) error {
	prompt := s.prompts.format(driven.PromptSummarize, run.doc.Text)
	summary, err := s.gateway.Invoke(ctx, run.provider, domain.InferenceRequest{
		Prompt:      prompt,
		Temperature: summarizeTemperature,
	})
	if err != nil {
		return err
	}
	if strings.TrimSpace(summary) == "" {
		return domain.NewProviderError(run.provider.String(), domain.CauseMalformedResponse, 0,
			fmt.Errorf("empty summary"))
	}
	run.summary = summary
	logger.Debug("Summary: %d chars", len(summary))
	return nil
}

func (s *PipelineService) extractFacts(ctx context.Context, run *PipelineRun) error {
	prompt := s.prompts.format(driven.PromptExtractFacts, run.doc.Text, run.summary)
	raw, err := s.gateway.Invoke(ctx, run.provider, domain.InferenceRequest{
		Prompt:      prompt,
		Temperature: factsTemperature,
	})
	if err != nil {
		return err
	}
	run.facts = ParseFacts(raw)
	logger.Debug("Facts: %d parsed", len(run.facts))
	return nil
}

func (s *PipelineService) generateQuestions(ctx context.Context, run *PipelineRun) error {
	factLines := make([]string, len(run.facts))
	for i, f := range run.facts {
		factLines[i] = "- " + f
	}
	facts := strings.Join(factLines, "\n")
	if facts == "" {
		facts = "(none extracted)"
	}

	prompt := s.prompts.format(driven.PromptGenerateQuestions, run.summary, facts)
	raw, err := s.gateway.Invoke(ctx, run.provider, domain.InferenceRequest{
		Prompt:      prompt,
		Temperature: questionsTemperature,
	})
	if err != nil {
		return err
	}
	run.questions = ParseQuestions(raw)
	logger.Debug("Questions: %d parsed", len(run.questions))
	return nil
}

// PipelineRun is the state machine of a single pipeline invocation.
//
//	Idle -> Summarizing -> ExtractingFacts -> GeneratingQuestions -> Complete
//	any non-terminal state -> Failed(stage)
type PipelineRun struct {
	doc         domain.Document
	provider    domain.AIProvider
	state       domain.PipelineState
	history     []domain.PipelineState
	failedStage domain.PipelineStage
	err         error

	summary   string
	facts     []string
	questions []domain.Question
}

func newPipelineRun(doc domain.Document, provider domain.AIProvider) *PipelineRun {
	return &PipelineRun{
		doc:      doc,
		provider: provider,
		state:    domain.StateIdle,
		history:  []domain.PipelineState{domain.StateIdle},
	}
}

// State returns the current state.
func (r *PipelineRun) State() domain.PipelineState {
	return r.state
}

// History returns every state the run has entered, in order.
func (r *PipelineRun) History() []domain.PipelineState {
	return append([]domain.PipelineState(nil), r.history...)
}

// FailedStage returns the stage that failed, or "" if the run did not fail.
func (r *PipelineRun) FailedStage() domain.PipelineStage {
	return r.failedStage
}

// Err returns the failure, or nil.
func (r *PipelineRun) Err() error {
	return r.err
}

// Result returns the composite result of a completed run.
// A run that did not complete yields its *domain.StageError and no result.
func (r *PipelineRun) Result() (*domain.PipelineResult, error) {
	switch r.state {
	case domain.StateComplete:
		facts := r.facts
		if facts == nil {
			facts = []string{}
		}
		questions := r.questions
		if questions == nil {
			questions = []domain.Question{}
		}
		return &domain.PipelineResult{
			Summary:   r.summary,
			Facts:     facts,
			Questions: questions,
		}, nil
	case domain.StateFailed:
		return nil, &domain.StageError{Stage: r.failedStage, Err: r.err}
	default:
		return nil, fmt.Errorf("pipeline run not finished (state %s)", r.state)
	}
}

func (r *PipelineRun) advance() {
	r.enter(r.state.Next())
}

func (r *PipelineRun) fail(stage domain.PipelineStage, err error) {
	r.failedStage = stage
	r.err = err
	// Stage output is discarded so nothing partial can leak out.
	r.summary, r.facts, r.questions = "", nil, nil
	r.enter(domain.StateFailed)
}

func (r *PipelineRun) enter(state domain.PipelineState) {
	r.state = state
	r.history = append(r.history, state)
	logger.Debug("Pipeline %s -> %s", r.doc.ID, state)
}
