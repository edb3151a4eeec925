package service

import (
	"context"
	"log"

	"paperlens/internal/domain"
	"paperlens/internal/port"
	"paperlens/internal/prompt"
	"paperlens/internal/workspace"
)

// ValidatedConfig holds settings for the single-call strategy.
type ValidatedConfig struct {
	SystemPrompt      string
	ValidationPrompt  string
	Output            domain.OutputPair
	IncludeThoughts   bool
	ValidationEnabled bool
}

// ValidatedStrategy assesses each paper with one call, optionally followed by a
// validation call whose reply supersedes the first one.
type ValidatedStrategy struct {
	stepRunner
	prompts port.PromptStore
	cfg     ValidatedConfig
}

// NewValidatedStrategy creates a new ValidatedStrategy.
func NewValidatedStrategy(
	llm port.LLMClient,
	sink port.ResultSink,
	prompts port.PromptStore,
	pacer port.Pacer,
	layout workspace.Layout,
	cfg ValidatedConfig,
) *ValidatedStrategy {
	return &ValidatedStrategy{
		stepRunner: stepRunner{llm: llm, sink: sink, pacer: pacer, layout: layout},
		prompts:    prompts,
		cfg:        cfg,
	}
}

func (s *ValidatedStrategy) Name() domain.StrategyName {
	return domain.StrategyValidated
}

// Prepare is a no-op; prompts are read at the point of use.
func (s *ValidatedStrategy) Prepare(_ context.Context) error {
	return nil
}

func (s *ValidatedStrategy) ArchivesPDFOnConversion() bool {
	return true
}

// Process runs the assessment call, the optional validation call, saves the final
// reply and archives the text file. Without an initial reply nothing is written or moved.
func (s *ValidatedStrategy) Process(ctx context.Context, doc domain.SourceDocument) domain.DocumentOutcome {
	outcome := domain.DocumentOutcome{Document: doc}
	fail := func(err error) domain.DocumentOutcome {
		outcome.Steps = append(outcome.Steps, domain.StepResult{Step: domain.StepAssessment, Err: err})
		log.Printf("validatedStrategy: no output available for %s", doc.TextFilename())
		return outcome
	}

	text, err := readText(doc)
	if err != nil {
		log.Printf("validatedStrategy: %v", err)
		return fail(err)
	}

	instructions, err := s.prompts.Load(s.cfg.SystemPrompt)
	if err != nil {
		return fail(err)
	}

	initial, err := s.generate(ctx, domain.StepAssessment, doc, prompt.BuildPaperPrompt(instructions, text), s.cfg.IncludeThoughts)
	if err != nil {
		return fail(err)
	}

	final := initial
	if s.cfg.ValidationEnabled {
		var res domain.StepResult
		final, res = s.validate(ctx, doc, text, initial)
		outcome.Steps = append(outcome.Steps, res)
	}

	res := s.save(domain.StepAssessment, doc, final, s.cfg.Output)
	outcome.Steps = append(outcome.Steps, res)
	if res.Err != nil {
		return outcome
	}

	outcome.Archived = s.archiveText(doc)
	return outcome
}

// validate asks the model to re-evaluate the initial reply. It returns the validated
// reply, or the initial one when validation produced nothing.
func (s *ValidatedStrategy) validate(ctx context.Context, doc domain.SourceDocument, text, initial string) (string, domain.StepResult) {
	res := domain.StepResult{Step: domain.StepValidation}

	if err := s.pause(ctx); err != nil {
		res.Err = err
		return initial, res
	}

	instructions, err := s.prompts.Load(s.cfg.ValidationPrompt)
	if err != nil {
		res.Err = err
		return initial, res
	}

	validated, err := s.generate(ctx, domain.StepValidation, doc, prompt.BuildValidationPrompt(instructions, text, initial), false)
	if err != nil {
		log.Printf("validatedStrategy: keeping initial reply for %s", doc.TextFilename())
		res.Err = err
		return initial, res
	}

	res.Reply = validated
	return validated, res
}
