package service

import (
	"context"
	"fmt"
	"log"

	"paperlens/internal/domain"
	"paperlens/internal/port"
	"paperlens/internal/prompt"
	"paperlens/internal/workspace"
)

// DualConfig holds settings for the two-call strategy.
type DualConfig struct {
	QualityPrompt   string
	ContentPrompt   string
	Quality         domain.OutputPair
	Content         domain.OutputPair
	IncludeThoughts bool
}

// DualPromptStrategy issues two independent calls per paper, a quality assessment
// and a content extraction, each saved to its own outputs.
type DualPromptStrategy struct {
	stepRunner
	prompts port.PromptStore
	cfg     DualConfig

	qualityInstructions string
	contentInstructions string
}

// NewDualPromptStrategy creates a new DualPromptStrategy.
func NewDualPromptStrategy(
	llm port.LLMClient,
	sink port.ResultSink,
	prompts port.PromptStore,
	pacer port.Pacer,
	layout workspace.Layout,
	cfg DualConfig,
) *DualPromptStrategy {
	return &DualPromptStrategy{
		stepRunner: stepRunner{llm: llm, sink: sink, pacer: pacer, layout: layout},
		prompts:    prompts,
		cfg:        cfg,
	}
}

func (s *DualPromptStrategy) Name() domain.StrategyName {
	return domain.StrategyDual
}

// Prepare loads both instruction prompts once for the batch.
func (s *DualPromptStrategy) Prepare(_ context.Context) error {
	quality, err := s.prompts.Load(s.cfg.QualityPrompt)
	if err != nil {
		return fmt.Errorf("loading quality prompt: %w", err)
	}
	content, err := s.prompts.Load(s.cfg.ContentPrompt)
	if err != nil {
		return fmt.Errorf("loading content prompt: %w", err)
	}
	s.qualityInstructions = quality
	s.contentInstructions = content
	return nil
}

func (s *DualPromptStrategy) ArchivesPDFOnConversion() bool {
	return false
}

// Process runs both steps and then archives the text file and the source PDF.
// A failed step is logged and skipped; the files are moved either way.
func (s *DualPromptStrategy) Process(ctx context.Context, doc domain.SourceDocument) domain.DocumentOutcome {
	outcome := domain.DocumentOutcome{Document: doc}

	if s.qualityInstructions == "" || s.contentInstructions == "" {
		err := fmt.Errorf("%w: strategy not prepared", domain.ErrPromptUnavailable)
		outcome.Steps = append(outcome.Steps, domain.StepResult{Step: domain.StepQuality, Err: err})
		return outcome
	}

	text, err := readText(doc)
	if err != nil {
		log.Printf("dualPromptStrategy: %v", err)
		outcome.Steps = append(outcome.Steps, domain.StepResult{Step: domain.StepQuality, Err: err})
		return outcome
	}

	log.Printf("dualPromptStrategy: requesting quality assessment for %s", doc.TextFilename())
	outcome.Steps = append(outcome.Steps, s.runStep(ctx, domain.StepQuality, doc, text, s.qualityInstructions, s.cfg.Quality))

	if err := s.pause(ctx); err != nil {
		outcome.Steps = append(outcome.Steps, domain.StepResult{Step: domain.StepContent, Err: err})
		return outcome
	}

	log.Printf("dualPromptStrategy: requesting content extraction for %s", doc.TextFilename())
	outcome.Steps = append(outcome.Steps, s.runStep(ctx, domain.StepContent, doc, text, s.contentInstructions, s.cfg.Content))

	outcome.Archived = s.archiveText(doc)
	if outcome.Archived && workspace.Exists(doc.PDFPath) {
		if _, err := workspace.Move(doc.PDFPath, s.layout.UsedPDFs); err != nil {
			log.Printf("dualPromptStrategy: moving %s failed: %v", doc.PDFFilename(), err)
		}
	}
	return outcome
}

func (s *DualPromptStrategy) runStep(ctx context.Context, step domain.StepName, doc domain.SourceDocument, text, instructions string, out domain.OutputPair) domain.StepResult {
	reply, err := s.generate(ctx, step, doc, prompt.BuildPaperPrompt(instructions, text), s.cfg.IncludeThoughts)
	if err != nil {
		return domain.StepResult{Step: step, Err: err}
	}
	return s.save(step, doc, reply, out)
}
