// Command pipeline runs one batch: convert new PDFs, assess every pending text
// with the configured strategy and append the results to the CSV outputs.
// Usage: go run ./cmd/pipeline
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"paperlens/internal/config"
	"paperlens/internal/csvexport"
	"paperlens/internal/domain"
	"paperlens/internal/extractor/pdftext"
	"paperlens/internal/llm"
	_ "paperlens/internal/llm/claude"
	_ "paperlens/internal/llm/gemini"
	_ "paperlens/internal/llm/openai"
	"paperlens/internal/pacing"
	"paperlens/internal/port"
	"paperlens/internal/prompt"
	"paperlens/internal/service"
	s3storage "paperlens/internal/storage/s3"
	"paperlens/internal/workspace"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Log.Debug() {
		log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize collaborators
	client, err := llm.NewClient(&cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to initialize LLM client: %w", err)
	}
	log.Printf("LLM provider: %s (model=%s, thinking budget=%d)", cfg.LLM.Provider, cfg.LLM.Model, cfg.LLM.ThinkingBudget)

	pacer, err := pacing.New(&cfg.Pacing)
	if err != nil {
		return fmt.Errorf("failed to initialize pacer: %w", err)
	}

	layout := workspace.NewLayout(&cfg.Paths)
	prompts := prompt.NewFileStore(cfg.Prompts.Cache)
	sink := csvexport.NewSink()

	strategy, err := newStrategy(cfg, client, sink, prompts, pacer, layout)
	if err != nil {
		return err
	}

	var archive service.ArchiveService
	if cfg.S3.Enabled() {
		storage, err := s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		archive = service.NewArchiveService(storage, cfg.S3.Bucket, cfg.S3.Prefix, cfg.Outputs.Files())
		log.Printf("Result archiving enabled (bucket=%s, prefix=%s)", cfg.S3.Bucket, cfg.S3.Prefix)
	}

	// Initialize services
	conversion := service.NewConversionService(layout, pdftext.NewExtractor(), strategy.ArchivesPDFOnConversion())
	pipeline := service.NewPipelineService(layout, conversion, strategy, pacer, archive)

	if _, err := pipeline.Run(ctx); err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}
	return nil
}

func newStrategy(
	cfg *config.Config,
	client port.LLMClient,
	sink port.ResultSink,
	prompts port.PromptStore,
	pacer port.Pacer,
	layout workspace.Layout,
) (service.Strategy, error) {
	switch cfg.Pipeline.Strategy {
	case domain.StrategyValidated:
		return service.NewValidatedStrategy(client, sink, prompts, pacer, layout, service.ValidatedConfig{
			SystemPrompt:      cfg.Prompts.System,
			ValidationPrompt:  cfg.Prompts.Validation,
			Output:            cfg.Outputs.Assessment,
			IncludeThoughts:   cfg.LLM.IncludeThoughts,
			ValidationEnabled: cfg.Pipeline.ValidationEnabled,
		}), nil
	case domain.StrategyDual:
		return service.NewDualPromptStrategy(client, sink, prompts, pacer, layout, service.DualConfig{
			QualityPrompt:   cfg.Prompts.Quality,
			ContentPrompt:   cfg.Prompts.Content,
			Quality:         cfg.Outputs.Quality,
			Content:         cfg.Outputs.Content,
			IncludeThoughts: cfg.LLM.IncludeThoughts,
		}), nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownStrategy, cfg.Pipeline.Strategy)
	}
}
