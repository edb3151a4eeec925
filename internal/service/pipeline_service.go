package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"paperlens/internal/domain"
	"paperlens/internal/port"
	"paperlens/internal/workspace"
)

// PipelineService drives one batch run: conversion, then per-document processing.
type PipelineService interface {
	Run(ctx context.Context) (domain.RunSummary, error)
}

type pipelineService struct {
	layout     workspace.Layout
	conversion ConversionService
	strategy   Strategy
	pacer      port.Pacer
	archive    ArchiveService
}

// NewPipelineService creates a new PipelineService. archive may be nil when
// result archiving is not configured.
func NewPipelineService(
	layout workspace.Layout,
	conversion ConversionService,
	strategy Strategy,
	pacer port.Pacer,
	archive ArchiveService,
) PipelineService {
	return &pipelineService{
		layout:     layout,
		conversion: conversion,
		strategy:   strategy,
		pacer:      pacer,
		archive:    archive,
	}
}

// Run processes documents one at a time in directory listing order, pausing after each.
// Only setup failures and a failed strategy preparation end the run with an error.
func (s *pipelineService) Run(ctx context.Context) (domain.RunSummary, error) {
	summary := domain.RunSummary{RunID: uuid.New(), StartedAt: time.Now()}
	log.Printf("pipelineService: run %s started (strategy=%s)", summary.RunID, s.strategy.Name())

	if err := s.layout.EnsureDirs(); err != nil {
		return summary, err
	}

	conv, err := s.conversion.ConvertAll(ctx)
	summary.Conversion = conv
	if err != nil {
		return summary, fmt.Errorf("converting pdfs: %w", err)
	}
	log.Printf("pipelineService: conversion done (converted=%d, skipped=%d, failed=%d)",
		conv.Converted, conv.Skipped, conv.Failed)

	if err := s.strategy.Prepare(ctx); err != nil {
		log.Printf("pipelineService: aborting processing: %v", err)
		summary.FinishedAt = time.Now()
		return summary, fmt.Errorf("preparing %s strategy: %w", s.strategy.Name(), err)
	}

	docs, err := s.layout.PendingTexts()
	if err != nil {
		return summary, fmt.Errorf("listing texts: %w", err)
	}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			summary.FinishedAt = time.Now()
			return summary, err
		}

		log.Printf("pipelineService: processing %s", doc.TextFilename())
		summary.Add(s.strategy.Process(ctx, doc))

		if err := s.pacer.Wait(ctx); err != nil {
			summary.FinishedAt = time.Now()
			return summary, err
		}
	}

	summary.FinishedAt = time.Now()
	if s.archive != nil {
		s.archive.ArchiveRun(ctx, summary.RunID)
	}

	log.Printf("pipelineService: run %s finished in %s (processed=%d, formatted=%d, unformatted=%d, failedCalls=%d, archived=%d)",
		summary.RunID, summary.FinishedAt.Sub(summary.StartedAt).Round(time.Second),
		summary.Processed, summary.Formatted, summary.Unformatted, summary.FailedCalls, summary.ArchivedDocs)
	return summary, nil
}
