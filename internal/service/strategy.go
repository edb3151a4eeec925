package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"paperlens/internal/domain"
	"paperlens/internal/port"
	"paperlens/internal/workspace"
)

// Strategy processes one extracted text document with one or more LLM calls.
type Strategy interface {
	Name() domain.StrategyName
	// Prepare runs once per batch before any document is processed.
	// An error aborts the processing phase.
	Prepare(ctx context.Context) error
	Process(ctx context.Context, doc domain.SourceDocument) domain.DocumentOutcome
	// ArchivesPDFOnConversion reports whether source PDFs leave the input
	// directory during conversion rather than after processing.
	ArchivesPDFOnConversion() bool
}

// stepRunner holds what every strategy needs to run and persist a single call.
type stepRunner struct {
	llm    port.LLMClient
	sink   port.ResultSink
	pacer  port.Pacer
	layout workspace.Layout
}

// generate issues one LLM call. Transport errors and empty replies come back as errors
// and are never retried.
func (r *stepRunner) generate(ctx context.Context, step domain.StepName, doc domain.SourceDocument, prompt string, thoughts bool) (string, error) {
	out, err := r.llm.Generate(ctx, port.GenerateInput{Prompt: prompt, IncludeThoughts: thoughts})
	if err != nil {
		log.Printf("strategy: %s call for %s failed: %v", step, doc.TextFilename(), err)
		return "", err
	}
	if out == nil || strings.TrimSpace(out.Text) == "" {
		log.Printf("strategy: %s call for %s returned no reply", step, doc.TextFilename())
		return "", domain.ErrNoReply
	}
	return out.Text, nil
}

// save routes a reply to the step's outputs.
func (r *stepRunner) save(step domain.StepName, doc domain.SourceDocument, reply string, out domain.OutputPair) domain.StepResult {
	res := domain.StepResult{Step: step, Reply: reply}
	kind, err := r.sink.Save(doc.TextFilename(), reply, out)
	if err != nil {
		log.Printf("strategy: saving %s result for %s failed: %v", step, doc.TextFilename(), err)
		res.Err = err
		return res
	}
	res.Row = kind
	return res
}

// readText loads the extracted text of a document.
func readText(doc domain.SourceDocument) (string, error) {
	data, err := os.ReadFile(doc.TextPath)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", doc.TextPath, err)
	}
	return string(data), nil
}

// archiveText moves the document's text file into the processed directory.
func (r *stepRunner) archiveText(doc domain.SourceDocument) bool {
	if _, err := workspace.Move(doc.TextPath, r.layout.ProcessedTexts); err != nil {
		log.Printf("strategy: moving %s failed: %v", doc.TextFilename(), err)
		return false
	}
	log.Printf("strategy: %s processed and moved to %s", doc.TextFilename(), r.layout.ProcessedTexts)
	return true
}

// pause waits on the pacer. Cancellation is logged and reported to the caller.
func (r *stepRunner) pause(ctx context.Context) error {
	if err := r.pacer.Wait(ctx); err != nil {
		log.Printf("strategy: pacing interrupted: %v", err)
		return err
	}
	return nil
}
