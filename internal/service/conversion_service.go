package service

import (
	"context"
	"fmt"
	"log"
	"os"

	"paperlens/internal/domain"
	"paperlens/internal/port"
	"paperlens/internal/workspace"
)

// ConversionService turns new PDFs into text files in the working directory.
type ConversionService interface {
	ConvertAll(ctx context.Context) (domain.ConversionSummary, error)
}

type conversionService struct {
	layout      workspace.Layout
	extractor   port.TextExtractor
	archivePDFs bool
}

// NewConversionService creates a new ConversionService. When archivePDFs is set,
// each source PDF is moved to the used PDFs directory right after its text is written.
func NewConversionService(layout workspace.Layout, extractor port.TextExtractor, archivePDFs bool) ConversionService {
	return &conversionService{
		layout:      layout,
		extractor:   extractor,
		archivePDFs: archivePDFs,
	}
}

// ConvertAll converts every PDF in the input directory that has no text file yet.
// A failing file is logged and counted; it never stops the batch.
func (s *conversionService) ConvertAll(ctx context.Context) (domain.ConversionSummary, error) {
	var summary domain.ConversionSummary

	docs, err := s.layout.PendingPDFs()
	if err != nil {
		return summary, fmt.Errorf("listing pdfs: %w", err)
	}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if workspace.Exists(doc.TextPath) {
			log.Printf("conversionService: %s already exists, skipping conversion", doc.TextFilename())
			summary.Skipped++
			continue
		}

		if err := s.convert(ctx, doc); err != nil {
			log.Printf("conversionService: converting %s failed: %v", doc.PDFFilename(), err)
			summary.Failed++
			continue
		}
		summary.Converted++
		log.Printf("conversionService: converted %s", doc.PDFFilename())

		if s.archivePDFs {
			if _, err := workspace.Move(doc.PDFPath, s.layout.UsedPDFs); err != nil {
				log.Printf("conversionService: archiving %s failed: %v", doc.PDFFilename(), err)
				continue
			}
			log.Printf("conversionService: moved %s to %s", doc.PDFFilename(), s.layout.UsedPDFs)
		}
	}

	return summary, nil
}

func (s *conversionService) convert(ctx context.Context, doc domain.SourceDocument) error {
	text, err := s.extractor.ExtractText(ctx, doc.PDFPath)
	if err != nil {
		return err
	}
	if err := os.WriteFile(doc.TextPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", doc.TextPath, err)
	}
	return nil
}
