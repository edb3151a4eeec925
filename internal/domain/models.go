package domain

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RecordFieldCount is the number of comma-separated fields in a StructuredRecord.
const RecordFieldCount = 12

// NumericFieldStart is the 0-based index of the first numeric field in a StructuredRecord.
const NumericFieldStart = 4

// SourceDocument is a paper identified by its filename stem. It exists as a PDF,
// then as extracted text, then as an archived text file.
type SourceDocument struct {
	Stem     string
	PDFPath  string
	TextPath string
}

// TextFilename returns the name of the extracted text file for this document,
// keeping the case of its extension as found on disk.
func (d SourceDocument) TextFilename() string {
	if d.TextPath != "" {
		return filepath.Base(d.TextPath)
	}
	return d.Stem + FileTypeText.Extension()
}

// PDFFilename returns the name of the source PDF for this document.
func (d SourceDocument) PDFFilename() string {
	if d.PDFPath != "" {
		return filepath.Base(d.PDFPath)
	}
	return d.Stem + FileTypePDF.Extension()
}

// StemOf strips the directory and final extension from a path.
func StemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// StructuredRecord is one 12-field comma-separated line whose last 8 fields are numeric.
type StructuredRecord struct {
	Line string
}

// Fields splits the record into its comma-separated fields.
func (r StructuredRecord) Fields() []string {
	return strings.Split(r.Line, ",")
}

// FallbackRecord is persisted when no StructuredRecord can be extracted from a reply.
type FallbackRecord struct {
	Filename string
	Raw      string
}

// OutputPair names the formatted and unformatted CSV files one step writes to.
type OutputPair struct {
	Formatted   string
	Unformatted string
}

// StepResult describes what happened to a single LLM call.
type StepResult struct {
	Step  StepName
	Reply string
	Row   RowKind // empty when no row was written
	Err   error
}

// DocumentOutcome summarizes the processing of one SourceDocument.
type DocumentOutcome struct {
	Document SourceDocument
	Steps    []StepResult
	Archived bool
}

// ConversionSummary aggregates a batch PDF conversion pass.
type ConversionSummary struct {
	Converted int
	Skipped   int
	Failed    int
}

// RunSummary aggregates one full pipeline run.
type RunSummary struct {
	RunID        uuid.UUID
	StartedAt    time.Time
	FinishedAt   time.Time
	Conversion   ConversionSummary
	Processed    int
	Formatted    int
	Unformatted  int
	FailedCalls  int
	ArchivedDocs int
}

// Add folds a document outcome into the run summary.
func (s *RunSummary) Add(o DocumentOutcome) {
	s.Processed++
	if o.Archived {
		s.ArchivedDocs++
	}
	for _, st := range o.Steps {
		switch {
		case st.Err != nil:
			s.FailedCalls++
		case st.Row == RowFormatted:
			s.Formatted++
		case st.Row == RowUnformatted:
			s.Unformatted++
		}
	}
}
