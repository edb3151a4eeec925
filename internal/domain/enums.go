package domain

// FileType represents the document file kinds the pipeline handles.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeText FileType = "txt"
)

// Extension returns the file extension including the leading dot.
func (t FileType) Extension() string {
	return "." + string(t)
}

// StrategyName selects how many LLM calls are issued per document.
type StrategyName string

const (
	// StrategyValidated issues one assessment call, optionally followed by a validation call.
	StrategyValidated StrategyName = "validated"
	// StrategyDual issues two independent calls (quality, content) per document.
	StrategyDual StrategyName = "dual"
)

// IsValid reports whether s names a known strategy.
func (s StrategyName) IsValid() bool {
	switch s {
	case StrategyValidated, StrategyDual:
		return true
	}
	return false
}

// StepName identifies a single LLM call within a strategy.
type StepName string

const (
	StepAssessment StepName = "assessment"
	StepValidation StepName = "validation"
	StepQuality    StepName = "quality"
	StepContent    StepName = "content"
)

// RowKind tells which output file a row was appended to.
type RowKind string

const (
	RowFormatted   RowKind = "formatted"
	RowUnformatted RowKind = "unformatted"
)
