package port

import "paperlens/internal/domain"

// ResultSink appends reply rows to the CSV outputs of one step.
type ResultSink interface {
	// Save routes reply to the formatted or unformatted file of out and reports which one.
	Save(filename, reply string, out domain.OutputPair) (domain.RowKind, error)
}
