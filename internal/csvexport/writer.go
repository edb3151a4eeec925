package csvexport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"paperlens/internal/domain"
	"paperlens/internal/record"
)

// Writer wraps csv.Writer for appending result rows.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteFormatted writes the whole record line as a single CSV field.
func (w *Writer) WriteFormatted(rec domain.StructuredRecord) error {
	return w.csv.Write([]string{rec.Line})
}

// WriteUnformatted writes a (filename, raw reply) row.
func (w *Writer) WriteUnformatted(rec domain.FallbackRecord) error {
	return w.csv.Write([]string{rec.Filename, rec.Raw})
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// Sink appends results to CSV files, opening the target in append mode on every write.
// It implements port.ResultSink.
type Sink struct{}

// NewSink creates a Sink.
func NewSink() *Sink {
	return &Sink{}
}

// Save appends reply to out.Formatted when it contains a StructuredRecord and to
// out.Unformatted otherwise.
func (s *Sink) Save(filename, reply string, out domain.OutputPair) (domain.RowKind, error) {
	if rec, ok := record.ExtractFormatted(reply); ok {
		if err := appendRow(out.Formatted, func(w *Writer) error { return w.WriteFormatted(rec) }); err != nil {
			return "", err
		}
		log.Printf("csvexport.Sink: formatted output for %s saved to %s", filename, out.Formatted)
		return domain.RowFormatted, nil
	}

	log.Printf("csvexport.Sink: no valid formatted output found for %s", filename)
	fallback := domain.FallbackRecord{Filename: filename, Raw: reply}
	if err := appendRow(out.Unformatted, func(w *Writer) error { return w.WriteUnformatted(fallback) }); err != nil {
		return "", err
	}
	log.Printf("csvexport.Sink: unformatted output for %s saved to %s", filename, out.Unformatted)
	return domain.RowUnformatted, nil
}

func appendRow(path string, write func(w *Writer) error) (err error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	w := NewWriter(f)
	if err := write(w); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return nil
}

// ReadFormatted loads the records of a formatted output file. A missing file yields no records.
func ReadFormatted(path string) ([]domain.StructuredRecord, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	recs := make([]domain.StructuredRecord, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		recs = append(recs, domain.StructuredRecord{Line: row[0]})
	}
	return recs, nil
}

// ReadUnformatted loads the rows of an unformatted output file. A missing file yields no rows.
func ReadUnformatted(path string) ([]domain.FallbackRecord, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	recs := make([]domain.FallbackRecord, 0, len(rows))
	for _, row := range rows {
		rec := domain.FallbackRecord{}
		if len(row) > 0 {
			rec.Filename = row[0]
		}
		if len(row) > 1 {
			rec.Raw = row[1]
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func readRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return rows, nil
}
