// Package record finds the machine-readable result line inside a model reply.
//
// A reply qualifies when one of its lines has exactly 12 comma-separated fields
// and the last 8 of them are numeric. Field content is not otherwise checked and
// quoted or escaped commas are not understood.
package record

import (
	"strings"

	"paperlens/internal/domain"
)

// ExtractFormatted returns the first qualifying line of reply, trimmed.
// ok is false when no line qualifies.
func ExtractFormatted(reply string) (rec domain.StructuredRecord, ok bool) {
	cleaned := strings.Trim(strings.TrimSpace(reply), `"`)
	if cleaned == "" {
		return domain.StructuredRecord{}, false
	}

	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.TrimSpace(line)
		if IsRecordLine(line) {
			return domain.StructuredRecord{Line: line}, true
		}
	}
	return domain.StructuredRecord{}, false
}

// IsRecordLine reports whether a single trimmed line has the record shape.
func IsRecordLine(line string) bool {
	parts := strings.Split(line, ",")
	if len(parts) != domain.RecordFieldCount {
		return false
	}
	for _, p := range parts[domain.NumericFieldStart:] {
		if !IsNumericField(p) {
			return false
		}
	}
	return true
}

// IsNumericField accepts ASCII digits with at most one decimal point, after
// trimming surrounding whitespace. Signs, exponents and empty fields are rejected.
func IsNumericField(field string) bool {
	field = strings.TrimSpace(field)
	digits := 0
	dots := 0
	for i := 0; i < len(field); i++ {
		switch c := field[i]; {
		case c >= '0' && c <= '9':
			digits++
		case c == '.':
			dots++
			if dots > 1 {
				return false
			}
		default:
			return false
		}
	}
	return digits > 0
}
