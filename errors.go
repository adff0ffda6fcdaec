package xbrl

import (
	"fmt"
	"strings"
)

// MalformedXBRLError reports a structural problem with the document bundle:
// XML that fails to parse, or a required file that is absent.
type MalformedXBRLError struct {
	File   string
	Reason string
	Err    error
}

func (e *MalformedXBRLError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("malformed XBRL in %s: %s", e.File, e.Reason)
	}
	return "malformed XBRL: " + e.Reason
}

func (e *MalformedXBRLError) Unwrap() error { return e.Err }

// ConceptResolutionError reports an arc or fact that references a concept not
// declared in the element catalog.
type ConceptResolutionError struct {
	Concept string
	Where   string // "arc", "fact", or "" when unknown
}

func (e *ConceptResolutionError) Error() string {
	if e.Where != "" {
		return fmt.Sprintf("unresolved concept %s referenced by %s", e.Concept, e.Where)
	}
	return "unresolved concept " + e.Concept
}

// StatementNotFoundError reports that no role in the filing scored above the
// resolution threshold for the requested statement type.
type StatementNotFoundError struct {
	StatementType StatementType
	BestRole      string
	BestScore     float64
}

func (e *StatementNotFoundError) Error() string {
	if e.BestRole != "" {
		return fmt.Sprintf("no role found for %s (best candidate %s scored %.2f)",
			e.StatementType, e.BestRole, e.BestScore)
	}
	return fmt.Sprintf("no role found for %s", e.StatementType)
}

// InsufficientDataError reports a computation that cannot proceed for lack of
// facts: a TTM window with under four quarters, or an empty period selection.
type InsufficientDataError struct {
	Operation string
	Need      int
	Have      int
	Periods   []string
}

func (e *InsufficientDataError) Error() string {
	msg := fmt.Sprintf("insufficient data for %s: need %d periods, have %d", e.Operation, e.Need, e.Have)
	if len(e.Periods) > 0 {
		msg += " (" + strings.Join(e.Periods, ", ") + ")"
	}
	return msg
}
