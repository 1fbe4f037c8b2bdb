package model

import "fmt"

// DiagnosticSeverity grades a recovered row- or entity-level problem.
type DiagnosticSeverity string

// Diagnostic severity constants.
const (
	SeverityWarning DiagnosticSeverity = "warning"
	SeverityInfo    DiagnosticSeverity = "info"
)

// Diagnostic records a problem recovered locally during a pipeline run.
// Diagnostics are aggregated and returned beside the primary result; only
// structural errors fail a run.
type Diagnostic struct {
	Severity DiagnosticSeverity `json:"severity"`
	Ref      string             `json:"ref,omitempty"`
	Message  string             `json:"message"`
}

// Warnf builds a warning diagnostic referencing a row or entity.
func Warnf(ref, format string, args ...any) Diagnostic {
	return Diagnostic{
		Severity: SeverityWarning,
		Ref:      ref,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Infof builds an informational diagnostic.
func Infof(ref, format string, args ...any) Diagnostic {
	return Diagnostic{
		Severity: SeverityInfo,
		Ref:      ref,
		Message:  fmt.Sprintf(format, args...),
	}
}
