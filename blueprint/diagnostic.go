package blueprint

import "fmt"

// Severity classifies a Diagnostic.
type Severity int

const (
	// SeverityInfo is an informational diagnostic with no effect on build status.
	SeverityInfo Severity = iota
	// SeverityWarning flags a non-fatal issue; the build continues and exit
	// code stays zero.
	SeverityWarning
	// SeverityError marks the compile as failed once the driver finishes,
	// but the partial graph is still returned for tooling.
	SeverityError
)

// String renders the severity the way the driver's diagnostic line expects.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

// Diagnostic is an append-only record accumulated during analysis.
// Diagnostics never cause the analyzer to panic or stop early; a compile
// with any SeverityError diagnostic is considered failed by the driver.
type Diagnostic struct {
	Location SourceLocation `json:"location"`
	Severity Severity       `json:"severity"`
	Message  string         `json:"message"`
}

// String formats a diagnostic as "<file>:<line>:<column> - <message>",
// matching the driver's stderr format from spec §6.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s - %s", d.Location.String(), d.Message)
}

// Diagnostics is an ordered, append-only collection of Diagnostic records.
type Diagnostics struct {
	items []Diagnostic
}

// Add appends a diagnostic. It is the only mutator; Diagnostics never shrinks
// within one compile invocation.
func (d *Diagnostics) Add(diag Diagnostic) {
	d.items = append(d.items, diag)
}

// Errorf appends a SeverityError diagnostic at loc.
func (d *Diagnostics) Errorf(loc SourceLocation, format string, args ...any) {
	d.Add(Diagnostic{Location: loc, Severity: SeverityError, Message: fmt.Sprintf(format, args...)})
}

// Warnf appends a SeverityWarning diagnostic at loc.
func (d *Diagnostics) Warnf(loc SourceLocation, format string, args ...any) {
	d.Add(Diagnostic{Location: loc, Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)})
}

// Infof appends a SeverityInfo diagnostic at loc.
func (d *Diagnostics) Infof(loc SourceLocation, format string, args ...any) {
	d.Add(Diagnostic{Location: loc, Severity: SeverityInfo, Message: fmt.Sprintf(format, args...)})
}

// All returns the accumulated diagnostics in emission order.
func (d *Diagnostics) All() []Diagnostic {
	return d.items
}

// HasErrors reports whether any SeverityError diagnostic was recorded. The
// driver uses this to decide the process exit code and whether a compile is
// "failed" (the partial graph is still usable for tooling either way).
func (d *Diagnostics) HasErrors() bool {
	for _, item := range d.items {
		if item.Severity == SeverityError {
			return true
		}
	}
	return false
}
