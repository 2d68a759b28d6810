// Package resolve implements the metric and segment resolution engine: it
// turns a rule table plus an indexed fact pool into one value per metric and
// segment for a (company, fiscal year) request, aggregates balance-sheet
// categories and checks the accounting identity. Resolution is pure: the
// rule table and index are read-only, all other state is request-scoped.
package resolve

import "fmt"

// DiagKind classifies a diagnostic record
type DiagKind string

const (
	// DiagConfigAmbiguity: more than one alias entry or segment definition
	// is simultaneously valid for one (scope, key, year). A rule-table
	// defect; aborts resolution of that key only.
	DiagConfigAmbiguity DiagKind = "config_ambiguity"

	// DiagUnresolved: zero matching facts for the requested period.
	// Aggregation treats the key as zero.
	DiagUnresolved DiagKind = "unresolved"

	// DiagMultipleMatch: more than one fact matched a fully qualified
	// query. Ambiguous data rather than missing data; also zero for
	// aggregation, flagged at higher severity.
	DiagMultipleMatch DiagKind = "multiple_match"

	// DiagIdentityViolation: category totals fail the balance-sheet
	// identity beyond tolerance.
	DiagIdentityViolation DiagKind = "identity_violation"

	// DiagMissingKey: a balance-sheet category references a metric key
	// absent from the merged rule set; aggregated as zero, never silently
	// dropped from the identity check.
	DiagMissingKey DiagKind = "missing_key"
)

// Severity grades a diagnostic
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic is one non-fatal condition encountered during a request. A
// request always completes with partial results plus its diagnostics.
type Diagnostic struct {
	Kind     DiagKind `json:"kind"`
	Key      string   `json:"key"`
	Severity Severity `json:"severity"`
	Detail   string   `json:"detail"`
}

// AmbiguityError reports that the rule table offers more than one
// simultaneously valid entry for a key. It aborts resolution for that key
// only, never the whole request.
type AmbiguityError struct {
	Scope string // "default" or the company ticker
	Key   string
	Year  int
	Tags  []string
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("ambiguous configuration for %s/%s at %d: %d entries active",
		e.Scope, e.Key, e.Year, len(e.Tags))
}

func ambiguityDiag(key string, err *AmbiguityError) Diagnostic {
	return Diagnostic{
		Kind:     DiagConfigAmbiguity,
		Key:      key,
		Severity: SeverityError,
		Detail:   err.Error(),
	}
}
