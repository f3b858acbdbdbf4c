package transpile

import "fmt"

// Severity classifies a non-fatal condition encountered during translation
// (spec.md §7). Nothing above this level aborts translation; fatal
// conditions are returned as a plain Go error from Convert instead.
type Severity uint8

const (
	// SeverityBenignUnknown is an opcode explicitly tagged unsupported in
	// the dispatch table: its operands are skipped and translation
	// continues.
	SeverityBenignUnknown Severity = iota
	// SeverityBenignCoercion is a binary operation on an unexpected type
	// combination, resolved by falling back to the float path.
	SeverityBenignCoercion
	// SeverityContractViolation is a source modifier or opcode whose
	// semantics cannot be faithfully modeled; the closest reasonable
	// sequence is emitted instead.
	SeverityContractViolation
)

const (
	benignUnknown     = SeverityBenignUnknown
	benignCoercion    = SeverityBenignCoercion
	contractViolation = SeverityContractViolation
)

func (s Severity) String() string {
	switch s {
	case SeverityBenignUnknown:
		return "benign-unknown"
	case SeverityBenignCoercion:
		return "benign-coercion"
	case SeverityContractViolation:
		return "contract-violation"
	default:
		return "unknown"
	}
}

// Diagnostic is one non-fatal finding surfaced to the caller: its severity,
// its offset into the token stream, and a message (which names the opcode
// number or register class only where the message text includes it).
type Diagnostic struct {
	Severity Severity
	Offset   int
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s @%d] %s", d.Severity, d.Offset, d.Message)
}

// warnf records a diagnostic at the reader's current offset and logs it
// through corelog, matching spec.md §7's "log a warning, continue".
func (tr *Transpiler) warnf(sev Severity, format string, args ...any) {
	d := Diagnostic{Severity: sev, Offset: tr.reader.Offset(), Message: fmt.Sprintf(format, args...)}
	tr.diags = append(tr.diags, d)
	tr.log.Warn(d.Message, "severity", sev.String(), "offset", d.Offset)
}
