package models

// DiagnosticKind classifies an item skipped during a lenient operation
type DiagnosticKind int

const (
	DiagSkippedFile DiagnosticKind = iota
	DiagMissingRoot
	DiagUnknownDependency
	DiagDependencyCycle
)

// String returns the string representation of DiagnosticKind
func (k DiagnosticKind) String() string {
	switch k {
	case DiagSkippedFile:
		return "skipped-file"
	case DiagMissingRoot:
		return "missing-root"
	case DiagUnknownDependency:
		return "unknown-dependency"
	case DiagDependencyCycle:
		return "dependency-cycle"
	default:
		return "unknown"
	}
}

// Diagnostic describes something that was skipped instead of failing the call
type Diagnostic struct {
	Kind DiagnosticKind
	// Path is the file or directory concerned, if any
	Path string
	// Name is the config name concerned, if any
	Name string
	// From is the config that referenced Name
	From string
	Err  error
}

// DiagnosticFunc receives diagnostics. A nil DiagnosticFunc discards them.
type DiagnosticFunc func(Diagnostic)

// Report calls f if it is set
func (f DiagnosticFunc) Report(d Diagnostic) {
	if f != nil {
		f(d)
	}
}
