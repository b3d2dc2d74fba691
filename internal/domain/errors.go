package domain

import "fmt"

// Kind identifies one of the error categories named in the engine's error
// handling design. Callers branch on Kind via errors.As against *EngineError,
// never on error string content.
type Kind string

const (
	KindConfig            Kind = "config_error"
	KindIngestion          Kind = "ingestion_error"
	KindIndex             Kind = "index_error"
	KindRetrieval          Kind = "retrieval_error"
	KindSynthesis          Kind = "synthesis_error"
	KindGate              Kind = "gate_error"
	KindTimeout           Kind = "timeout_error"
	KindTransientProvider Kind = "transient_provider_error"
)

// EngineError wraps an underlying cause with a Kind so that propagation
// policy (retry locally, degrade, abort, or surface as a structured
// response) can be decided by errors.As at the boundary that cares, rather
// than by inspecting error text.
type EngineError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *EngineError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }

// Is reports whether target is an *EngineError with the same Kind, so that
// errors.Is(err, &domain.EngineError{Kind: domain.KindTransientProvider})
// works without comparing the wrapped cause.
func (e *EngineError) Is(target error) bool {
	t, ok := target.(*EngineError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func NewError(kind Kind, op string, err error) *EngineError {
	return &EngineError{Kind: kind, Op: op, Err: err}
}
