package types

// Result is the structured envelope returned by every Coordinator operation.
// The Coordinator never lets a Go error cross its public boundary; failures
// are packed here with a code from the taxonomy.
type Result struct {
	Success    bool      `json:"success"`
	ErrorCode  ErrorCode `json:"error_code,omitempty"`
	Message    string    `json:"message,omitempty"`
	Details    string    `json:"details,omitempty"`
	StrategyID string    `json:"strategy_id,omitempty"`
	Cost       Cost      `json:"cost,omitempty"`
}

// OK returns a success envelope.
func OK() Result {
	return Result{Success: true}
}

// Fail builds a failure envelope from a typed error.
func Fail(err *MCRError) Result {
	return Result{
		Success:   false,
		ErrorCode: err.Code,
		Message:   err.Message,
		Details:   err.Details,
	}
}

// FailErr classifies an arbitrary error and builds the failure envelope.
func FailErr(err error) Result {
	return Fail(AsMCRError(err))
}

// DebugLevel controls how much pipeline detail is attached to responses.
type DebugLevel string

const (
	DebugNone    DebugLevel = "none"
	DebugBasic   DebugLevel = "basic"
	DebugVerbose DebugLevel = "verbose"
)

// DebugInfo carries the optional trace bundle returned with query answers.
// Fidelity depends on the configured DebugLevel; at "none" it stays empty.
type DebugInfo map[string]interface{}

// Set stores a key if the map is non-nil.
func (d DebugInfo) Set(key string, value interface{}) {
	if d != nil {
		d[key] = value
	}
}
