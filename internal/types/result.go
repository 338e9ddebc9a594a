package types

// OperationResult is the outcome reported to the user for one command.
type OperationResult struct {
	Success      bool   `json:"success" yaml:"success"`
	Payload      any    `json:"payload,omitempty" yaml:"payload,omitempty"`
	ErrorMessage string `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewResult converts a (value, error) pair into an OperationResult.
func NewResult(payload any, err error) OperationResult {
	if err != nil {
		return OperationResult{Success: false, ErrorMessage: err.Error()}
	}
	return OperationResult{Success: true, Payload: payload}
}
