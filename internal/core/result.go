package core

// CollaboratorKind distinguishes agents from tools.
type CollaboratorKind string

const (
	KindAgent CollaboratorKind = "agent"
	KindTool  CollaboratorKind = "tool"
)

// StageResult is the uniform outcome of one guarded collaborator call.
// It is produced exactly once per guard invocation and never mutated
// after creation. A failed call yields Succeeded=false with Err set;
// the underlying error is never propagated to the pipeline.
type StageResult struct {
	Name      string           `json:"name"`
	Kind      CollaboratorKind `json:"kind"`
	Payload   map[string]any   `json:"payload,omitempty"`
	Succeeded bool             `json:"succeeded"`
	Err       string           `json:"error,omitempty"`
	Metadata  map[string]any   `json:"metadata,omitempty"`
	Attempts  int              `json:"attempts"`
}

// NewStageSuccess creates a successful result.
func NewStageSuccess(name string, kind CollaboratorKind, payload map[string]any, attempts int) *StageResult {
	return &StageResult{
		Name:      name,
		Kind:      kind,
		Payload:   payload,
		Succeeded: true,
		Attempts:  attempts,
	}
}

// NewStageFailure creates a failed result carrying the last failure message.
func NewStageFailure(name string, kind CollaboratorKind, errMsg string, attempts int) *StageResult {
	return &StageResult{
		Name:      name,
		Kind:      kind,
		Succeeded: false,
		Err:       errMsg,
		Attempts:  attempts,
	}
}
