package coordinator

import (
	"time"

	"bmi-client/internal/bmi"
	"bmi-client/internal/client"
)

// Phase is where the coordinator is in the calculate cycle.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseInFlight  Phase = "in_flight"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
)

// Status line texts.
const (
	StatusReady   = "Ready"
	StatusSending = "Sending request..."
	StatusDone    = "Done"
	StatusError   = "Error"
)

// State is the OperationState of the most recent calculate operation.
type State struct {
	Phase     Phase  `json:"state"`
	Status    string `json:"status"`
	RequestID string `json:"request_id,omitempty"`

	// Succeeded
	Result   bmi.ParsedResult `json:"result"`
	Rendered string           `json:"rendered,omitempty"`

	// Failed
	Kind    client.ErrorKind `json:"kind,omitempty"`
	Message string           `json:"message,omitempty"`

	FinishedAt time.Time `json:"finished_at,omitzero"`
}

// InFlight reports whether a request is outstanding.
func (s State) InFlight() bool {
	return s.Phase == PhaseInFlight
}

func idleState() State {
	return State{Phase: PhaseIdle, Status: StatusReady}
}
