package pipeline

import "time"

// PhaseStatus is the reported state of a phase in progress events
type PhaseStatus string

const (
	PhasePending   PhaseStatus = "pending"
	PhaseRunning   PhaseStatus = "running"
	PhaseCompleted PhaseStatus = "completed"
	PhaseFailed    PhaseStatus = "failed"
)

// Event is one pipeline progress notification
type Event struct {
	// PhaseName identifies the phase
	PhaseName string `json:"phase_name"`

	// Status is the phase's state after this transition
	Status PhaseStatus `json:"status"`

	// Progress is overall pipeline completion in percent
	Progress int `json:"progress_percent"`

	// Message is a human-readable description
	Message string `json:"message"`

	// Timestamp is when the transition happened
	Timestamp time.Time `json:"timestamp"`
}

// EventSink receives progress events. Sinks must not block; the
// orchestrator calls them inline between phase transitions.
type EventSink func(Event)
