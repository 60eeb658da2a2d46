package models

// ReportStatus is the closed set of report lifecycle states
type ReportStatus string

// Report lifecycle states. The only valid paths are
// submitted -> verified -> assigned -> in_progress -> completed and
// submitted -> rejected. Completed and rejected are terminal.
const (
	StatusSubmitted  ReportStatus = "submitted"
	StatusVerified   ReportStatus = "verified"
	StatusAssigned   ReportStatus = "assigned"
	StatusInProgress ReportStatus = "in_progress"
	StatusCompleted  ReportStatus = "completed"
	StatusRejected   ReportStatus = "rejected"
)

// transitions is the single source of truth for the lifecycle graph.
// Every mutating handler checks it before writing; no endpoint carries
// its own ad hoc status checks.
var transitions = map[ReportStatus][]ReportStatus{
	StatusSubmitted:  {StatusVerified, StatusRejected},
	StatusVerified:   {StatusAssigned},
	StatusAssigned:   {StatusInProgress},
	StatusInProgress: {StatusCompleted},
	StatusCompleted:  {},
	StatusRejected:   {},
}

// Valid reports whether s is a known lifecycle state
func (s ReportStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no further transitions are accepted from s
func (s ReportStatus) Terminal() bool {
	return len(transitions[s]) == 0 && s.Valid()
}

// CanTransitionTo reports whether s -> next is an edge in the lifecycle graph
func (s ReportStatus) CanTransitionTo(next ReportStatus) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}
