package models

type Status string

const (
	StatusPending       Status = "pending"
	StatusUnderReview   Status = "under_review"
	StatusResolved      Status = "resolved"
	StatusReportedToNGO Status = "reported_to_ngo"
	StatusFlagged       Status = "flagged"
)

var transitions = map[Status][]Status{
	StatusPending:       {StatusUnderReview, StatusFlagged, StatusReportedToNGO, StatusResolved},
	StatusUnderReview:   {StatusFlagged, StatusReportedToNGO, StatusResolved},
	StatusFlagged:       {StatusUnderReview, StatusReportedToNGO, StatusResolved},
	StatusReportedToNGO: {StatusResolved},
	StatusResolved:      {},
}

// Known reports whether s is one of the defined statuses.
func (s Status) Known() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// CanTransitionTo reports whether a complaint in status s may move to next.
// Staying in the same status is not a transition.
func (s Status) CanTransitionTo(next Status) bool {
	for _, n := range transitions[s] {
		if n == next {
			return true
		}
	}
	return false
}
