package queue

import "fmt"

// Action is an operator command that may be issued against a submission.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionPost    Action = "post"
	ActionEdit    Action = "edit"
	ActionDelete  Action = "delete"
)

type statusTransition struct {
	from Status
	to   Status
}

// lifecycleTransitions lists every legal status change. Deletion is not a
// status; it is modelled by actionSources below.
var lifecycleTransitions = map[statusTransition]struct{}{
	{from: StatusPending, to: StatusApproved}:  {},
	{from: StatusPending, to: StatusRejected}:  {},
	{from: StatusPending, to: StatusPosted}:    {},
	{from: StatusApproved, to: StatusPosted}:   {},
	{from: StatusPending, to: StatusPending}:   {},
	{from: StatusApproved, to: StatusApproved}: {},
	{from: StatusRejected, to: StatusRejected}: {},
	{from: StatusPosted, to: StatusPosted}:     {},
}

// CanTransition reports whether a submission may move from one status to
// another. Unchanged statuses are always allowed.
func CanTransition(from, to Status) bool {
	_, ok := lifecycleTransitions[statusTransition{from: from, to: to}]
	return ok
}

// TransitionError describes an observed or attempted illegal status change.
type TransitionError struct {
	ID   ID
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("item %s: illegal status change %s -> %s", e.ID, e.From, e.To)
}

// CheckTransition returns a *TransitionError when from -> to is illegal.
func CheckTransition(id ID, from, to Status) error {
	if CanTransition(from, to) {
		return nil
	}
	return &TransitionError{ID: id, From: from, To: to}
}

// actionSources maps moderation actions to the statuses they are offered
// from. A nil entry means the action is always offered: edit and delete are
// operator overrides available regardless of status.
var actionSources = map[Action][]Status{
	ActionApprove: {StatusPending},
	ActionReject:  {StatusPending},
	ActionPost:    {StatusPending, StatusApproved},
	ActionEdit:    nil,
	ActionDelete:  nil,
}

// Allows reports whether action is offered for an item in status.
func Allows(action Action, status Status) bool {
	sources, ok := actionSources[action]
	if !ok {
		return false
	}
	if sources == nil {
		return true
	}
	for _, s := range sources {
		if s == status {
			return true
		}
	}
	return false
}

// AvailableActions returns the ordered actions offered for an item.
func AvailableActions(status Status) []Action {
	ordered := []Action{ActionApprove, ActionReject, ActionPost, ActionEdit, ActionDelete}
	out := make([]Action, 0, len(ordered))
	for _, a := range ordered {
		if Allows(a, status) {
			out = append(out, a)
		}
	}
	return out
}

// TargetStatus is the status an action moves an item to. Edit and delete
// have no target status.
func TargetStatus(action Action) (Status, bool) {
	switch action {
	case ActionApprove:
		return StatusApproved, true
	case ActionReject:
		return StatusRejected, true
	case ActionPost:
		return StatusPosted, true
	default:
		return "", false
	}
}
