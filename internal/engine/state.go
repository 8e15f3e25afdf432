package engine

import (
	"time"

	"github.com/jonathan/resume-editor/internal/types"
)

// State is a transaction state
type State string

// State constants, in the order a successful transaction visits them
const (
	StateStart        State = "start"
	StateClassified   State = "classified"
	StateDispatched   State = "dispatched"
	StateValidated    State = "validated"
	StateRenderProbed State = "render_probed"
	StateCommitted    State = "committed"
	StateRolledBack   State = "rolled_back"
)

// Transition is emitted each time a transaction changes state
type Transition struct {
	TransactionID string
	From          State
	To            State
	Section       string
	At            time.Time
}

// TransitionFunc observes state transitions. It must not block.
type TransitionFunc func(Transition)

// transaction carries the bookkeeping for one ApplyEdit call
type transaction struct {
	id       string
	state    State
	editType types.EditType
	section  string
	editor   string
	started  time.Time
}
