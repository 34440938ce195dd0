package domain

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// TaskEvent names a state-changing workflow action. Plan changes and note
// additions are not events: they leave the state untouched and are guarded
// separately by the acting stage.
type TaskEvent string

const (
	EventRelease     TaskEvent = "release"
	EventAcknowledge TaskEvent = "acknowledge"
	EventComplete    TaskEvent = "complete"
	EventHalt        TaskEvent = "halt"
	EventApprove     TaskEvent = "approve"
	EventReject      TaskEvent = "reject"
)

// AuthStage returns the stage whose permit group authorizes the event.
func (e TaskEvent) AuthStage() Stage {
	switch e {
	case EventRelease:
		return StageOpen
	case EventAcknowledge:
		return StageTodo
	case EventComplete, EventHalt:
		return StageDoing
	case EventApprove, EventReject:
		return StageDone
	default:
		return ""
	}
}

type workflowContext struct{}

// Workflow validates transitions against the fixed five-stage topology:
//
//	open → todo → doing → done → closed, with the reject path done → doing
//	and the halt path doing → todo.
//
// The transition table is declared once as a closed machine; any
// (state, event) pair outside it is a conflict. Closed is terminal.
type Workflow struct {
	interpreter *statekit.Interpreter[workflowContext]
}

// NewWorkflow builds a workflow machine positioned at the given state.
func NewWorkflow(initial TaskState) (*Workflow, error) {
	if !ValidTaskStates[string(initial)] {
		return nil, fmt.Errorf("%w: unknown task state %q", ErrConflict, initial)
	}

	builder := statekit.NewMachine[workflowContext]("task-workflow").
		WithInitial(statekit.StateID(initial)).
		WithContext(workflowContext{})

	builder.State(statekit.StateID(TaskOpen)).
		On(statekit.EventType(EventRelease)).Target(statekit.StateID(TaskTodo)).
		Done()

	builder.State(statekit.StateID(TaskTodo)).
		On(statekit.EventType(EventAcknowledge)).Target(statekit.StateID(TaskDoing)).
		Done()

	builder.State(statekit.StateID(TaskDoing)).
		On(statekit.EventType(EventComplete)).Target(statekit.StateID(TaskDone)).
		On(statekit.EventType(EventHalt)).Target(statekit.StateID(TaskTodo)).
		Done()

	builder.State(statekit.StateID(TaskDone)).
		On(statekit.EventType(EventApprove)).Target(statekit.StateID(TaskClosed)).
		On(statekit.EventType(EventReject)).Target(statekit.StateID(TaskDoing)).
		Done()

	// Terminal: no outgoing transitions.
	builder.State(statekit.StateID(TaskClosed)).Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("building workflow machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &Workflow{interpreter: interpreter}, nil
}

// Trigger attempts the event and returns the resulting state. A pair outside
// the transition table leaves the machine in place and reports a conflict.
func (w *Workflow) Trigger(event TaskEvent) (TaskState, error) {
	before := w.Current()
	w.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	after := w.Current()

	if before == after {
		return before, fmt.Errorf("%w: task is in the %s state, %s is not allowed", ErrConflict, before, event)
	}
	return after, nil
}

// Current reports the machine's position.
func (w *Workflow) Current() TaskState {
	return TaskState(w.interpreter.State().Value)
}

// NextState is a convenience wrapper answering whether event is legal from
// the given state and what it transitions to.
func NextState(from TaskState, event TaskEvent) (TaskState, error) {
	wf, err := NewWorkflow(from)
	if err != nil {
		return from, err
	}
	return wf.Trigger(event)
}
