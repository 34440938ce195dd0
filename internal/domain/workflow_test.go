package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allEvents = []TaskEvent{
	EventRelease, EventAcknowledge, EventComplete, EventHalt, EventApprove, EventReject,
}

func TestNextState_LegalTransitions(t *testing.T) {
	cases := []struct {
		from  TaskState
		event TaskEvent
		to    TaskState
	}{
		{TaskOpen, EventRelease, TaskTodo},
		{TaskTodo, EventAcknowledge, TaskDoing},
		{TaskDoing, EventComplete, TaskDone},
		{TaskDoing, EventHalt, TaskTodo},
		{TaskDone, EventApprove, TaskClosed},
		{TaskDone, EventReject, TaskDoing},
	}
	for _, tc := range cases {
		next, err := NextState(tc.from, tc.event)
		require.NoError(t, err, "%s from %s", tc.event, tc.from)
		assert.Equal(t, tc.to, next)
	}
}

// Every (state, event) pair outside the transition table must be a conflict.
func TestNextState_Totality(t *testing.T) {
	legal := map[TaskState]map[TaskEvent]bool{
		TaskOpen:  {EventRelease: true},
		TaskTodo:  {EventAcknowledge: true},
		TaskDoing: {EventComplete: true, EventHalt: true},
		TaskDone:  {EventApprove: true, EventReject: true},
	}
	states := []TaskState{TaskOpen, TaskTodo, TaskDoing, TaskDone, TaskClosed}
	for _, from := range states {
		for _, event := range allEvents {
			if legal[from][event] {
				continue
			}
			next, err := NextState(from, event)
			require.Error(t, err, "%s from %s must be rejected", event, from)
			assert.True(t, errors.Is(err, ErrConflict), "%s from %s should be a conflict", event, from)
			assert.Equal(t, from, next, "state must not move on a rejected event")
		}
	}
}

func TestNextState_ClosedIsTerminal(t *testing.T) {
	for _, event := range allEvents {
		_, err := NextState(TaskClosed, event)
		require.Error(t, err, "closed must reject %s", event)
		assert.True(t, errors.Is(err, ErrConflict))
	}
}

func TestNextState_UnknownState(t *testing.T) {
	_, err := NextState(TaskState("limbo"), EventRelease)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestAuthStage(t *testing.T) {
	cases := map[TaskEvent]Stage{
		EventRelease:     StageOpen,
		EventAcknowledge: StageTodo,
		EventComplete:    StageDoing,
		EventHalt:        StageDoing,
		EventApprove:     StageDone,
		EventReject:      StageDone,
	}
	for event, stage := range cases {
		assert.Equal(t, stage, event.AuthStage(), "event=%s", event)
	}
}

func TestStageForState(t *testing.T) {
	for _, tc := range []struct {
		state TaskState
		stage Stage
		ok    bool
	}{
		{TaskOpen, StageOpen, true},
		{TaskTodo, StageTodo, true},
		{TaskDoing, StageDoing, true},
		{TaskDone, StageDone, true},
		{TaskClosed, "", false},
	} {
		stage, ok := StageForState(tc.state)
		assert.Equal(t, tc.ok, ok, "state=%s", tc.state)
		assert.Equal(t, tc.stage, stage, "state=%s", tc.state)
	}
}
