package domain

import (
	"fmt"
	"strconv"
	"time"
)

// Task is a unit of work moving through an application's workflow. Name,
// description, creator and create date are immutable after creation; notes
// only ever grow by prepending.
type Task struct {
	ID          string
	AppAcronym  string
	Name        string
	Description string
	Notes       string
	Creator     string
	CreateDate  time.Time
	Plan        string // empty when no plan is assigned
	State       TaskState
	Owner       string
	UpdatedAt   time.Time
}

// Validate checks the field formats required at creation time.
func (t *Task) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("%w: task name is required", ErrInvalidInput)
	}
	if len(t.Name) > 64 {
		return fmt.Errorf("%w: task name must be at most 64 characters", ErrInvalidInput)
	}
	if len(t.Description) > 1024 {
		return fmt.Errorf("%w: task description must be at most 1024 characters", ErrInvalidInput)
	}
	return nil
}

// MintTaskID builds the globally unique task identifier from an application
// acronym and an allocated running number. Identifiers are never reused.
func MintTaskID(acronym string, rnumber int) string {
	return acronym + "_" + strconv.Itoa(rnumber)
}

// NoteLine formats one audit line of the note log.
func NoteLine(at time.Time, username, message string) string {
	return fmt.Sprintf("[%s] %s: %s", at.UTC().Format(time.RFC3339), username, message)
}

// PrependNote pushes a new audit line onto the reverse-chronological note
// log. The previous content is carried over verbatim, so the log is strictly
// append-only: no line is ever edited or removed once written.
func PrependNote(notes string, at time.Time, username, message string) string {
	line := NoteLine(at, username, message)
	if notes == "" {
		return line
	}
	return line + "\n" + notes
}

// PlanChangeMessage narrates a plan assignment for the note log.
func PlanChangeMessage(plan string) string {
	if plan == "" {
		return "Removed plan."
	}
	return fmt.Sprintf("Changed plan to %s.", plan)
}
