package domain

import (
	"fmt"
	"regexp"
	"time"
)

var acronymPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// PermitGroups holds the five per-stage group assignments of an application.
// An empty field means the stage has no permit group, which locks the stage:
// no user can ever satisfy a membership check against the empty group.
type PermitGroups struct {
	Create string
	Open   string
	Todo   string
	Doing  string
	Done   string
}

// ForStage returns the group assigned to the given stage, or "" when unset.
func (p PermitGroups) ForStage(stage Stage) string {
	switch stage {
	case StageCreate:
		return p.Create
	case StageOpen:
		return p.Open
	case StageTodo:
		return p.Todo
	case StageDoing:
		return p.Doing
	case StageDone:
		return p.Done
	default:
		return ""
	}
}

// Named returns the non-empty group names, for existence validation as a set.
func (p PermitGroups) Named() []string {
	var names []string
	for _, g := range []string{p.Create, p.Open, p.Todo, p.Doing, p.Done} {
		if g != "" {
			names = append(names, g)
		}
	}
	return names
}

// Application is a tenant: it owns plans, gates tasks through its permit
// groups, and mints task identifiers from its running number.
type Application struct {
	Acronym     string
	Description string
	RNumber     int
	StartDate   *time.Time
	EndDate     *time.Time
	Permits     PermitGroups
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks the field formats required at creation time. The acronym is
// immutable afterwards, so this is the only place its format is enforced.
func (a *Application) Validate() error {
	if a.Acronym == "" {
		return fmt.Errorf("%w: application acronym is required", ErrInvalidInput)
	}
	if !acronymPattern.MatchString(a.Acronym) {
		return fmt.Errorf("%w: acronym %q must contain only alphanumerics and underscore", ErrInvalidInput, a.Acronym)
	}
	if a.RNumber < 0 {
		return fmt.Errorf("%w: running number must not be negative", ErrInvalidInput)
	}
	return nil
}
