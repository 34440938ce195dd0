package domain

import (
	"fmt"
	"time"
)

// Plan is a named release scoped to exactly one application. Plans have no
// lifecycle beyond creation; many tasks may reference the same plan.
type Plan struct {
	AppAcronym string
	Name       string
	StartDate  *time.Time
	EndDate    *time.Time
	CreatedAt  time.Time
}

// Validate checks the plan's identifying fields.
func (p *Plan) Validate() error {
	if p.AppAcronym == "" {
		return fmt.Errorf("%w: plan application acronym is required", ErrInvalidInput)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: plan name is required", ErrInvalidInput)
	}
	if len(p.Name) > 64 {
		return fmt.Errorf("%w: plan name must be at most 64 characters", ErrInvalidInput)
	}
	return nil
}
