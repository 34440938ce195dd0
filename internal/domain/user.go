package domain

import (
	"fmt"
	"regexp"
	"time"
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{4,32}$`)
	groupPattern    = regexp.MustCompile(`^[A-Za-z0-9_]{4,32}$`)
	emailPattern    = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
)

// User is a directory record for an acting identity. Credentials live in the
// authentication layer, not here; the core only needs the enabled flag and
// an optional email for done-stage notifications.
type User struct {
	Username  string
	Email     string
	Enabled   bool
	CreatedAt time.Time
}

// Validate checks the username and email formats. An empty email is allowed.
func (u *User) Validate() error {
	if !usernamePattern.MatchString(u.Username) {
		return fmt.Errorf("%w: username must be 4-32 alphanumeric or underscore characters", ErrInvalidInput)
	}
	if u.Email != "" && !emailPattern.MatchString(u.Email) {
		return fmt.Errorf("%w: email %q is malformed", ErrInvalidInput, u.Email)
	}
	return nil
}

// ValidateEmail checks an email address format. Empty is allowed: it
// opts the user out of done-stage notifications.
func ValidateEmail(email string) error {
	if email != "" && !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: email %q is malformed", ErrInvalidInput, email)
	}
	return nil
}

// ValidateGroupName checks a group name's format.
func ValidateGroupName(name string) error {
	if !groupPattern.MatchString(name) {
		return fmt.Errorf("%w: group name must be 4-32 alphanumeric or underscore characters", ErrInvalidInput)
	}
	return nil
}
