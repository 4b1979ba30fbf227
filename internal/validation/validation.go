// Package validation provides input validation for user-supplied fields.
package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	minUserNameLen = 5
	maxUserNameLen = 50
	minPasswordLen = 8
	maxTextLen     = 2000
)

// ValidateUserName validates a display name. Names are trimmed before
// validation; the trimmed form is what gets stored, so names differing
// only by surrounding whitespace collide.
func ValidateUserName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name is required")
	}
	n := utf8.RuneCountInString(name)
	if n < minUserNameLen {
		return fmt.Errorf("name must be at least %d characters", minUserNameLen)
	}
	if n > maxUserNameLen {
		return fmt.Errorf("name must be at most %d characters", maxUserNameLen)
	}
	return nil
}

// ValidateEmail validates an email address.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("email is not a valid address")
	}
	return nil
}

// ValidatePassword validates a plaintext password. Only the length is
// checked; the value itself never reaches a log or an error message.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	return nil
}

// ValidateGroupName validates a group name.
func ValidateGroupName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// ValidateGroupSubject validates a group subject.
func ValidateGroupSubject(subject string) error {
	if strings.TrimSpace(subject) == "" {
		return fmt.Errorf("subject is required")
	}
	return nil
}

// ValidatePostText validates a post body.
func ValidatePostText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text is required")
	}
	if utf8.RuneCountInString(text) > maxTextLen {
		return fmt.Errorf("text must be at most %d characters", maxTextLen)
	}
	return nil
}
