// Package command is the only path by which tickets, assets, projects and
// users are mutated. Every command is validated, authorized through the
// authority package, applied inside one storage transaction, and its events
// are delivered only after that transaction commits.
package command

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/spec-kit/itops-service/internal/domain"
	"github.com/spec-kit/itops-service/internal/events"
	apperrors "github.com/spec-kit/itops-service/pkg/util"
)

// Command is an intent to mutate one resource.
type Command interface {
	CommandName() string
	Validate() error
}

// Result carries the resource as committed and the events it produced.
// The resource pointer is nil for deletes.
type Result struct {
	Kind    domain.ResourceKind
	Ticket  *domain.Ticket
	Asset   *domain.Asset
	Project *domain.Project
	User    *domain.User
	Events  []events.Event
}

const (
	maxTitle       = 200
	maxName        = 150
	maxText        = 5000
	maxShort       = 100
	minPassword    = 8
	maxPasswordLen = 72 // bcrypt input limit
)

type fieldErrors map[string]any

func (f fieldErrors) required(field, value string, max int) {
	v := strings.TrimSpace(value)
	switch {
	case v == "":
		f[field] = "is required"
	case utf8.RuneCountInString(v) > max:
		f[field] = fmt.Sprintf("must be at most %d characters", max)
	}
}

// optional validates a patch field: absent is fine, present must satisfy max
// and, when nonEmpty is set, must not be blank.
func (f fieldErrors) optional(field string, value *string, max int, nonEmpty bool) {
	if value == nil {
		return
	}
	if nonEmpty {
		f.required(field, *value, max)
		return
	}
	f.maxLen(field, *value, max)
}

func (f fieldErrors) maxLen(field, value string, max int) {
	if utf8.RuneCountInString(value) > max {
		f[field] = fmt.Sprintf("must be at most %d characters", max)
	}
}

func (f fieldErrors) id(field, value string) {
	if strings.TrimSpace(value) == "" {
		f[field] = "is required"
	}
}

func (f fieldErrors) optionalID(field string, value *string) {
	if value != nil {
		f.id(field, *value)
	}
}

func (f fieldErrors) check(ok bool, field, message string) {
	if !ok {
		f[field] = message
	}
}

func (f fieldErrors) email(field, value string) {
	if _, err := mail.ParseAddress(value); err != nil {
		f[field] = "must be a valid email address"
	}
}

func (f fieldErrors) err(name string) error {
	if len(f) == 0 {
		return nil
	}
	return apperrors.NewValidationError(name+" is invalid", map[string]any(f))
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}

// track applies src onto dst when present and different, recording the change.
func track[T comparable](changes events.Changes, field string, dst *T, src *T) {
	if src == nil || *src == *dst {
		return
	}
	changes[field] = events.Change{Before: *dst, After: *src}
	*dst = *src
}

func trimmedValue(v string) string { return strings.TrimSpace(v) }
