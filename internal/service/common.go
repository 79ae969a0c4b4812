package service

import (
	"errors"
	"time"

	"go-procurement-ws/internal/repository"
	"go-procurement-ws/pkg/apperror"
	"go-procurement-ws/pkg/validator"
)

// Actor identifies the user performing a write. ID is stored in the audit columns.
type Actor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SystemActor is used by seeding and tooling.
var SystemActor = Actor{ID: "system", Name: "System"}

// ChangeEvent is broadcast to websocket clients after a successful write.
type ChangeEvent struct {
	Type    string      `json:"type"`
	Action  string      `json:"action"`
	Data    interface{} `json:"data,omitempty"`
	User    Actor       `json:"user"`
	Message string      `json:"message"`
	At      time.Time   `json:"at"`
}

// Notifier delivers change events. Implemented by ws.Hub.
type Notifier interface {
	Publish(event any)
}

type nopNotifier struct{}

func (nopNotifier) Publish(any) {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

const dateLayout = "2006-01-02"

// fieldErrors collects every input problem before anything is written.
type fieldErrors []apperror.FieldError

func (f *fieldErrors) add(field, message string) {
	*f = append(*f, apperror.FieldError{Field: field, Message: message})
}

func (f fieldErrors) has(field string) bool {
	for _, e := range f {
		if e.Field == field {
			return true
		}
	}
	return false
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return apperror.NewValidation("The given data was invalid.", f...)
}

// validateInput runs the struct tag rules of req.
func validateInput(req interface{}) fieldErrors {
	var out fieldErrors
	for _, e := range validator.ValidateStruct(req) {
		out.add(e.FailedField, e.Message())
	}
	return out
}

func parseDate(value string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, value)
	return t, err == nil
}

// storageError converts repository failures into AppErrors.
func storageError(entity string, id interface{}, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NewNotFound(entity, id)
	case repository.IsConstraintViolation(err):
		return apperror.NewConstraintViolation(entity, err)
	}
	if _, ok := apperror.AsAppError(err); ok {
		return err
	}
	return apperror.NewInternal(err)
}
