package evaltest

import (
	"fmt"
	"reflect"

	"src.tide.sh/pkg/eval"
	"src.tide.sh/pkg/eval/errs"
)

type errorMatcher interface{ matchError(error) bool }

// An errorMatcher for exceptions.
type exc struct {
	reason error
}

func (e exc) Error() string {
	return fmt.Sprintf("exception with reason %v", e.reason)
}

func (e exc) matchError(e2 error) bool {
	if e2, ok := e2.(*eval.Exception); ok {
		return matchErr(e.reason, e2.Reason)
	}
	return false
}

// AnyError is an error that can be passed to Case.Throws to match any error.
var AnyError anyError

type anyError struct{}

func (anyError) Error() string           { return "any error" }
func (anyError) matchError(e error) bool { return e != nil }

// ErrorWithType returns an error that can be passed to the Case.Throws to match
// any error with the same type as the argument.
func ErrorWithType(v error) error { return errWithType{v} }

// An errorMatcher for any error with the given type.
type errWithType struct{ v error }

func (e errWithType) Error() string { return fmt.Sprintf("error with type %T", e.v) }

func (e errWithType) matchError(e2 error) bool {
	return reflect.TypeOf(e.v) == reflect.TypeOf(e2)
}

// ErrorWithMessage returns an error that can be passed to Case.Throws to match
// any error with the given message.
func ErrorWithMessage(msg string) error { return errWithMessage{msg} }

// An errorMatcher for any error with the given message.
type errWithMessage struct{ msg string }

func (e errWithMessage) Error() string { return "error with message " + e.msg }

func (e errWithMessage) matchError(e2 error) bool {
	return e2 != nil && e.msg == e2.Error()
}

// ErrorInCategory returns an error that can be passed to Case.Throws to match
// any error in the given category.
func ErrorInCategory(c errs.Category) error { return errInCategory{c} }

type errInCategory struct{ c errs.Category }

func (e errInCategory) Error() string { return "error in category " + e.c.String() }

func (e errInCategory) matchError(e2 error) bool {
	return e2 != nil && errs.CategoryOf(e2) == e.c
}

// CmdExit returns an error that can be passed to Case.Throws to match an
// errs.ExternalCommandFailed with the given exit code, whatever the command.
func CmdExit(code int) error { return errCmdExit{code} }

type errCmdExit struct{ code int }

func (e errCmdExit) Error() string { return fmt.Sprintf("external command exited with %d", e.code) }

func (e errCmdExit) matchError(gotErr error) bool {
	ge, ok := gotErr.(errs.ExternalCommandFailed)
	return ok && ge.Code == e.code
}

type errOneOf struct{ errs []error }

// OneOfErrors returns an error that can be passed to Case.Throws to match
// any of the given errors.
func OneOfErrors(errs ...error) error { return errOneOf{errs} }

func (e errOneOf) Error() string { return fmt.Sprint("one of", e.errs) }

func (e errOneOf) matchError(gotError error) bool {
	for _, want := range e.errs {
		if matchErr(want, gotError) {
			return true
		}
	}
	return false
}
