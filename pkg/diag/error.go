package diag

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Error represents an error with context that can be showed.
type Error[T ErrorTag] struct {
	Message string
	Context Context
	// Indicates whether the error may be caused by partial input. More
	// formally, this field is true iff there is a string s such that the input
	// appended with s no longer causes this error.
	Partial bool
}

// ErrorTag is used to parameterize [Error] into different concrete types.
type ErrorTag interface {
	ErrorTag() string
}

// RangeError combines error with [Ranger].
type RangeError interface {
	error
	Ranger
}

// Error returns a plain text representation of the error.
func (e *Error[T]) Error() string {
	return errorTag[T]() + ": " + e.errorNoType()
}

func (e *Error[T]) errorNoType() string {
	return e.Context.describeStart() + ": " + e.Message
}

// Range returns the range of the error.
func (e *Error[T]) Range() Ranging {
	return e.Context.Range()
}

// Variables for messages, used in the Show method. Overridden in tests.
var (
	messageStart = "\033[31;1m"
	messageEnd   = "\033[m"
)

// Show shows the error.
func (e *Error[T]) Show(indent string) string {
	return fmt.Sprintf("%s: %s%s%s\n%s%s",
		title(errorTag[T]()), messageStart, e.Message, messageEnd,
		indent+"  ", e.Context.ShowCompact(indent+"  "))
}

func errorTag[T ErrorTag]() string {
	var t T
	return t.ErrorTag()
}

// PackErrors packs multiple instances of [Error] with the same tag into one
// error:
//
//   - If called with no errors, it returns nil.
//
//   - If called with one error, it returns that error itself.
//
//   - If called with more than one [Error], it returns an error that combines
//     all of them. The returned error also implements [Shower], and its Error
//     method only returns the message of the first error.
func PackErrors[T ErrorTag](errs []*Error[T]) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return append(multiError[T](nil), errs...)
	}
}

// UnpackErrors returns the constituent [Error] instances in an error if it is
// built from [PackErrors]. Otherwise it returns nil.
func UnpackErrors[T ErrorTag](err error) []*Error[T] {
	switch err := err.(type) {
	case *Error[T]:
		return []*Error[T]{err}
	case multiError[T]:
		return append([]*Error[T](nil), err...)
	default:
		return nil
	}
}

type multiError[T ErrorTag] []*Error[T]

func (err multiError[T]) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "multiple %ss in %s: ", errorTag[T](), err[0].Context.Name)
	for i, e := range err {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(e.errorNoType())
	}
	return sb.String()
}

func (err multiError[T]) Show(indent string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Multiple %ss in %s:", errorTag[T](), err[0].Context.Name)
	for _, e := range err {
		sb.WriteString("\n" + indent + "  ")
		sb.WriteString(messageStart + e.Message + messageEnd)
		sb.WriteString("\n" + indent + "    ")
		sb.WriteString(e.Context.ShowCompact(indent + "    "))
	}
	return sb.String()
}

func title(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToTitle(r)) + s[n:]
}
