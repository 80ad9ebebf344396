package eval

import (
	"bytes"
	"fmt"

	"github.com/junhg0211/lintre/pkg/diag"
)

// Exception is the error returned when evaluation fails.
type Exception struct {
	Reason     error
	StackTrace *StackTrace
}

// StackTrace represents a stack trace as a linked list of diag.Context. The
// head is the innermost frame: the expression that failed, followed by the
// applications that were being reduced, innermost first.
type StackTrace struct {
	Head *diag.Context
	Next *StackTrace
}

// Reason returns the Reason field if err is an *Exception. Otherwise it
// returns err itself.
func Reason(err error) error {
	if exc, ok := err.(*Exception); ok {
		return exc.Reason
	}
	return err
}

// Error returns the message of the cause of the exception.
func (exc *Exception) Error() string { return exc.Reason.Error() }

// Unwrap returns the cause of the exception.
func (exc *Exception) Unwrap() error { return exc.Reason }

// Show shows the exception.
func (exc *Exception) Show(indent string) string {
	buf := new(bytes.Buffer)

	var causeDescription string
	if shower, ok := exc.Reason.(diag.Shower); ok {
		causeDescription = shower.Show(indent)
	} else {
		causeDescription = "\033[31;1m" + exc.Reason.Error() + "\033[m"
	}
	fmt.Fprintf(buf, "Exception: %s", causeDescription)

	if exc.StackTrace != nil {
		buf.WriteString("\n")
		if exc.StackTrace.Next == nil {
			buf.WriteString(exc.StackTrace.Head.ShowCompact(indent))
		} else {
			buf.WriteString(indent + "Traceback:")
			for tb := exc.StackTrace; tb != nil; tb = tb.Next {
				buf.WriteString("\n" + indent + "  ")
				buf.WriteString(tb.Head.Show(indent + "    "))
			}
		}
	}
	return buf.String()
}
