package parse

import (
	"bytes"
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/junhg0211/lintre/pkg/diag"
)

// parser maintains some mutable states of parsing.
//
// NOTE: The src member is assumed to be valid UF-8.
type parser struct {
	srcName string
	src     string
	pos     int
	errors  []*Error
}

// Error is a parse error.
type Error = diag.Error[ErrorTag]

// ErrorTag parameterizes [diag.Error] to define [Error].
type ErrorTag struct{}

func (ErrorTag) ErrorTag() string { return "parse error" }

// Tells the parser that parsing is done.
func (ps *parser) done() {
	if ps.pos != len(ps.src) {
		r, _ := utf8.DecodeRuneInString(ps.src[ps.pos:])
		ps.error(fmt.Errorf("unexpected rune %q", r))
	}
}

const eof rune = -1

func (ps *parser) peek() rune {
	if ps.pos == len(ps.src) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(ps.src[ps.pos:])
	return r
}

func (ps *parser) next() rune {
	if ps.pos == len(ps.src) {
		return eof
	}
	r, s := utf8.DecodeRuneInString(ps.src[ps.pos:])
	ps.pos += s
	return r
}

// word consumes a run of word runes and returns it.
func (ps *parser) word() string {
	begin := ps.pos
	for isWordRune(ps.peek()) {
		ps.next()
	}
	return ps.src[begin:ps.pos]
}

// skipSpaces consumes whitespace and comments.
func (ps *parser) skipSpaces() {
	for {
		r := ps.peek()
		if r == '#' {
			for r != '\n' && r != eof {
				ps.next()
				r = ps.peek()
			}
		} else if unicode.IsSpace(r) {
			ps.next()
		} else {
			return
		}
	}
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (ps *parser) errorp(r diag.Ranger, e error) {
	err := &Error{
		Message: e.Error(),
		Context: *diag.NewContext(ps.srcName, ps.src, r),
		Partial: r.Range().From == len(ps.src),
	}
	ps.errors = append(ps.errors, err)
}

func (ps *parser) error(e error) {
	end := ps.pos
	if end < len(ps.src) {
		_, s := utf8.DecodeRuneInString(ps.src[ps.pos:])
		end += s
	}
	ps.errorp(diag.Ranging{From: ps.pos, To: end}, e)
}

// UnpackErrors returns the constituent parse errors if the given error contains
// one or more parse errors. Otherwise it returns nil.
func UnpackErrors(e error) []*Error {
	if errs := diag.UnpackErrors[ErrorTag](e); len(errs) > 0 {
		return errs
	}
	return nil
}

// IsPartial reports whether err consists only of parse errors that may be
// fixed by appending more text to the source.
func IsPartial(err error) bool {
	errs := UnpackErrors(err)
	if len(errs) == 0 {
		return false
	}
	for _, e := range errs {
		if !e.Partial {
			return false
		}
	}
	return true
}

func newError(text string, shouldbe ...string) error {
	if len(shouldbe) == 0 {
		return errors.New(text)
	}
	var buf bytes.Buffer
	if len(text) > 0 {
		buf.WriteString(text + ", ")
	}
	buf.WriteString("should be " + shouldbe[0])
	for i, opt := range shouldbe[1:] {
		if i == len(shouldbe)-2 {
			buf.WriteString(" or ")
		} else {
			buf.WriteString(", ")
		}
		buf.WriteString(opt)
	}
	return errors.New(buf.String())
}
