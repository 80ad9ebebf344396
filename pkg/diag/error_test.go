package diag

import (
	"errors"
	"testing"
)

type testErrorTag struct{}

func (testErrorTag) ErrorTag() string { return "some error" }

func TestError(t *testing.T) {
	setCulpritMarkers(t, "<", ">")
	setMessageMarkers(t, "{", "}")

	err := &Error[testErrorTag]{
		Message: "bad application",
		Context: *contextInParen("[test]", "x = (f a)"),
	}

	wantErrorString := "some error: [test]:1:5: bad application"
	if gotErrorString := err.Error(); gotErrorString != wantErrorString {
		t.Errorf("Error() -> %q, want %q", gotErrorString, wantErrorString)
	}

	wantRanging := Ranging{From: 4, To: 9}
	if gotRanging := err.Range(); gotRanging != wantRanging {
		t.Errorf("Range() -> %v, want %v", gotRanging, wantRanging)
	}

	// Tag is capitalized in return value of Show
	wantShow := dedent(`
		Some error: {bad application}
		  [test]:1:5: x = <(f a)>`)
	if gotShow := err.Show(""); gotShow != wantShow {
		t.Errorf("Show() -> %q, want %q", gotShow, wantShow)
	}
}

func TestPackAndUnpackErrors(t *testing.T) {
	setCulpritMarkers(t, "<", ">")
	setMessageMarkers(t, "{", "}")

	if err := PackErrors[testErrorTag](nil); err != nil {
		t.Errorf("PackErrors(nil) -> %v, want nil", err)
	}

	e1 := &Error[testErrorTag]{
		Message: "bad 1", Context: *NewContext("a.lc", "ab", Ranging{0, 1})}
	e2 := &Error[testErrorTag]{
		Message: "bad 2", Context: *NewContext("a.lc", "ab", Ranging{1, 2})}

	if err := PackErrors([]*Error[testErrorTag]{e1}); err != error(e1) {
		t.Errorf("PackErrors with one error -> %v, want the error itself", err)
	}

	packed := PackErrors([]*Error[testErrorTag]{e1, e2})
	wantErrorString := "multiple some errors in a.lc: a.lc:1:1: bad 1; a.lc:1:2: bad 2"
	if packed.Error() != wantErrorString {
		t.Errorf("Error() -> %q, want %q", packed.Error(), wantErrorString)
	}
	wantShow := dedent(`
		Multiple some errors in a.lc:
		  {bad 1}
		    a.lc:1:1: <a>b
		  {bad 2}
		    a.lc:1:2: a<b>`)
	if gotShow := packed.(Shower).Show(""); gotShow != wantShow {
		t.Errorf("Show() -> %q, want %q", gotShow, wantShow)
	}

	unpacked := UnpackErrors[testErrorTag](packed)
	if len(unpacked) != 2 || unpacked[0] != e1 || unpacked[1] != e2 {
		t.Errorf("UnpackErrors -> %v, want [e1 e2]", unpacked)
	}
	if got := UnpackErrors[testErrorTag](errors.New("plain")); got != nil {
		t.Errorf("UnpackErrors(plain error) -> %v, want nil", got)
	}
}
