package diag

import (
	"strings"
	"testing"
)

var contextTests = []struct {
	Name    string
	Context *Context
	Indent  string

	WantShow        string
	WantShowCompact string
}{
	{
		Name:    "single-line culprit",
		Context: contextInParen("[test]", "f (bad)"),
		Indent:  "_",

		WantShow: lines(
			"[test]:1:3:",
			"_f <(bad)>",
		),
		WantShowCompact: "[test]:1:3: f <(bad)>",
	},
	{
		Name:    "multi-line culprit",
		Context: contextInParen("[test]", "f (bad\nbad)\nmore"),
		Indent:  "_",

		WantShow: lines(
			"[test]:1:3-2:",
			"_f <(bad>",
			"_<bad)>",
		),
		WantShowCompact: lines(
			"[test]:1:3-2: f <(bad>",
			"_              <bad)>",
		),
	},
	{
		Name: "trailing newline in culprit is removed",
		//                             0123456 7
		Context: NewContext("[test]", "f bad\n", Ranging{2, 6}),
		Indent:  "_",

		WantShow: lines(
			"[test]:1:3:",
			"_f <bad>",
		),
		WantShowCompact: "[test]:1:3: f <bad>",
	},
	{
		Name: "empty culprit",
		//                             012
		Context: NewContext("[test]", "f x", Ranging{2, 2}),

		WantShow: lines(
			"[test]:1:3:",
			"f <^>x",
		),
		WantShowCompact: "[test]:1:3: f <^>x",
	},
	{
		Name:            "unknown culprit range",
		Context:         NewContext("[test]", "f", Ranging{-1, -1}),
		WantShow:        "[test], unknown position",
		WantShowCompact: "[test], unknown position",
	},
	{
		Name:            "invalid culprit range",
		Context:         NewContext("[test]", "f x", Ranging{2, 1}),
		WantShow:        "[test], invalid position 2-1",
		WantShowCompact: "[test], invalid position 2-1",
	},
}

func TestContext(t *testing.T) {
	setCulpritMarkers(t, "<", ">")
	for _, test := range contextTests {
		t.Run(test.Name, func(t *testing.T) {
			gotShow := test.Context.Show(test.Indent)
			if gotShow != test.WantShow {
				t.Errorf("Show() -> %q, want %q", gotShow, test.WantShow)
			}
			gotShowCompact := test.Context.ShowCompact(test.Indent)
			if gotShowCompact != test.WantShowCompact {
				t.Errorf("ShowCompact() -> %q, want %q",
					gotShowCompact, test.WantShowCompact)
			}
		})
	}
}

func lines(lines ...string) string {
	return strings.Join(lines, "\n")
}
