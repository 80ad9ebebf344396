// Package storetest keeps test suites against storedefs.Store.
package storetest

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/junhg0211/lintre/pkg/store/storedefs"
)

var (
	cmds     = []string{"f = L x. x", "f f", "k = L x y. x", "f k"}
	wantSeqs = []int{1, 2, 3, 4}
)

// TestCmd tests the command history functionality of a Store. The Store must
// be empty.
func TestCmd(t *testing.T, store storedefs.Store) {
	t.Helper()

	startSeq, err := store.NextCmdSeq()
	if startSeq != 1 || err != nil {
		t.Errorf("store.NextCmdSeq() => (%v, %v), want (1, nil)", startSeq, err)
	}

	// AddCmd
	for i, cmd := range cmds {
		seq, err := store.AddCmd(cmd)
		if seq != wantSeqs[i] || err != nil {
			t.Errorf("store.AddCmd(%v) => (%v, %v), want (%v, nil)",
				cmd, seq, err, wantSeqs[i])
		}
	}

	endSeq, err := store.NextCmdSeq()
	wantedEndSeq := startSeq + len(cmds)
	if endSeq != wantedEndSeq || err != nil {
		t.Errorf("store.NextCmdSeq() => (%v, %v), want (%v, nil)",
			endSeq, err, wantedEndSeq)
	}

	// CmdsWithSeq
	wantCmdWithSeqs := make([]storedefs.Cmd, len(cmds))
	for i, cmd := range cmds {
		wantCmdWithSeqs[i] = storedefs.Cmd{Text: cmd, Seq: i + 1}
	}
	for i := 0; i < 4; i++ {
		for j := i; j < 4; j++ {
			cmdWithSeqs, err := store.CmdsWithSeq(i+1, j+1)
			if !matchCmds(cmdWithSeqs, wantCmdWithSeqs[i:j]) || err != nil {
				t.Errorf("store.CmdsWithSeq(%v, %v) -> (%v, %v), want (%v, nil)",
					i+1, j+1, cmdWithSeqs, err, wantCmdWithSeqs[i:j])
			}
		}
	}

	// Cmd
	for i, wantCmd := range cmds {
		cmd, err := store.Cmd(i + 1)
		if cmd != wantCmd || err != nil {
			t.Errorf("store.Cmd(%v) => (%v, %v), want (%v, nil)",
				i+1, cmd, err, wantCmd)
		}
	}
	if _, err := store.Cmd(len(cmds) + 1); err != storedefs.ErrNoMatchingCmd {
		t.Errorf("store.Cmd of a missing entry => %v, want ErrNoMatchingCmd", err)
	}

	// PrevCmd
	prevCmdTests := []struct {
		upto    int
		prefix  string
		wantCmd storedefs.Cmd
		wantErr error
	}{
		{5, "f", storedefs.Cmd{Text: "f k", Seq: 4}, nil},
		{4, "f", storedefs.Cmd{Text: "f f", Seq: 2}, nil},
		{10, "k ", storedefs.Cmd{Text: "k = L x y. x", Seq: 3}, nil},
		{3, "", storedefs.Cmd{Text: "f f", Seq: 2}, nil},
		{2, "k", storedefs.Cmd{}, storedefs.ErrNoMatchingCmd},
		{1, "", storedefs.Cmd{}, storedefs.ErrNoMatchingCmd},
	}
	for _, tc := range prevCmdTests {
		cmd, err := store.PrevCmd(tc.upto, tc.prefix)
		if cmd != tc.wantCmd || !matchErr(err, tc.wantErr) {
			t.Errorf("store.PrevCmd(%v, %q) => (%v, %v), want (%v, %v)",
				tc.upto, tc.prefix, cmd, err, tc.wantCmd, tc.wantErr)
		}
	}
}

func matchCmds(got, want []storedefs.Cmd) bool {
	return len(got) == 0 && len(want) == 0 || cmp.Equal(got, want)
}

func matchErr(e1, e2 error) bool {
	return (e1 == nil && e2 == nil) || (e1 != nil && e2 != nil && e1.Error() == e2.Error())
}
