package logutil

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/junhg0211/lintre/pkg/must"
	"github.com/junhg0211/lintre/pkg/testutil"
)

func TestLogger(t *testing.T) {
	logger := GetLogger("foo ")

	r, w := must.Pipe()
	SetOutput(w)
	logger.Println("out 1")
	w.Close()
	wantOut1 := "foo out 1\n"
	if out := must.OK1(io.ReadAll(r)); !strings.HasSuffix(string(out), wantOut1) {
		t.Errorf("got out %q, want one ending in %q", out, wantOut1)
	}

	logPath := filepath.Join(testutil.TempDir(t), "log")
	must.OK(SetOutputFile(logPath))
	logger.Println("out 2")
	wantOut2 := "foo out 2\n"
	if out := must.ReadFileString(logPath); !strings.HasSuffix(out, wantOut2) {
		t.Errorf("got out %q, want one ending in %q", out, wantOut2)
	}

	must.OK(SetOutputFile(""))
	logger.Println("out 3")
	if out := must.ReadFileString(logPath); strings.Contains(out, "out 3") {
		t.Errorf("got out %q, want no out 3", out)
	}
}
