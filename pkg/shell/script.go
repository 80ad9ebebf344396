package shell

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/junhg0211/lintre/pkg/diag"
	"github.com/junhg0211/lintre/pkg/eval"
	"github.com/junhg0211/lintre/pkg/parse"
)

// Configuration for the script mode.
type scriptCfg struct {
	Cmd         bool
	CompileOnly bool
	JSON        bool
	Trace       eval.TraceMode
}

// Evaluates a script and prints its value. Returns the exit status.
func script(ev *eval.Evaler, fds [3]*os.File, arg string, cfg *scriptCfg) int {
	var name, code string
	if cfg.Cmd {
		name = "code from -c"
		code = arg
	} else {
		var err error
		name, err = filepath.Abs(arg)
		if err != nil {
			fmt.Fprintf(fds[2],
				"cannot get full path of script %q: %v\n", arg, err)
			return 2
		}
		code, err = readFileUTF8(name)
		if err != nil {
			fmt.Fprintf(fds[2], "cannot read script %q: %v\n", name, err)
			return 2
		}
	}

	src := parse.Source{Name: name, Code: code}
	if cfg.CompileOnly {
		err := ev.Check(src)
		if cfg.JSON {
			fmt.Fprintf(fds[1], "%s\n", errorsToJSON(err))
		} else if err != nil {
			diag.ShowError(fds[2], err)
		}
		if err != nil {
			return 2
		}
		return 0
	}

	v, err := ev.Eval(src, eval.EvalCfg{Trace: cfg.Trace, TraceOut: fds[2]})
	if err != nil {
		diag.ShowError(fds[2], err)
		return 2
	}
	fmt.Fprintln(fds[1], valueString(ev, v))
	return 0
}

var errSourceNotUTF8 = errors.New("source is not UTF-8")

func readFileUTF8(fname string) (string, error) {
	bytes, err := os.ReadFile(fname)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(bytes) {
		return "", errSourceNotUTF8
	}
	return string(bytes), nil
}

// An auxiliary struct for converting errors with diagnostics information to JSON.
type errorInJSON struct {
	FileName string `json:"fileName"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Message  string `json:"message"`
}

// Converts parse errors into JSON.
func errorsToJSON(err error) []byte {
	converted := []errorInJSON{}
	for _, e := range parse.UnpackErrors(err) {
		converted = append(converted,
			errorInJSON{e.Context.Name, e.Context.From, e.Context.To, e.Message})
	}

	jsonError, errMarshal := json.Marshal(converted)
	if errMarshal != nil {
		return []byte(`[{"message":"Unable to convert the errors to JSON"}]`)
	}
	return jsonError
}
