package shell

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/junhg0211/lintre/pkg/diag"
	"github.com/junhg0211/lintre/pkg/eval"
	"github.com/junhg0211/lintre/pkg/parse"
	"github.com/junhg0211/lintre/pkg/store/storedefs"
	"github.com/junhg0211/lintre/pkg/sys"
)

// InteractConfig keeps configuration for the interactive mode.
type InteractConfig struct {
	Evaler *eval.Evaler
	Trace  eval.TraceMode
	// Store keeps the command history. If nil, history is not saved.
	Store storedefs.Store
}

// Interact runs an interactive session. Each unit of code read is evaluated
// in the global environment of the Evaler, so definitions persist between
// them. Prompts are only written when stdin is a terminal.
func Interact(fds [3]*os.File, cfg *InteractConfig) {
	ev := cfg.Evaler
	if ev == nil {
		ev = eval.NewEvaler()
	}
	r := &repl{fds, ev, cfg.Trace, cfg.Store, 0}
	ed := newLineReader(fds[0], fds[2], sys.IsATTY(fds[0].Fd()))

	for {
		code, err := ed.ReadCode()
		if err != nil && err != io.EOF {
			fmt.Fprintln(fds[2], "cannot read input:", err)
			return
		}
		r.handle(code)
		if err == io.EOF {
			return
		}
	}
}

type repl struct {
	fds    [3]*os.File
	ev     *eval.Evaler
	trace  eval.TraceMode
	store  storedefs.Store
	cmdNum int
}

func (r *repl) handle(code string) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return
	}
	if strings.HasPrefix(trimmed, ":") {
		r.command(strings.Fields(trimmed[1:]))
		return
	}
	r.addHistory(code)
	r.eval(code)
}

func (r *repl) eval(code string) {
	r.cmdNum++
	src := parse.Source{Name: fmt.Sprintf("[tty %v]", r.cmdNum), Code: code}
	v, err := r.ev.Eval(src, eval.EvalCfg{Trace: r.trace, TraceOut: r.fds[2]})
	if err != nil {
		diag.ShowError(r.fds[2], err)
		return
	}
	fmt.Fprintln(r.fds[1], valueString(r.ev, v))
}

func (r *repl) addHistory(code string) {
	if r.store == nil {
		return
	}
	if _, err := r.store.AddCmd(code); err != nil {
		logger.Println("failed to add command to history:", err)
	}
}

const replHelp = `:env              list global definitions
:history [n]      list the last n commands in history, or all of them
:redo seq|prefix  evaluate a command from history again
:help             show this help`

func (r *repl) command(fields []string) {
	if len(fields) == 0 {
		diag.Complain(r.fds[2], "missing command after ':'")
		return
	}
	name, args := fields[0], fields[1:]
	switch name {
	case "env":
		for _, name := range r.ev.Global.Names() {
			v, _ := r.ev.Global.Index(name)
			fmt.Fprintf(r.fds[1], "%s = %s\n", name, eval.Repr(v))
		}
	case "history":
		r.history(args)
	case "redo":
		r.redo(args)
	case "help":
		fmt.Fprintln(r.fds[1], replHelp)
	default:
		diag.Complainf(r.fds[2], "unknown command :%s, try :help", name)
	}
}

func (r *repl) history(args []string) {
	if r.store == nil {
		diag.Complain(r.fds[2], "history is not available")
		return
	}
	end, err := r.store.NextCmdSeq()
	if err != nil {
		diag.ShowError(r.fds[2], err)
		return
	}
	start := 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			diag.Complainf(r.fds[2], "invalid number of commands: %s", args[0])
			return
		}
		start = max(end-n, 0)
	}
	cmds, err := r.store.CmdsWithSeq(start, end)
	if err != nil {
		diag.ShowError(r.fds[2], err)
		return
	}
	for _, cmd := range cmds {
		fmt.Fprintf(r.fds[1], "%5d  %s\n", cmd.Seq, cmd.Text)
	}
}

func (r *repl) redo(args []string) {
	if r.store == nil {
		diag.Complain(r.fds[2], "history is not available")
		return
	}
	var code string
	var err error
	if len(args) == 0 {
		code, err = r.prevCmd("")
	} else if seq, convErr := strconv.Atoi(args[0]); convErr == nil {
		code, err = r.store.Cmd(seq)
	} else {
		code, err = r.prevCmd(strings.Join(args, " "))
	}
	if err != nil {
		diag.ShowError(r.fds[2], err)
		return
	}
	fmt.Fprintln(r.fds[2], code)
	r.addHistory(code)
	r.eval(code)
}

func (r *repl) prevCmd(prefix string) (string, error) {
	upto, err := r.store.NextCmdSeq()
	if err != nil {
		return "", err
	}
	cmd, err := r.store.PrevCmd(upto, prefix)
	return cmd.Text, err
}
