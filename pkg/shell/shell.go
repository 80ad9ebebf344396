// Package shell is the entry point for the command-line interface of lintre:
// the script mode and the interactive REPL.
package shell

import (
	"fmt"
	"os"

	"github.com/junhg0211/lintre/pkg/eval"
	"github.com/junhg0211/lintre/pkg/logutil"
	"github.com/junhg0211/lintre/pkg/prog"
	"github.com/junhg0211/lintre/pkg/store"
)

var logger = logutil.GetLogger("[shell] ")

// Program is the shell subprogram. It is always run if reached.
type Program struct {
	codeInArg   bool
	compileOnly bool
	configPath  string

	// Flags overriding the config file. Zero values mean "not set".
	strategy     string
	trace        string
	maxSteps     int
	noCycleCheck bool

	json *bool
	db   *string
}

func (p *Program) RegisterFlags(fs *prog.FlagSet) {
	fs.BoolVar(&p.codeInArg, "c", false,
		"Take the first argument as code to evaluate")
	fs.BoolVar(&p.compileOnly, "compileonly", false,
		"Parse the script without evaluating it")
	fs.StringVar(&p.configPath, "config", "",
		"Path to the config file; defaults to $XDG_CONFIG_HOME/lintre/config.yaml")

	fs.StringVar(&p.strategy, "strategy", "",
		"How arguments are bound to parameters: env or subst")
	fs.StringVar(&p.trace, "trace", "",
		"Which reductions to trace: none, last or all")
	fs.IntVar(&p.maxSteps, "max-steps", 0,
		fmt.Sprintf("Maximal number of reductions per evaluation (default %d). "+
			"Evaluation recurses on the stack, so very large values together with "+
			"-no-cycle-check can crash the program with a stack overflow", eval.DefaultMaxSteps))
	fs.BoolVar(&p.noCycleCheck, "no-cycle-check", false,
		"Disable detection of reduction cycles")

	p.json = fs.JSON()
	p.db = fs.DB()
}

func (p *Program) Run(fds [3]*os.File, args []string) error {
	cfg, err := p.loadConfig()
	if err != nil {
		return err
	}
	ev := eval.NewEvaler()
	trace, err := cfg.Apply(ev)
	if err != nil {
		return prog.BadUsage(err.Error())
	}

	if len(args) > 0 {
		if len(args) > 1 {
			return prog.BadUsage("only one script or code argument is allowed")
		}
		exit := script(ev, fds, args[0], &scriptCfg{
			Cmd: p.codeInArg, CompileOnly: p.compileOnly, JSON: *p.json,
			Trace: trace})
		return prog.Exit(exit)
	}
	if p.codeInArg {
		return prog.BadUsage("-c requires an argument")
	}

	st := p.openStore(fds[2])
	if st != nil {
		defer st.Close()
	}
	Interact(fds, &InteractConfig{Evaler: ev, Trace: trace, Store: st})
	return nil
}

// Loads the config file, and overrides its values with those from the
// command-line flags.
func (p *Program) loadConfig() (*Config, error) {
	path := p.configPath
	if path == "" {
		defaultPath, err := ConfigPath()
		if err != nil {
			logger.Println("cannot determine config path:", err)
		}
		path = defaultPath
	}
	var cfg *Config
	if path == "" {
		cfg = &Config{}
	} else {
		var err error
		cfg, err = LoadConfig(path, p.configPath != "")
		if err != nil {
			return nil, err
		}
	}

	if p.strategy != "" {
		cfg.Strategy = p.strategy
	}
	if p.trace != "" {
		cfg.Trace = p.trace
	}
	if p.maxSteps != 0 {
		cfg.MaxSteps = p.maxSteps
	}
	if p.noCycleCheck {
		no := false
		cfg.CycleCheck = &no
	}
	return cfg, nil
}

// Opens the history database. Failures are not fatal, since the REPL works
// without history.
func (p *Program) openStore(stderr *os.File) store.DBStore {
	path := *p.db
	if path == "" {
		var err error
		path, err = DBPath()
		if err != nil {
			fmt.Fprintln(stderr, "Warning:", err)
			fmt.Fprintln(stderr, "History will not be saved.")
			return nil
		}
	}
	st, err := store.NewStore(path)
	if err != nil {
		fmt.Fprintln(stderr, "Warning:", err)
		fmt.Fprintln(stderr, "History will not be saved.")
		return nil
	}
	return st
}

// Returns how a value is shown: the name it is bound to in the global
// environment if there is one, and its source representation otherwise.
func valueString(ev *eval.Evaler, v eval.Value) string {
	if name, ok := ev.Global.NameOf(v); ok {
		return name
	}
	return eval.Repr(v)
}
