// Lintre evaluates programs in the untyped lambda calculus. It runs a script
// given as an argument, or an interactive REPL, and can also serve as a
// language server.
package main

import (
	"os"

	"github.com/junhg0211/lintre/pkg/buildinfo"
	"github.com/junhg0211/lintre/pkg/lsp"
	"github.com/junhg0211/lintre/pkg/prog"
	"github.com/junhg0211/lintre/pkg/shell"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(&buildinfo.Program{}, &lsp.Program{}, &shell.Program{})))
}
