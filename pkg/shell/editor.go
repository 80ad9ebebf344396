package shell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/junhg0211/lintre/pkg/parse"
	"github.com/junhg0211/lintre/pkg/strutil"
)

const (
	prompt             = "λ> "
	continuationPrompt = ".. "
)

// A line-based reader for the REPL. It reads more lines while the code read
// so far is incomplete.
type lineReader struct {
	in  *bufio.Reader
	out io.Writer
	// Whether to write prompts.
	prompt bool
}

func newLineReader(in, out *os.File, prompt bool) *lineReader {
	return &lineReader{bufio.NewReader(in), out, prompt}
}

// ReadCode reads one unit of code. It returns io.EOF along with the last
// piece of code if the input ends.
func (ed *lineReader) ReadCode() (string, error) {
	var sb strings.Builder
	for {
		if ed.prompt {
			if sb.Len() == 0 {
				fmt.Fprint(ed.out, prompt)
			} else {
				fmt.Fprint(ed.out, continuationPrompt)
			}
		}
		line, err := ed.in.ReadString('\n')
		sb.WriteString(line)
		code := strutil.ChopLineEnding(sb.String())
		if err != nil {
			if ed.prompt && err == io.EOF {
				// End the prompt line.
				fmt.Fprintln(ed.out)
			}
			return code, err
		}
		if !incomplete(code) {
			return code, nil
		}
	}
}

func incomplete(code string) bool {
	_, err := parse.Parse(parse.Source{Name: "[interactive]", Code: code})
	return parse.IsPartial(err)
}
