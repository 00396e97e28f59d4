// =============================================================================
// lineeditor.go - Line Editor with Dual-Mode Operation
// =============================================================================
//
// The REPL reads action lines through a LineEditor, which picks its input
// method from the kind of input it is given:
//
//   - Interactive (a terminal, not inside Emacs): ergochat/readline with
//     Emacs keybindings, persistent history and Ctrl-R search.
//   - Non-interactive (a pipe, a file, Emacs comint): bufio.Scanner, with
//     the prompt written to the output by hand.
//
// History lives in the file named by history_file in the configuration
// (default ~/.x3270if_history), limited to 500 entries.
//
// =============================================================================

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ergochat/readline"
	"golang.org/x/term"
)

// historySize is the maximum number of history entries to retain.
const historySize = 500

// GO CONCEPT: Interfaces and Structural Typing
// ---------------------------------------------
// readline.Instance and bufio.Scanner read input through different APIs.
// LineEditor hides both behind GetLine and Close, and the REPL depends only
// on the small lineReader interface below, which tests can satisfy with a
// scripted reader. Nothing declares that LineEditor implements lineReader;
// having the methods is enough.

// lineReader is what the REPL needs from its input.
type lineReader interface {
	GetLine(prompt string) (string, error)
}

// LineEditor wraps line editing with dual-mode operation.
type LineEditor struct {
	interactive bool

	// rl is the readline instance, nil in non-interactive mode.
	rl *readline.Instance

	// scanner and promptOut are used in non-interactive mode.
	scanner   *bufio.Scanner
	promptOut io.Writer
}

// NewLineEditor creates a line editor reading from in. Readline is used
// only when in is a terminal and INSIDE_EMACS is not set; prompts for
// other input go to out.
func NewLineEditor(in io.Reader, out io.Writer, historyFile string) *LineEditor {
	f, isFile := in.(*os.File)
	isInteractive := isFile && term.IsTerminal(int(f.Fd())) &&
		os.Getenv("INSIDE_EMACS") == ""

	if !isInteractive {
		return newScannerEditor(in, out)
	}

	rl, err := readline.NewFromConfig(&readline.Config{
		HistoryFile:  historyFile,
		HistoryLimit: historySize,

		// History is saved by hand so blank lines stay out of it.
		DisableAutoSaveHistory: true,

		Prompt: "",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: readline init failed (%v), using basic input\n", err)
		return newScannerEditor(in, out)
	}

	return &LineEditor{
		interactive: true,
		rl:          rl,
	}
}

func newScannerEditor(in io.Reader, out io.Writer) *LineEditor {
	return &LineEditor{
		interactive: false,
		scanner:     bufio.NewScanner(in),
		promptOut:   out,
	}
}

// GetLine displays prompt and reads one line of input. It returns io.EOF
// at end of input or when the user presses Ctrl-D or Ctrl-C.
func (le *LineEditor) GetLine(prompt string) (string, error) {
	if le.interactive {
		return le.getInteractiveLine(prompt)
	}
	return le.getNonInteractiveLine(prompt)
}

func (le *LineEditor) getInteractiveLine(prompt string) (string, error) {
	le.rl.SetPrompt(prompt)

	line, err := le.rl.Readline()
	if err != nil {
		if errors.Is(err, readline.ErrInterrupt) {
			return "", io.EOF
		}
		return "", err
	}

	if trimmed := strings.TrimSpace(line); trimmed != "" {
		le.rl.SaveToHistory(trimmed)
	}
	return line, nil
}

func (le *LineEditor) getNonInteractiveLine(prompt string) (string, error) {
	fmt.Fprint(le.promptOut, prompt)

	if !le.scanner.Scan() {
		if err := le.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return le.scanner.Text(), nil
}

// Close releases the readline instance, if any. It is safe to call more
// than once.
func (le *LineEditor) Close() {
	if le.rl != nil {
		le.rl.Close()
		le.rl = nil
	}
}

// IsInteractive reports whether readline is in use.
func (le *LineEditor) IsInteractive() bool {
	return le.interactive
}
