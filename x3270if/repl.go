// =============================================================================
// repl.go - Interactive Read-Eval-Print Loop
// =============================================================================
//
// Each input line is sent to the emulator as raw action text, for example
// `String("hello")` or `Wait(10,InputField)`, and the reply's data lines
// are printed. Lines starting with a dot are handled locally:
//
//	.help [topic]   Show help
//	.status         Decode the most recent status line
//	.trace          Show the protocol trace of the most recent action
//	.quit           Exit
//
// =============================================================================

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pmattes/x3270ifSimple/x3270protocol"
)

// defaultPrompt is shown when the emulator is not connected to a host.
const defaultPrompt = "x3270> "

// prompt returns the REPL prompt for a status line. A connected emulator
// shows its host.
func prompt(statusLine string) string {
	st, err := x3270protocol.ParseStatusLine(statusLine)
	if err != nil || !st.Connected {
		return defaultPrompt
	}
	return "[" + st.Host + "] " + defaultPrompt
}

// repl holds the state of one interactive session.
type repl struct {
	session scriptSession
	in      lineReader
	out     io.Writer
	errOut  io.Writer

	// lastTrace is the protocol trace of the most recent action.
	lastTrace []string
}

// runREPL reads and runs lines until .quit or end of input. It returns an
// error only if the emulator goes away.
func runREPL(s scriptSession, in lineReader, out, errOut io.Writer) error {
	r := &repl{session: s, in: in, out: out, errOut: errOut}

	for {
		line, err := r.in.GetLine(prompt(s.StatusLine()))
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out)
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if quit := r.dotCommand(line); quit {
				return nil
			}
			continue
		}

		if err := r.runAction(line); err != nil {
			return err
		}
	}
}

// dotCommand handles a local command and reports whether the REPL should
// exit.
func (r *repl) dotCommand(line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case ".quit", ".exit":
		return true
	case ".help":
		printHelp(r.out, r.errOut, arg)
	case ".status":
		r.printStatus()
	case ".trace":
		if len(r.lastTrace) == 0 {
			fmt.Fprintln(r.out, "No trace yet; run an action first.")
			break
		}
		for _, t := range r.lastTrace {
			fmt.Fprintln(r.out, t)
		}
	default:
		printError(r.errOut, fmt.Sprintf("Unknown command '%s'. Type .help to see available commands.", name))
	}
	return false
}

// runAction sends one line to the emulator and prints the result. Action
// failures are reported and the loop goes on; a lost connection ends it.
func (r *repl) runAction(line string) error {
	reply, err := r.session.RunRaw(line)
	if reply != nil {
		r.lastTrace = reply.Trace
	}

	var disconnectErr *x3270protocol.DisconnectError
	var actionErr *x3270protocol.ActionError
	switch {
	case err == nil:
		for _, l := range reply.Lines {
			fmt.Fprintln(r.out, l)
		}
	case errors.As(err, &actionErr):
		printError(r.errOut, actionErr.Detail)
	case errors.As(err, &disconnectErr):
		r.lastTrace = disconnectErr.Trace()
		printError(r.errOut, err.Error())
		return err
	default:
		printError(r.errOut, err.Error())
	}
	return nil
}

// printStatus decodes the most recent status line.
func (r *repl) printStatus() {
	line := r.session.StatusLine()
	if line == "" {
		fmt.Fprintln(r.out, "No status yet; run an action first.")
		return
	}
	st, err := x3270protocol.ParseStatusLine(line)
	if err != nil {
		printError(r.errOut, err.Error())
		return
	}
	fmt.Fprint(r.out, formatStatus(st))
}

func formatStatus(st x3270protocol.Status) string {
	var sb strings.Builder

	keyboard := "unlocked"
	switch st.Keyboard {
	case x3270protocol.KeyboardLocked:
		keyboard = "locked"
	case x3270protocol.KeyboardError:
		keyboard = "locked (operator error)"
	}
	fmt.Fprintf(&sb, "Keyboard:   %s\n", keyboard)

	if st.Connected {
		fmt.Fprintf(&sb, "Connected:  %s (%s)\n", st.Host, modeName(st.Mode))
	} else {
		fmt.Fprintf(&sb, "Connected:  no\n")
	}
	formatted := "unformatted"
	if st.Formatted {
		formatted = "formatted"
	}
	fmt.Fprintf(&sb, "Screen:     %s, model %d, %dx%d\n", formatted, st.Model, st.Rows, st.Columns)
	fmt.Fprintf(&sb, "Cursor:     row %d, column %d\n", st.CursorRow, st.CursorColumn)
	if st.CommandTime != "-" {
		fmt.Fprintf(&sb, "Last time:  %ss\n", st.CommandTime)
	}
	return sb.String()
}

func modeName(m x3270protocol.EmulatorMode) string {
	switch m {
	case x3270protocol.Mode3270:
		return "3270 mode"
	case x3270protocol.ModeNVTLine:
		return "NVT line mode"
	case x3270protocol.ModeNVTCharacter:
		return "NVT character mode"
	case x3270protocol.ModeUnnegotiated:
		return "negotiating"
	default:
		return "not connected"
	}
}

// newREPLCommand builds the repl subcommand.
func (c *cli) newREPLCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Run actions interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := openSession(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			defer conn.session.Close()

			// The line editor may be blocked reading input, so an interrupt
			// ends the process once the emulator is released.
			stop := setupSignalHandler(func() {
				conn.session.Close()
				os.Exit(130)
			})
			defer stop()

			fmt.Fprint(c.stdout, welcomeBanner())
			fmt.Fprintf(c.stdout, "Connected to emulator via %s\n\n", conn.how)

			editor := NewLineEditor(c.stdin, c.stdout, c.cfg.HistoryFile)
			defer editor.Close()
			return runREPL(conn.session, editor, c.stdout, c.stderr)
		},
	}
	c.addConnectionFlags(cmd)
	return cmd
}
