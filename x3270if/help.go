// =============================================================================
// help.go - REPL Help Text
// =============================================================================
//
//   - ".help"         Overview of dot-commands and common actions
//   - ".help <topic>" Detailed help for a dot-command or an action
//
// Topics are looked up case-insensitively, first among the dot-commands
// (with or without the leading dot), then among the emulator actions.
//
// =============================================================================

package main

import (
	"fmt"
	"io"
	"strings"
)

// printHelp writes the overview, or the detailed text for topic.
func printHelp(out, errOut io.Writer, topic string) {
	if topic == "" {
		fmt.Fprint(out, helpOverview)
		return
	}

	key := strings.ToLower(strings.TrimPrefix(topic, "."))
	if text, ok := dotCommandHelp[key]; ok {
		fmt.Fprintln(out, text)
		return
	}
	if text, ok := actionHelp[key]; ok {
		fmt.Fprintln(out, text)
		return
	}

	printError(errOut, fmt.Sprintf("No help for '%s'. Type .help to see available commands.", topic))
}

const helpOverview = `Commands:
  .help [topic]         Show help (or help for a command or action)
  .status               Decode the most recent status line
  .trace                Show the protocol trace of the most recent action
  .quit                 Exit

Anything else is sent to the emulator as an action, for example:
  Connect(host)         Connect to a host (see .help connect)
  Wait(InputField)      Wait until the host is ready for input
  String("text")        Type text at the cursor
  Enter()               Press Enter
  PF(n) / PA(n)         Press a program function or attention key
  Clear() / Tab()       Press Clear or Tab
  MoveCursor(row,col)   Move the cursor (zero-origin)
  Ascii()               Show the screen as text
  Query(keyword)        Ask the emulator about itself
  Disconnect()          Disconnect from the host
`

// dotCommandHelp is keyed by command name without the dot.
var dotCommandHelp = map[string]string{
	"help": `  .help [topic]
    Show the command overview, or detailed help for a topic.
    Examples:
      .help           Show the overview
      .help wait      Show help for the Wait action
      .help .status   Show help for the .status command`,

	"status": `  .status
    Decode the status line of the most recent action: keyboard lock,
    connection and mode, screen model and size, cursor position and how
    long the action took.`,

	"trace": `  .trace
    Show the protocol trace of the most recent action: the request that
    was sent and the reply that came back, or where it went wrong.`,

	"quit": `  .quit
    Exit. An emulator started by this session is stopped; one that was
    already running is left alone.`,
}

// actionHelp is keyed by lower-case action name.
var actionHelp = map[string]string{
	"connect": `  Connect(host)
    Connect to a host. The host string has the form
      [L:][Y:][lu1,lu2@]host[:port][=acceptname]
    L: tunnels the connection through TLS, Y: skips certificate
    validation, LUs are tried in order, port defaults to 23, and
    acceptname overrides the name expected in the host's certificate.
    'x3270if hostspec' builds and checks these strings.
    Examples:
      Connect(mainframe.example.com)
      Connect(L:mainframe.example.com:992)`,

	"disconnect": `  Disconnect()
    Disconnect from the host.`,

	"wait": `  Wait([timeout,]condition)
    Block until a condition is met, or fail after timeout seconds.
    Common conditions: InputField, Output, Unlock, 3270Mode, Disconnect.
    Examples:
      Wait(InputField)
      Wait(10,Output)`,

	"string": `  String(text)
    Type text at the cursor. Quote text that contains spaces, commas or
    parentheses.
    Example:
      String("hello, world")`,

	"enter": `  Enter()
    Press the Enter key, sending the modified fields to the host.`,

	"clear": `  Clear()
    Press the Clear key.`,

	"tab": `  Tab()
    Move the cursor to the next unprotected field.`,

	"pf": `  PF(n)
    Press program function key n (1-24).`,

	"pa": `  PA(n)
    Press program attention key n (1-3).`,

	"movecursor": `  MoveCursor(row,col)
    Move the cursor. Row and column start at 0.`,

	"ascii": `  Ascii([row,col,length])
    Show the screen, or part of it, as text.
    Examples:
      Ascii()
      Ascii(0,0,80)`,

	"query": `  Query([keyword])
    Ask the emulator about itself. Useful keywords: ConnectionState,
    Cursor, Host, LocalEncoding, LuName, Model, ScreenCurSize, Tls.
    With no keyword, everything is listed.`,
}
