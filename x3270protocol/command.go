package x3270protocol

import (
	"strconv"
	"strings"
)

// quotedCharacters force an argument to be quoted. The emulator would
// split on them otherwise.
const quotedCharacters = " ,()"

// Quote prepares an action argument for transmission.
//
// Arguments containing a space, comma or parenthesis, or beginning with a
// double quote, are wrapped in double quotes with embedded double quotes
// escaped as \". A backslash at the end of the quoted content is doubled
// so it cannot be read as escaping the closing quote. Other backslashes
// are sent as they are. The empty string becomes "".
func Quote(parameter string) string {
	if parameter == "" {
		return `""`
	}

	if !strings.ContainsAny(parameter, quotedCharacters) && !strings.HasPrefix(parameter, `"`) {
		return parameter
	}

	content := strings.ReplaceAll(parameter, `"`, `\"`)
	if strings.HasSuffix(content, `\`) {
		content += `\`
	}
	return `"` + content + `"`
}

// FormatAction builds the request text for an action: the name followed
// by the quoted arguments in parentheses.
func FormatAction(name string, args ...string) string {
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteByte('(')
	for i, arg := range args {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(Quote(arg))
	}
	sb.WriteByte(')')
	return sb.String()
}

// Action is a named emulator command with its arguments.
// Use NewAction or the helpers below (NewQueryAction, NewStringAction,
// etc.) to create Action values.
type Action struct {
	Name string
	Args []string
}

// NewAction creates an action with the given arguments.
func NewAction(name string, args ...string) Action {
	return Action{Name: name, Args: args}
}

// Format returns the action formatted for the protocol, without the
// trailing newline.
func (a Action) Format() string {
	return FormatAction(a.Name, a.Args...)
}

// FormatLine returns the action as a complete request line.
func (a Action) FormatLine() string {
	return a.Format() + "\n"
}

// String implements fmt.Stringer.
func (a Action) String() string {
	return a.Format()
}

// Action constructors for the actions scripts use most.

// NewQueryAction creates a Query action. An empty keyword queries
// everything.
func NewQueryAction(keyword string) Action {
	if keyword == "" {
		return Action{Name: "Query"}
	}
	return NewAction("Query", keyword)
}

// NewConnectAction creates a Connect action for an encoded host.
func NewConnectAction(host string) Action {
	return NewAction("Connect", host)
}

// NewConnectHostAction creates a Connect action from a host specification.
func NewConnectHostAction(spec *HostSpecification) Action {
	return NewConnectAction(spec.String())
}

// NewDisconnectAction creates a Disconnect action.
func NewDisconnectAction() Action {
	return Action{Name: "Disconnect"}
}

// NewWaitAction creates a Wait action for a condition such as
// "InputField" or "Output". A timeout of zero or less waits forever.
func NewWaitAction(timeoutSeconds int, condition string) Action {
	if timeoutSeconds <= 0 {
		return NewAction("Wait", condition)
	}
	return NewAction("Wait", strconv.Itoa(timeoutSeconds), condition)
}

// NewStringAction creates a String action, which types text at the cursor.
func NewStringAction(text string) Action {
	return NewAction("String", text)
}

// NewEnterAction creates an Enter action.
func NewEnterAction() Action {
	return Action{Name: "Enter"}
}

// NewClearAction creates a Clear action.
func NewClearAction() Action {
	return Action{Name: "Clear"}
}

// NewTabAction creates a Tab action.
func NewTabAction() Action {
	return Action{Name: "Tab"}
}

// NewPFAction creates a PF action for program function key n.
func NewPFAction(n int) Action {
	return NewAction("PF", strconv.Itoa(n))
}

// NewPAAction creates a PA action for program attention key n.
func NewPAAction(n int) Action {
	return NewAction("PA", strconv.Itoa(n))
}

// NewAsciiAction creates an Ascii action that dumps the whole screen.
func NewAsciiAction() Action {
	return Action{Name: "Ascii"}
}

// NewAsciiRegionAction creates an Ascii action for length characters
// starting at row, col (zero-origin).
func NewAsciiRegionAction(row, col, length int) Action {
	return NewAction("Ascii", strconv.Itoa(row), strconv.Itoa(col), strconv.Itoa(length))
}

// NewMoveCursorAction creates a MoveCursor action (zero-origin).
func NewMoveCursorAction(row, col int) Action {
	return NewAction("MoveCursor", strconv.Itoa(row), strconv.Itoa(col))
}

// NewQuitAction creates a Quit action, which makes the emulator exit.
func NewQuitAction() Action {
	return Action{Name: "Quit"}
}
