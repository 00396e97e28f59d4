package x3270protocol

import (
	"strconv"
	"strings"
)

// Reply is the decoded answer to one exchange.
type Reply struct {
	// Success is true for the ok prompt and false for the error prompt.
	Success bool

	// Data is the data lines, prefixes removed, joined with LineSeparator.
	Data string

	// Lines holds the same data lines individually.
	Lines []string

	// StatusLine is the emulator's status line for this exchange.
	StatusLine string

	// Trace is the debug trace of the exchange that produced this reply.
	Trace []string
}

// IsOK returns true if the emulator accepted the action.
func (r *Reply) IsOK() bool {
	return r.Success
}

// Status decodes the reply's status line.
func (r *Reply) Status() (Status, error) {
	return ParseStatusLine(r.StatusLine)
}

// KeyboardState is the first field of the status line.
type KeyboardState byte

const (
	KeyboardUnlocked KeyboardState = 'U'
	KeyboardLocked   KeyboardState = 'L'
	KeyboardError    KeyboardState = 'E'
)

// EmulatorMode is the fifth field of the status line.
type EmulatorMode byte

const (
	Mode3270         EmulatorMode = 'I'
	ModeNVTLine      EmulatorMode = 'L'
	ModeNVTCharacter EmulatorMode = 'C'
	ModeUnnegotiated EmulatorMode = 'P'
	ModeNotConnected EmulatorMode = 'N'
)

const statusFieldsCount = 12

// Status is a decoded status line.
type Status struct {
	Keyboard       KeyboardState
	Formatted      bool
	FieldProtected bool
	Connected      bool
	Host           string // Set when Connected
	Mode           EmulatorMode
	Model          int
	Rows           int
	Columns        int
	CursorRow      int
	CursorColumn   int
	WindowID       string
	CommandTime    string // Seconds as text, or "-"
}

// ParseStatusLine decodes the twelve space-separated fields of a status
// line, for example "U F U C(localhost) I 4 24 80 0 0 0x0 -".
func ParseStatusLine(line string) (Status, error) {
	fields := strings.Fields(line)
	if len(fields) != statusFieldsCount {
		return Status{}, newArgumentError("status line", line, "expected 12 fields")
	}

	st := Status{
		Keyboard:       KeyboardState(fields[0][0]),
		Formatted:      fields[1] == "F",
		FieldProtected: fields[2] == "P",
		Mode:           EmulatorMode(fields[4][0]),
		WindowID:       fields[10],
		CommandTime:    fields[11],
	}

	conn := fields[3]
	switch {
	case conn == "N":
	case strings.HasPrefix(conn, "C(") && strings.HasSuffix(conn, ")"):
		st.Connected = true
		st.Host = conn[2 : len(conn)-1]
	default:
		return Status{}, newArgumentError("status line", line, "bad connection state '"+conn+"'")
	}

	numbers := []*int{&st.Model, &st.Rows, &st.Columns, &st.CursorRow, &st.CursorColumn}
	for i, dst := range numbers {
		n, err := strconv.Atoi(fields[5+i])
		if err != nil {
			return Status{}, newArgumentError("status line", line, "bad numeric field '"+fields[5+i]+"'")
		}
		*dst = n
	}
	return st, nil
}
