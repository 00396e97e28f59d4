// Package x3270protocol implements the line-oriented scripting protocol
// spoken by the x3270 family of emulators (s3270, ws3270, wc3270) on their
// script ports.
//
// Protocol Format:
//
//	Request (client -> emulator):  Action(arg1,arg2,...)\n
//	Data lines:                    data: <text>\n
//	Status line:                   <12 space-separated fields>\n
//	Success prompt:                ok\n
//	Failure prompt:                error\n
//
// Example Session:
//
//	CLI: Query(LocalEncoding)
//	EMU: data: UTF-8
//	EMU: U U U N N 4 24 80 0 0 0x0 -
//	EMU: ok
//	CLI: Connect(L:Y:FRED@[1::2]:921)
//	EMU: U F U C(1::2) I 4 24 80 0 0 0x0 0.120
//	EMU: ok
package x3270protocol

import "time"

// Protocol constants.
const (
	// DataPrefix is the prefix the emulator puts on every data line.
	DataPrefix = "data: "

	// OKPrompt terminates a successful reply.
	OKPrompt = "\nok\n"

	// ErrorPrompt terminates a failed reply.
	ErrorPrompt = "\nerror\n"

	// PortEnvVar names the environment variable through which an emulator
	// tells a child script which loopback port to connect to.
	PortEnvVar = "X3270PORT"

	// MinVersion is the oldest emulator version StartEmulator will accept.
	MinVersion = "3.6.5"

	// DefaultPort is the port a host specification uses when none is given.
	DefaultPort = 23

	// readBufferSize is the size of each read from the emulator stream.
	readBufferSize = 1024

	// ConnectionTimeout bounds how long Dial waits for a TCP connection.
	ConnectionTimeout = 5 * time.Second

	// EmulatorStartTimeout is how long StartEmulator waits for a newly
	// launched emulator to start listening on its script port.
	EmulatorStartTimeout = 4 * time.Second

	// emulatorPollInterval is how often StartEmulator probes the script port.
	emulatorPollInterval = 100 * time.Millisecond

	// emulatorExitGrace is how long Close lets an emulator exit on its own
	// after its script connection closes.
	emulatorExitGrace = time.Second
)

// Query keywords understood by the Query() action.
const (
	QueryLocalEncoding = "LocalEncoding"
	QueryCursor        = "Cursor"
)
