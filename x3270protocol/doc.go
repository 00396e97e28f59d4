// Package x3270protocol is a Go client for the scripting interface of the
// x3270 family of 3270 terminal emulators.
//
// It does not emulate a terminal. It launches or attaches to an emulator,
// sends it actions over the script port, and decodes the framed replies.
//
// # Protocol Overview
//
// Each request is one line naming an action and its arguments:
//
//	Request:        Action(arg1,arg2,...)\n
//	Reply:          data: <line>\n        (zero or more)
//	                <status line>\n
//	                ok\n  or  error\n
//
// Arguments are quoted by Quote when they contain a space, comma or
// parenthesis, or start with a double quote.
//
// # Basic Usage
//
// Start a private emulator and drive it:
//
//	emu, err := x3270protocol.StartEmulator(ctx, x3270protocol.EmulatorOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer emu.Close()
//
//	host, _ := x3270protocol.NewHostSpecification("mainframe.example.com")
//	if _, err := emu.ExecuteAction(x3270protocol.NewConnectHostAction(host)); err != nil {
//	    log.Fatal(err)
//	}
//	reply, err := emu.Execute("Ascii")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(reply.Data)
//
// A program started by an emulator's Script() action attaches to it
// instead:
//
//	session, err := x3270protocol.AttachWorker(ctx)
//
// # Host Specifications
//
// HostSpecification builds the host argument of Connect() from its parts:
//
//	h, _ := x3270protocol.NewHostSpecification("1::2")
//	h.SetPort(921)
//	h.SetTLSTunnel(true)
//	h.SetValidateHostCertificate(false)
//	h.SetLogicalUnits([]string{"FRED", "BOB"})
//	h.SetAcceptName("blimey.farfle.net")
//	h.String() // "L:Y:FRED,BOB@[1::2]:921=blimey.farfle.net"
//
// # Errors
//
// Failures wrap one of four sentinels: ErrInvalidArgument (bad input, no
// I/O done), ErrInvalidState (no stream, or misuse), ErrActionFailed (the
// emulator answered with the error prompt; see *ActionError) and
// ErrDisconnected (the stream failed; see *DisconnectError). Both typed
// errors carry the debug trace of the failed exchange.
//
// # Thread Safety
//
// A Session serializes its exchanges and is safe for use from multiple
// goroutines. Close may be called at any time to abort a blocked exchange.
package x3270protocol
