//go:build windows

package x3270protocol

const (
	// LineSeparator joins the data lines of a reply.
	LineSeparator = "\r\n"

	// DefaultEmulatorPath is the emulator StartEmulator launches by default.
	DefaultEmulatorPath = "ws3270.exe"

	// maxCommandLine is the longest command line CreateProcess accepts.
	maxCommandLine = 32699
)
