//go:build !windows

package x3270protocol

const (
	// LineSeparator joins the data lines of a reply.
	LineSeparator = "\n"

	// DefaultEmulatorPath is the emulator StartEmulator launches by default.
	DefaultEmulatorPath = "s3270"

	// maxCommandLine is a conservative bound on the argument list; ARG_MAX
	// is far larger on every supported system.
	maxCommandLine = 131072
)
