// =============================================================================
// main.go - x3270if Command-Line Entry Point
// =============================================================================
//
// x3270if drives an x3270-family emulator (s3270, ws3270) through its
// scripting port. It can run a single action, host an interactive REPL, or
// help build the strings the emulator's actions expect.
//
// Usage:
//
//	x3270if run Query Cursor              One action, print the reply
//	x3270if run 'String("hello, world")'  Raw action text
//	x3270if repl                          Interactive session
//	x3270if hostspec --host h --tls       Build a Connect() host string
//	x3270if quote "a b" c                 Quote action arguments
//
// Connection strategy, in order:
//   - X3270PORT is set: this program was started by an emulator as a
//     script; attach to it.
//   - --script-port (or script_port in the config file): attach to an emulator
//     already listening on that loopback port.
//   - Otherwise start a new emulator and stop it on exit.
//
// =============================================================================

package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pmattes/x3270ifSimple/internal/config"
	"github.com/pmattes/x3270ifSimple/internal/logging"
)

// =============================================================================
// Version Information
// =============================================================================

const (
	// version is the current version of the CLI.
	version = "0.3.0"

	// appName is the application name.
	appName = "x3270if"

	// copyright is the copyright notice.
	copyright = "Copyright (c) 2026"
)

// fullTitle returns the application name with version.
func fullTitle() string {
	return fmt.Sprintf("%s v%s (Go)", appName, version)
}

// welcomeBanner returns the banner displayed when the REPL starts.
func welcomeBanner() string {
	return fmt.Sprintf(`%s - x3270 scripting client
%s

Type '.help' for available commands.
Type '.quit' to exit.
`, fullTitle(), copyright)
}

// =============================================================================
// Command-Line Flags
// =============================================================================

// globalFlags holds the persistent flags shared by every subcommand, plus
// the connection flags of the commands that talk to an emulator. Flags the
// user sets win over the configuration file.
type globalFlags struct {
	configPath string
	debug      bool
	logLevel   string

	scriptPort int
	host       string
	emulator   string
}

// cli is the state one invocation builds up before running a subcommand.
type cli struct {
	flags globalFlags
	cfg   config.Config

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// newRootCommand builds the command tree. Output goes to stdout and
// stderr so tests can capture it.
func newRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           appName,
		Short:         "Drive an x3270 emulator through its scripting port",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig(cmd)
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate(fullTitle() + "\n")

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.configPath, "config", "", "configuration file (default ~/"+config.FileName+")")
	pf.BoolVar(&c.flags.debug, "debug", false, "log protocol exchanges")
	pf.StringVar(&c.flags.logLevel, "log-level", "", "log level: trace|debug|info|warn|error|off")

	root.AddCommand(c.newRunCommand())
	root.AddCommand(c.newREPLCommand())
	root.AddCommand(newHostSpecCommand())
	root.AddCommand(newQuoteCommand())
	return root
}

// loadConfig reads the configuration file, applies flag overrides and
// configures logging.
func (c *cli) loadConfig(cmd *cobra.Command) error {
	path, optional := c.flags.configPath, false
	if path == "" {
		path, optional = config.DefaultPath(), true
	}
	cfg, err := config.Load(path, optional)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("debug") {
		cfg.Debug = c.flags.debug
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = c.flags.logLevel
	}
	if cmd.Annotations[connectsAnnotation] != "" {
		if flags.Changed("script-port") {
			cfg.ScriptPort = c.flags.scriptPort
		}
		if flags.Changed("host") {
			cfg.Host = c.flags.host
		}
		if flags.Changed("emulator") {
			cfg.EmulatorPath = c.flags.emulator
		}
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	c.cfg = cfg

	logCfg := logging.DefaultConfig(logging.ProfileRuntime)
	if lvl, ok := logging.ParseLevel(cfg.LogLevel); ok {
		logCfg.Level = lvl
	}
	if cfg.Debug {
		logCfg.Level = min(logCfg.Level, zerolog.DebugLevel)
	}
	logCfg.File = cfg.LogFile
	logging.ConfigureWith(logCfg)
	return nil
}

// connectsAnnotation marks commands that talk to an emulator.
const connectsAnnotation = "x3270if/connects"

// addConnectionFlags gives cmd the flags that choose and set up an
// emulator.
func (c *cli) addConnectionFlags(cmd *cobra.Command) {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[connectsAnnotation] = "true"

	flags := cmd.Flags()
	flags.IntVar(&c.flags.scriptPort, "script-port", 0, "attach to an emulator listening on this loopback port")
	flags.StringVar(&c.flags.host, "host", "", "host to connect the emulator to, in Connect() syntax")
	flags.StringVar(&c.flags.emulator, "emulator", "", "emulator executable to start")
}

// =============================================================================
// Output Helpers
// =============================================================================

func printError(w io.Writer, message string) {
	fmt.Fprintf(w, "Error: %s\n", message)
}

// setupSignalHandler runs cleanup when SIGINT or SIGTERM arrives. Closing
// the session unblocks any exchange in progress. The returned function
// stops watching.
func setupSignalHandler(cleanup func()) func() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			cleanup()
		case <-done:
		}
	}()
	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}

func main() {
	root := newRootCommand(os.Stdin, os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		printError(os.Stderr, err.Error())
		os.Exit(1)
	}
}
