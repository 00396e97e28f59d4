package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pmattes/x3270ifSimple/x3270protocol"
)

// newRunCommand builds the run subcommand, which performs one action.
//
// With one argument containing a parenthesis, the argument is sent as raw
// action text, unchanged. Otherwise the first argument is the action name
// and the rest are its arguments, quoted as needed.
func (c *cli) newRunCommand() *cobra.Command {
	var showTrace, showStatus bool

	cmd := &cobra.Command{
		Use:   "run ACTION [ARGS...]",
		Short: "Run one action and print its output",
		Example: `  x3270if run Query Cursor
  x3270if run String "hello, world"
  x3270if run 'Wait(10,InputField)'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := actionText(args)
			if err != nil {
				return err
			}

			conn, err := openSession(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			defer conn.session.Close()

			stop := setupSignalHandler(func() { conn.session.Close() })
			defer stop()

			reply, err := conn.session.RunRaw(text)
			if showTrace {
				printTrace(c, reply, err)
			}
			if err != nil {
				var actionErr *x3270protocol.ActionError
				if errors.As(err, &actionErr) && actionErr.Detail != "" {
					return errors.New(actionErr.Detail)
				}
				return err
			}

			for _, line := range reply.Lines {
				fmt.Fprintln(c.stdout, line)
			}
			if showStatus {
				fmt.Fprintln(c.stderr, reply.StatusLine)
			}
			return nil
		},
	}
	c.addConnectionFlags(cmd)
	cmd.Flags().BoolVar(&showTrace, "trace", false, "print the protocol trace to stderr")
	cmd.Flags().BoolVar(&showStatus, "status", false, "print the status line to stderr")
	return cmd
}

// actionText turns run's arguments into request text. Raw action text is
// checked for well-formedness and sent as written.
func actionText(args []string) (string, error) {
	if len(args) == 1 && strings.ContainsRune(args[0], '(') {
		if _, err := x3270protocol.ParseAction(args[0]); err != nil {
			return "", err
		}
		return strings.TrimSpace(args[0]), nil
	}
	return x3270protocol.FormatAction(args[0], args[1:]...), nil
}

func printTrace(c *cli, reply *x3270protocol.Reply, err error) {
	var trace []string
	var disconnectErr *x3270protocol.DisconnectError
	switch {
	case reply != nil:
		trace = reply.Trace
	case errors.As(err, &disconnectErr):
		trace = disconnectErr.Trace()
	}
	for _, line := range trace {
		fmt.Fprintln(c.stderr, line)
	}
}
