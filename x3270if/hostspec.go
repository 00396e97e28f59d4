package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pmattes/x3270ifSimple/x3270protocol"
)

// hostSpecFlags are the fields of a host specification as flags.
type hostSpecFlags struct {
	host     string
	port     int
	tls      bool
	noVerify bool
	lus      []string
	accept   string
	parse    string
}

// newHostSpecCommand builds the hostspec subcommand, which encodes a host
// specification from flags or decodes one with --parse.
func newHostSpecCommand() *cobra.Command {
	var f hostSpecFlags

	cmd := &cobra.Command{
		Use:   "hostspec",
		Short: "Build or decode a Connect() host string",
		Example: `  x3270if hostspec --host mainframe --port 992 --tls
  x3270if hostspec --host 1::2 --lu FRED --lu BOB
  x3270if hostspec --parse 'L:Y:FRED,BOB@[1::2]:921=blimey.farfle.net'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if cmd.Flags().Changed("parse") {
				spec, err := x3270protocol.ParseHostSpecification(f.parse)
				if err != nil {
					return err
				}
				fmt.Fprint(out, describeHostSpec(spec))
				return nil
			}

			spec, err := buildHostSpec(cmd, f)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, spec)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.host, "host", "", "host name or address")
	flags.IntVar(&f.port, "port", x3270protocol.DefaultPort, "TCP port")
	flags.BoolVar(&f.tls, "tls", false, "tunnel the connection through TLS")
	flags.BoolVar(&f.noVerify, "no-verify", false, "do not validate the host's certificate")
	flags.StringArrayVar(&f.lus, "lu", nil, "logical unit name (repeatable, tried in order)")
	flags.StringVar(&f.accept, "accept", "", "name to accept in the host's certificate")
	flags.StringVar(&f.parse, "parse", "", "decode this host string instead")
	cmd.MarkFlagsMutuallyExclusive("parse", "host")
	cmd.MarkFlagsOneRequired("parse", "host")
	return cmd
}

func buildHostSpec(cmd *cobra.Command, f hostSpecFlags) (*x3270protocol.HostSpecification, error) {
	spec, err := x3270protocol.NewHostSpecification(f.host)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("port") {
		if err := spec.SetPort(f.port); err != nil {
			return nil, err
		}
	}
	spec.SetTLSTunnel(f.tls)
	spec.SetValidateHostCertificate(!f.noVerify)
	if err := spec.SetLogicalUnits(f.lus); err != nil {
		return nil, err
	}
	if f.accept != "" {
		if err := spec.SetAcceptName(f.accept); err != nil {
			return nil, err
		}
	}
	return spec, nil
}

func describeHostSpec(spec *x3270protocol.HostSpecification) string {
	accept := spec.AcceptName()
	if accept == "" {
		accept = "(host name)"
	}
	lus := "(any)"
	if l := spec.LogicalUnits(); len(l) > 0 {
		lus = fmt.Sprint(l)
	}
	return fmt.Sprintf(`Host:        %s
Port:        %d
TLS tunnel:  %t
Verify cert: %t
LUs:         %s
Accept name: %s
Encoded:     %s
`, spec.HostName(), spec.Port(), spec.TLSTunnel(), spec.ValidateHostCertificate(), lus, accept, spec)
}

// newQuoteCommand builds the quote subcommand, which prints each argument
// as it would be sent in an action.
func newQuoteCommand() *cobra.Command {
	var action string

	cmd := &cobra.Command{
		Use:   "quote ARGS...",
		Short: "Quote arguments for action text",
		Example: `  x3270if quote "hello, world"
  x3270if quote --action String "hello, world"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if action != "" {
				fmt.Fprintln(out, x3270protocol.FormatAction(action, args...))
				return nil
			}
			for _, arg := range args {
				fmt.Fprintln(out, x3270protocol.Quote(arg))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&action, "action", "", "print a complete action with this name")
	return cmd
}
