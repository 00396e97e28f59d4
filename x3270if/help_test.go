package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintHelpOverview(t *testing.T) {
	var out, errOut bytes.Buffer
	printHelp(&out, &errOut, "")

	if out.String() != helpOverview {
		t.Errorf("overview = %q, want helpOverview", out.String())
	}
	if errOut.Len() != 0 {
		t.Errorf("stderr = %q, want empty", errOut.String())
	}
}

func TestPrintHelpTopics(t *testing.T) {
	tests := []struct {
		topic string
		want  string
	}{
		{"help", ".help [topic]"},
		{".help", ".help [topic]"},
		{"status", ".status"},
		{".TRACE", ".trace"},
		{"quit", ".quit"},
		{"connect", "[L:][Y:][lu1,lu2@]host[:port][=acceptname]"},
		{"Connect", "Connect(host)"},
		{"WAIT", "Wait([timeout,]condition)"},
		{"string", `String("hello, world")`},
		{"pf", "PF(n)"},
		{"movecursor", "MoveCursor(row,col)"},
		{"query", "LocalEncoding"},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			var out, errOut bytes.Buffer
			printHelp(&out, &errOut, tt.topic)

			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("help %q = %q, want it to contain %q", tt.topic, out.String(), tt.want)
			}
			if errOut.Len() != 0 {
				t.Errorf("stderr = %q, want empty", errOut.String())
			}
		})
	}
}

func TestPrintHelpUnknownTopic(t *testing.T) {
	var out, errOut bytes.Buffer
	printHelp(&out, &errOut, "Frobnicate")

	if out.Len() != 0 {
		t.Errorf("stdout = %q, want empty", out.String())
	}
	want := "Error: No help for 'Frobnicate'. Type .help to see available commands.\n"
	if errOut.String() != want {
		t.Errorf("stderr = %q, want %q", errOut.String(), want)
	}
}

func TestHelpTopicsAreLowerCase(t *testing.T) {
	for _, m := range []map[string]string{dotCommandHelp, actionHelp} {
		for key := range m {
			if key != strings.ToLower(key) {
				t.Errorf("help key %q is not lower case", key)
			}
		}
	}
}

func TestOverviewMentionsEveryDotCommand(t *testing.T) {
	for key := range dotCommandHelp {
		if !strings.Contains(helpOverview, "."+key) {
			t.Errorf("overview does not mention .%s", key)
		}
	}
}
