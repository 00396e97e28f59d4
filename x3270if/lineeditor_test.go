package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
)

func TestLineEditorReaderIsNonInteractive(t *testing.T) {
	le := NewLineEditor(strings.NewReader(""), io.Discard, "")
	defer le.Close()

	if le.IsInteractive() {
		t.Error("IsInteractive() = true for a strings.Reader")
	}
}

func TestLineEditorPipeIsNonInteractive(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	defer r.Close()
	defer w.Close()

	le := NewLineEditor(r, io.Discard, "")
	defer le.Close()

	if le.IsInteractive() {
		t.Error("IsInteractive() = true for a pipe")
	}
}

func TestLineEditorInsideEmacs(t *testing.T) {
	t.Setenv("INSIDE_EMACS", "29.1,comint")

	le := NewLineEditor(os.Stdin, io.Discard, "")
	defer le.Close()

	if le.IsInteractive() {
		t.Error("IsInteractive() = true with INSIDE_EMACS set")
	}
}

func TestLineEditorReadsLines(t *testing.T) {
	var out bytes.Buffer
	le := newScannerEditor(strings.NewReader("Enter()\nString(hi)\n"), &out)
	defer le.Close()

	for _, want := range []string{"Enter()", "String(hi)"} {
		got, err := le.GetLine("> ")
		if err != nil {
			t.Fatalf("GetLine() error = %v", err)
		}
		if got != want {
			t.Errorf("GetLine() = %q, want %q", got, want)
		}
	}

	if _, err := le.GetLine("> "); !errors.Is(err, io.EOF) {
		t.Errorf("GetLine() at end error = %v, want io.EOF", err)
	}
	if out.String() != "> > > " {
		t.Errorf("prompts = %q, want three prompts", out.String())
	}
}

func TestLineEditorLastLineWithoutNewline(t *testing.T) {
	le := newScannerEditor(strings.NewReader("Clear()"), io.Discard)
	defer le.Close()

	got, err := le.GetLine("")
	if err != nil {
		t.Fatalf("GetLine() error = %v", err)
	}
	if got != "Clear()" {
		t.Errorf("GetLine() = %q, want %q", got, "Clear()")
	}
}

func TestLineEditorCloseIdempotent(t *testing.T) {
	le := newScannerEditor(strings.NewReader(""), io.Discard)
	le.Close()
	le.Close()
}
