package x3270protocol

import (
	"bufio"
	"bytes"
	"io"
	"net"
	"strings"
	"sync"
	"testing"

	"github.com/pmattes/x3270ifSimple/internal/testutil/testlog"
)

// testStatusLine is the status line the fake emulator reports.
const testStatusLine = "U F U C(localhost) I 4 24 80 0 0 0x0 -"

// fakeResult is what a fake emulator handler answers.
type fakeResult struct {
	lines  []string
	status string
	failed bool
}

type fakeHandler func(a Action) fakeResult

// formatFakeReply renders a result the way s3270 does.
func formatFakeReply(r fakeResult) string {
	var sb strings.Builder
	for _, line := range r.lines {
		sb.WriteString(DataPrefix + line + "\n")
	}
	status := r.status
	if status == "" {
		status = testStatusLine
	}
	sb.WriteString(status + "\n")
	if r.failed {
		sb.WriteString("error\n")
	} else {
		sb.WriteString("ok\n")
	}
	return sb.String()
}

// defaultFakeHandler answers a small subset of s3270's actions.
func defaultFakeHandler(a Action) fakeResult {
	switch a.Name {
	case "Query":
		if len(a.Args) == 1 {
			switch a.Args[0] {
			case QueryLocalEncoding:
				return fakeResult{lines: []string{"UTF-8"}}
			case QueryCursor:
				return fakeResult{lines: []string{"0 0"}}
			}
		}
		return fakeResult{}
	case "Echo":
		return fakeResult{lines: a.Args}
	case "Ascii":
		return fakeResult{lines: []string{"line one", "line two"}}
	case "Fail":
		return fakeResult{lines: []string{"Fail: " + strings.Join(a.Args, ",")}, failed: true}
	default:
		return fakeResult{lines: []string{"Unknown action: " + a.Name}, failed: true}
	}
}

// serveFake answers requests on conn until it closes.
func serveFake(conn net.Conn, handler fakeHandler) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		action, err := ParseAction(scanner.Text())
		var reply string
		if err != nil {
			reply = formatFakeReply(fakeResult{lines: []string{err.Error()}, failed: true})
		} else {
			reply = formatFakeReply(handler(action))
		}
		if _, err := io.WriteString(conn, reply); err != nil {
			return
		}
	}
}

// newFakeSession returns a session connected through net.Pipe to a fake
// emulator.
func newFakeSession(t *testing.T, handler fakeHandler) *Session {
	t.Helper()
	if handler == nil {
		handler = defaultFakeHandler
	}
	client, server := net.Pipe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		serveFake(server, handler)
	}()

	s := NewSession(client, WithLogger(testlog.Logger(t)))
	t.Cleanup(func() {
		s.Close()
		<-done
	})
	return s
}

// fakeListener accepts TCP connections on loopback and serves each with
// a fake emulator.
type fakeListener struct {
	listener net.Listener
	handler  fakeHandler
	wg       sync.WaitGroup

	mu          sync.Mutex
	connections []net.Conn
}

func startFakeListener(t *testing.T, handler fakeHandler) *fakeListener {
	t.Helper()
	if handler == nil {
		handler = defaultFakeHandler
	}
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	fl := &fakeListener{listener: l, handler: handler}
	fl.wg.Add(1)
	go fl.acceptLoop()
	t.Cleanup(fl.stop)
	return fl
}

func (fl *fakeListener) addr() string {
	return fl.listener.Addr().String()
}

func (fl *fakeListener) port() int {
	return fl.listener.Addr().(*net.TCPAddr).Port
}

func (fl *fakeListener) acceptLoop() {
	defer fl.wg.Done()
	for {
		conn, err := fl.listener.Accept()
		if err != nil {
			return
		}
		fl.mu.Lock()
		fl.connections = append(fl.connections, conn)
		fl.mu.Unlock()

		fl.wg.Add(1)
		go func() {
			defer fl.wg.Done()
			serveFake(conn, fl.handler)
		}()
	}
}

func (fl *fakeListener) stop() {
	fl.listener.Close()
	fl.mu.Lock()
	for _, conn := range fl.connections {
		conn.Close()
	}
	fl.connections = nil
	fl.mu.Unlock()
	fl.wg.Wait()
}

// scriptedStream replays canned emulator output and records requests.
type scriptedStream struct {
	io.Reader
	written bytes.Buffer
	closes  int
}

func newScriptedStream(r io.Reader) *scriptedStream {
	return &scriptedStream{Reader: r}
}

func (s *scriptedStream) Write(p []byte) (int, error) {
	return s.written.Write(p)
}

func (s *scriptedStream) Close() error {
	s.closes++
	return nil
}

// halfClosingStream records shutdown calls like a *net.TCPConn would see.
type halfClosingStream struct {
	scriptedStream
	calls []string
}

func (s *halfClosingStream) CloseRead() error {
	s.calls = append(s.calls, "CloseRead")
	return nil
}

func (s *halfClosingStream) CloseWrite() error {
	s.calls = append(s.calls, "CloseWrite")
	return nil
}

func (s *halfClosingStream) Close() error {
	s.calls = append(s.calls, "Close")
	return s.scriptedStream.Close()
}

// failingStream rejects every write.
type failingStream struct {
	scriptedStream
	err error
}

func (s *failingStream) Write(p []byte) (int, error) {
	return 0, s.err
}
