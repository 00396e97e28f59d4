// =============================================================================
// mockserver_test.go - Mock Emulator for CLI Tests
// =============================================================================
//
// A TCP listener on loopback that speaks the emulator's scripting protocol:
// it reads action lines, hands the parsed action to a handler, and writes
// data lines, a status line and ok or error. Tests point the CLI at it
// with --script-port or X3270PORT.
//
// =============================================================================

package main

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"

	"github.com/pmattes/x3270ifSimple/x3270protocol"
)

const (
	mockStatusDisconnected = "U U U N N 4 24 80 0 0 0x0 -"
	mockStatusConnected    = "U F U C(mainframe) I 4 24 80 2 5 0x0 0.031"
)

// mockReply is a handler's answer to one action.
type mockReply struct {
	lines  []string
	failed bool
}

// mockEmulator accepts script connections and answers actions.
type mockEmulator struct {
	listener net.Listener
	handler  func(a x3270protocol.Action) mockReply

	mu          sync.Mutex
	connections []net.Conn
	received    []string
	connected   bool

	wg sync.WaitGroup
}

func startMockEmulator(t *testing.T, handler func(a x3270protocol.Action) mockReply) *mockEmulator {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to create mock emulator listener: %v", err)
	}

	me := &mockEmulator{listener: listener}
	if handler == nil {
		handler = me.defaultHandler
	}
	me.handler = handler

	me.wg.Add(1)
	go me.acceptLoop()

	t.Cleanup(me.stop)
	return me
}

func (me *mockEmulator) port() int {
	return me.listener.Addr().(*net.TCPAddr).Port
}

func (me *mockEmulator) acceptLoop() {
	defer me.wg.Done()

	for {
		conn, err := me.listener.Accept()
		if err != nil {
			return
		}

		me.mu.Lock()
		me.connections = append(me.connections, conn)
		me.mu.Unlock()

		me.wg.Add(1)
		go me.handleConnection(conn)
	}
}

func (me *mockEmulator) handleConnection(conn net.Conn) {
	defer me.wg.Done()
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Text()

		me.mu.Lock()
		me.received = append(me.received, line)
		me.mu.Unlock()

		var reply mockReply
		if a, err := x3270protocol.ParseAction(line); err != nil {
			reply = mockReply{lines: []string{err.Error()}, failed: true}
		} else {
			reply = me.handler(a)
		}
		fmt.Fprint(conn, me.format(reply))
	}
}

func (me *mockEmulator) format(r mockReply) string {
	var sb strings.Builder
	for _, l := range r.lines {
		sb.WriteString(x3270protocol.DataPrefix + l + "\n")
	}

	me.mu.Lock()
	status := mockStatusDisconnected
	if me.connected {
		status = mockStatusConnected
	}
	me.mu.Unlock()

	sb.WriteString(status + "\n")
	if r.failed {
		sb.WriteString("error\n")
	} else {
		sb.WriteString("ok\n")
	}
	return sb.String()
}

// requests returns the action lines received so far.
func (me *mockEmulator) requests() []string {
	me.mu.Lock()
	defer me.mu.Unlock()
	return append([]string(nil), me.received...)
}

func (me *mockEmulator) stop() {
	me.listener.Close()

	me.mu.Lock()
	for _, conn := range me.connections {
		conn.Close()
	}
	me.connections = nil
	me.mu.Unlock()

	me.wg.Wait()
}

// defaultHandler answers the handful of actions the CLI tests use.
func (me *mockEmulator) defaultHandler(a x3270protocol.Action) mockReply {
	switch strings.ToLower(a.Name) {
	case "query":
		if len(a.Args) == 1 && a.Args[0] == x3270protocol.QueryLocalEncoding {
			return mockReply{lines: []string{"UTF-8"}}
		}
		return mockReply{lines: []string{"Host: mainframe"}}
	case "connect":
		if len(a.Args) != 1 || strings.HasPrefix(a.Args[0], "bad") {
			return mockReply{lines: []string{"Connection refused"}, failed: true}
		}
		me.mu.Lock()
		me.connected = true
		me.mu.Unlock()
		return mockReply{}
	case "echo":
		return mockReply{lines: a.Args}
	case "ascii":
		return mockReply{lines: []string{"WELCOME TO THE MAINFRAME", "", "USERID ===>"}}
	case "fail":
		return mockReply{lines: []string{"Fail: " + strings.Join(a.Args, ",")}, failed: true}
	default:
		return mockReply{lines: []string{"Unknown action: " + a.Name}, failed: true}
	}
}
