package x3270protocol

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Dial connects to an emulator script port at address ("host:port").
func Dial(ctx context.Context, address string, opts ...Option) (*Session, error) {
	connectCtx, cancel := context.WithTimeout(ctx, ConnectionTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(connectCtx, "tcp", address)
	if err != nil {
		return nil, NewConnectionError("failed to connect to "+address, err)
	}
	return NewSession(conn, opts...), nil
}

// AttachWorker connects to the emulator that started this process as a
// script. The emulator passes its loopback port in the X3270PORT
// environment variable. The session's encoding is negotiated before it is
// returned.
func AttachWorker(ctx context.Context, opts ...Option) (*Session, error) {
	portString, ok := os.LookupEnv(PortEnvVar)
	if !ok {
		return nil, fmt.Errorf("%w: %s not found in the environment", ErrInvalidState, PortEnvVar)
	}
	port, err := strconv.ParseUint(strings.TrimSpace(portString), 10, 16)
	if err != nil || port == 0 {
		return nil, newArgumentError(PortEnvVar, portString, "not a valid port")
	}

	session, err := Dial(ctx, net.JoinHostPort("127.0.0.1", strconv.FormatUint(port, 10)), opts...)
	if err != nil {
		return nil, err
	}
	if err := session.NegotiateEncoding(); err != nil {
		session.Close()
		return nil, err
	}
	return session, nil
}

// EmulatorOptions controls how StartEmulator launches an emulator.
type EmulatorOptions struct {
	// Path is the emulator executable. Defaults to DefaultEmulatorPath,
	// found through PATH.
	Path string

	// ExtraOptions are appended to the emulator's command line.
	ExtraOptions []string

	// Env is the emulator's environment. Nil inherits this process's.
	Env []string

	// StartTimeout bounds the wait for the script port. Defaults to
	// EmulatorStartTimeout.
	StartTimeout time.Duration

	// SessionOptions configure the session over the script port.
	SessionOptions []Option
}

// Emulator is a session with an emulator process this program started.
// Closing it closes the session and stops the process.
type Emulator struct {
	*Session

	cmd    *exec.Cmd
	exited chan struct{}
	stderr *lockedBuffer

	waitErr   error
	closeOnce sync.Once
}

// StartEmulator launches a new emulator listening on a free loopback
// script port and connects a session to it. The emulator runs in UTF-8
// mode and exits when the session's connection closes.
func StartEmulator(ctx context.Context, opts EmulatorOptions) (*Emulator, error) {
	path := opts.Path
	if path == "" {
		path = DefaultEmulatorPath
	}
	timeout := opts.StartTimeout
	if timeout <= 0 {
		timeout = EmulatorStartTimeout
	}

	port, err := freePort()
	if err != nil {
		return nil, NewConnectionError("no free script port", err)
	}

	args := []string{
		"-minversion", MinVersion,
		"-utf8",
		"-scriptport", strconv.Itoa(port),
		"-scriptportonce",
	}
	args = append(args, opts.ExtraOptions...)
	if n := len(path) + 1 + len(strings.Join(args, " ")); n > maxCommandLine {
		return nil, newArgumentError("emulator options", "", "command line too long")
	}

	stderr := &lockedBuffer{}
	cmd := exec.Command(path, args...)
	cmd.Env = opts.Env
	cmd.Stdout = io.Discard
	cmd.Stderr = stderr
	if err := cmd.Start(); err != nil {
		return nil, NewConnectionError("failed to launch "+path, err)
	}

	e := &Emulator{
		cmd:    cmd,
		exited: make(chan struct{}),
		stderr: stderr,
	}
	go func() {
		e.waitErr = cmd.Wait()
		close(e.exited)
	}()

	conn, err := e.waitForPort(ctx, port, timeout)
	if err != nil {
		e.stop(0)
		if msg := strings.TrimRight(stderr.String(), "\r\n"); msg != "" {
			return nil, NewConnectionError(path+" failure: "+msg, err)
		}
		return nil, NewConnectionError(path+" did not open its script port", err)
	}

	e.Session = NewSession(conn, opts.SessionOptions...)
	e.Session.log.Debug().Str("path", path).Strs("args", args).Int("pid", cmd.Process.Pid).Msg("emulator started")
	return e, nil
}

// waitForPort polls the script port until the emulator accepts a
// connection, the emulator exits, or the time runs out.
func (e *Emulator) waitForPort(ctx context.Context, port int, timeout time.Duration) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	address := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	var d net.Dialer
	ticker := time.NewTicker(emulatorPollInterval)
	defer ticker.Stop()

	for {
		conn, err := d.DialContext(ctx, "tcp", address)
		if err == nil {
			return conn, nil
		}
		select {
		case <-e.exited:
			if e.waitErr != nil {
				return nil, fmt.Errorf("emulator exited: %w", e.waitErr)
			}
			return nil, errors.New("emulator exited")
		case <-ctx.Done():
			return nil, fmt.Errorf("timeout waiting for port %d: %w", port, ctx.Err())
		case <-ticker.C:
		}
	}
}

// PID returns the emulator's process ID.
func (e *Emulator) PID() int {
	return e.cmd.Process.Pid
}

// Stderr returns what the emulator has written to its standard error.
func (e *Emulator) Stderr() string {
	return e.stderr.String()
}

// Close closes the session and stops the emulator. It is safe to call more
// than once.
func (e *Emulator) Close() error {
	var err error
	e.closeOnce.Do(func() {
		if e.Session != nil {
			err = e.Session.Close()
		}
		e.stop(emulatorExitGrace)
	})
	return err
}

// stop waits up to grace for the emulator to exit, then kills it.
func (e *Emulator) stop(grace time.Duration) {
	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-e.exited:
		return
	case <-timer.C:
	}
	// It might have exited in the meantime.
	_ = e.cmd.Process.Kill()
	<-e.exited
}

func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// lockedBuffer is a bytes.Buffer the emulator's stderr copier and readers
// can share.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
