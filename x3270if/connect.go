// =============================================================================
// connect.go - Finding or Launching an Emulator
// =============================================================================
//
// Picks one of the three ways to reach an emulator (attach as a worker,
// attach to a known script port, or start a new emulator) and, when a host
// is configured, connects the emulator to it.
//
// =============================================================================

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/pmattes/x3270ifSimple/internal/config"
	"github.com/pmattes/x3270ifSimple/internal/logging"
	"github.com/pmattes/x3270ifSimple/x3270protocol"
)

// scriptSession is what the commands need from a connection. Both
// *x3270protocol.Session and *x3270protocol.Emulator provide it.
type scriptSession interface {
	RunRaw(text string) (*x3270protocol.Reply, error)
	Execute(action string, args ...string) (*x3270protocol.Reply, error)
	StatusLine() string
	Close() error
}

// connection describes how a session was obtained.
type connection struct {
	session scriptSession

	// how is a short description for messages, e.g. "worker port 4711".
	how string
}

// openSession obtains a session according to cfg.
func openSession(ctx context.Context, cfg config.Config) (*connection, error) {
	opts := []x3270protocol.Option{x3270protocol.WithLogger(logging.Logger())}

	var conn *connection
	if port, ok := os.LookupEnv(x3270protocol.PortEnvVar); ok {
		s, err := x3270protocol.AttachWorker(ctx, opts...)
		if err != nil {
			return nil, err
		}
		conn = &connection{session: s, how: "worker port " + port}
	} else if cfg.ScriptPort != 0 {
		s, err := attachScriptPort(ctx, cfg.ScriptPort, opts)
		if err != nil {
			return nil, err
		}
		conn = &connection{session: s, how: "script port " + strconv.Itoa(cfg.ScriptPort)}
	} else {
		path, err := findEmulatorExecutable(cfg.EmulatorPath)
		if err != nil {
			return nil, err
		}
		e, err := x3270protocol.StartEmulator(ctx, x3270protocol.EmulatorOptions{
			Path:           path,
			ExtraOptions:   cfg.ExtraOptions,
			SessionOptions: opts,
		})
		if err != nil {
			return nil, err
		}
		conn = &connection{session: e, how: fmt.Sprintf("%s (PID: %d)", filepath.Base(path), e.PID())}
	}

	if cfg.Host != "" {
		if err := connectHost(conn.session, cfg.Host); err != nil {
			conn.session.Close()
			return nil, err
		}
	}
	return conn, nil
}

// attachScriptPort connects to an emulator already listening on port and
// adopts its encoding.
func attachScriptPort(ctx context.Context, port int, opts []x3270protocol.Option) (*x3270protocol.Session, error) {
	address := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	s, err := x3270protocol.Dial(ctx, address, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.NegotiateEncoding(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// connectHost runs Connect() for a host specification string.
func connectHost(s scriptSession, host string) error {
	spec, err := x3270protocol.ParseHostSpecification(host)
	if err != nil {
		return err
	}
	if _, err := s.Execute("Connect", spec.String()); err != nil {
		var actionErr *x3270protocol.ActionError
		if errors.As(err, &actionErr) {
			return fmt.Errorf("connect to %s: %s", spec, actionErr.Detail)
		}
		return fmt.Errorf("connect to %s: %w", spec, err)
	}
	return nil
}

// findEmulatorExecutable resolves name to an executable. A name with a
// directory part is used as is; a bare name is looked for next to this
// program, then in PATH, then in common install locations.
func findEmulatorExecutable(name string) (string, error) {
	if name == "" {
		name = x3270protocol.DefaultEmulatorPath
	}
	if filepath.Base(name) != name {
		if isExecutable(name) {
			return name, nil
		}
		return "", fmt.Errorf("emulator %s is not executable", name)
	}

	if selfPath, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(selfPath), name)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}

	commonPaths := []string{
		"/usr/local/bin",
		"/opt/homebrew/bin",
		filepath.Join(homeDir(), ".local", "bin"),
	}
	for _, dir := range commonPaths {
		candidate := filepath.Join(dir, name)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%s not found in PATH or common locations", name)
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if runtime.GOOS == "windows" {
		return !info.IsDir()
	}
	return !info.IsDir() && info.Mode().Perm()&0111 != 0
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}
