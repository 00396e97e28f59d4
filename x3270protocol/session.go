package x3270protocol

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/encoding"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Stream is the duplex byte channel a session drives. A *net.TCPConn is
// the usual implementation. Streams that also implement CloseRead and
// CloseWrite are shut down in both directions before being closed, and
// streams with SetDeadline honor context deadlines in RunRawContext.
type Stream interface {
	io.Reader
	io.Writer
	io.Closer
}

type halfCloser interface {
	CloseRead() error
	CloseWrite() error
}

type deadliner interface {
	SetDeadline(t time.Time) error
}

// ExchangeState tracks where a session is in its current exchange.
type ExchangeState int

const (
	StateIdle ExchangeState = iota
	StateSending
	StateAwaitingReply
	StateSuccess
	StateFailure
	StateDisconnected
)

func (s ExchangeState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateAwaitingReply:
		return "awaiting-reply"
	case StateSuccess:
		return "success"
	case StateFailure:
		return "failure"
	case StateDisconnected:
		return "disconnected"
	default:
		return fmt.Sprintf("ExchangeState(%d)", int(s))
	}
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger exchanges are traced to. Sessions log
// nothing by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.log = logger
	}
}

// Session runs actions over one emulator connection.
//
// Each call to Execute or RunRaw writes one request and blocks until the
// whole reply has been read; there is no background reader. Calls are
// serialized, so a Session may be shared between goroutines, but requests
// are never pipelined. Closing the session from another goroutine
// unblocks a pending call, which then fails with ErrDisconnected.
type Session struct {
	mu sync.Mutex

	id  uuid.UUID
	log zerolog.Logger

	stream       Stream
	raw          io.Reader
	reader       io.Reader
	encoder      *encoding.Encoder
	encodingName string

	statusLine string
	state      ExchangeState
	exchanges  int
	negotiated bool

	// closeMu guards stream against Attach while Close runs; it is never
	// held during I/O so Close can interrupt a blocked exchange.
	closeMu sync.Mutex
	closed  atomic.Bool
}

// NewSession creates a session over stream. A nil stream leaves the
// session unattached; Attach supplies one later.
func NewSession(stream Stream, opts ...Option) *Session {
	s := &Session{
		id:  uuid.New(),
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("session", s.id.String()).Logger()
	if stream != nil {
		s.attach(stream)
	}
	return s
}

// Attach gives an unattached session its stream.
func (s *Session) Attach(stream Stream) error {
	if stream == nil {
		return newArgumentError("stream", "", "is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeMu.Lock()
	defer s.closeMu.Unlock()

	if s.closed.Load() {
		return fmt.Errorf("%w: session closed", ErrInvalidState)
	}
	if s.stream != nil {
		return fmt.Errorf("%w: stream already attached", ErrInvalidState)
	}
	s.attach(stream)
	return nil
}

func (s *Session) attach(stream Stream) {
	s.stream = stream
	s.raw = emptyReadIsEOF{stream}
	s.setEncoding(xunicode.UTF8, UTF8Name)
	s.log.Debug().Msg("stream attached")
}

// setEncoding rebuilds the reader and encoder over the same stream.
func (s *Session) setEncoding(enc encoding.Encoding, name string) {
	s.reader = transform.NewReader(s.raw, enc.NewDecoder())
	s.encoder = encoding.ReplaceUnsupported(enc.NewEncoder())
	s.encodingName = name
}

// ID returns the identifier used to correlate this session's log entries.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// StatusLine returns the status line of the most recent exchange,
// successful or not.
func (s *Session) StatusLine() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLine
}

// State returns where the most recent exchange ended up.
func (s *Session) State() ExchangeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Encoding returns the name of the encoding used on the stream.
func (s *Session) Encoding() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.encodingName
}

// Execute runs an action with the given arguments, each passed through
// Quote, and returns the reply.
func (s *Session) Execute(action string, args ...string) (*Reply, error) {
	return s.RunRawContext(context.Background(), FormatAction(action, args...))
}

// ExecuteContext is Execute with a context; see RunRawContext.
func (s *Session) ExecuteContext(ctx context.Context, action string, args ...string) (*Reply, error) {
	return s.RunRawContext(ctx, FormatAction(action, args...))
}

// ExecuteAction runs a prepared Action.
func (s *Session) ExecuteAction(a Action) (*Reply, error) {
	return s.RunRawContext(context.Background(), a.Format())
}

// RunRaw sends text as a request line and returns the decoded reply.
//
// Text containing control characters is rejected with ErrInvalidArgument
// before any I/O. A session with no stream fails with ErrInvalidState.
// If the emulator answers with the error prompt, the reply is returned
// along with an *ActionError. If the stream closes or fails, the error is
// a *DisconnectError and the session is finished.
//
// There is no timeout: a silent emulator blocks the caller until the
// stream is closed.
func (s *Session) RunRaw(text string) (*Reply, error) {
	return s.RunRawContext(context.Background(), text)
}

// RunRawContext is RunRaw bounded by ctx. The context's deadline and
// cancellation are applied to the stream when it supports SetDeadline;
// expiry surfaces as ErrDisconnected, since the reply stream can no longer
// be trusted to be in sync.
func (s *Session) RunRawContext(ctx context.Context, text string) (*Reply, error) {
	if strings.IndexFunc(text, unicode.IsControl) >= 0 {
		return nil, newArgumentError("command", text, "contains control character(s)")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exchange(ctx, text)
}

// NegotiateEncoding asks the emulator for its local encoding and, if it is
// not UTF-8, switches the session's reader and writer to it. It may only
// run once, before any other exchange.
func (s *Session) NegotiateEncoding() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.negotiated || s.exchanges > 0 {
		return fmt.Errorf("%w: encoding must be negotiated once, before any other action", ErrInvalidState)
	}

	reply, err := s.exchange(context.Background(), NewQueryAction(QueryLocalEncoding).Format())
	if err != nil {
		return fmt.Errorf("query local encoding: %w", err)
	}
	s.negotiated = true

	name := strings.TrimSpace(reply.Data)
	if strings.EqualFold(name, UTF8Name) {
		return nil
	}
	enc, err := LookupEncoding(name)
	if err != nil {
		return err
	}
	s.setEncoding(enc, name)
	s.log.Debug().Str("encoding", name).Msg("switched encoding")
	return nil
}

// exchange performs one request/reply round trip. s.mu must be held.
func (s *Session) exchange(ctx context.Context, text string) (*Reply, error) {
	tr := newTrace(s.log)
	tr.add("sending '%s'", text)

	if s.closed.Load() {
		return nil, fmt.Errorf("%w: session closed", ErrInvalidState)
	}
	if s.stream == nil {
		return nil, fmt.Errorf("%w: no stream attached", ErrInvalidState)
	}
	if s.state == StateDisconnected {
		return nil, s.disconnected(tr, "session already disconnected", nil)
	}
	s.exchanges++

	stop := s.watchContext(ctx)
	defer stop()

	s.state = StateSending
	encoded, err := s.encoder.String(text + "\n")
	if err != nil {
		return nil, s.disconnected(tr, "encode failed", err)
	}
	if _, err := io.WriteString(s.stream, encoded); err != nil {
		return nil, s.disconnected(tr, "write failed", s.contextCause(ctx, err))
	}

	s.state = StateAwaitingReply
	parser := NewReplyParser()
	buf := make([]byte, readBufferSize)
	for {
		n, err := s.reader.Read(buf)
		if n > 0 && parser.Feed(buf[:n]) {
			break
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, s.disconnected(tr, "emulator closed the connection", nil)
			}
			return nil, s.disconnected(tr, "read failed", s.contextCause(ctx, err))
		}
	}

	reply, err := parser.Reply()
	if err != nil {
		return nil, s.disconnected(tr, "malformed reply", err)
	}
	tr.add("got '%s'", strings.Join(strings.Split(parser.Raw(), "\n"), "<\\n>"))
	reply.Trace = tr.lines

	s.statusLine = reply.StatusLine
	if !reply.Success {
		s.state = StateFailure
		return reply, &ActionError{Detail: reply.Data, Reply: reply}
	}
	s.state = StateSuccess
	return reply, nil
}

func (s *Session) disconnected(tr *trace, message string, cause error) error {
	s.state = StateDisconnected
	if cause != nil {
		tr.add("%s: %v", message, cause)
	} else {
		tr.add("%s", message)
	}
	return &DisconnectError{Message: message, Cause: cause, trace: tr.lines}
}

// watchContext applies ctx to the stream's deadline for the length of one
// exchange. The returned function undoes it.
func (s *Session) watchContext(ctx context.Context) func() {
	d, ok := s.stream.(deadliner)
	if !ok || ctx.Done() == nil {
		return func() {}
	}

	if deadline, has := ctx.Deadline(); has {
		_ = d.SetDeadline(deadline)
	}
	fired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		_ = d.SetDeadline(time.Now())
		close(fired)
	})
	return func() {
		if !stop() {
			<-fired
		}
		_ = d.SetDeadline(time.Time{})
	}
}

// contextCause prefers the context's error over the timeout it provoked.
// The stream deadline can expire a moment before the context notices.
func (s *Session) contextCause(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if deadline, ok := ctx.Deadline(); ok && errors.Is(err, os.ErrDeadlineExceeded) && !time.Now().Before(deadline) {
		return context.DeadlineExceeded
	}
	return err
}

// emptyReadIsEOF reports a read that returns no data and no error as the
// end of the stream.
type emptyReadIsEOF struct {
	r io.Reader
}

func (e emptyReadIsEOF) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	if n == 0 && err == nil && len(p) > 0 {
		return 0, io.EOF
	}
	return n, err
}

// Close shuts down both directions of the stream and closes it. It is safe
// to call more than once and on a session that never had a stream.
func (s *Session) Close() error {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()

	if s.closed.Swap(true) {
		return nil
	}
	if s.stream == nil {
		return nil
	}

	if hc, ok := s.stream.(halfCloser); ok {
		if err := hc.CloseRead(); err != nil {
			s.log.Debug().Err(err).Msg("shutdown read side")
		}
		if err := hc.CloseWrite(); err != nil {
			s.log.Debug().Err(err).Msg("shutdown write side")
		}
	}
	err := s.stream.Close()
	s.log.Debug().Msg("stream closed")
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

// trace collects the debug lines of one exchange and mirrors them to the
// session logger.
type trace struct {
	lines []string
	log   zerolog.Logger
}

func newTrace(log zerolog.Logger) *trace {
	return &trace{log: log}
}

func (t *trace) add(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	t.lines = append(t.lines, line)
	t.log.Debug().Msg(line)
}
