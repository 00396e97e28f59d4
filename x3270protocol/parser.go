package x3270protocol

import (
	"strings"
)

// ParseAction parses request text such as `String("hello, world")` into
// an Action. It accepts everything FormatAction produces; a bare name with
// no parentheses is an action with no arguments.
//
// Quote does not escape backslashes in the middle of an argument, so the
// sequence \\" is ambiguous. It is read as a doubled trailing backslash
// when the quote ends the argument, and as a backslash followed by an
// escaped quote otherwise.
func ParseAction(text string) (Action, error) {
	line := strings.TrimSpace(text)
	if line == "" {
		return Action{}, newArgumentError("action", text, "is empty")
	}

	open := strings.IndexByte(line, '(')
	if open < 0 {
		if strings.ContainsAny(line, " \t,)\"") {
			return Action{}, newArgumentError("action", text, "malformed action name")
		}
		return Action{Name: line}, nil
	}

	name := strings.TrimSpace(line[:open])
	if name == "" || strings.ContainsAny(name, " \t,)\"") {
		return Action{}, newArgumentError("action", text, "malformed action name")
	}

	args, rest, err := parseArguments(line[open+1:])
	if err != nil {
		return Action{}, newArgumentError("action", text, err.Error())
	}
	if strings.TrimSpace(rest) != "" {
		return Action{}, newArgumentError("action", text, "unexpected text after ')'")
	}
	return Action{Name: name, Args: args}, nil
}

type parseFailure string

func (e parseFailure) Error() string { return string(e) }

// parseArguments parses the argument list following the opening
// parenthesis and returns the text after the closing one.
func parseArguments(s string) ([]string, string, error) {
	if strings.HasPrefix(s, ")") {
		return nil, s[1:], nil
	}

	var args []string
	i := 0
	for {
		var arg string
		if i < len(s) && s[i] == '"' {
			var err error
			arg, i, err = parseQuoted(s, i+1)
			if err != nil {
				return nil, "", err
			}
		} else {
			j := strings.IndexAny(s[i:], ",)")
			if j < 0 {
				return nil, "", parseFailure("missing ')'")
			}
			arg = s[i : i+j]
			i += j
		}
		args = append(args, arg)

		if i >= len(s) {
			return nil, "", parseFailure("missing ')'")
		}
		switch s[i] {
		case ',':
			i++
		case ')':
			return args, s[i+1:], nil
		default:
			return nil, "", parseFailure("expected ',' or ')' after quoted argument")
		}
	}
}

// parseQuoted reads a quoted argument whose opening quote precedes s[i].
// It returns the unescaped content and the index after the closing quote.
func parseQuoted(s string, i int) (string, int, error) {
	var sb strings.Builder
	for i < len(s) {
		c := s[i]
		switch {
		case c == '"':
			return sb.String(), i + 1, nil
		case c == '\\' && i+2 < len(s) && s[i+1] == '\\' && s[i+2] == '"' && endsArgument(s, i+3):
			sb.WriteByte('\\')
			return sb.String(), i + 3, nil
		case c == '\\' && i+1 < len(s) && s[i+1] == '"':
			sb.WriteByte('"')
			i += 2
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return "", 0, parseFailure("unterminated quoted argument")
}

func endsArgument(s string, i int) bool {
	return i >= len(s) || s[i] == ',' || s[i] == ')'
}

// ReplyParser accumulates emulator output until a complete reply, ending
// in the ok or error prompt, has arrived.
type ReplyParser struct {
	buf      strings.Builder
	complete bool
	success  bool

	// skippedBlank is set once a leading blank line has been dropped.
	skippedBlank bool
}

// NewReplyParser creates an empty reply parser.
func NewReplyParser() *ReplyParser {
	return &ReplyParser{}
}

// Feed appends a chunk of decoded emulator output and reports whether the
// reply is now complete. A single newline at the very start is the blank
// line that trailed the previous reply in a separate read, and is dropped.
func (p *ReplyParser) Feed(chunk []byte) bool {
	if p.buf.Len() == 0 && !p.skippedBlank && len(chunk) > 0 && chunk[0] == '\n' {
		chunk = chunk[1:]
		p.skippedBlank = true
	}
	p.buf.Write(chunk)
	p.complete, p.success = replyTerminated(p.buf.String())
	return p.complete
}

// Complete reports whether a full reply has been accumulated.
func (p *ReplyParser) Complete() bool {
	return p.complete
}

// Raw returns everything accumulated so far.
func (p *ReplyParser) Raw() string {
	return p.buf.String()
}

// Reply decodes the accumulated reply.
func (p *ReplyParser) Reply() (*Reply, error) {
	return ParseReply(p.buf.String())
}

// Reset discards the accumulated output.
func (p *ReplyParser) Reset() {
	p.buf.Reset()
	p.complete = false
	p.success = false
	p.skippedBlank = false
}

// ParseReply decodes a complete reply. The text is laid out as
//
//	data: xxx
//	data: ...
//	status line
//	ok or error
//	(empty line)
//
// Data prefixes are removed; lines without the prefix pass through.
func ParseReply(raw string) (*Reply, error) {
	complete, success := replyTerminated(raw)
	if !complete {
		return nil, newArgumentError("reply", truncate(raw, 80), "missing ok/error prompt")
	}
	raw = trimExtraBlankLine(raw)

	lines := strings.Split(raw, "\n")
	n := len(lines)
	data := lines[:n-3]
	for i, line := range data {
		data[i] = strings.TrimPrefix(line, DataPrefix)
	}

	return &Reply{
		Success:    success,
		Data:       strings.Join(data, LineSeparator),
		Lines:      data,
		StatusLine: lines[n-3],
	}, nil
}

// replyTerminated reports whether s ends with a prompt, tolerating one
// blank line after it.
func replyTerminated(s string) (complete, success bool) {
	s = trimExtraBlankLine(s)
	switch {
	case strings.HasSuffix(s, OKPrompt):
		return true, true
	case strings.HasSuffix(s, ErrorPrompt):
		return true, false
	default:
		return false, false
	}
}

func trimExtraBlankLine(s string) string {
	if strings.HasSuffix(s, "\n\n") {
		return s[:len(s)-1]
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
