package x3270protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatusLine(t *testing.T) {
	st, err := ParseStatusLine(testStatusLine)
	require.NoError(t, err)

	assert.Equal(t, Status{
		Keyboard:       KeyboardUnlocked,
		Formatted:      true,
		FieldProtected: false,
		Connected:      true,
		Host:           "localhost",
		Mode:           Mode3270,
		Model:          4,
		Rows:           24,
		Columns:        80,
		CursorRow:      0,
		CursorColumn:   0,
		WindowID:       "0x0",
		CommandTime:    "-",
	}, st)
}

func TestParseStatusLineNotConnected(t *testing.T) {
	st, err := ParseStatusLine("L U P N N 2 24 80 5 10 0x0 0.012")
	require.NoError(t, err)
	assert.Equal(t, KeyboardLocked, st.Keyboard)
	assert.False(t, st.Formatted)
	assert.True(t, st.FieldProtected)
	assert.False(t, st.Connected)
	assert.Empty(t, st.Host)
	assert.Equal(t, ModeNotConnected, st.Mode)
	assert.Equal(t, 5, st.CursorRow)
	assert.Equal(t, 10, st.CursorColumn)
	assert.Equal(t, "0.012", st.CommandTime)
}

func TestParseStatusLineErrors(t *testing.T) {
	for _, line := range []string{
		"",
		"U U U",
		"U F U X(host) I 4 24 80 0 0 0x0 -",
		"U F U N I four 24 80 0 0 0x0 -",
	} {
		t.Run(line, func(t *testing.T) {
			_, err := ParseStatusLine(line)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestReplyStatus(t *testing.T) {
	s := newFakeSession(t, nil)
	reply, err := s.ExecuteAction(NewQueryAction(QueryCursor))
	require.NoError(t, err)
	assert.True(t, reply.IsOK())
	assert.Equal(t, "0 0", reply.Data)

	st, err := reply.Status()
	require.NoError(t, err)
	assert.Equal(t, "localhost", st.Host)
	assert.Equal(t, 24, st.Rows)
}

func TestReplyParserIncremental(t *testing.T) {
	p := NewReplyParser()
	assert.False(t, p.Feed([]byte("data: a\nU U")))
	assert.False(t, p.Complete())
	assert.True(t, p.Feed([]byte(" U\nerror\n")))

	reply, err := p.Reply()
	require.NoError(t, err)
	assert.False(t, reply.Success)
	assert.Equal(t, "a", reply.Data)
	assert.Equal(t, "U U U", reply.StatusLine)

	p.Reset()
	assert.False(t, p.Complete())
	assert.Empty(t, p.Raw())
}

func TestReplyParserDropsLeadingBlankLine(t *testing.T) {
	p := NewReplyParser()
	assert.False(t, p.Feed([]byte("\n")))
	assert.Empty(t, p.Raw())
	assert.True(t, p.Feed([]byte("data: x\nU U U\nok\n")))

	reply, err := p.Reply()
	require.NoError(t, err)
	assert.Equal(t, "x", reply.Data)

	// Only one is dropped.
	p.Reset()
	p.Feed([]byte("\n"))
	p.Feed([]byte("\n"))
	assert.Equal(t, "\n", p.Raw())
}

func TestParseReplyIncomplete(t *testing.T) {
	_, err := ParseReply("data: a\nU U U\n")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
