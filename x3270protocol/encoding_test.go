package x3270protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
)

func TestLookupEncoding(t *testing.T) {
	tests := []struct {
		name string
		want any
	}{
		{"UTF-8", unicode.UTF8},
		{"utf-8", unicode.UTF8},
		{"CP1252", charmap.Windows1252},
		{"cp037", charmap.CodePage037},
		{"CP932", japanese.ShiftJIS},
		{"ISO-8859-1", charmap.ISO8859_1},
		{"windows-1250", charmap.Windows1250},
		{" KOI8-R ", charmap.KOI8R},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := LookupEncoding(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, enc)
		})
	}
}

func TestLookupEncodingErrors(t *testing.T) {
	for _, name := range []string{"", "CP99999", "no-such-charset"} {
		t.Run(name, func(t *testing.T) {
			_, err := LookupEncoding(name)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

// windows1252Handler reports CP1252 and checks that arguments arrive in it.
func windows1252Handler(t *testing.T) fakeHandler {
	return func(a Action) fakeResult {
		if a.Name == "Query" && len(a.Args) == 1 && a.Args[0] == QueryLocalEncoding {
			return fakeResult{lines: []string{"CP1252"}}
		}
		if a.Name == "Echo" {
			for _, arg := range a.Args {
				if arg != "caf\xe9" {
					t.Errorf("emulator received %q", arg)
				}
			}
		}
		return defaultFakeHandler(a)
	}
}

func TestNegotiateEncoding(t *testing.T) {
	s := newFakeSession(t, windows1252Handler(t))

	require.NoError(t, s.NegotiateEncoding())
	assert.Equal(t, "CP1252", s.Encoding())

	reply, err := s.Execute("Echo", "café")
	require.NoError(t, err)
	assert.Equal(t, "café", reply.Data)
}

func TestNegotiateEncodingUTF8(t *testing.T) {
	s := newFakeSession(t, nil)

	require.NoError(t, s.NegotiateEncoding())
	assert.Equal(t, UTF8Name, s.Encoding())

	reply, err := s.Execute("Echo", "日本")
	require.NoError(t, err)
	assert.Equal(t, "日本", reply.Data)
}

func TestNegotiateEncodingOnlyOnce(t *testing.T) {
	s := newFakeSession(t, nil)
	require.NoError(t, s.NegotiateEncoding())
	assert.ErrorIs(t, s.NegotiateEncoding(), ErrInvalidState)
}

func TestNegotiateEncodingAfterExchange(t *testing.T) {
	s := newFakeSession(t, nil)
	_, err := s.Execute("Echo", "x")
	require.NoError(t, err)
	assert.ErrorIs(t, s.NegotiateEncoding(), ErrInvalidState)
}

func TestNegotiateEncodingUnknown(t *testing.T) {
	s := newFakeSession(t, func(a Action) fakeResult {
		return fakeResult{lines: []string{"x-martian"}}
	})
	err := s.NegotiateEncoding()
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, UTF8Name, s.Encoding())
}
