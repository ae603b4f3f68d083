package terminal

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyNames(keys []tea.KeyMsg) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}

func TestDecodePlainAndControlKeys(t *testing.T) {
	keys, rest := Decode([]byte("ab \r\x7f\x03\x04\x15\x0b\x17\x01\x05"))
	assert.Nil(t, rest)
	assert.Equal(t, []string{
		"a", "b", " ", "enter", "backspace",
		"ctrl+c", "ctrl+d", "ctrl+u", "ctrl+k", "ctrl+w", "ctrl+a", "ctrl+e",
	}, keyNames(keys))
	assert.Equal(t, tea.KeySpace, keys[2].Type)
}

func TestDecodeEscapeSequences(t *testing.T) {
	keys, _ := Decode([]byte("\x1b[A\x1b[B\x1b[C\x1b[D\x1b[H\x1b[F\x1b[3~\x1bOA\x1b[1;5C"))
	assert.Equal(t, []string{
		"up", "down", "right", "left", "home", "end", "delete", "up", "ctrl+right",
	}, keyNames(keys))
}

func TestDecodeAltKeys(t *testing.T) {
	keys, _ := Decode([]byte("\x1bd\x1b\x7f\x1bb"))
	assert.Equal(t, []string{"alt+d", "alt+backspace", "alt+b"}, keyNames(keys))
}

func TestDecodeLoneEscapeAndUnknownSequence(t *testing.T) {
	keys, rest := Decode([]byte("\x1b"))
	assert.Empty(t, keys)
	assert.Equal(t, []byte("\x1b"), rest)

	keys = Flush(rest)
	require.Len(t, keys, 1)
	assert.Equal(t, tea.KeyEscape, keys[0].Type)

	keys, _ = Decode([]byte("\x1b[99zx"))
	assert.Equal(t, []string{"x"}, keyNames(keys))
}

func TestDecodeSplitEscapeSequence(t *testing.T) {
	for _, split := range []string{"\x1b", "\x1b[", "\x1b[1;5"} {
		full := []byte("a\x1b[1;5C")
		keys, rest := Decode(full[:1+len(split)])
		assert.Equal(t, []string{"a"}, keyNames(keys), split)
		assert.Equal(t, []byte(split), rest, split)

		keys, rest = Decode(append(rest, full[1+len(split):]...))
		assert.Nil(t, rest, split)
		assert.Equal(t, []string{"ctrl+right"}, keyNames(keys), split)
	}

	keys, rest := Decode([]byte("\x1b["))
	assert.Empty(t, keys)
	keys, rest = Decode(append(rest, 'A'))
	assert.Nil(t, rest)
	assert.Equal(t, []string{"up"}, keyNames(keys))
}

func TestFlushIncompleteSequences(t *testing.T) {
	assert.Equal(t, []string{"alt+["}, keyNames(Flush([]byte("\x1b["))))
	assert.Empty(t, Flush([]byte("\x1b[1;5")))
	assert.Empty(t, Flush([]byte("日")[:2]))
	assert.Empty(t, Flush(nil))
}

func TestDecodeUnicodeAndSplitRune(t *testing.T) {
	keys, _ := Decode([]byte("é日"))
	assert.Equal(t, []string{"é", "日"}, keyNames(keys))

	full := []byte("日")
	keys, rest := Decode(full[:2])
	assert.Empty(t, keys)
	assert.Equal(t, full[:2], rest)

	keys, rest = Decode(append(rest, full[2:]...))
	assert.Nil(t, rest)
	assert.Equal(t, []string{"日"}, keyNames(keys))
}

func TestKeyReaderDeliversKeysThenEOF(t *testing.T) {
	kr, err := NewKeyReader(strings.NewReader("hi\r"))
	require.NoError(t, err)
	defer kr.Close()

	ctx := context.Background()
	var got []string
	for {
		k, err := kr.ReadKey(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		got = append(got, k.String())
	}
	assert.Equal(t, []string{"h", "i", "enter"}, got)
}

func TestKeyReaderHonorsDeadline(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	kr, err := NewKeyReader(r)
	require.NoError(t, err)
	defer kr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = kr.ReadKey(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestKeyReaderJoinsSplitSequence(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	kr, err := NewKeyReader(r)
	require.NoError(t, err)
	defer kr.Close()

	go func() {
		_, _ = w.Write([]byte("\x1b["))
		_, _ = w.Write([]byte("A"))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	k, err := kr.ReadKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, tea.KeyUp, k.Type)
}

func TestKeyReaderLoneEscapeAfterDelay(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	kr, err := NewKeyReader(r)
	require.NoError(t, err)
	defer kr.Close()

	go func() { _, _ = w.Write([]byte("\x1b")) }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	k, err := kr.ReadKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, tea.KeyEscape, k.Type)
}

func TestProbeWithoutTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()

	c := Probe(f, f, ProbeOptions{Width: 40, Getenv: func(string) string { return "" }})
	assert.False(t, c.CursorControl)
	assert.False(t, c.Color)
	assert.Equal(t, 40, c.Width)
	assert.Equal(t, DefaultHeight, c.Height)
	assert.False(t, IsTerminal(f))
	assert.False(t, IsTerminal(nil))
}

func TestRawGuardNilRelease(t *testing.T) {
	var g *RawGuard
	assert.NoError(t, g.Release())
}
