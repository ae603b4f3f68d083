package terminal

import (
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

const esc = 0x1b

// csiKeys maps the parameter+final bytes of CSI and SS3 sequences to keys.
var csiKeys = map[string]tea.KeyType{
	"A":    tea.KeyUp,
	"B":    tea.KeyDown,
	"C":    tea.KeyRight,
	"D":    tea.KeyLeft,
	"H":    tea.KeyHome,
	"F":    tea.KeyEnd,
	"Z":    tea.KeyShiftTab,
	"1~":   tea.KeyHome,
	"7~":   tea.KeyHome,
	"4~":   tea.KeyEnd,
	"8~":   tea.KeyEnd,
	"3~":   tea.KeyDelete,
	"5~":   tea.KeyPgUp,
	"6~":   tea.KeyPgDown,
	"1;5A": tea.KeyCtrlUp,
	"1;5B": tea.KeyCtrlDown,
	"1;5C": tea.KeyCtrlRight,
	"1;5D": tea.KeyCtrlLeft,
	"1;5H": tea.KeyCtrlHome,
	"1;5F": tea.KeyCtrlEnd,
}

// Decode splits raw terminal input into key events. A trailing incomplete
// UTF-8 or escape sequence is returned as rest so the caller can prepend it to
// the next read. Unrecognized escape sequences are dropped.
func Decode(b []byte) (keys []tea.KeyMsg, rest []byte) {
	return decode(b, false)
}

// Flush decodes input that will not be continued: a lone ESC is the Escape
// key and any other incomplete sequence is dropped.
func Flush(b []byte) []tea.KeyMsg {
	keys, _ := decode(b, true)
	return keys
}

func decode(b []byte, final bool) (keys []tea.KeyMsg, rest []byte) {
	for len(b) > 0 {
		c := b[0]
		switch {
		case c == esc:
			k, n := decodeEscape(b, final)
			if n == 0 {
				return keys, b
			}
			if k != nil {
				keys = append(keys, *k)
			}
			b = b[n:]
		case c == '\r' || c == '\n':
			keys = append(keys, tea.KeyMsg{Type: tea.KeyEnter})
			b = b[1:]
		case c == 0x7f:
			keys = append(keys, tea.KeyMsg{Type: tea.KeyBackspace})
			b = b[1:]
		case c < 0x20:
			keys = append(keys, tea.KeyMsg{Type: tea.KeyType(c)})
			b = b[1:]
		case c == ' ':
			keys = append(keys, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
			b = b[1:]
		default:
			if !utf8.FullRune(b) {
				if final {
					return keys, nil
				}
				return keys, b
			}
			r, n := utf8.DecodeRune(b)
			b = b[n:]
			if r == utf8.RuneError && n == 1 {
				continue
			}
			keys = append(keys, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		}
	}
	return keys, nil
}

// decodeEscape handles input starting with ESC and returns the key (nil when
// the sequence is not one we act on) plus the number of bytes consumed. It
// consumes nothing when the sequence may still be completed by a later read.
func decodeEscape(b []byte, final bool) (*tea.KeyMsg, int) {
	if len(b) == 1 {
		if !final {
			return nil, 0
		}
		return &tea.KeyMsg{Type: tea.KeyEscape}, 1
	}

	switch b[1] {
	case '[', 'O':
		end := 2
		for end < len(b) && (b[end] < 0x40 || b[end] > 0x7e) {
			end++
		}
		if end == len(b) {
			switch {
			case !final:
				return nil, 0
			case end == 2:
				return &tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{rune(b[1])}, Alt: true}, 2
			}
			return nil, len(b)
		}
		if t, ok := csiKeys[string(b[2:end+1])]; ok {
			return &tea.KeyMsg{Type: t}, end + 1
		}
		return nil, end + 1
	case esc:
		return &tea.KeyMsg{Type: tea.KeyEscape}, 1
	case 0x7f:
		return &tea.KeyMsg{Type: tea.KeyBackspace, Alt: true}, 2
	}

	if b[1] < 0x20 {
		return &tea.KeyMsg{Type: tea.KeyType(b[1]), Alt: true}, 2
	}
	if !utf8.FullRune(b[1:]) {
		if !final {
			return nil, 0
		}
		return &tea.KeyMsg{Type: tea.KeyEscape}, 1
	}
	r, n := utf8.DecodeRune(b[1:])
	return &tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}, Alt: true}, 1 + n
}
