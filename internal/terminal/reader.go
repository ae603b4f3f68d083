package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/cancelreader"
)

// escDelay is how long a lone ESC waits for the rest of a sequence before it
// counts as the Escape key.
const escDelay = 50 * time.Millisecond

type keyEvent struct {
	key tea.KeyMsg
	err error
}

type chunk struct {
	b   []byte
	err error
}

// KeyReader decodes key presses from a terminal on a background goroutine.
// ReadKey waits for the next key or until ctx is done, so per-wait deadlines
// are expressed with context.WithTimeout.
type KeyReader struct {
	r      cancelreader.CancelReader
	events chan keyEvent
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewKeyReader starts reading from in. The caller must Close it.
func NewKeyReader(in io.Reader) (*KeyReader, error) {
	cr, err := cancelreader.NewReader(in)
	if err != nil {
		return nil, fmt.Errorf("opening input reader: %w", err)
	}
	k := &KeyReader{
		r:      cr,
		events: make(chan keyEvent),
		done:   make(chan struct{}),
	}
	chunks := make(chan chunk)
	k.wg.Add(2)
	go k.read(chunks)
	go k.loop(chunks)
	return k, nil
}

// read copies raw input to out until the reader fails or is canceled.
func (k *KeyReader) read(out chan<- chunk) {
	defer k.wg.Done()
	defer close(out)

	buf := make([]byte, 256)
	for {
		n, err := k.r.Read(buf)
		if n > 0 {
			select {
			case out <- chunk{b: append([]byte(nil), buf[:n]...)}:
			case <-k.done:
				return
			}
		}
		if err != nil {
			if !errors.Is(err, cancelreader.ErrCanceled) {
				select {
				case out <- chunk{err: err}:
				case <-k.done:
				}
			}
			return
		}
	}
}

// loop decodes chunks into keys. A sequence split across reads is held until
// the next chunk, or until escDelay passes for one that starts with ESC.
func (k *KeyReader) loop(chunks <-chan chunk) {
	defer k.wg.Done()
	defer close(k.events)

	var pending []byte
	var expired <-chan time.Time
	for {
		select {
		case c, ok := <-chunks:
			if !ok {
				k.emit(Flush(pending))
				return
			}
			if c.err != nil {
				if k.emit(Flush(pending)) {
					k.send(keyEvent{err: c.err})
				}
				return
			}
			var keys []tea.KeyMsg
			keys, pending = Decode(append(pending, c.b...))
			if !k.emit(keys) {
				return
			}
			expired = nil
			if len(pending) > 0 && pending[0] == esc {
				expired = time.After(escDelay)
			}
		case <-expired:
			expired = nil
			keys := Flush(pending)
			pending = nil
			if !k.emit(keys) {
				return
			}
		case <-k.done:
			return
		}
	}
}

func (k *KeyReader) emit(keys []tea.KeyMsg) bool {
	for _, key := range keys {
		if !k.send(keyEvent{key: key}) {
			return false
		}
	}
	return true
}

func (k *KeyReader) send(ev keyEvent) bool {
	select {
	case k.events <- ev:
		return true
	case <-k.done:
		return false
	}
}

// ReadKey returns the next key press. It returns io.EOF once the input is
// exhausted and ctx.Err() when ctx ends first.
func (k *KeyReader) ReadKey(ctx context.Context) (tea.KeyMsg, error) {
	select {
	case ev, ok := <-k.events:
		if !ok {
			return tea.KeyMsg{}, io.EOF
		}
		return ev.key, ev.err
	case <-ctx.Done():
		return tea.KeyMsg{}, ctx.Err()
	}
}

// Close stops the reader goroutine. It waits for the goroutine to exit when the
// underlying reader supports cancellation.
func (k *KeyReader) Close() error {
	var err error
	k.once.Do(func() {
		close(k.done)
		if k.r.Cancel() {
			k.wg.Wait()
		}
		err = k.r.Close()
	})
	return err
}
