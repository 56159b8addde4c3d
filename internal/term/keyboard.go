package term

import (
	"bufio"
	"io"

	"github.com/go-faster/errors"
)

// KeyKind classifies one decoded keyboard event.
type KeyKind int

const (
	KeyRune KeyKind = iota
	KeyEnter
	KeyEscape
	KeyBackspace
	KeyTab
	KeyUp
	KeyDown
	KeyCtrlC
	KeyCtrlD
	KeyCtrlK
	KeyCtrlP
)

// Key is one keyboard event. Rune is set only for KeyRune.
type Key struct {
	Kind KeyKind
	Rune rune
}

// Keyboard decodes raw-mode terminal input into Key events. A hardware
// barcode scanner in keyboard-wedge mode shows up here as a burst of KeyRune
// events followed by KeyEnter, indistinguishable from typing except by speed.
type Keyboard struct {
	r *bufio.Reader
}

// NewKeyboard wraps an input stream already placed in raw mode.
func NewKeyboard(r io.Reader) *Keyboard {
	return &Keyboard{r: bufio.NewReader(r)}
}

// Next blocks for the next key. io.EOF means the input closed.
func (k *Keyboard) Next() (Key, error) {
	ch, _, err := k.r.ReadRune()
	if err != nil {
		return Key{}, errors.Wrap(err, "read key")
	}

	switch ch {
	case '\r', '\n':
		return Key{Kind: KeyEnter}, nil
	case 0x7f, '\b':
		return Key{Kind: KeyBackspace}, nil
	case '\t':
		return Key{Kind: KeyTab}, nil
	case 0x03:
		return Key{Kind: KeyCtrlC}, nil
	case 0x04:
		return Key{Kind: KeyCtrlD}, nil
	case 0x0b:
		return Key{Kind: KeyCtrlK}, nil
	case 0x10:
		return Key{Kind: KeyCtrlP}, nil
	case 0x1b:
		return k.escape()
	}

	if ch < 0x20 {
		// Remaining control characters carry no binding.
		return k.Next()
	}
	return Key{Kind: KeyRune, Rune: ch}, nil
}

// escape resolves an ESC prefix: either a bare Escape press or the start of
// an arrow-key sequence (ESC [ A..D).
func (k *Keyboard) escape() (Key, error) {
	if k.r.Buffered() == 0 {
		return Key{Kind: KeyEscape}, nil
	}
	next, _ := k.r.ReadByte()
	if next != '[' {
		_ = k.r.UnreadByte()
		return Key{Kind: KeyEscape}, nil
	}

	final, err := k.r.ReadByte()
	if err != nil {
		return Key{Kind: KeyEscape}, nil
	}
	switch final {
	case 'A':
		return Key{Kind: KeyUp}, nil
	case 'B':
		return Key{Kind: KeyDown}, nil
	default:
		// Unhandled sequence (Left/Right, Home, ...): swallow it.
		return k.Next()
	}
}
