// Package scanner distinguishes rapid keystroke bursts produced by a hardware
// barcode scanner (acting as a keyboard) from ordinary human typing.
//
// Scanners emit characters far faster than the inter-key timeout, so a buffer
// that survives until Enter must have come from a scan. Human typing keeps
// tripping the timeout and the buffer never accumulates a full code. This is
// a best-effort heuristic: fast typists can trigger it, and a partial scan is
// silently dropped. Neither case is an error.
package scanner

import (
	"strings"
	"time"
)

// DefaultTimeout is the inter-key gap above which buffered input is
// considered human typing and discarded. Tuned empirically on USB scanners;
// override via Config if target hardware needs a different threshold.
const DefaultTimeout = 100 * time.Millisecond

// Config tunes a Recognizer.
type Config struct {
	// Timeout is the maximum gap between keystrokes of a single scan.
	// Zero means DefaultTimeout.
	Timeout time.Duration
	// Now overrides the clock, for tests. Zero means time.Now.
	Now func() time.Time
}

// Recognizer accumulates printable keystrokes into a private buffer and emits
// the assembled code through a one-way callback when Enter arrives in time.
// It holds no reference to any other component and is not safe for concurrent
// use; feed it from the single input-event loop.
type Recognizer struct {
	timeout time.Duration
	now     func() time.Time
	onScan  func(code string)

	buf  strings.Builder
	last time.Time
}

// New creates a Recognizer that invokes onScan once per recognized code.
func New(cfg Config, onScan func(code string)) *Recognizer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Recognizer{
		timeout: cfg.Timeout,
		now:     cfg.Now,
		onScan:  onScan,
	}
}

// Key feeds one printable character. A gap longer than the timeout since the
// previous keystroke discards whatever was buffered before this character.
func (r *Recognizer) Key(ch rune) {
	now := r.now()
	if r.expired(now) {
		r.buf.Reset()
	}
	r.buf.WriteRune(ch)
	r.last = now
}

// Enter commits the buffer. A non-empty, non-expired buffer is emitted as one
// scanned code; otherwise nothing happens. The buffer is cleared either way.
func (r *Recognizer) Enter() {
	defer r.buf.Reset()

	if r.buf.Len() == 0 {
		return
	}
	if r.expired(r.now()) {
		return
	}
	r.onScan(r.buf.String())
}

// expired reports whether the buffered input is stale at instant now.
func (r *Recognizer) expired(now time.Time) bool {
	return r.buf.Len() > 0 && now.Sub(r.last) > r.timeout
}
