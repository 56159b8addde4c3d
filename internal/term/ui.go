// Package term is the cashier-facing terminal frontend: a raw-mode keyboard
// loop feeding the scan recognizer and the POS session, and a full-screen
// text renderer redrawn on every state change.
package term

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	xterm "golang.org/x/term"

	"github.com/libtak/pos-terminal/internal/dashboard"
	"github.com/libtak/pos-terminal/internal/pos"
	"github.com/libtak/pos-terminal/internal/scanner"
)

// ErrQuit is returned by Run when the operator exits with Ctrl+C.
var ErrQuit = errors.New("operator quit")

// errLogout propagates a logout choice out of the failure screen.
var errLogout = errors.New("operator logout")

// Config tunes the UI.
type Config struct {
	// In is the keyboard stream; Out receives rendered frames.
	In  io.Reader
	Out io.Writer
	// RawFD is the file descriptor to place in raw mode, or -1 when the
	// input is not a real terminal (tests).
	RawFD int

	Currency  string
	StoreName string
	// Scanner tunes keystroke-burst recognition.
	Scanner scanner.Config
	// LoadDashboard fetches the home-screen snapshot shown behind Ctrl+D.
	// Nil disables the overlay.
	LoadDashboard func(ctx context.Context) (*dashboard.Snapshot, error)
	// Logout is invoked when the operator logs out from the failure screen.
	Logout func()
}

// UI owns the input loop and the screen.
type UI struct {
	lg      *zap.Logger
	cfg     Config
	session *pos.Session
	rec     *scanner.Recognizer
	kb      *Keyboard

	mu sync.Mutex
	st renderState

	// scanned flags that the recognizer consumed the pending Enter.
	scanned bool
}

// New creates the UI over a session. Wire Refresh into the session's OnChange
// and SetStatus into OnError so Gateway failures land on the status line.
func New(lg *zap.Logger, cfg Config, session *pos.Session) *UI {
	ui := &UI{
		lg:      lg,
		cfg:     cfg,
		session: session,
		kb:      NewKeyboard(cfg.In),
	}
	ui.st.Currency = cfg.Currency
	ui.st.StoreName = cfg.StoreName
	ui.rec = scanner.New(cfg.Scanner, func(code string) {
		ui.scanned = true
		session.HandleScan(code)
	})
	return ui
}

// Refresh redraws the screen from the current session state.
func (u *UI) Refresh() {
	u.mu.Lock()
	defer u.mu.Unlock()
	renderFrame(u.cfg.Out, u.session.Snapshot(), u.st)
}

// SetStatus puts a message on the status line and redraws.
func (u *UI) SetStatus(msg string) {
	u.mu.Lock()
	u.st.Status = msg
	u.mu.Unlock()
	u.Refresh()
}

// Run drives the keyboard loop until the operator quits, the input closes, or
// ctx is cancelled. The terminal is restored on the way out.
func (u *UI) Run(ctx context.Context) error {
	if u.cfg.RawFD >= 0 {
		old, err := xterm.MakeRaw(u.cfg.RawFD)
		if err != nil {
			return errors.Wrap(err, "enter raw mode")
		}
		defer func() { _ = xterm.Restore(u.cfg.RawFD, old) }()
	}

	u.Refresh()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		key, err := u.kb.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := u.dispatch(ctx, key); err != nil {
			switch {
			case errors.Is(err, ErrQuit):
				return ErrQuit
			case errors.Is(err, errLogout):
				if u.cfg.Logout != nil {
					u.cfg.Logout()
				}
				return nil
			default:
				return err
			}
		}
	}
}

// dispatch handles one key behind a panic boundary: a handler panic must not
// take the whole terminal down mid-shift, so it is logged and the operator
// gets a recovery screen instead.
func (u *UI) dispatch(ctx context.Context, key Key) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			u.lg.Error("panic recovered",
				zap.Any("panic", rec),
				zap.Stack("stack"),
			)
			err = u.failureScreen()
		}
	}()
	return u.handleKey(ctx, key)
}

// failureScreen blocks until the operator chooses to reload or log out.
func (u *UI) failureScreen() error {
	renderFailure(u.cfg.Out)
	for {
		key, err := u.kb.Next()
		if err != nil {
			return err
		}
		if key.Kind != KeyRune {
			continue
		}
		switch key.Rune {
		case 'r', 'R':
			u.resetInput()
			u.Refresh()
			return nil
		case 'd', 'D':
			return errLogout
		}
	}
}

func (u *UI) handleKey(ctx context.Context, key Key) error {
	v := u.session.Snapshot()

	switch key.Kind {
	case KeyCtrlC:
		return ErrQuit

	case KeyTab:
		if v.Mode == pos.ModeSale {
			u.session.SetMode(pos.ModePriceCheck)
		} else {
			u.session.SetMode(pos.ModeSale)
		}

	case KeyCtrlK:
		u.session.ClearCart()

	case KeyCtrlD:
		return u.toggleDashboard(ctx)

	case KeyCtrlP:
		u.resetInput()
		u.session.OpenPayment()

	case KeyEscape:
		switch {
		case u.dashboardOpen():
			u.closeDashboard()
		case v.PriceCheck != nil:
			u.session.DismissPriceCheck()
		case v.PaymentOpen:
			u.resetInput()
			u.session.ClosePayment()
		default:
			u.resetInput()
			return u.session.Search(ctx, "")
		}

	case KeyUp:
		u.moveSelection(-1, len(v.Results))
	case KeyDown:
		u.moveSelection(+1, len(v.Results))

	case KeyBackspace:
		u.mu.Lock()
		if r := []rune(u.st.Input); len(r) > 0 {
			u.st.Input = string(r[:len(r)-1])
		}
		u.mu.Unlock()
		u.Refresh()

	case KeyRune:
		u.mu.Lock()
		u.st.Input += string(key.Rune)
		u.mu.Unlock()
		u.rec.Key(key.Rune)
		u.Refresh()

	case KeyEnter:
		return u.commit(ctx, v)
	}
	return nil
}

// commit resolves Enter: a recognized scan wins, then payment entry, then
// result activation, then a search round trip.
func (u *UI) commit(ctx context.Context, v pos.View) error {
	u.scanned = false
	u.rec.Enter()
	if u.scanned {
		// The burst was a scan; whatever it echoed into the input field
		// was never a search term.
		u.resetInput()
		return nil
	}

	u.mu.Lock()
	input := strings.TrimSpace(u.st.Input)
	selected := u.st.Selected
	u.mu.Unlock()

	if v.PaymentOpen {
		return u.commitPayment(ctx, input)
	}

	if input == "" {
		if selected >= 0 && selected < len(v.Results) {
			u.session.Activate(v.Results[selected])
		}
		return nil
	}

	u.resetInput()
	if err := u.session.Search(ctx, input); err != nil {
		u.SetStatus(err.Error())
		return nil
	}
	u.clearStatus()
	return nil
}

func (u *UI) commitPayment(ctx context.Context, input string) error {
	if input != "" {
		amount, err := decimal.NewFromString(input)
		if err != nil {
			u.SetStatus("montant invalide")
			return nil
		}
		u.session.SetTendered(amount)
		u.resetInput()
	}

	if !u.session.CanCheckout() {
		return nil
	}
	u.clearStatus()
	u.session.SubmitCheckout(ctx)
	return nil
}

// toggleDashboard opens the dashboard overlay (fetching a fresh snapshot) or
// closes it when already shown.
func (u *UI) toggleDashboard(ctx context.Context) error {
	if u.cfg.LoadDashboard == nil {
		return nil
	}
	if u.dashboardOpen() {
		u.closeDashboard()
		return nil
	}

	snap, err := u.cfg.LoadDashboard(ctx)
	if err != nil {
		u.SetStatus(err.Error())
		return nil
	}
	u.mu.Lock()
	u.st.Dashboard = snap
	u.mu.Unlock()
	u.Refresh()
	return nil
}

func (u *UI) dashboardOpen() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.st.Dashboard != nil
}

func (u *UI) closeDashboard() {
	u.mu.Lock()
	u.st.Dashboard = nil
	u.mu.Unlock()
	u.Refresh()
}

func (u *UI) moveSelection(delta, n int) {
	u.mu.Lock()
	u.st.Selected += delta
	if u.st.Selected < 0 {
		u.st.Selected = 0
	}
	if n > 0 && u.st.Selected >= n {
		u.st.Selected = n - 1
	}
	u.mu.Unlock()
	u.Refresh()
}

func (u *UI) resetInput() {
	u.mu.Lock()
	u.st.Input = ""
	u.st.Selected = 0
	u.mu.Unlock()
	u.Refresh()
}

func (u *UI) clearStatus() {
	u.mu.Lock()
	u.st.Status = ""
	u.mu.Unlock()
}
