// Package pos implements the point-of-sale session: the in-memory cart, the
// SALE / PRICE_CHECK mode switch, payment entry, checkout submission, and the
// post-sale reset. All state is owned by the Session and lost when the
// process exits; the Gateway holds the authoritative stock and totals.
package pos

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/libtak/pos-terminal/internal/domain/product"
	"github.com/libtak/pos-terminal/internal/domain/sale"
)

// Mode selects how a product activation (search click or matching scan) is
// interpreted.
type Mode string

const (
	// ModeSale routes activations into the cart.
	ModeSale Mode = "SALE"
	// ModePriceCheck shows a read-only price/stock overlay instead.
	ModePriceCheck Mode = "PRICE_CHECK"
)

// DefaultSuccessDelay is how long the success overlay stays up before the
// session resets for the next customer.
const DefaultSuccessDelay = 2 * time.Second

// Invalidator drops cached query results so screens rendered after a sale
// reflect the new stock.
type Invalidator interface {
	Invalidate(prefix string)
}

// ReceiptPrinter hands a completed sale to the printing pipeline. It is
// fire-and-forget: print failures must not affect the checkout outcome.
type ReceiptPrinter interface {
	PrintSale(result *sale.Result, lines []Line, tendered, change decimal.Decimal)
}

// Config tunes a Session.
type Config struct {
	// SuccessDelay overrides DefaultSuccessDelay when positive.
	SuccessDelay time.Duration
	// PaymentMethod tags submitted sales. Empty means cash.
	PaymentMethod sale.PaymentMethod

	// OnChange is called after every state transition, on whichever
	// goroutine performed it. Renderers use it to redraw.
	OnChange func()
	// OnError receives the Gateway's human-readable message when a
	// checkout fails.
	OnError func(msg string)

	// AfterFunc overrides timer creation, for tests. Zero means
	// time.AfterFunc.
	AfterFunc func(d time.Duration, f func()) *time.Timer
}

// Session is the POS state machine. All exported methods are safe for
// concurrent use, but state only changes on discrete calls: user input,
// checkout completion, and the success-overlay timer.
type Session struct {
	lg       *zap.Logger
	cfg      Config
	products product.Searcher
	sales    sale.Submitter
	cache    Invalidator
	barcodes *BarcodeIndex
	receipts ReceiptPrinter

	mu         sync.Mutex
	mode       Mode
	cart       *Cart
	searchTerm string
	results    []product.Product

	paymentOpen bool
	tendered    decimal.Decimal

	inFlight     bool
	successShown bool
	priceCheck   *product.Product
}

// NewSession creates a Session in SALE mode with an empty cart. The barcode
// index and receipt printer may be nil.
func NewSession(
	lg *zap.Logger,
	cfg Config,
	products product.Searcher,
	sales sale.Submitter,
	cache Invalidator,
	barcodes *BarcodeIndex,
	receipts ReceiptPrinter,
) *Session {
	if cfg.SuccessDelay <= 0 {
		cfg.SuccessDelay = DefaultSuccessDelay
	}
	if cfg.PaymentMethod == "" {
		cfg.PaymentMethod = sale.PaymentCash
	}
	if cfg.AfterFunc == nil {
		cfg.AfterFunc = time.AfterFunc
	}
	return &Session{
		lg:       lg,
		cfg:      cfg,
		products: products,
		sales:    sales,
		cache:    cache,
		barcodes: barcodes,
		receipts: receipts,
		mode:     ModeSale,
		cart:     NewCart(),
	}
}

// SetMode switches between SALE and PRICE_CHECK. Cart contents are untouched.
func (s *Session) SetMode(m Mode) {
	s.mu.Lock()
	s.mode = m
	s.mu.Unlock()
	s.changed()
}

// Mode returns the current activation mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Search updates the search term and re-queries the Gateway. An empty term
// clears the result grid without a query, keeping the screen scan-ready.
func (s *Session) Search(ctx context.Context, term string) error {
	s.mu.Lock()
	s.searchTerm = term
	s.mu.Unlock()

	if term == "" {
		s.mu.Lock()
		s.results = nil
		s.mu.Unlock()
		s.changed()
		return nil
	}

	found, err := s.products.Search(ctx, term)
	if err != nil {
		return err
	}

	// Last write wins: a stale response for an older term is simply
	// overwritten by whichever query returns later.
	s.mu.Lock()
	s.results = found
	s.mu.Unlock()
	s.changed()
	return nil
}

// Activate routes a product according to the current mode: into the cart
// under SALE (soft stock guards apply), or into the price-check overlay
// under PRICE_CHECK.
func (s *Session) Activate(p product.Product) {
	s.mu.Lock()
	switch s.mode {
	case ModePriceCheck:
		cp := p
		s.priceCheck = &cp
	default:
		s.cart.Add(p)
	}
	s.mu.Unlock()
	s.changed()
}

// HandleScan resolves a scanned code against the loaded products and
// activates the match. Unknown codes are ignored; the prefilter rejects most
// of them before the list is even walked.
func (s *Session) HandleScan(code string) {
	if !s.barcodes.MayContain(code) {
		s.lg.Debug("Scan rejected by barcode index", zap.String("code", code))
		return
	}

	s.mu.Lock()
	var match *product.Product
	for i := range s.results {
		if s.results[i].Barcode == code {
			match = &s.results[i]
			break
		}
	}
	s.mu.Unlock()

	if match == nil {
		s.lg.Debug("Scanned code not in loaded products", zap.String("code", code))
		return
	}
	s.Activate(*match)
}

// DismissPriceCheck closes the price-check overlay.
func (s *Session) DismissPriceCheck() {
	s.mu.Lock()
	s.priceCheck = nil
	s.mu.Unlock()
	s.changed()
}

// AdjustQuantity changes a cart line's quantity by delta, clamped to
// [1, stock].
func (s *Session) AdjustQuantity(productID int64, delta int) {
	s.mu.Lock()
	s.cart.Adjust(productID, delta)
	s.mu.Unlock()
	s.changed()
}

// RemoveLine deletes a cart line.
func (s *Session) RemoveLine(productID int64) {
	s.mu.Lock()
	s.cart.Remove(productID)
	s.mu.Unlock()
	s.changed()
}

// ClearCart discards the whole cart. The caller is responsible for asking
// the cashier to confirm first.
func (s *Session) ClearCart() {
	s.mu.Lock()
	s.cart.Clear()
	s.mu.Unlock()
	s.changed()
}

// OpenPayment enters payment entry. It is only reachable with a non-empty
// cart; otherwise nothing happens.
func (s *Session) OpenPayment() {
	s.mu.Lock()
	if !s.cart.IsEmpty() {
		s.paymentOpen = true
		s.tendered = decimal.Zero
	}
	s.mu.Unlock()
	s.changed()
}

// ClosePayment abandons payment entry, discarding the tendered amount. The
// cart is untouched.
func (s *Session) ClosePayment() {
	s.mu.Lock()
	s.paymentOpen = false
	s.tendered = decimal.Zero
	s.mu.Unlock()
	s.changed()
}

// SetTendered records the cash amount received from the customer.
func (s *Session) SetTendered(amount decimal.Decimal) {
	s.mu.Lock()
	s.tendered = amount
	s.mu.Unlock()
	s.changed()
}

// Change returns tendered minus the cart total. Negative change means the
// customer has not handed over enough yet.
func (s *Session) Change() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tendered.Sub(s.cart.Total())
}

// CanCheckout reports whether a checkout may be submitted right now: cart
// non-empty, change not negative, and no submission already in flight.
func (s *Session) CanCheckout() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canCheckoutLocked()
}

func (s *Session) canCheckoutLocked() bool {
	return !s.cart.IsEmpty() &&
		!s.inFlight &&
		!s.tendered.Sub(s.cart.Total()).IsNegative()
}

// SubmitCheckout sends the cart to the Gateway. The call returns immediately;
// completion arrives through OnChange (success) or OnError (failure). While a
// submission is in flight further invocations do nothing, so at most one
// request is ever outstanding.
func (s *Session) SubmitCheckout(ctx context.Context) {
	s.mu.Lock()
	if !s.canCheckoutLocked() {
		s.mu.Unlock()
		return
	}
	s.inFlight = true

	lines := s.cart.Lines()
	req := &sale.Request{
		Items:         make([]sale.Item, len(lines)),
		PaymentMethod: s.cfg.PaymentMethod,
		Reference:     uuid.New().String(),
	}
	for i, l := range lines {
		req.Items[i] = sale.Item{ProductID: l.Product.ID, Quantity: l.Quantity}
	}
	tendered := s.tendered
	change := s.tendered.Sub(s.cart.Total())
	s.mu.Unlock()
	s.changed()

	go func() {
		result, err := s.sales.Submit(ctx, req)
		if err != nil {
			s.checkoutFailed(err)
			return
		}
		s.checkoutSucceeded(result, lines, tendered, change)
	}()
}

// checkoutFailed leaves the cart and payment entry exactly as they were so
// the cashier can amend and retry.
func (s *Session) checkoutFailed(err error) {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()

	s.lg.Warn("Checkout rejected", zap.Error(err))
	if s.cfg.OnError != nil {
		s.cfg.OnError(err.Error())
	}
	s.changed()
}

func (s *Session) checkoutSucceeded(result *sale.Result, lines []Line, tendered, change decimal.Decimal) {
	s.mu.Lock()
	s.inFlight = false
	s.paymentOpen = false
	s.successShown = true
	s.mu.Unlock()

	s.lg.Info("Sale completed",
		zap.Int64("sale_id", result.ID),
		zap.String("total", result.Total.StringFixed(2)),
	)

	// Stock changed on the Gateway; stale product and dashboard data must
	// not be served again.
	s.cache.Invalidate("products")
	s.cache.Invalidate("dashboardStats")

	if s.receipts != nil {
		s.receipts.PrintSale(result, lines, tendered, change)
	}
	s.changed()

	s.cfg.AfterFunc(s.cfg.SuccessDelay, s.resetAfterSuccess)
}

// resetAfterSuccess returns the session to the idle, scan-ready state once
// the success overlay has had its moment.
func (s *Session) resetAfterSuccess() {
	s.mu.Lock()
	s.cart.Clear()
	s.tendered = decimal.Zero
	s.searchTerm = ""
	s.results = nil
	s.successShown = false
	s.mu.Unlock()
	s.changed()
}

func (s *Session) changed() {
	if s.cfg.OnChange != nil {
		s.cfg.OnChange()
	}
}

// View is an immutable snapshot of the session for rendering.
type View struct {
	Mode         Mode
	SearchTerm   string
	Results      []product.Product
	Lines        []Line
	ItemCount    int
	Total        decimal.Decimal
	PaymentOpen  bool
	Tendered     decimal.Decimal
	Change       decimal.Decimal
	InFlight     bool
	SuccessShown bool
	PriceCheck   *product.Product
}

// Snapshot captures the current state in one consistent read.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Mode:         s.mode,
		SearchTerm:   s.searchTerm,
		Results:      append([]product.Product(nil), s.results...),
		Lines:        s.cart.Lines(),
		ItemCount:    s.cart.ItemCount(),
		Total:        s.cart.Total(),
		PaymentOpen:  s.paymentOpen,
		Tendered:     s.tendered,
		Change:       s.tendered.Sub(s.cart.Total()),
		InFlight:     s.inFlight,
		SuccessShown: s.successShown,
	}
	if s.priceCheck != nil {
		cp := *s.priceCheck
		v.PriceCheck = &cp
	}
	return v
}
