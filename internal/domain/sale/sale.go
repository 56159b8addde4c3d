package sale

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod tags how the customer paid. The Gateway validates the value;
// the client only carries it through.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "CASH"
	PaymentCard     PaymentMethod = "CARD"
	PaymentTransfer PaymentMethod = "TRANSFER"
)

// Item is one (product, quantity) pair of a checkout submission.
type Item struct {
	ProductID int64
	Quantity  int
}

// Request is the one-shot outbound checkout record sent to the Gateway.
// Reference is a client-generated UUID so a retried submission can be
// correlated in the Gateway logs.
type Request struct {
	Items         []Item
	PaymentMethod PaymentMethod
	Reference     string
}

// Result carries the Gateway's authoritative view of a completed sale.
type Result struct {
	ID            int64
	Total         decimal.Decimal
	PaymentMethod PaymentMethod
	CreatedAt     time.Time
}

// Record is a past sale as listed by the Gateway, used by the returns screen
// to pick the sale a customer is bringing items back from.
type Record struct {
	ID        int64
	Total     decimal.Decimal
	CreatedAt time.Time
	Items     []RecordItem
}

// RecordItem is one line of a past sale.
type RecordItem struct {
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Submitter sends a checkout to the Gateway. Stock races (another terminal
// selling the last unit) surface as an ordinary error from Submit.
type Submitter interface {
	Submit(ctx context.Context, req *Request) (*Result, error)
}
