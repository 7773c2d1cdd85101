package cross

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status tracks the lifecycle of a cross position.
type Status string

const (
	// StatusOpen marks a cross with both legs still running.
	StatusOpen Status = "open"
	// StatusClosed marks a settled cross with a recorded result.
	StatusClosed Status = "closed"
)

// Cross is a paired long/short position held across two broker accounts.
// It is a bookkeeping object of its own; closing a cross does not write to
// the wallet ledger.
type Cross struct {
	ID            string
	Pair          string
	LongClientID  string
	ShortClientID string
	LongBroker    string
	ShortBroker   string
	Amount        decimal.Decimal
	Status        Status
	// Result is the realized outcome, set when the cross closes. Negative
	// values are losses.
	Result   decimal.Decimal
	Note     string
	OpenedAt time.Time
	ClosedAt time.Time // zero while open
}
