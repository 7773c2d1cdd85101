package client

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client is a CPA broker client tracked by the desk.
type Client struct {
	ID            string
	Name          string
	Broker        string
	Platform      string
	AccountNumber string
	// WalletAddress is the client's external deposit address. A non-empty
	// address triggers provisioning of a client-kind ledger wallet.
	WalletAddress string
	CPAFee        decimal.Decimal
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
