package wallet

import "time"

// Kind classifies who a wallet belongs to.
type Kind string

const (
	// KindPrincipal marks the desk's main operating wallets.
	KindPrincipal Kind = "principal"
	// KindCollaborator marks wallets held by team collaborators.
	KindCollaborator Kind = "collaborator"
	// KindClient marks wallets owned by CPA clients.
	KindClient Kind = "client"
)

// Valid reports whether the kind is one of the known values.
func (k Kind) Valid() bool {
	switch k {
	case KindPrincipal, KindCollaborator, KindClient:
		return true
	default:
		return false
	}
}

// Team reports whether the kind denotes a desk-held wallet rather than a
// client one.
func (k Kind) Team() bool {
	return k == KindPrincipal || k == KindCollaborator
}

// Wallet is a named balance-holding entity. The surrogate ID is the key
// transactions reference; Name is a mutable display attribute kept unique so
// that lookups by name keep working after a rename without orphaning history.
type Wallet struct {
	ID        string
	Name      string
	Kind      Kind
	Currency  string
	Owner     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
