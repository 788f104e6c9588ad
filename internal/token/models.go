package token

import "colonx/internal/ledger"

// Token identity, fixed at initialization and immutable thereafter. The
// upstream documentation mentions two decimal places; the deployed constant
// is zero and that constant is the source of truth here.
const (
	Name     = "Costa Rica Colon"
	Symbol   = "CRCX"
	Decimals = uint32(0)
)

// Recipient is one (address, amount) pair in a batch mint.
type Recipient struct {
	Address ledger.Address
	Amount  int64
}

// Info is the aggregate read combining metadata with current state.
type Info struct {
	Name        string
	Symbol      string
	Decimals    uint32
	TotalSupply int64
	Paused      bool
}
