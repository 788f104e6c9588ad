package ledger

// Address is an opaque, non-empty caller or account identifier. The ledger
// does not interpret its format; emptiness is the only invalid shape.
type Address string

// Allowance is a spender's pre-authorized permission to move an owner's
// funds. ExpirationHeight of zero means the allowance never expires; any
// other value is compared against the ledger height when the allowance is
// consumed, never in the background.
type Allowance struct {
	Amount           int64
	ExpirationHeight uint32
}

// Metadata holds the token identity fixed at initialization.
type Metadata struct {
	Name     string
	Symbol   string
	Decimals uint32
}

type allowanceKey struct {
	Owner   Address
	Spender Address
}
