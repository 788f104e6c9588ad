// Package ledger owns the accounting state for a single asset: balances,
// allowances and total supply. Mutation primitives enforce the arithmetic
// contracts (no negative balances, supply always equals the sum of balances,
// overflow-checked additions); authorization, pausing and the validation
// pipeline live upstream.
package ledger

import (
	"math"

	dErrors "colonx/pkg/domain-errors"
)

// State is the explicit store object every operation works against. It is not
// safe for concurrent use; the orchestration layer serializes access and uses
// Clone to stage mutations so a failed call leaves the committed state
// untouched.
type State struct {
	meta       Metadata
	balances   map[Address]int64
	allowances map[allowanceKey]Allowance
	supply     int64
	height     uint32
}

func NewState() *State {
	return &State{
		balances:   make(map[Address]int64),
		allowances: make(map[allowanceKey]Allowance),
	}
}

// Clone returns a deep copy. Staged entry points mutate the copy and swap it
// in only when every step succeeded.
func (s *State) Clone() *State {
	c := &State{
		meta:       s.meta,
		balances:   make(map[Address]int64, len(s.balances)),
		allowances: make(map[allowanceKey]Allowance, len(s.allowances)),
		supply:     s.supply,
		height:     s.height,
	}
	for addr, bal := range s.balances {
		c.balances[addr] = bal
	}
	for key, a := range s.allowances {
		c.allowances[key] = a
	}
	return c
}

// SetMetadata fixes the token identity. Called once from initialization.
func (s *State) SetMetadata(meta Metadata) {
	s.meta = meta
}

func (s *State) Metadata() Metadata { return s.meta }

// Initialized reports whether metadata has been set. The name is the
// initialization marker, matching the contract-initialized guard.
func (s *State) Initialized() bool { return s.meta.Name != "" }

// Height is the current ledger height. It advances once per committed
// mutating entry point and anchors allowance expiry checks.
func (s *State) Height() uint32 { return s.height }

// AdvanceHeight bumps the ledger height by one.
func (s *State) AdvanceHeight() { s.height++ }

// BalanceOf never fails; unknown addresses hold zero.
func (s *State) BalanceOf(addr Address) int64 { return s.balances[addr] }

func (s *State) TotalSupply() int64 { return s.supply }

// AllowanceOf returns the live allowance amount. An expired record reads as
// zero without being deleted.
func (s *State) AllowanceOf(owner, spender Address) int64 {
	a, ok := s.allowances[allowanceKey{Owner: owner, Spender: spender}]
	if !ok {
		return 0
	}
	if a.ExpirationHeight != 0 && a.ExpirationHeight < s.height {
		return 0
	}
	return a.Amount
}

// Mint credits an account and grows supply by the same amount. The account is
// created implicitly on first credit.
func (s *State) Mint(to Address, amount int64) error {
	newBalance, err := checkedAdd(s.balances[to], amount)
	if err != nil {
		return err
	}
	newSupply, err := checkedAdd(s.supply, amount)
	if err != nil {
		return err
	}
	s.balances[to] = newBalance
	s.supply = newSupply
	return nil
}

// Burn debits an account and shrinks supply by the same amount.
func (s *State) Burn(from Address, amount int64) error {
	if s.balances[from] < amount {
		return dErrors.New(dErrors.CodeInsufficientBalance, "insufficient balance for burn")
	}
	s.balances[from] -= amount
	s.supply -= amount
	return nil
}

// Transfer moves funds between distinct accounts; supply is unchanged.
func (s *State) Transfer(from, to Address, amount int64) error {
	if from == to {
		return dErrors.New(dErrors.CodeSelfTransfer, "cannot transfer to same address")
	}
	if s.balances[from] < amount {
		return dErrors.New(dErrors.CodeInsufficientBalance, "insufficient balance for transfer")
	}
	newBalance, err := checkedAdd(s.balances[to], amount)
	if err != nil {
		return err
	}
	s.balances[from] -= amount
	s.balances[to] = newBalance
	return nil
}

// TransferFrom is Transfer plus allowance consumption: the spender's
// allowance must cover the amount and not be expired, and is decremented
// after the transfer succeeds.
func (s *State) TransferFrom(spender, from, to Address, amount int64) error {
	if err := s.checkAllowance(from, spender, amount); err != nil {
		return err
	}
	if err := s.Transfer(from, to, amount); err != nil {
		return err
	}
	s.debitAllowance(from, spender, amount)
	return nil
}

// BurnFrom is Burn plus the same allowance consumption as TransferFrom.
func (s *State) BurnFrom(spender, from Address, amount int64) error {
	if err := s.checkAllowance(from, spender, amount); err != nil {
		return err
	}
	if err := s.Burn(from, amount); err != nil {
		return err
	}
	s.debitAllowance(from, spender, amount)
	return nil
}

// Approve overwrites the (owner, spender) allowance record; it never adds to
// an existing one.
func (s *State) Approve(owner, spender Address, amount int64, expirationHeight uint32) {
	s.allowances[allowanceKey{Owner: owner, Spender: spender}] = Allowance{
		Amount:           amount,
		ExpirationHeight: expirationHeight,
	}
}

func (s *State) checkAllowance(owner, spender Address, amount int64) error {
	a := s.allowances[allowanceKey{Owner: owner, Spender: spender}]
	if a.ExpirationHeight != 0 && a.ExpirationHeight < s.height {
		return dErrors.New(dErrors.CodeInsufficientAllowance, "allowance expired")
	}
	if a.Amount < amount {
		return dErrors.New(dErrors.CodeInsufficientAllowance, "insufficient allowance")
	}
	return nil
}

// debitAllowance runs only after checkAllowance passed for the same amount.
func (s *State) debitAllowance(owner, spender Address, amount int64) {
	key := allowanceKey{Owner: owner, Spender: spender}
	a := s.allowances[key]
	a.Amount -= amount
	s.allowances[key] = a
}

func checkedAdd(a, b int64) (int64, error) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, dErrors.New(dErrors.CodeAmountTooLarge, "amount overflows representable range")
	}
	return a + b, nil
}
