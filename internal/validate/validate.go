// Package validate composes the precondition guards that run before every
// ledger mutation. Each guard returns a typed error; compositions are
// fail-fast, so the first violated guard short-circuits the rest.
package validate

import (
	"math"

	"colonx/internal/ledger"
	dErrors "colonx/pkg/domain-errors"
)

// Operational limits. MinAmount is the smallest transferable amount; the
// documented "one whole token" figure and this literal disagree upstream, and
// the literal wins (see DESIGN.md).
const (
	MinAmount          int64 = 5
	MaxSingleOperation int64 = 100_000_000
	MaxSupply          int64 = 1_000_000_000
)

// Limits carries the toggleable bounds applied by the amount and supply
// guards. The zero value disables everything; use DefaultLimits for the
// production configuration.
type Limits struct {
	MinAmount          int64
	MaxSingleOperation int64
	MaxSupply          int64

	EnableSupplyLimits    bool
	EnableOperationLimits bool
}

func DefaultLimits() Limits {
	return Limits{
		MinAmount:             MinAmount,
		MaxSingleOperation:    MaxSingleOperation,
		MaxSupply:             MaxSupply,
		EnableSupplyLimits:    true,
		EnableOperationLimits: true,
	}
}

// Pipeline evaluates guard compositions against a ledger state.
type Pipeline struct {
	limits Limits
}

func NewPipeline(limits Limits) *Pipeline {
	return &Pipeline{limits: limits}
}

// Initialized requires token metadata to be set before any mutation.
func (p *Pipeline) Initialized(state *ledger.State) error {
	if !state.Initialized() {
		return dErrors.New(dErrors.CodeNotInitialized, "contract not properly initialized")
	}
	return nil
}

// Address requires a non-empty identifier. No further format checks apply.
func (p *Pipeline) Address(addr ledger.Address) error {
	if addr == "" {
		return dErrors.New(dErrors.CodeZeroAddress, "zero address not allowed")
	}
	return nil
}

// SelfTransfer rejects transfers where sender and recipient coincide.
func (p *Pipeline) SelfTransfer(from, to ledger.Address) error {
	if from == to {
		return dErrors.New(dErrors.CodeSelfTransfer, "cannot transfer to same address")
	}
	return nil
}

// AmountRange enforces the minimum and, when enabled, the per-operation cap.
func (p *Pipeline) AmountRange(amount int64) error {
	if amount < p.limits.MinAmount {
		return dErrors.New(dErrors.CodeInvalidAmount, "amount below minimum")
	}
	if p.limits.EnableOperationLimits && amount > p.limits.MaxSingleOperation {
		return dErrors.New(dErrors.CodeAmountTooLarge, "amount exceeds per-operation cap")
	}
	return nil
}

// SupplyLimit rejects mints that would push total supply past the cap. An
// overflowing addition maps to amount_too_large, not exceeds_max_supply.
func (p *Pipeline) SupplyLimit(state *ledger.State, mintAmount int64) error {
	if !p.limits.EnableSupplyLimits {
		return nil
	}
	newSupply, err := checkedAdd(state.TotalSupply(), mintAmount)
	if err != nil {
		return err
	}
	if newSupply > p.limits.MaxSupply {
		return dErrors.New(dErrors.CodeExceedsMaxSupply, "operation would exceed maximum supply")
	}
	return nil
}

// BalanceSufficient requires the address to hold at least the amount.
func (p *Pipeline) BalanceSufficient(state *ledger.State, addr ledger.Address, amount int64) error {
	if state.BalanceOf(addr) < amount {
		return dErrors.New(dErrors.CodeInsufficientBalance, "insufficient balance for operation")
	}
	return nil
}

// Mint composition: initialized, address, amount range, supply limit.
func (p *Pipeline) Mint(state *ledger.State, to ledger.Address, amount int64) error {
	if err := p.Initialized(state); err != nil {
		return err
	}
	if err := p.Address(to); err != nil {
		return err
	}
	if err := p.AmountRange(amount); err != nil {
		return err
	}
	return p.SupplyLimit(state, amount)
}

// Transfer composition: initialized, both addresses, self-transfer, amount
// range, sender balance. Allowance checks belong to the ledger primitive.
func (p *Pipeline) Transfer(state *ledger.State, from, to ledger.Address, amount int64) error {
	if err := p.Initialized(state); err != nil {
		return err
	}
	if err := p.Address(from); err != nil {
		return err
	}
	if err := p.Address(to); err != nil {
		return err
	}
	if err := p.SelfTransfer(from, to); err != nil {
		return err
	}
	if err := p.AmountRange(amount); err != nil {
		return err
	}
	return p.BalanceSufficient(state, from, amount)
}

// Burn composition: initialized, address, amount range, holder balance.
func (p *Pipeline) Burn(state *ledger.State, from ledger.Address, amount int64) error {
	if err := p.Initialized(state); err != nil {
		return err
	}
	if err := p.Address(from); err != nil {
		return err
	}
	if err := p.AmountRange(amount); err != nil {
		return err
	}
	return p.BalanceSufficient(state, from, amount)
}

// Parameters rejects empty parameter lists and empty entries.
func Parameters(params ...string) error {
	if len(params) == 0 {
		return dErrors.New(dErrors.CodeInvalidParameters, "no parameters provided")
	}
	for _, param := range params {
		if param == "" {
			return dErrors.New(dErrors.CodeInvalidParameters, "empty parameter provided")
		}
	}
	return nil
}

func checkedAdd(a, b int64) (int64, error) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, dErrors.New(dErrors.CodeAmountTooLarge, "amount overflows representable range")
	}
	return a + b, nil
}
