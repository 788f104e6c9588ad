// Package pause implements the two-state switch gating all mutating ledger
// operations. Pausing while already paused is allowed; the gate only refuses
// work, it never refuses toggles.
package pause

import dErrors "colonx/pkg/domain-errors"

// Gate is the pause state machine. Active is the initial state.
type Gate struct {
	paused bool
}

func NewGate() *Gate { return &Gate{} }

// Pause transitions Active -> Paused. Idempotent.
func (g *Gate) Pause() { g.paused = true }

// Unpause transitions Paused -> Active. Idempotent.
func (g *Gate) Unpause() { g.paused = false }

func (g *Gate) IsPaused() bool { return g.paused }

// EnsureOpen refuses mutating work while the gate is closed.
func (g *Gate) EnsureOpen() error {
	if g.paused {
		return dErrors.New(dErrors.CodePaused, "contract is paused")
	}
	return nil
}
