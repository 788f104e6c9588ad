// Package token orchestrates the ledger entry points. Every mutating call
// runs the same fixed sequence: pause gate, role check for privileged
// operations, validation pipeline, ledger mutation, event emission. Each
// stage short-circuits on the first failure and a failed call leaves the
// committed state untouched.
package token

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"colonx/internal/events"
	"colonx/internal/ledger"
	"colonx/internal/pause"
	"colonx/internal/platform/metrics"
	"colonx/internal/roles"
	"colonx/internal/validate"
	dErrors "colonx/pkg/domain-errors"
)

// EventPublisher is the announcement seam. Delivery is best effort and never
// affects ledger correctness.
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event) error
}

// Service owns the ledger, role registry and pause gate, and serializes all
// access to them. Entry points are atomic units of work: mutations are staged
// on a cloned state and swapped in only when every step succeeded.
type Service struct {
	mu sync.RWMutex

	state    *ledger.State
	registry *roles.Registry
	gate     *pause.Gate
	pipeline *validate.Pipeline

	publisher EventPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
}

func NewService(limits validate.Limits, publisher EventPublisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		state:     ledger.NewState(),
		registry:  roles.NewRegistry(),
		gate:      pause.NewGate(),
		pipeline:  validate.NewPipeline(limits),
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		tracer:    otel.Tracer("colonx/internal/token"),
	}
}

// Initialize sets the token metadata and the fixed role assignments. It can
// run exactly once; roles cannot be reassigned afterwards.
func (s *Service) Initialize(ctx context.Context, admin, pauser, upgrader, minter ledger.Address) error {
	ctx, span := s.tracer.Start(ctx, "token.initialize")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.registry.Initialized() || s.state.Initialized() {
		return s.reject(ctx, span, dErrors.New(dErrors.CodeAlreadyInitialized, "contract already initialized"))
	}
	for _, addr := range []ledger.Address{admin, pauser, upgrader, minter} {
		if err := s.pipeline.Address(addr); err != nil {
			return s.reject(ctx, span, err)
		}
	}

	s.state.SetMetadata(ledger.Metadata{Name: Name, Symbol: Symbol, Decimals: Decimals})
	s.registry.Initialize(admin, pauser, upgrader, minter)

	s.logger.InfoContext(ctx, "token initialized",
		"name", Name,
		"symbol", Symbol,
		"admin", string(admin),
		"minter", string(minter),
		"pauser", string(pauser),
		"upgrader", string(upgrader),
	)
	return nil
}

// Mint credits a recipient; the caller must hold the minter role.
func (s *Service) Mint(ctx context.Context, caller, to ledger.Address, amount int64) error {
	ctx, span := s.tracer.Start(ctx, "token.mint",
		trace.WithAttributes(attribute.Int64("token.amount", amount)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.gate.EnsureOpen(); err != nil {
		return s.reject(ctx, span, err)
	}
	if err := s.registry.EnsureRole(caller, roles.Minter); err != nil {
		return s.reject(ctx, span, err)
	}

	stage := s.state.Clone()
	if err := s.pipeline.Mint(stage, to, amount); err != nil {
		return s.reject(ctx, span, err)
	}
	if err := stage.Mint(to, amount); err != nil {
		return s.reject(ctx, span, err)
	}
	stage.AdvanceHeight()
	s.state = stage

	s.emit(ctx, events.Event{Topic: events.TopicMint, To: string(to), Amount: amount, Height: stage.Height()})
	s.metrics.Mints.Inc()
	s.logger.InfoContext(ctx, "minted tokens", "to", string(to), "amount", amount, "supply", stage.TotalSupply())
	return nil
}

// BatchMint mints to every recipient in order as one atomic unit: a failure
// on any pair discards the whole batch and returns the first error.
func (s *Service) BatchMint(ctx context.Context, caller ledger.Address, recipients []Recipient) error {
	ctx, span := s.tracer.Start(ctx, "token.batch_mint",
		trace.WithAttributes(attribute.Int("token.recipients", len(recipients))))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.gate.EnsureOpen(); err != nil {
		return s.reject(ctx, span, err)
	}
	if err := s.registry.EnsureRole(caller, roles.Minter); err != nil {
		return s.reject(ctx, span, err)
	}

	stage := s.state.Clone()
	for _, r := range recipients {
		// Supply-limit checks see the effect of earlier pairs in the batch.
		if err := s.pipeline.Mint(stage, r.Address, r.Amount); err != nil {
			return s.reject(ctx, span, err)
		}
		if err := stage.Mint(r.Address, r.Amount); err != nil {
			return s.reject(ctx, span, err)
		}
	}
	stage.AdvanceHeight()
	s.state = stage

	for _, r := range recipients {
		s.emit(ctx, events.Event{Topic: events.TopicMint, To: string(r.Address), Amount: r.Amount, Height: stage.Height()})
	}
	s.metrics.BatchMints.Inc()
	s.logger.InfoContext(ctx, "batch minted tokens", "recipients", len(recipients), "supply", stage.TotalSupply())
	return nil
}

// Transfer moves funds from the authenticated caller to a recipient.
func (s *Service) Transfer(ctx context.Context, from, to ledger.Address, amount int64) error {
	ctx, span := s.tracer.Start(ctx, "token.transfer",
		trace.WithAttributes(attribute.Int64("token.amount", amount)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.gate.EnsureOpen(); err != nil {
		return s.reject(ctx, span, err)
	}

	stage := s.state.Clone()
	if err := s.pipeline.Transfer(stage, from, to, amount); err != nil {
		return s.reject(ctx, span, err)
	}
	if err := stage.Transfer(from, to, amount); err != nil {
		return s.reject(ctx, span, err)
	}
	stage.AdvanceHeight()
	s.state = stage

	s.emit(ctx, events.Event{Topic: events.TopicTransfer, From: string(from), To: string(to), Amount: amount, Height: stage.Height()})
	s.metrics.Transfers.Inc()
	s.logger.InfoContext(ctx, "transferred tokens", "from", string(from), "to", string(to), "amount", amount)
	return nil
}

// TransferFrom moves an owner's funds using the authenticated spender's
// allowance. Allowance sufficiency and expiry are enforced by the ledger
// primitive, not the pipeline.
func (s *Service) TransferFrom(ctx context.Context, spender, from, to ledger.Address, amount int64) error {
	ctx, span := s.tracer.Start(ctx, "token.transfer_from",
		trace.WithAttributes(attribute.Int64("token.amount", amount)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.gate.EnsureOpen(); err != nil {
		return s.reject(ctx, span, err)
	}

	stage := s.state.Clone()
	if err := s.pipeline.Transfer(stage, from, to, amount); err != nil {
		return s.reject(ctx, span, err)
	}
	if err := s.pipeline.Address(spender); err != nil {
		return s.reject(ctx, span, err)
	}
	if err := stage.TransferFrom(spender, from, to, amount); err != nil {
		return s.reject(ctx, span, err)
	}
	stage.AdvanceHeight()
	s.state = stage

	s.emit(ctx, events.Event{Topic: events.TopicTransfer, From: string(from), To: string(to), Amount: amount, Height: stage.Height()})
	s.metrics.Transfers.Inc()
	s.logger.InfoContext(ctx, "transferred tokens via allowance",
		"spender", string(spender), "from", string(from), "to", string(to), "amount", amount)
	return nil
}

// Burn destroys funds held by the authenticated caller.
func (s *Service) Burn(ctx context.Context, from ledger.Address, amount int64) error {
	ctx, span := s.tracer.Start(ctx, "token.burn",
		trace.WithAttributes(attribute.Int64("token.amount", amount)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.gate.EnsureOpen(); err != nil {
		return s.reject(ctx, span, err)
	}

	stage := s.state.Clone()
	if err := s.pipeline.Burn(stage, from, amount); err != nil {
		return s.reject(ctx, span, err)
	}
	if err := stage.Burn(from, amount); err != nil {
		return s.reject(ctx, span, err)
	}
	stage.AdvanceHeight()
	s.state = stage

	s.emit(ctx, events.Event{Topic: events.TopicBurn, From: string(from), Amount: amount, Height: stage.Height()})
	s.metrics.Burns.Inc()
	s.logger.InfoContext(ctx, "burned tokens", "from", string(from), "amount", amount, "supply", stage.TotalSupply())
	return nil
}

// BurnFrom destroys an owner's funds using the authenticated spender's
// allowance.
func (s *Service) BurnFrom(ctx context.Context, spender, from ledger.Address, amount int64) error {
	ctx, span := s.tracer.Start(ctx, "token.burn_from",
		trace.WithAttributes(attribute.Int64("token.amount", amount)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.gate.EnsureOpen(); err != nil {
		return s.reject(ctx, span, err)
	}

	stage := s.state.Clone()
	if err := s.pipeline.Burn(stage, from, amount); err != nil {
		return s.reject(ctx, span, err)
	}
	if err := s.pipeline.Address(spender); err != nil {
		return s.reject(ctx, span, err)
	}
	if err := stage.BurnFrom(spender, from, amount); err != nil {
		return s.reject(ctx, span, err)
	}
	stage.AdvanceHeight()
	s.state = stage

	s.emit(ctx, events.Event{Topic: events.TopicBurn, From: string(from), Amount: amount, Height: stage.Height()})
	s.metrics.Burns.Inc()
	s.logger.InfoContext(ctx, "burned tokens via allowance",
		"spender", string(spender), "from", string(from), "amount", amount)
	return nil
}

// Approve overwrites the allowance the caller grants to a spender. Expiry is
// interpreted only when the allowance is consumed.
func (s *Service) Approve(ctx context.Context, from, spender ledger.Address, amount int64, expirationHeight uint32) error {
	ctx, span := s.tracer.Start(ctx, "token.approve",
		trace.WithAttributes(attribute.Int64("token.amount", amount)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.gate.EnsureOpen(); err != nil {
		return s.reject(ctx, span, err)
	}

	stage := s.state.Clone()
	if err := s.pipeline.Initialized(stage); err != nil {
		return s.reject(ctx, span, err)
	}
	if err := s.pipeline.Address(from); err != nil {
		return s.reject(ctx, span, err)
	}
	if err := s.pipeline.Address(spender); err != nil {
		return s.reject(ctx, span, err)
	}
	if amount < 0 {
		return s.reject(ctx, span, dErrors.New(dErrors.CodeInvalidAmount, "allowance amount must not be negative"))
	}
	stage.Approve(from, spender, amount, expirationHeight)
	stage.AdvanceHeight()
	s.state = stage

	s.logger.InfoContext(ctx, "approved allowance",
		"owner", string(from), "spender", string(spender), "amount", amount, "expiration_height", expirationHeight)
	return nil
}

// Pause closes the gate. Requires the pauser role; not itself gated.
func (s *Service) Pause(ctx context.Context, caller ledger.Address) error {
	ctx, span := s.tracer.Start(ctx, "token.pause")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.registry.EnsureRole(caller, roles.Pauser); err != nil {
		return s.reject(ctx, span, err)
	}
	s.gate.Pause()
	s.metrics.PausedState.Set(1)

	s.emit(ctx, events.Event{Topic: events.TopicPause, Height: s.state.Height()})
	s.logger.InfoContext(ctx, "ledger paused", "caller", string(caller))
	return nil
}

// Unpause reopens the gate. Requires the pauser role; not itself gated.
func (s *Service) Unpause(ctx context.Context, caller ledger.Address) error {
	ctx, span := s.tracer.Start(ctx, "token.unpause")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.registry.EnsureRole(caller, roles.Pauser); err != nil {
		return s.reject(ctx, span, err)
	}
	s.gate.Unpause()
	s.metrics.PausedState.Set(0)

	s.emit(ctx, events.Event{Topic: events.TopicUnpause, Height: s.state.Height()})
	s.logger.InfoContext(ctx, "ledger unpaused", "caller", string(caller))
	return nil
}

// ----------------------------------------------------------------------------
// Reads. Always available, pause state included.
// ----------------------------------------------------------------------------

func (s *Service) BalanceOf(addr ledger.Address) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.BalanceOf(addr)
}

func (s *Service) AllowanceOf(owner, spender ledger.Address) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AllowanceOf(owner, spender)
}

func (s *Service) TotalSupply() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.TotalSupply()
}

func (s *Service) IsPaused() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gate.IsPaused()
}

func (s *Service) HasRole(addr ledger.Address, role roles.Role) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry.HasRole(addr, role)
}

func (s *Service) Admin() (ledger.Address, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry.Admin()
}

// TokenInfo aggregates metadata and current state in one read.
func (s *Service) TokenInfo() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meta := s.state.Metadata()
	return Info{
		Name:        meta.Name,
		Symbol:      meta.Symbol,
		Decimals:    meta.Decimals,
		TotalSupply: s.state.TotalSupply(),
		Paused:      s.gate.IsPaused(),
	}
}

// Height exposes the ledger height for approve expiry bookkeeping.
func (s *Service) Height() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Height()
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	if err := s.publisher.Emit(ctx, event); err != nil {
		// Announcements are best effort; the mutation already committed.
		s.logger.ErrorContext(ctx, "event emission failed", "topic", string(event.Topic), "error", err)
	}
}

func (s *Service) reject(ctx context.Context, span trace.Span, err error) error {
	span.RecordError(err)
	s.metrics.Rejections.WithLabelValues(string(dErrors.CodeOf(err))).Inc()
	return err
}
