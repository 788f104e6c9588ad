// Package httptransport is the thin HTTP layer over the token service. It
// decodes requests, resolves the authenticated caller, delegates, and
// translates typed errors into JSON envelopes; no ledger logic lives here.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"colonx/internal/jwtauth"
	"colonx/internal/ledger"
	"colonx/internal/roles"
	"colonx/internal/token"
	dErrors "colonx/pkg/domain-errors"
	"colonx/pkg/platform/httputil"
	"colonx/pkg/requestcontext"
)

const devTokenLifetime = time.Hour

type Handler struct {
	service *token.Service
	tokens  *jwtauth.Service
	logger  *slog.Logger
}

func NewHandler(service *token.Service, tokens *jwtauth.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, tokens: tokens, logger: logger}
}

func (h *Handler) caller(r *http.Request) (ledger.Address, bool) {
	caller := requestcontext.Caller(r.Context())
	return ledger.Address(caller), caller != ""
}

// HandleInitialize handles POST /token/initialize. One-time, unauthenticated
// by design; a second call fails with already_initialized.
func (h *Handler) HandleInitialize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.Decode[InitializeRequest](w, r)
	if !ok {
		return
	}

	err := h.service.Initialize(ctx,
		ledger.Address(req.Admin),
		ledger.Address(req.Pauser),
		ledger.Address(req.Upgrader),
		ledger.Address(req.Minter),
	)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, statusResponse{Status: "initialized"})
}

// HandleMint handles POST /token/mint.
func (h *Handler) HandleMint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(r)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	req, ok := httputil.Decode[MintRequest](w, r)
	if !ok {
		return
	}

	if err := h.service.Mint(ctx, caller, ledger.Address(req.To), req.Amount); err != nil {
		h.logger.ErrorContext(ctx, "mint failed",
			"request_id", requestcontext.RequestID(ctx),
			"caller", string(caller),
			"to", req.To,
			"amount", req.Amount,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, statusResponse{Status: "minted"})
}

// HandleBatchMint handles POST /token/batch-mint.
func (h *Handler) HandleBatchMint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(r)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	req, ok := httputil.Decode[BatchMintRequest](w, r)
	if !ok {
		return
	}

	recipients := make([]token.Recipient, len(req.Recipients))
	for i, entry := range req.Recipients {
		recipients[i] = token.Recipient{Address: ledger.Address(entry.Address), Amount: entry.Amount}
	}

	if err := h.service.BatchMint(ctx, caller, recipients); err != nil {
		h.logger.ErrorContext(ctx, "batch mint failed",
			"request_id", requestcontext.RequestID(ctx),
			"caller", string(caller),
			"recipients", len(recipients),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, statusResponse{Status: "minted"})
}

// HandleTransfer handles POST /token/transfer; the sender is the caller.
func (h *Handler) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(r)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	req, ok := httputil.Decode[TransferRequest](w, r)
	if !ok {
		return
	}

	if err := h.service.Transfer(ctx, caller, ledger.Address(req.To), req.Amount); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, statusResponse{Status: "transferred"})
}

// HandleTransferFrom handles POST /token/transfer-from; the spender is the
// caller.
func (h *Handler) HandleTransferFrom(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(r)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	req, ok := httputil.Decode[TransferFromRequest](w, r)
	if !ok {
		return
	}

	if err := h.service.TransferFrom(ctx, caller, ledger.Address(req.From), ledger.Address(req.To), req.Amount); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, statusResponse{Status: "transferred"})
}

// HandleBurn handles POST /token/burn; funds burn from the caller.
func (h *Handler) HandleBurn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(r)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	req, ok := httputil.Decode[BurnRequest](w, r)
	if !ok {
		return
	}

	if err := h.service.Burn(ctx, caller, req.Amount); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, statusResponse{Status: "burned"})
}

// HandleBurnFrom handles POST /token/burn-from; the spender is the caller.
func (h *Handler) HandleBurnFrom(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(r)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	req, ok := httputil.Decode[BurnFromRequest](w, r)
	if !ok {
		return
	}

	if err := h.service.BurnFrom(ctx, caller, ledger.Address(req.From), req.Amount); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, statusResponse{Status: "burned"})
}

// HandleApprove handles POST /token/approve; the owner is the caller.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(r)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	req, ok := httputil.Decode[ApproveRequest](w, r)
	if !ok {
		return
	}

	if err := h.service.Approve(ctx, caller, ledger.Address(req.Spender), req.Amount, req.ExpirationHeight); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, statusResponse{Status: "approved"})
}

// HandlePause handles POST /token/pause.
func (h *Handler) HandlePause(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(r)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	if err := h.service.Pause(ctx, caller); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, statusResponse{Status: "paused"})
}

// HandleUnpause handles POST /token/unpause.
func (h *Handler) HandleUnpause(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(r)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	if err := h.service.Unpause(ctx, caller); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, statusResponse{Status: "active"})
}

// ----------------------------------------------------------------------------
// Reads. Unauthenticated and available regardless of pause state.
// ----------------------------------------------------------------------------

func (h *Handler) HandleBalance(w http.ResponseWriter, r *http.Request) {
	addr := chi.URLParam(r, "address")
	httputil.WriteJSON(w, http.StatusOK, BalanceResponse{
		Address: addr,
		Balance: h.service.BalanceOf(ledger.Address(addr)),
	})
}

func (h *Handler) HandleAllowance(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")
	spender := chi.URLParam(r, "spender")
	httputil.WriteJSON(w, http.StatusOK, AllowanceResponse{
		Owner:     owner,
		Spender:   spender,
		Allowance: h.service.AllowanceOf(ledger.Address(owner), ledger.Address(spender)),
	})
}

func (h *Handler) HandleSupply(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, SupplyResponse{TotalSupply: h.service.TotalSupply()})
}

func (h *Handler) HandleInfo(w http.ResponseWriter, r *http.Request) {
	info := h.service.TokenInfo()
	httputil.WriteJSON(w, http.StatusOK, InfoResponse{
		Name:        info.Name,
		Symbol:      info.Symbol,
		Decimals:    info.Decimals,
		TotalSupply: info.TotalSupply,
		Paused:      info.Paused,
	})
}

func (h *Handler) HandlePaused(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, PausedResponse{Paused: h.service.IsPaused()})
}

func (h *Handler) HandleHasRole(w http.ResponseWriter, r *http.Request) {
	role := roles.Role(chi.URLParam(r, "role"))
	addr := chi.URLParam(r, "address")
	if !role.Valid() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidRole, "invalid or unrecognized role"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, HasRoleResponse{
		Address: addr,
		Role:    string(role),
		HasRole: h.service.HasRole(ledger.Address(addr), role),
	})
}

func (h *Handler) HandleAdmin(w http.ResponseWriter, r *http.Request) {
	admin, set := h.service.Admin()
	httputil.WriteJSON(w, http.StatusOK, AdminResponse{Admin: string(admin), Set: set})
}

// HandleDevToken mints a development access token. Wired only when
// COLONX_DEV_TOKEN_ENDPOINT is set.
func (h *Handler) HandleDevToken(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[DevTokenRequest](w, r)
	if !ok {
		return
	}
	signed, err := h.tokens.GenerateAccessToken(req.Address, devTokenLifetime)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "token generation failed"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, DevTokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(devTokenLifetime.Seconds()),
	})
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}
