package httptransport

import (
	dErrors "colonx/pkg/domain-errors"
)

// Request DTOs. Validation here covers shape only; economic and identifier
// checks belong to the validation pipeline so error codes stay consistent.

type InitializeRequest struct {
	Admin    string `json:"admin"`
	Pauser   string `json:"pauser"`
	Upgrader string `json:"upgrader"`
	Minter   string `json:"minter"`
}

func (r InitializeRequest) Validate() error { return nil }

type MintRequest struct {
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

func (r MintRequest) Validate() error { return nil }

type BatchMintEntry struct {
	Address string `json:"address"`
	Amount  int64  `json:"amount"`
}

type BatchMintRequest struct {
	Recipients []BatchMintEntry `json:"recipients"`
}

func (r BatchMintRequest) Validate() error {
	if len(r.Recipients) == 0 {
		return dErrors.New(dErrors.CodeInvalidParameters, "recipients must not be empty")
	}
	return nil
}

type TransferRequest struct {
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

func (r TransferRequest) Validate() error { return nil }

type TransferFromRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

func (r TransferFromRequest) Validate() error { return nil }

type BurnRequest struct {
	Amount int64 `json:"amount"`
}

func (r BurnRequest) Validate() error { return nil }

type BurnFromRequest struct {
	From   string `json:"from"`
	Amount int64  `json:"amount"`
}

func (r BurnFromRequest) Validate() error { return nil }

type ApproveRequest struct {
	Spender          string `json:"spender"`
	Amount           int64  `json:"amount"`
	ExpirationHeight uint32 `json:"expiration_height"`
}

func (r ApproveRequest) Validate() error { return nil }

type DevTokenRequest struct {
	Address string `json:"address"`
}

func (r DevTokenRequest) Validate() error {
	if r.Address == "" {
		return dErrors.New(dErrors.CodeBadRequest, "address is required")
	}
	return nil
}
