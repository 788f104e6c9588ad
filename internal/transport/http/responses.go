package httptransport

// Response DTOs for the read endpoints.

type BalanceResponse struct {
	Address string `json:"address"`
	Balance int64  `json:"balance"`
}

type AllowanceResponse struct {
	Owner     string `json:"owner"`
	Spender   string `json:"spender"`
	Allowance int64  `json:"allowance"`
}

type SupplyResponse struct {
	TotalSupply int64 `json:"total_supply"`
}

type InfoResponse struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    uint32 `json:"decimals"`
	TotalSupply int64  `json:"total_supply"`
	Paused      bool   `json:"paused"`
}

type PausedResponse struct {
	Paused bool `json:"paused"`
}

type HasRoleResponse struct {
	Address string `json:"address"`
	Role    string `json:"role"`
	HasRole bool   `json:"has_role"`
}

type AdminResponse struct {
	Admin string `json:"admin,omitempty"`
	Set   bool   `json:"set"`
}

type DevTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type statusResponse struct {
	Status string `json:"status"`
}
