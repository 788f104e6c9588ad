package jwtauth

// MiddlewareAdapter bridges Service to the auth middleware's TokenValidator
// contract, which wants flat strings instead of claims.
type MiddlewareAdapter struct {
	Service *Service
}

func (a MiddlewareAdapter) ValidateToken(tokenString string) (string, string, error) {
	claims, err := a.Service.ValidateToken(tokenString)
	if err != nil {
		return "", "", err
	}
	return claims.Address, claims.ID, nil
}
