package jwttoken

import (
	"strconv"

	"foncier/internal/platform/middleware"
	dErrors "foncier/pkg/domain-errors"
)

// MiddlewareAdapter adapts JWTService to the middleware.TokenValidator
// interface, converting the string agent claim to the numeric ID the rest of
// the system uses.
type MiddlewareAdapter struct {
	service *JWTService
}

func NewMiddlewareAdapter(service *JWTService) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*middleware.AgentClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	agentID, err := strconv.ParseInt(claims.AgentID, 10, 64)
	if err != nil || agentID <= 0 {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid agent identifier in token")
	}

	return &middleware.AgentClaims{
		AgentID: agentID,
		Role:    claims.Role,
	}, nil
}
