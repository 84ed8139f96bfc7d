package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "foncier/pkg/domain-errors"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewJWTService("test-key", "foncier", "foncier-api")

	token, err := svc.GenerateAccessToken(42, "agent", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.AgentID)
	assert.Equal(t, "agent", claims.Role)
}

func TestValidateExpiredToken(t *testing.T) {
	svc := NewJWTService("test-key", "foncier", "foncier-api")

	token, err := svc.GenerateAccessToken(42, "agent", -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateWrongKey(t *testing.T) {
	issuer := NewJWTService("key-a", "foncier", "foncier-api")
	verifier := NewJWTService("key-b", "foncier", "foncier-api")

	token, err := issuer.GenerateAccessToken(7, "admin", time.Minute)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestMiddlewareAdapter(t *testing.T) {
	svc := NewJWTService("test-key", "foncier", "foncier-api")
	adapter := NewMiddlewareAdapter(svc)

	token, err := svc.GenerateAccessToken(99, "agent", time.Minute)
	require.NoError(t, err)

	claims, err := adapter.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(99), claims.AgentID)
	assert.Equal(t, "agent", claims.Role)
}
