package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestIssueAdminTokenRoundTrip(t *testing.T) {
	secret := "test-secret"

	signed, err := IssueAdminToken(secret, "ops", time.Hour)
	assert.NoError(t, err)
	assert.NotEmpty(t, signed)

	token, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	assert.NoError(t, err)
	assert.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, "ops", claims["sub"])
	assert.Equal(t, "admin", claims["typ"])

	exp, err := claims.GetExpirationTime()
	assert.NoError(t, err)
	assert.NotNil(t, exp)
	assert.InDelta(t, time.Hour.Seconds(), time.Until(exp.Time).Seconds(), 60)
}

func TestIssueAdminTokenRequiresSecret(t *testing.T) {
	_, err := IssueAdminToken("", "ops", time.Hour)
	assert.Error(t, err)
}

func TestIssueAdminTokenWrongSecretRejected(t *testing.T) {
	signed, err := IssueAdminToken("test-secret", "ops", time.Hour)
	assert.NoError(t, err)

	_, err = jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte("other-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	assert.Error(t, err)
}
