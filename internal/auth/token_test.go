package auth

import (
	"testing"
	"time"

	"github.com/and161185/coursereports/internal/errs"
	"github.com/and161185/coursereports/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testUser() model.User {
	return model.User{ID: uuid.MustParse("6f1c2a4e-8a57-4c38-9d5e-1b2f3a4c5d6e"), Login: "anna", Role: model.Admin}
}

func TestGenerateAndParseToken(t *testing.T) {
	tm := NewTokenManager("testsecret")
	token, err := tm.GenerateToken(testUser(), time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	identity, err := tm.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, testUser().ID, identity.UserID)
	require.Equal(t, "anna", identity.Login)
	require.Equal(t, model.Admin, identity.Role)
	require.True(t, identity.IsAdmin())
	require.False(t, identity.ExpiresAt.IsZero())
}

func TestParseInvalidToken(t *testing.T) {
	tm := NewTokenManager("testsecret")

	_, err := tm.ParseToken("invalid.token.string")
	require.ErrorIs(t, err, errs.ErrInvalidToken)

	_, err = tm.ParseToken("")
	require.ErrorIs(t, err, errs.ErrInvalidToken)
}

func TestParseTokenWithWrongSignature(t *testing.T) {
	tm := NewTokenManager("testsecret")
	other := NewTokenManager("wrongsecret")

	badTokenStr, err := other.GenerateToken(testUser(), time.Hour)
	require.NoError(t, err)

	_, err = tm.ParseToken(badTokenStr)
	require.ErrorIs(t, err, errs.ErrInvalidToken)
}

func TestParseExpiredToken(t *testing.T) {
	tm := NewTokenManager("testsecret")

	expiredTokenStr, err := tm.GenerateToken(testUser(), -time.Hour)
	require.NoError(t, err)

	_, err = tm.ParseToken(expiredTokenStr)
	require.ErrorIs(t, err, errs.ErrInvalidToken)
}

func TestParseTokenWithOtherAlgorithm(t *testing.T) {
	tm := NewTokenManager("testsecret")

	claims := jwt.MapClaims{
		"sub":  testUser().ID.String(),
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	tokenStr, err := token.SignedString([]byte("testsecret"))
	require.NoError(t, err)

	_, err = tm.ParseToken(tokenStr)
	require.ErrorIs(t, err, errs.ErrInvalidToken)
}

func TestParseTokenWithoutExpiry(t *testing.T) {
	tm := NewTokenManager("testsecret")

	claims := jwt.MapClaims{"sub": testUser().ID.String(), "role": "admin"}
	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("testsecret"))
	require.NoError(t, err)

	_, err = tm.ParseToken(tokenStr)
	require.ErrorIs(t, err, errs.ErrInvalidToken)
}

func TestParseTokenWithBadSubject(t *testing.T) {
	tm := NewTokenManager("testsecret")

	claims := jwt.MapClaims{
		"sub": "42",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("testsecret"))
	require.NoError(t, err)

	_, err = tm.ParseToken(tokenStr)
	require.ErrorIs(t, err, errs.ErrInvalidToken)
}
