package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSigningKey = []byte("test-secret-key-for-unit-tests-only")

func testIdentity() Identity {
	return Identity{
		UserID:     "6f1c3c52-5d1b-4a4e-9a53-0c1a6c9b2f10",
		Username:   "nurse.joy",
		Role:       RoleNurse,
		Privileges: PrivilegeEditor,
	}
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(testSigningKey, "eldercare", time.Hour)

	raw, exp, err := issuer.Issue(testIdentity())
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := issuer.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, testIdentity(), claims.Identity())
	assert.Equal(t, "eldercare", claims.Issuer)
}

func TestTokenIssuer_RequiresSubject(t *testing.T) {
	issuer := NewTokenIssuer(testSigningKey, "eldercare", time.Hour)
	_, _, err := issuer.Issue(Identity{Role: RoleDoctor})
	assert.Error(t, err)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer(testSigningKey, "eldercare", time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	raw, _, err := issuer.Issue(testIdentity())
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Parse(raw)
	assert.Error(t, err)
}

func TestTokenIssuer_WrongKey(t *testing.T) {
	raw, _, err := NewTokenIssuer(testSigningKey, "eldercare", time.Hour).Issue(testIdentity())
	require.NoError(t, err)

	_, err = NewTokenIssuer([]byte("a-completely-different-signing-key"), "eldercare", time.Hour).Parse(raw)
	assert.Error(t, err)
}

func TestTokenIssuer_WrongIssuer(t *testing.T) {
	raw, _, err := NewTokenIssuer(testSigningKey, "someone-else", time.Hour).Issue(testIdentity())
	require.NoError(t, err)

	_, err = NewTokenIssuer(testSigningKey, "eldercare", time.Hour).Parse(raw)
	assert.Error(t, err)
}

func TestTokenIssuer_RejectsNoneAlgorithm(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "mallory",
			Issuer:    "eldercare",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Privileges: PrivilegeOverseer,
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenIssuer(testSigningKey, "eldercare", time.Hour).Parse(raw)
	assert.Error(t, err)
}
