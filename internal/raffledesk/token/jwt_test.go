package token

import (
	"testing"
	"time"

	"github.com/25x8/raffledesk/internal/raffledesk/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	m := NewManager("secret", 0)
	session := models.Session{UserID: 7, Username: "juan", Role: models.RoleAdmin}

	signed, err := m.Generate(session)
	require.NoError(t, err)

	got, err := m.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, session, *got)
}

func TestTokenValidityWindow(t *testing.T) {
	m := NewManager("secret", 0)
	signed, err := m.Generate(models.Session{UserID: 1, Username: "a", Role: models.RoleSeller})
	require.NoError(t, err)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(signed, claims)
	require.NoError(t, err)
	window := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	assert.Equal(t, 24*time.Hour, window)
	assert.NotEmpty(t, claims.ID)
}

func TestParseRejectsExpired(t *testing.T) {
	m := NewManager("secret", -time.Minute)
	signed, err := m.Generate(models.Session{UserID: 1, Username: "a", Role: models.RoleSeller})
	require.NoError(t, err)

	_, err = m.Parse(signed)
	assert.ErrorIs(t, err, models.ErrAuthentication)
}

func TestParseRejectsForeignSignature(t *testing.T) {
	signed, err := NewManager("other", 0).Generate(models.Session{UserID: 1, Username: "a", Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = NewManager("secret", 0).Parse(signed)
	assert.ErrorIs(t, err, models.ErrAuthentication)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := NewManager("secret", 0).Parse("not-a-token")
	assert.ErrorIs(t, err, models.ErrAuthentication)
}
