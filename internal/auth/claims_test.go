package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/garage-auth/internal/domain"
)

func TestClaimsPrincipalIsTokenKind(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	issuer, codec := newTestIssuer(t, clock, IssuerConfig{AccessTTL: time.Hour, RefreshTTL: 2 * time.Hour})

	pair, err := issuer.Issue("alice", []string{"USER", "ADMIN"})
	require.NoError(t, err)
	claims, err := codec.Verify(pair.RefreshToken)
	require.NoError(t, err)

	p := claims.Principal()
	assert.Equal(t, domain.PrincipalKindToken, p.Kind)
	assert.Equal(t, "alice", p.Username)
	assert.Empty(t, p.UserID)
	assert.True(t, p.HasRole("ADMIN"))
	assert.Equal(t, pair.RefreshExpiresAt, p.ExpiresAt)

	p.Roles[0] = "MUTATED"
	assert.Equal(t, []string{"USER", "ADMIN"}, claims.Roles)
}
