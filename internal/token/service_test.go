package token_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell/inkwell/internal/token"
)

const (
	testAccessSecret  = "test-access-secret"
	testRefreshSecret = "test-refresh-secret"
)

func newService() *token.Service {
	return token.NewService(testAccessSecret, testRefreshSecret, 15*time.Minute, 7*24*time.Hour)
}

func TestIssuePair_RoundTrip(t *testing.T) {
	svc := newService()
	userID := uuid.New()

	pair, err := svc.IssuePair(userID)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	accessClaims, err := svc.Verify(pair.AccessToken, token.KindAccess)
	require.NoError(t, err)
	gotID, err := accessClaims.UserID()
	require.NoError(t, err)
	assert.Equal(t, userID, gotID)

	refreshClaims, err := svc.Verify(pair.RefreshToken, token.KindRefresh)
	require.NoError(t, err)
	gotID, err = refreshClaims.UserID()
	require.NoError(t, err)
	assert.Equal(t, userID, gotID)
}

func TestVerify_KindConfinement(t *testing.T) {
	svc := newService()

	pair, err := svc.IssuePair(uuid.New())
	require.NoError(t, err)

	// Signed with different secrets, so cross-presenting fails signature
	// validation before the kind claim is even reached.
	_, err = svc.Verify(pair.AccessToken, token.KindRefresh)
	assert.Error(t, err)

	_, err = svc.Verify(pair.RefreshToken, token.KindAccess)
	assert.Error(t, err)
}

func TestVerify_KindClaimChecked(t *testing.T) {
	// Same secret for both kinds: signature verifies either way, so only the
	// kind claim stands between an access token and the refresh path.
	svc := token.NewService("shared-secret", "shared-secret", time.Minute, time.Hour)

	pair, err := svc.IssuePair(uuid.New())
	require.NoError(t, err)

	_, err = svc.Verify(pair.AccessToken, token.KindRefresh)
	assert.ErrorIs(t, err, token.ErrWrongKind)

	_, err = svc.Verify(pair.RefreshToken, token.KindAccess)
	assert.ErrorIs(t, err, token.ErrWrongKind)
}

func TestVerify_Expired(t *testing.T) {
	svc := token.NewService(testAccessSecret, testRefreshSecret, -time.Minute, -time.Minute)

	pair, err := svc.IssuePair(uuid.New())
	require.NoError(t, err)

	_, err = svc.Verify(pair.AccessToken, token.KindAccess)
	assert.ErrorIs(t, err, token.ErrExpiredToken)

	_, err = svc.Verify(pair.RefreshToken, token.KindRefresh)
	assert.ErrorIs(t, err, token.ErrExpiredToken)
}

func TestVerify_Garbage(t *testing.T) {
	svc := newService()

	_, err := svc.Verify("not-a-jwt", token.KindAccess)
	assert.ErrorIs(t, err, token.ErrInvalidToken)

	_, err = svc.Verify("", token.KindRefresh)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestVerify_ForeignSignature(t *testing.T) {
	svc := newService()
	other := token.NewService("other-access", "other-refresh", time.Minute, time.Hour)

	pair, err := other.IssuePair(uuid.New())
	require.NoError(t, err)

	_, err = svc.Verify(pair.AccessToken, token.KindAccess)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestFingerprint(t *testing.T) {
	fp1 := token.Fingerprint("some-token")
	fp2 := token.Fingerprint("some-token")
	fp3 := token.Fingerprint("another-token")

	assert.Equal(t, fp1, fp2)
	assert.NotEqual(t, fp1, fp3)
	assert.Len(t, fp1, 64, "fingerprint should be a hex sha256 digest")
	assert.NotContains(t, fp1, "some-token")
}
