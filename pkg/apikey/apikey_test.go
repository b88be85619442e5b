package apikey

import (
	"testing"
	"time"

	apperrors "github.com/fuel-streams/fuel-indexer/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRateLimiterReset is spec §8 scenario 5: 1000 requests within a minute
// all succeed, the 1001st is rejected, and advancing the clock past the 60s
// window resets the counter to 1.
func TestRateLimiterReset(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	c := NewControllerWithClock(func() time.Time { return now })

	for i := 1; i <= 1000; i++ {
		count, err := c.CheckRateLimit("key-a", Builder)
		require.NoError(t, err)
		assert.EqualValues(t, i, count)
	}

	count, err := c.CheckRateLimit("key-a", Builder)
	assert.Equal(t, apperrors.KindRateLimitExceeded, apperrors.KindOf(err))
	assert.EqualValues(t, 1001, count)

	now = now.Add(61 * time.Second)
	count, err = c.CheckRateLimit("key-a", Builder)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestSubscriptionLimitAdmin(t *testing.T) {
	c := NewController()
	for i := 0; i < 10_000; i++ {
		_, err := c.CheckSubscriptions("admin-key", Admin)
		require.NoError(t, err)
	}
}

func TestSubscriptionLimitBuilder(t *testing.T) {
	c := NewController()
	for i := 1; i <= 50; i++ {
		count, err := c.CheckSubscriptions("builder-key", Builder)
		require.NoError(t, err)
		c.AddActiveSub("builder-key")
		assert.EqualValues(t, i, count)
	}

	_, err := c.CheckSubscriptions("builder-key", Builder)
	assert.Equal(t, apperrors.KindSubscriptionLimitExceeded, apperrors.KindOf(err))
}

func TestRemoveActiveSubSaturatesAtZero(t *testing.T) {
	c := NewController()
	c.RemoveActiveSub("fresh-key")
	count, err := c.CheckSubscriptions("fresh-key", WebClient)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestLimitsForUnknownRoleDefaultsToWebClient(t *testing.T) {
	assert.Equal(t, roleLimits[WebClient], limitsFor(Role("nonexistent")))
}

func TestStaticStoreResolve(t *testing.T) {
	s := NewStaticStore(map[string]Role{"abc": Builder})

	role, err := s.Resolve("abc")
	require.NoError(t, err)
	assert.Equal(t, Builder, role)

	_, err = s.Resolve("missing")
	assert.Equal(t, apperrors.KindAuthInvalid, apperrors.KindOf(err))

	_, err = s.Resolve("")
	assert.Equal(t, apperrors.KindAuthMissing, apperrors.KindOf(err))

	s.Set("new-key", WebClient)
	role, err = s.Resolve("new-key")
	require.NoError(t, err)
	assert.Equal(t, WebClient, role)

	s.Revoke("new-key")
	_, err = s.Resolve("new-key")
	assert.Equal(t, apperrors.KindAuthInvalid, apperrors.KindOf(err))
}
