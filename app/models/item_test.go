package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestItemHasActiveBoost(t *testing.T) {
	now := time.Now()
	future := now.Add(24 * time.Hour)
	past := now.Add(-1 * time.Hour)

	t.Run("active boost", func(t *testing.T) {
		item := Item{IsBoosted: true, BoostType: BoostTypePremium, BoostExpiresAt: &future}
		assert.True(t, item.HasActiveBoost(now))
	})

	t.Run("expired boost reads as inactive", func(t *testing.T) {
		item := Item{IsBoosted: true, BoostType: BoostTypePremium, BoostExpiresAt: &past}
		assert.False(t, item.HasActiveBoost(now))
	})

	t.Run("never boosted", func(t *testing.T) {
		item := Item{}
		assert.False(t, item.HasActiveBoost(now))
	})

	t.Run("flag set without expiry", func(t *testing.T) {
		item := Item{IsBoosted: true}
		assert.False(t, item.HasActiveBoost(now))
	})
}

func TestBoostExpired(t *testing.T) {
	now := time.Now()

	boost := Boost{ExpiresAt: now.Add(time.Hour)}
	assert.False(t, boost.Expired(now))

	boost.ExpiresAt = now.Add(-time.Minute)
	assert.True(t, boost.Expired(now))
}

func TestIsValidBoostType(t *testing.T) {
	assert.True(t, IsValidBoostType(BoostTypePremium))
	assert.True(t, IsValidBoostType(BoostTypeFeatured))
	assert.True(t, IsValidBoostType(BoostTypeUrgent))
	assert.False(t, IsValidBoostType("mega"))
	assert.False(t, IsValidBoostType(""))
}
