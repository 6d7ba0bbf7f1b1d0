package entitlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, TierGrowth, Normalize("growth"))
	assert.Equal(t, TierEnterprise, Normalize("enterprise"))
	assert.Equal(t, TierStandard, Normalize("standard"))
	assert.Equal(t, DefaultTier, Normalize(""))
	assert.Equal(t, DefaultTier, Normalize("platinum"))
}

func TestHasFeature(t *testing.T) {
	assert.True(t, HasFeature(TierStandard, FeatureDashboard))
	assert.True(t, HasFeature(TierStandard, FeatureInsights))
	assert.True(t, HasFeature(TierStandard, FeatureExport))
	assert.False(t, HasFeature(TierStandard, FeaturePredictions))
	assert.False(t, HasFeature(TierStandard, FeatureLiveFeed))

	for _, tier := range []Tier{TierGrowth, TierEnterprise} {
		assert.True(t, HasFeature(tier, FeaturePredictions))
		assert.True(t, HasFeature(tier, FeatureLiveFeed))
	}

	// Unknown tiers degrade to the default capability set
	assert.False(t, HasFeature("platinum", FeaturePredictions))
	assert.True(t, HasFeature("platinum", FeatureDashboard))
}

func TestFeatures(t *testing.T) {
	assert.Len(t, Features(TierStandard), 3)
	assert.Len(t, Features(TierGrowth), 5)
	assert.Len(t, Features("unknown"), 3)
}
