// Package entitlement maps subscription tiers to capability sets. The
// lookup is the single source of truth for feature gating, consulted once
// at the dashboard façade boundary.
package entitlement

// Feature names a gated capability.
type Feature string

const (
	FeatureDashboard   Feature = "dashboard"
	FeatureInsights    Feature = "insights"
	FeatureExport      Feature = "export"
	FeaturePredictions Feature = "predictions"
	FeatureLiveFeed    Feature = "live_feed"
)

// Tier names a subscription level.
type Tier string

const (
	TierStandard   Tier = "standard"
	TierGrowth     Tier = "growth"
	TierEnterprise Tier = "enterprise"
)

// DefaultTier is assumed for tenants with no configured tier.
const DefaultTier = TierStandard

var tierFeatures = map[Tier]map[Feature]bool{
	TierStandard: {
		FeatureDashboard: true,
		FeatureInsights:  true,
		FeatureExport:    true,
	},
	TierGrowth: {
		FeatureDashboard:   true,
		FeatureInsights:    true,
		FeatureExport:      true,
		FeaturePredictions: true,
		FeatureLiveFeed:    true,
	},
	TierEnterprise: {
		FeatureDashboard:   true,
		FeatureInsights:    true,
		FeatureExport:      true,
		FeaturePredictions: true,
		FeatureLiveFeed:    true,
	},
}

// Normalize maps an arbitrary configured tier string to a known tier,
// falling back to the default for unknown values.
func Normalize(tier string) Tier {
	switch Tier(tier) {
	case TierStandard, TierGrowth, TierEnterprise:
		return Tier(tier)
	}
	return DefaultTier
}

// HasFeature reports whether the tier includes the capability.
func HasFeature(tier Tier, feature Feature) bool {
	features, ok := tierFeatures[tier]
	if !ok {
		features = tierFeatures[DefaultTier]
	}
	return features[feature]
}

// Features returns the capability set for a tier.
func Features(tier Tier) []Feature {
	features, ok := tierFeatures[tier]
	if !ok {
		features = tierFeatures[DefaultTier]
	}
	out := make([]Feature, 0, len(features))
	for f := range features {
		out = append(out, f)
	}
	return out
}
