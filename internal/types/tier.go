package types

// Tier is the subscription status of the current user
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

func (t Tier) String() string {
	return string(t)
}

// IsPremium is false for every value other than TierPremium, including unknown ones
func (t Tier) IsPremium() bool {
	return t == TierPremium
}

// ParseTier maps a raw value to a Tier, treating anything unrecognised as free
func ParseTier(s string) Tier {
	if Tier(s) == TierPremium {
		return TierPremium
	}
	return TierFree
}
