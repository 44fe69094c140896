package registry

import (
	"encoding/json"
	"fmt"
)

// Tier is a coarse ordering of license obligation strength, used to decide
// whether one license's terms can be nested inside another's distribution.
// Apart from the two special cases, tiers are totally ordered: a work under
// tier T can include a dependency under tier T' iff T' <= T.
//
// The special cases:
//   - TierUnknown marks identifiers the registry does not recognize. It is
//     excluded from compatibility math and surfaces as an undetermined
//     package, never as a pass.
//   - TierProprietary is compatible with nothing but itself, in either
//     direction.
type Tier int

const (
	// TierUnknown is the classification for unrecognized identifiers.
	TierUnknown Tier = iota

	// TierPublicDomain covers public-domain dedications (Unlicense, CC0-1.0).
	TierPublicDomain

	// TierPermissive covers attribution-only licenses (MIT, BSD, Apache-2.0).
	TierPermissive

	// TierWeakCopyleft covers file- or library-scoped copyleft (MPL, LGPL).
	TierWeakCopyleft

	// TierStrongCopyleft covers whole-work copyleft (GPL).
	TierStrongCopyleft

	// TierNetworkCopyleft covers copyleft that extends to network use (AGPL).
	TierNetworkCopyleft

	// TierProprietary covers all-rights-reserved terms.
	TierProprietary
)

var tierNames = map[Tier]string{
	TierUnknown:         "unknown",
	TierPublicDomain:    "public-domain",
	TierPermissive:      "permissive",
	TierWeakCopyleft:    "weak-copyleft",
	TierStrongCopyleft:  "strong-copyleft",
	TierNetworkCopyleft: "network-copyleft",
	TierProprietary:     "proprietary",
}

// String returns the canonical lowercase name of the tier.
func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// ParseTier converts a tier name (as used in configuration and the embedded
// license table) to a Tier.
func ParseTier(name string) (Tier, error) {
	for tier, n := range tierNames {
		if n == name {
			return tier, nil
		}
	}
	return TierUnknown, fmt.Errorf("unknown compatibility tier %q", name)
}

// MarshalJSON encodes the tier as its canonical name.
func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a tier from its canonical name.
func (t *Tier) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	tier, err := ParseTier(name)
	if err != nil {
		return err
	}
	*t = tier
	return nil
}

// Known reports whether the tier participates in compatibility math.
func (t Tier) Known() bool {
	return t != TierUnknown
}

// CanHost reports whether a work under tier t can include a dependency under
// tier dep. Proprietary is a hard equality requirement; Unknown can neither
// host nor be hosted.
func (t Tier) CanHost(dep Tier) bool {
	if t == TierUnknown || dep == TierUnknown {
		return false
	}
	if t == TierProprietary || dep == TierProprietary {
		return t == dep
	}
	return dep <= t
}

// Combine returns the least tier able to legally host the obligations of
// both operands simultaneously (the least upper bound under the tier order).
// The second return value is false when the combination is contradictory:
// proprietary terms combined with anything else, or any Unknown operand.
func Combine(a, b Tier) (Tier, bool) {
	if a == TierUnknown || b == TierUnknown {
		return TierUnknown, false
	}
	if a == TierProprietary || b == TierProprietary {
		if a == b {
			return TierProprietary, true
		}
		return TierUnknown, false
	}
	if a >= b {
		return a, true
	}
	return b, true
}
