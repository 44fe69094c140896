package eval

import (
	"strings"

	"mercator-hq/callisto/pkg/registry"
	"mercator-hq/callisto/pkg/spdx/ast"
)

// TierSet is a set of compatibility tiers, represented as a bitmask over
// the small fixed tier domain. The zero value is the empty set.
type TierSet uint16

// NewTierSet builds a set from the given tiers.
func NewTierSet(tiers ...registry.Tier) TierSet {
	var s TierSet
	for _, t := range tiers {
		s = s.Add(t)
	}
	return s
}

// Add returns the set with the tier included.
func (s TierSet) Add(t registry.Tier) TierSet {
	return s | (1 << uint(t))
}

// Has reports whether the tier is in the set.
func (s TierSet) Has(t registry.Tier) bool {
	return s&(1<<uint(t)) != 0
}

// Union returns the union of both sets.
func (s TierSet) Union(o TierSet) TierSet {
	return s | o
}

// Empty reports whether the set contains no tiers.
func (s TierSet) Empty() bool {
	return s == 0
}

// Tiers returns the members in ascending tier order.
func (s TierSet) Tiers() []registry.Tier {
	var tiers []registry.Tier
	for t := registry.TierUnknown; t <= registry.TierProprietary; t++ {
		if s.Has(t) {
			tiers = append(tiers, t)
		}
	}
	return tiers
}

// String renders the set as "{permissive, strong-copyleft}".
func (s TierSet) String() string {
	names := make([]string, 0, 4)
	for _, t := range s.Tiers() {
		names = append(names, t.String())
	}
	return "{" + strings.Join(names, ", ") + "}"
}

// choiceResult carries the outcome of collapsing one expression.
type choiceResult struct {
	// set holds every tier achievable by some valid choice of OR branches.
	set TierSet

	// sawUnknown is true when an unrecognized identifier appeared anywhere
	// in the expression, whether or not a valid choice avoids it.
	sawUnknown bool

	// proprietaryPoisoned is true when some AND combination mixed
	// proprietary with other terms and was excluded as contradictory.
	proprietaryPoisoned bool
}

// Choices collapses an expression to the set of tiers reachable by some
// choice of OR branches: an atom contributes its registry tier, OR unions
// its operands, and AND combines every pair of operand tiers to the least
// tier able to host both obligations at once. Contradictory combinations
// (proprietary with anything else, or unknown obligations) are excluded
// from the set rather than silently dropped; when nothing else remains the
// caller surfaces the package as a conflict or as undetermined.
//
// AND combination works on deduplicated tier sets, not raw operand
// combinations, so its cost is bounded by the squared tier-domain size per
// operand regardless of expression arity.
func Choices(reg *registry.Registry, expr ast.Expression) (TierSet, bool) {
	res := choices(reg, expr)
	return res.set, !res.sawUnknown
}

func choices(reg *registry.Registry, expr ast.Expression) choiceResult {
	switch e := expr.(type) {
	case *ast.Atom:
		tier := reg.TierOf(e.Identifier)
		if tier == registry.TierUnknown {
			return choiceResult{sawUnknown: true}
		}
		return choiceResult{set: NewTierSet(tier)}

	case *ast.Or:
		var res choiceResult
		for _, op := range e.Operands {
			sub := choices(reg, op)
			res.set = res.set.Union(sub.set)
			res.sawUnknown = res.sawUnknown || sub.sawUnknown
			res.proprietaryPoisoned = res.proprietaryPoisoned || sub.proprietaryPoisoned
		}
		return res

	case *ast.And:
		first := choices(reg, e.Operands[0])
		res := first
		for _, op := range e.Operands[1:] {
			sub := choices(reg, op)
			res.sawUnknown = res.sawUnknown || sub.sawUnknown
			res.proprietaryPoisoned = res.proprietaryPoisoned || sub.proprietaryPoisoned

			var combined TierSet
			for _, a := range res.set.Tiers() {
				for _, b := range sub.set.Tiers() {
					c, ok := registry.Combine(a, b)
					if !ok {
						res.proprietaryPoisoned = true
						continue
					}
					combined = combined.Add(c)
				}
			}
			// An operand with an empty set (all-unknown) empties the
			// conjunction: its obligations cannot be accounted for.
			if sub.set.Empty() {
				combined = 0
			}
			res.set = combined
		}
		return res
	}
	return choiceResult{}
}

// witness is a concrete resolution of one expression: the governing tier
// and the identifiers in force under the chosen OR branches.
type witness struct {
	tier        registry.Tier
	identifiers []ast.Identifier
	valid       bool
}

// resolveWitnessFor picks the choice of OR branches yielding the least
// governing tier the target can host. Valid AND combinations are either
// all-proprietary or entirely free of proprietary terms, so both modes are
// tried and the lesser hostable outcome wins. Ties between branches of
// equal tier break on the canonical rendering of the chosen identifiers,
// keeping witnesses deterministic.
func resolveWitnessFor(reg *registry.Registry, expr ast.Expression, target registry.Tier) witness {
	open := resolveMode(reg, expr, false)
	if open.valid && !target.CanHost(open.tier) {
		open = witness{}
	}
	prop := resolveMode(reg, expr, true)
	if prop.valid && !target.CanHost(prop.tier) {
		prop = witness{}
	}
	return betterWitness(open, prop)
}

// resolveMode resolves the expression restricted to one mode: proprietary
// atoms only, or known non-proprietary atoms only.
func resolveMode(reg *registry.Registry, expr ast.Expression, proprietary bool) witness {
	switch e := expr.(type) {
	case *ast.Atom:
		tier := reg.TierOf(e.Identifier)
		if tier == registry.TierUnknown {
			return witness{}
		}
		if (tier == registry.TierProprietary) != proprietary {
			return witness{}
		}
		return witness{tier: tier, identifiers: []ast.Identifier{e.Identifier}, valid: true}

	case *ast.Or:
		best := witness{}
		for _, op := range e.Operands {
			best = betterWitness(best, resolveMode(reg, op, proprietary))
		}
		return best

	case *ast.And:
		combined := witness{valid: true}
		for _, op := range e.Operands {
			sub := resolveMode(reg, op, proprietary)
			if !sub.valid {
				return witness{}
			}
			tier, ok := registry.Combine(combined.tier, sub.tier)
			if len(combined.identifiers) == 0 {
				tier = sub.tier
				ok = true
			}
			if !ok {
				return witness{}
			}
			combined.tier = tier
			combined.identifiers = append(combined.identifiers, sub.identifiers...)
		}
		return combined
	}
	return witness{}
}

// betterWitness returns the preferable of two candidate witnesses: the
// valid one, then the lesser tier, then the smaller canonical rendering.
func betterWitness(a, b witness) witness {
	switch {
	case !a.valid:
		return b
	case !b.valid:
		return a
	case a.tier != b.tier:
		if a.tier < b.tier {
			return a
		}
		return b
	default:
		if renderIdentifiers(a.identifiers) <= renderIdentifiers(b.identifiers) {
			return a
		}
		return b
	}
}

func renderIdentifiers(ids []ast.Identifier) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, " AND ")
}
