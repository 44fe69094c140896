package eval

import (
	"testing"

	"mercator-hq/callisto/pkg/registry"
	"mercator-hq/callisto/pkg/spdx"
)

func TestChoices_Atom(t *testing.T) {
	reg := registry.Default()
	set, known := Choices(reg, spdx.MustParse("MIT"))
	if !known {
		t.Error("Choices(MIT) reported unknown identifiers")
	}
	if want := NewTierSet(registry.TierPermissive); set != want {
		t.Errorf("Choices(MIT) = %v, want %v", set, want)
	}
}

func TestChoices_And(t *testing.T) {
	reg := registry.Default()
	// MIT AND Apache-2.0: both permissive, combined obligations stay permissive.
	set, _ := Choices(reg, spdx.MustParse("MIT AND Apache-2.0"))
	if want := NewTierSet(registry.TierPermissive); set != want {
		t.Errorf("Choices(MIT AND Apache-2.0) = %v, want %v", set, want)
	}

	// Combining permissive with strong copyleft needs a strong-copyleft host.
	set, _ = Choices(reg, spdx.MustParse("MIT AND GPL-3.0-only"))
	if want := NewTierSet(registry.TierStrongCopyleft); set != want {
		t.Errorf("Choices(MIT AND GPL-3.0-only) = %v, want %v", set, want)
	}
}

func TestChoices_Or(t *testing.T) {
	reg := registry.Default()
	set, _ := Choices(reg, spdx.MustParse("MIT OR GPL-3.0-only"))
	want := NewTierSet(registry.TierPermissive, registry.TierStrongCopyleft)
	if set != want {
		t.Errorf("Choices(MIT OR GPL-3.0-only) = %v, want %v", set, want)
	}
}

func TestChoices_AndOfOrs(t *testing.T) {
	reg := registry.Default()
	// (MIT OR GPL-3.0-only) AND (Apache-2.0 OR MPL-2.0): every pairwise
	// combination of the operand choices.
	set, _ := Choices(reg, spdx.MustParse("(MIT OR GPL-3.0-only) AND (Apache-2.0 OR MPL-2.0)"))
	want := NewTierSet(registry.TierPermissive, registry.TierWeakCopyleft, registry.TierStrongCopyleft)
	if set != want {
		t.Errorf("Choices() = %v, want %v", set, want)
	}
}

func TestChoices_ProprietaryPoisonsAnd(t *testing.T) {
	reg := registry.Default()
	// Proprietary combined with anything else is contradictory; with no
	// other option the set comes out empty and the package conflicts.
	set, known := Choices(reg, spdx.MustParse("Proprietary AND MIT"))
	if !known {
		t.Error("Choices() reported unknown identifiers for known atoms")
	}
	if !set.Empty() {
		t.Errorf("Choices(Proprietary AND MIT) = %v, want empty", set)
	}

	// An OR escape hatch keeps the package satisfiable.
	set, _ = Choices(reg, spdx.MustParse("(Proprietary OR MIT) AND Apache-2.0"))
	if want := NewTierSet(registry.TierPermissive); set != want {
		t.Errorf("Choices() = %v, want %v", set, want)
	}

	// All-proprietary conjunctions are consistent.
	set, _ = Choices(reg, spdx.MustParse("Proprietary AND Proprietary"))
	if want := NewTierSet(registry.TierProprietary); set != want {
		t.Errorf("Choices(Proprietary AND Proprietary) = %v, want %v", set, want)
	}
}

func TestChoices_UnknownIdentifier(t *testing.T) {
	reg := registry.Default()
	set, known := Choices(reg, spdx.MustParse("Imaginary-1.0"))
	if known {
		t.Error("Choices() did not report unknown identifier")
	}
	if !set.Empty() {
		t.Errorf("Choices(unknown atom) = %v, want empty", set)
	}

	// Unknown obligations inside AND empty the conjunction.
	set, known = Choices(reg, spdx.MustParse("MIT AND Imaginary-1.0"))
	if known {
		t.Error("Choices() did not report unknown identifier inside AND")
	}
	if !set.Empty() {
		t.Errorf("Choices(MIT AND unknown) = %v, want empty", set)
	}

	// An OR branch around the unknown leaves the known branch reachable.
	set, known = Choices(reg, spdx.MustParse("MIT OR Imaginary-1.0"))
	if known {
		t.Error("Choices() did not report unknown identifier inside OR")
	}
	if want := NewTierSet(registry.TierPermissive); set != want {
		t.Errorf("Choices(MIT OR unknown) = %v, want %v", set, want)
	}
}

func TestChoices_SingleOperandEquivalence(t *testing.T) {
	reg := registry.Default()
	// And([X]) and Or([X]) are semantically identical to X: single-operand
	// nodes collapse at construction, so the sets must match.
	base, _ := Choices(reg, spdx.MustParse("GPL-3.0-only"))
	viaParen, _ := Choices(reg, spdx.MustParse("(GPL-3.0-only)"))
	if base != viaParen {
		t.Errorf("Choices(X) = %v, Choices((X)) = %v", base, viaParen)
	}
}

func TestChoices_ExceptionIgnoredInTierMath(t *testing.T) {
	reg := registry.Default()
	plain, _ := Choices(reg, spdx.MustParse("GPL-2.0-only"))
	withExc, _ := Choices(reg, spdx.MustParse("GPL-2.0-only WITH Classpath-exception-2.0"))
	if plain != withExc {
		t.Errorf("exception changed tier set: %v vs %v", plain, withExc)
	}
}

func TestTierSet(t *testing.T) {
	var s TierSet
	if !s.Empty() {
		t.Error("zero TierSet not empty")
	}
	s = s.Add(registry.TierPermissive).Add(registry.TierStrongCopyleft).Add(registry.TierPermissive)
	if got := len(s.Tiers()); got != 2 {
		t.Errorf("len(Tiers()) = %d, want 2", got)
	}
	if !s.Has(registry.TierPermissive) || s.Has(registry.TierWeakCopyleft) {
		t.Errorf("membership wrong for %v", s)
	}
	if got, want := s.String(), "{permissive, strong-copyleft}"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
