package registry

import (
	"testing"

	"mercator-hq/callisto/pkg/spdx/ast"
)

func TestTierOf_KnownIdentifiers(t *testing.T) {
	r := Default()
	tests := []struct {
		id   string
		want Tier
	}{
		{"Unlicense", TierPublicDomain},
		{"CC0-1.0", TierPublicDomain},
		{"MIT", TierPermissive},
		{"Apache-2.0", TierPermissive},
		{"BSD-3-Clause", TierPermissive},
		{"MPL-2.0", TierWeakCopyleft},
		{"LGPL-2.1-only", TierWeakCopyleft},
		{"GPL-2.0-only", TierStrongCopyleft},
		{"GPL-3.0-only", TierStrongCopyleft},
		{"AGPL-3.0-only", TierNetworkCopyleft},
		{"Proprietary", TierProprietary},
	}
	for _, tt := range tests {
		if got := r.TierOf(ast.Ident(tt.id)); got != tt.want {
			t.Errorf("TierOf(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestTierOf_DeprecatedAliases(t *testing.T) {
	r := Default()
	// Pre-3.0 SPDX spellings still common in package metadata.
	tests := []struct {
		id   string
		want Tier
	}{
		{"GPL-3.0", TierStrongCopyleft},
		{"GPL-2.0+", TierStrongCopyleft},
		{"LGPL-2.1", TierWeakCopyleft},
		{"AGPL-3.0", TierNetworkCopyleft},
	}
	for _, tt := range tests {
		if got := r.TierOf(ast.Ident(tt.id)); got != tt.want {
			t.Errorf("TierOf(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestTierOf_Unknown(t *testing.T) {
	r := Default()
	if got := r.TierOf(ast.Ident("Totally-Made-Up-1.0")); got != TierUnknown {
		t.Errorf("TierOf(unknown) = %q, want %q", got, TierUnknown)
	}
	// Lookup is case-sensitive on the canonical form.
	if got := r.TierOf(ast.Ident("mit")); got != TierUnknown {
		t.Errorf("TierOf(%q) = %q, want %q", "mit", got, TierUnknown)
	}
}

func TestTierOf_ExceptionDoesNotChangeTier(t *testing.T) {
	r := Default()
	plain := r.TierOf(ast.Ident("GPL-2.0-only"))
	withExc := r.TierOf(ast.IdentWith("GPL-2.0-only", "Classpath-exception-2.0"))
	if plain != withExc {
		t.Errorf("tier with exception = %q, tier without = %q; exceptions must not change tier", withExc, plain)
	}
	if !r.KnownException("Classpath-exception-2.0") {
		t.Error("KnownException(Classpath-exception-2.0) = false, want true")
	}
	if r.KnownException("Made-Up-exception") {
		t.Error("KnownException(Made-Up-exception) = true, want false")
	}
}

func TestCanHost(t *testing.T) {
	tests := []struct {
		host, dep Tier
		want      bool
	}{
		{TierPermissive, TierPermissive, true},
		{TierPermissive, TierPublicDomain, true},
		{TierStrongCopyleft, TierPermissive, true},
		{TierNetworkCopyleft, TierStrongCopyleft, true},
		{TierPermissive, TierStrongCopyleft, false},
		{TierWeakCopyleft, TierStrongCopyleft, false},
		{TierProprietary, TierProprietary, true},
		{TierProprietary, TierPermissive, false},
		{TierNetworkCopyleft, TierProprietary, false},
		{TierPermissive, TierUnknown, false},
		{TierUnknown, TierPermissive, false},
	}
	for _, tt := range tests {
		if got := tt.host.CanHost(tt.dep); got != tt.want {
			t.Errorf("%q.CanHost(%q) = %v, want %v", tt.host, tt.dep, got, tt.want)
		}
	}
}

func TestCombine(t *testing.T) {
	tests := []struct {
		a, b   Tier
		want   Tier
		wantOK bool
	}{
		{TierPermissive, TierPermissive, TierPermissive, true},
		{TierPermissive, TierStrongCopyleft, TierStrongCopyleft, true},
		{TierPublicDomain, TierWeakCopyleft, TierWeakCopyleft, true},
		{TierProprietary, TierProprietary, TierProprietary, true},
		{TierProprietary, TierPermissive, TierUnknown, false},
		{TierUnknown, TierPermissive, TierUnknown, false},
	}
	for _, tt := range tests {
		got, ok := Combine(tt.a, tt.b)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Combine(%q, %q) = (%q, %v), want (%q, %v)", tt.a, tt.b, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseTier_RoundTrip(t *testing.T) {
	tiers := []Tier{
		TierUnknown, TierPublicDomain, TierPermissive, TierWeakCopyleft,
		TierStrongCopyleft, TierNetworkCopyleft, TierProprietary,
	}
	for _, tier := range tiers {
		got, err := ParseTier(tier.String())
		if err != nil {
			t.Fatalf("ParseTier(%q) failed: %v", tier.String(), err)
		}
		if got != tier {
			t.Errorf("ParseTier(%q) = %q, want %q", tier.String(), got, tier)
		}
	}
	if _, err := ParseTier("copyleftish"); err == nil {
		t.Error("ParseTier(invalid) succeeded, want error")
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Apache-2.0", "apache-2-0"},
		{"GPL-3.0-only", "gpl-3-0-only"},
		{"MIT", "mit"},
		{"BSD 3 Clause", "bsd-3-clause"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSynonyms_LongestFirst(t *testing.T) {
	r := Default()
	info := r.Lookup(ast.Ident("Apache-2.0"))
	if info == nil {
		t.Fatal("Lookup(Apache-2.0) = nil")
	}
	for i := 1; i < len(info.Synonyms); i++ {
		if len(info.Synonyms[i-1]) < len(info.Synonyms[i]) {
			t.Errorf("Synonyms not sorted longest first: %v", info.Synonyms)
			break
		}
	}
}
