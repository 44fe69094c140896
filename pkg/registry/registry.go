// Package registry classifies license identifiers into compatibility tiers.
//
// The registry is backed by a static identifier table embedded at build time
// and parsed once at first use; it is immutable afterwards and safe for
// concurrent readers. Unknown identifiers classify as TierUnknown rather
// than failing; whether an unknown license blocks a verdict is the
// caller's decision, not the registry's.
//
// WITH exceptions never change the tier classification of the base
// identifier: exceptions are carve-outs for specific derivative-work terms,
// not tier changes. They are recorded so reports can render them, but tier
// arithmetic ignores them.
package registry

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"mercator-hq/callisto/pkg/spdx/ast"
)

//go:embed data/licenses.yaml
var embeddedTable []byte

// Info is the canonical metadata recorded for a known license identifier.
type Info struct {
	// ID is the canonical identifier, e.g. "GPL-3.0-only".
	ID string

	// Tier is the compatibility tier classification.
	Tier Tier

	// OSIApproved reports whether the license is OSI-approved.
	OSIApproved bool

	// Synonyms are slugified alternate names, longest first, used when
	// matching license file names on disk.
	Synonyms []string
}

// Registry maps license identifiers to tiers and canonical metadata.
// A Registry is immutable after construction.
type Registry struct {
	byID       map[string]*Info // canonical IDs and aliases
	exceptions map[string]bool
	infos      []*Info // canonical entries, sorted by ID
}

// tableFile mirrors the embedded YAML schema.
type tableFile struct {
	Licenses []struct {
		ID       string   `yaml:"id"`
		Tier     string   `yaml:"tier"`
		OSI      bool     `yaml:"osi"`
		Aliases  []string `yaml:"aliases"`
		Synonyms []string `yaml:"synonyms"`
	} `yaml:"licenses"`
	Exceptions []string `yaml:"exceptions"`
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)

// Default returns the process-wide registry built from the embedded table.
// The table is parsed on first call and shared afterwards.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry, defaultErr = NewFromData(embeddedTable)
	})
	if defaultErr != nil {
		// The embedded table ships with the binary; failing to parse it is
		// a build defect, not a runtime condition.
		panic(fmt.Sprintf("registry: embedded license table invalid: %v", defaultErr))
	}
	return defaultRegistry
}

// NewFromData builds a registry from YAML table data. Exposed for tests and
// for callers that curate their own table.
func NewFromData(data []byte) (*Registry, error) {
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse license table: %w", err)
	}
	if len(file.Licenses) == 0 {
		return nil, fmt.Errorf("license table contains no licenses")
	}

	r := &Registry{
		byID:       make(map[string]*Info, len(file.Licenses)*2),
		exceptions: make(map[string]bool, len(file.Exceptions)),
	}
	for _, entry := range file.Licenses {
		if entry.ID == "" {
			return nil, fmt.Errorf("license table entry with empty id")
		}
		tier, err := ParseTier(entry.Tier)
		if err != nil {
			return nil, fmt.Errorf("license %q: %w", entry.ID, err)
		}
		info := &Info{
			ID:          entry.ID,
			Tier:        tier,
			OSIApproved: entry.OSI,
			Synonyms:    buildSynonyms(entry.ID, entry.Synonyms),
		}
		if _, dup := r.byID[entry.ID]; dup {
			return nil, fmt.Errorf("duplicate license id %q", entry.ID)
		}
		r.byID[entry.ID] = info
		r.infos = append(r.infos, info)
		for _, alias := range entry.Aliases {
			if _, dup := r.byID[alias]; dup {
				return nil, fmt.Errorf("duplicate license alias %q", alias)
			}
			r.byID[alias] = info
		}
	}
	for _, exc := range file.Exceptions {
		r.exceptions[exc] = true
	}
	sort.Slice(r.infos, func(i, j int) bool { return r.infos[i].ID < r.infos[j].ID })
	return r, nil
}

// TierOf returns the compatibility tier for an identifier. Lookup is
// case-sensitive on the canonical form produced by the parser; unrecognized
// identifiers map to TierUnknown. The WITH exception, if any, does not
// affect the result.
func (r *Registry) TierOf(id ast.Identifier) Tier {
	if info, ok := r.byID[strings.TrimSpace(id.ID)]; ok {
		return info.Tier
	}
	return TierUnknown
}

// Lookup returns the canonical metadata for an identifier, or nil when the
// identifier is not in the table.
func (r *Registry) Lookup(id ast.Identifier) *Info {
	return r.byID[strings.TrimSpace(id.ID)]
}

// KnownException reports whether the exception identifier appears in the
// curated exception list.
func (r *Registry) KnownException(exception string) bool {
	return r.exceptions[exception]
}

// All returns every canonical entry in the table, sorted by identifier.
func (r *Registry) All() []*Info {
	return r.infos
}

// buildSynonyms returns the slugified synonym list for an identifier with
// the longest entry first, on the assumption that longer names are more
// specific when matching file names.
func buildSynonyms(id string, extra []string) []string {
	synonyms := append([]string{Slugify(id)}, extra...)
	sort.SliceStable(synonyms, func(i, j int) bool { return len(synonyms[i]) > len(synonyms[j]) })
	return synonyms
}

// Slugify lowercases an identifier and collapses every run of
// non-alphanumeric characters to a single hyphen, matching how license file
// names tend to spell identifiers ("Apache-2.0" -> "apache-2-0").
func Slugify(s string) string {
	var sb strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if isAlnum {
			if pendingHyphen && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			pendingHyphen = false
			sb.WriteRune(r)
		} else {
			pendingHyphen = true
		}
	}
	return sb.String()
}
