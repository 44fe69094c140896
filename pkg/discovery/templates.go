package discovery

import (
	"embed"

	"mercator-hq/callisto/pkg/spdx/ast"
)

//go:embed templates
var templateFS embed.FS

// Template returns the embedded reference text for a license identifier,
// if one ships with the binary. Templates exist for the short, common
// licenses; the long texts (Apache-2.0, the GPL family) rarely vary in the
// wild, so bundling falls back to the discovered file without a confidence
// score. The WITH exception does not select a different template.
func Template(id ast.Identifier) (string, bool) {
	data, err := templateFS.ReadFile("templates/" + id.ID)
	if err != nil {
		return "", false
	}
	return string(data), true
}
