// Callisto checks the license compatibility of a dependency graph.
//
// It reads a dependency manifest, parses every package's license
// declaration, and decides whether the whole tree can legally be
// distributed under a chosen compatibility tier. Beyond the one-shot
// check it can list every license in use, assemble attribution bundles
// for release artifacts, archive past runs, and keep watching the
// manifest for drift.
//
// Usage:
//
//	# Check the tree against a permissive host project
//	callisto check --manifest deps.yaml --target permissive
//
//	# List every license in use, with provenance
//	callisto list --manifest deps.yaml
//
//	# Write a third-party attribution document
//	callisto bundle --manifest deps.yaml --variant inline > THIRD_PARTY.txt
//
//	# Re-check automatically whenever the manifest changes
//	callisto watch --manifest deps.yaml --target permissive
//
//	# Inspect archived runs
//	callisto history list
package main

func main() {
	Execute()
}
