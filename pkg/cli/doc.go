// Package cli provides shared plumbing for the callisto commands: report
// rendering in several output formats, process exit codes, error types,
// and signal-aware contexts.
package cli
