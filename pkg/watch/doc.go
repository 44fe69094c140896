// Package watch keeps a compliance verdict fresh while a dependency
// manifest evolves.
//
// Two triggers are supported and can be combined: a filesystem watcher
// that re-runs the check when the manifest changes on disk (with
// debouncing to absorb editor save storms), and a cron scheduler for
// periodic re-checks independent of file activity.
package watch
