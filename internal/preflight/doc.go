// Package preflight provides readiness checks for the binaries, directories,
// and services the recognizer depends on.
//
// The CLI "recognizer check" command runs RunAll and prints each Result; the
// daemon runs the same checks at startup and logs failures without refusing
// to start, since the worker already holds off while the service is offline.
package preflight
