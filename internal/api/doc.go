// Package api defines the wire-format types for the recognizer HTTP API and
// a small client for them.
//
// QueueService adapts the in-memory row table and the workflow manager into
// DTOs; the daemon serves them and the CLI reads them back through Client.
// DTOs use camelCase JSON tags and expose statuses as lowercase strings.
package api
