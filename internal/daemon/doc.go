// Package daemon hosts the long-running recognizer service: it holds the
// single-instance lock, serves the HTTP API over the in-memory queue, and
// keeps the network watcher running so an offline worker wakes promptly.
package daemon
