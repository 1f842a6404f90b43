// Package netstate answers "is the recognition service reachable right now"
// for the worker's offline backoff.
//
// Probe issues a short HTTP request against the configured connectivity URL.
// Any HTTP response counts as online; only transport failures count as
// offline. Watcher listens for kernel uevents on the net subsystem (interface
// added, brought up, renamed) so a sleeping worker can re-check immediately
// instead of waiting out the whole backoff.
package netstate
