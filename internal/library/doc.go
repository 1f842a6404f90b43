// Package library persists the document library: attachments imported from
// disk, the metadata items created for them, creators, collections, and the
// parent links that file an attachment beneath its metadata record.
//
// The store is SQLite (modernc.org/sqlite, no cgo). Multi-step writes go
// through InTx so callers such as the organizer commit all-or-nothing.
package library
