// Package workflow drains the recognition queue.
//
// The Manager owns a single worker slot. Start launches the loop only when
// the slot is free, so concurrent enqueues never produce two loops. The loop
// waits for the library to be ready, holds off while the recognition service
// is unreachable, and then processes pending documents oldest first until
// the queue is empty, recording each outcome on the row table.
//
// Pipeline is the per-document unit of work: it checks that the attachment is
// still a top-level file, extracts text, asks the recognition service for a
// candidate, resolves metadata, and files the attachment beneath the new item.
// A pipeline error fails one row; it never stops the loop.
package workflow
