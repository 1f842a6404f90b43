// Package queue holds the recognition row table and the pending FIFO that
// feeds the worker.
//
// Table is the single owner of both structures. Every mutation runs under one
// mutex, and observers registered with On are notified after the lock is
// released, one batch at a time in mutation order, so a listener may read the
// table. Rows are kept for display only; nothing is persisted and a restart
// starts from an empty table.
//
// Display order is newest first, while Claim hands ids to the worker in the
// order they were enqueued. Each enqueue gets its own Ticket, and the worker
// reports through UpdateClaimed so results for a cancelled or replaced row are
// dropped. Callers must not infer processing order from ListRows.
package queue
