// Package organizer files a recognized attachment beneath its new metadata
// item. The insert, the collection copy, and the re-parenting are applied in
// one library transaction.
package organizer
