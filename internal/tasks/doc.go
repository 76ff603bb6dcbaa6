// Package tasks runs long playlist operations over a [models.Store] with progress reporting.
//
// # Bulk Export
//
// [BulkExport] writes every playlist in the store to its own file using a worker pool.
// Store reads are paced by an optional rate limit so a busy database keeps serving the web interface.
// A manifest.json summarizing each playlist's outcome is written next to the exports.
//
// # Progress Reporting
//
// Operations send [ProgressUpdate] values on a caller-supplied channel.
// Sends never block: updates are dropped when the channel is full, and a nil channel disables reporting.
package tasks
