// Package services defines shared utilities consumed by the recognition
// pipeline and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp item IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so failures read the same
//     way regardless of which integration produced them.
//   - AlertError, the tagged failure variant whose message key is shown to the
//     user in place of the generic error text.
package services
