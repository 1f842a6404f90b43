// Package recognition talks to the remote recognition service: it posts the
// extracted text of a PDF's leading pages as JSON and returns candidate
// bibliographic metadata (identifiers, title, authors, container data).
//
// Responses are validated against an embedded JSON Schema before decoding so
// a malformed payload is reported as a request error rather than producing a
// half-filled candidate.
package recognition
