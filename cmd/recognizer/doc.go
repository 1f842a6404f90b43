// Command recognizer manages a PDF library and recognizes its top-level
// attachments against bibliographic metadata, either in-process or through
// a running daemon.
package main
