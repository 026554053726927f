// Package diag defines the diagnostic model shared by the lexer, parser,
// resolver and workspace indexer.
//
// Diagnostic is the central record: Severity, a stable numeric Code
// (LEX/SYN/SEM/IO/PRJ ranges), a short Message, the Primary span and
// optional Notes and Fixes.
//
// Producers never store diagnostics themselves; they emit through a
// Reporter. BagReporter collects into a Bag (limit, sort, dedup),
// DedupReporter drops repeats and SinkFunc adapts the plain
// (message, start, end, severity) callback that editor hosts expose.
//
// The package does no formatting; rendering lives in internal/diagfmt.
package diag
