// Package fuzztests holds the fuzz harnesses of the front-end: lexer,
// parser and context classification must survive any input without
// panicking, hanging or producing malformed spans.
//
//	go test ./internal/fuzz -fuzz FuzzParser -fuzztime 30s
package fuzztests
