// Package ident canonicalises 4GL names. The language is case-insensitive,
// so every name map in the front-end is keyed by Fold(name).
package ident

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Fold returns the lookup key of name: NFC-normalised and case-folded.
func Fold(name string) string {
	ascii := true
	for i := 0; i < len(name); i++ {
		if name[i] >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return foldASCII(name)
	}
	// Caser хранит состояние, поэтому создаём на каждый вызов
	return cases.Fold().String(norm.NFC.String(name))
}

func foldASCII(s string) string {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'A' && c <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if b[j] >= 'A' && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}

// Equal compares two names the way the language does.
func Equal(a, b string) bool {
	if len(a) == len(b) && a == b {
		return true
	}
	return Fold(a) == Fold(b)
}

// HasPrefix reports whether name starts with prefix, ignoring case.
func HasPrefix(name, prefix string) bool {
	if len(prefix) > len(name) {
		return false
	}
	return Fold(name[:len(prefix)]) == Fold(prefix)
}
