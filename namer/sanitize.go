// This file implements identifier sanitization: conversion of arbitrary
// schema and operation names into valid output identifiers, including
// reserved-word escaping, PascalCase conversion, and leading-digit
// correction.

package namer

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// titleCaser capitalizes the first letter of a word without lowering
// the rest, so "petId" becomes "PetId" rather than "Petid".
var titleCaser = cases.Title(language.English, cases.NoLower)

// sanitize converts an arbitrary string into a PascalCase identifier:
// the input is split on every non-alphanumeric rune, each word is
// capitalized, and a leading digit is corrected with a "T" prefix.
// The empty result falls back to fallback.
func sanitize(s, fallback string) string {
	var b strings.Builder
	word := strings.Builder{}
	flush := func() {
		if word.Len() > 0 {
			b.WriteString(titleCaser.String(word.String()))
			word.Reset()
		}
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()

	name := b.String()
	if name == "" {
		return fallback
	}
	if !unicode.IsLetter(rune(name[0])) {
		name = "T" + name
	}
	return name
}

// reservedSet is a case-insensitive membership set for the configured
// reserved words of the output language.
type reservedSet map[string]bool

func newReservedSet(words []string) reservedSet {
	set := make(reservedSet, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = true
	}
	return set
}

// escape appends an underscore to identifiers that collide with a
// reserved word. The check is case-insensitive so PascalCase forms of
// keywords are escaped too.
func (r reservedSet) escape(name string) string {
	if r[strings.ToLower(name)] {
		return name + "_"
	}
	return name
}
