package opmodel

import (
	"strconv"
	"strings"
	"unicode"
)

// idRegistry enforces global uniqueness of operation identifiers and
// resolves synthesized-name collisions in document declaration order.
type idRegistry struct {
	taken map[string]bool
}

func newIDRegistry() *idRegistry {
	return &idRegistry{taken: map[string]bool{}}
}

// claim registers an explicit identifier verbatim.
// Returns false if the identifier is already taken.
func (r *idRegistry) claim(id string) bool {
	if r.taken[id] {
		return false
	}
	r.taken[id] = true
	return true
}

// claimSynthesized registers a synthesized identifier, appending the
// smallest numeric suffix that frees it. Because operations are
// processed in document declaration order, the first-declared collider
// keeps the unadorned form and suffixes stay stable under spec edits
// that don't touch the colliding pair.
func (r *idRegistry) claimSynthesized(base string) string {
	id := base
	for n := 2; r.taken[id]; n++ {
		id = base + strconv.Itoa(n)
	}
	r.taken[id] = true
	return id
}

// synthesizeID derives a deterministic operation identifier from the
// HTTP method and path template: parameter braces are stripped,
// separators normalized, and each path segment capitalized.
//
// GET /pets/{petId} -> getPetsPetId
func synthesizeID(method, path string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(method))

	capitalizeNext := true
	for _, r := range path {
		switch {
		case r == '{' || r == '}':
			// Parameter braces contribute nothing.
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if capitalizeNext {
				b.WriteRune(unicode.ToUpper(r))
				capitalizeNext = false
			} else {
				b.WriteRune(r)
			}
		default:
			capitalizeNext = true
		}
	}
	return b.String()
}
