package resolver

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/oasforge/oasforge/generrors"
	"github.com/oasforge/oasforge/loader"
)

// Eval evaluates a JSON pointer (RFC 6901) against a document and returns
// the addressed node. The pointer may carry a leading "#". Only the
// empty pointer addresses the document root; "/" addresses the member
// keyed by the empty string.
func Eval(doc *loader.Document, pointer string) (*loader.Node, error) {
	pointer = strings.TrimPrefix(pointer, "#")
	if pointer == "" {
		return doc.Root, nil
	}
	if !strings.HasPrefix(pointer, "/") {
		return nil, &generrors.ReferenceError{
			Message: fmt.Sprintf("pointer %q must start with '/'", pointer),
		}
	}

	tokens := strings.Split(pointer[1:], "/")
	current := doc.Root
	for i, raw := range tokens {
		token := loader.UnescapePointerToken(raw)
		at := "/" + strings.Join(tokens[:i+1], "/")

		switch current.Kind {
		case loader.KindMapping:
			next, ok := current.Get(token)
			if !ok {
				return nil, &generrors.ReferenceError{
					Message: fmt.Sprintf("target not found at %s (missing key %q)", at, token),
				}
			}
			current = next

		case loader.KindSequence:
			index, err := strconv.Atoi(token)
			if err != nil {
				return nil, &generrors.ReferenceError{
					Message: fmt.Sprintf("invalid array index %q at %s", token, at),
				}
			}
			if index < 0 || index >= len(current.Items) {
				return nil, &generrors.ReferenceError{
					Message: fmt.Sprintf("array index %d out of bounds (length %d) at %s", index, len(current.Items), at),
				}
			}
			current = current.Items[index]

		default:
			return nil, &generrors.ReferenceError{
				Message: fmt.Sprintf("cannot traverse into %s node at %s", current.Kind, at),
			}
		}
	}

	return current, nil
}

// asReferenceError is a small errors.As wrapper that keeps call sites terse.
func asReferenceError(err error, target **generrors.ReferenceError) bool {
	return errors.As(err, target)
}
