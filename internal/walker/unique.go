package walker

import (
	"fmt"
	"iter"
	"strings"

	siteerrors "github.com/conneroisu/quire/internal/errors"
)

// DuplicatePolicy decides what happens when one traversal produces the same
// logical name twice, e.g. "a/post.md" and "b/post.md".
type DuplicatePolicy string

const (
	// DuplicateError aborts the traversal on the second occurrence.
	DuplicateError DuplicatePolicy = "error"
	// DuplicateLastWins passes every entry through; the consumer's own
	// overwrite semantics decide the winner, in walk order.
	DuplicateLastWins DuplicatePolicy = "last-wins"
)

// ParseDuplicatePolicy validates a configured policy name.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", DuplicateError:
		return DuplicateError, nil
	case DuplicateLastWins:
		return DuplicateLastWins, nil
	default:
		return "", fmt.Errorf("unknown duplicate policy %q (want %q or %q)", s, DuplicateError, DuplicateLastWins)
	}
}

// Unique applies policy to seq. Errors from seq are passed through and end
// the sequence.
func Unique(seq iter.Seq2[Entry, error], policy DuplicatePolicy) iter.Seq2[Entry, error] {
	if policy == DuplicateLastWins {
		return seq
	}

	return func(yield func(Entry, error) bool) {
		seen := make(map[string]string)
		for entry, err := range seq {
			if err != nil {
				yield(entry, err)
				return
			}
			if first, ok := seen[entry.Name]; ok {
				yield(Entry{}, siteerrors.NewDuplicateName(entry.Name, first, entry.Path))
				return
			}
			seen[entry.Name] = entry.Path
			if !yield(entry, nil) {
				return
			}
		}
	}
}
