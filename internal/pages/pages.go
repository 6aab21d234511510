// Package pages parses the textual page-selection languages shared by the
// page-level PDF operations: a lenient range set ("1,3,5-7") and a strict
// reorder permutation ("3,1,2").
package pages

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrInvalidPageSpec  = errors.New("invalid page spec")
	ErrInvalidPageOrder = errors.New("invalid page order")
)

// ParseSet parses a comma-separated list of page numbers and inclusive "a-b"
// ranges into a sorted set of 1-based indices. Non-numeric tokens are a hard
// error; parsed indices outside [1, totalPages] are dropped silently, so the
// result may be empty.
func ParseSet(spec string, totalPages int) ([]int, error) {
	seen := map[int]bool{}
	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			return nil, fmt.Errorf("%w: empty token", ErrInvalidPageSpec)
		}

		if from, to, isRange := strings.Cut(token, "-"); isRange {
			a, err := strconv.Atoi(strings.TrimSpace(from))
			if err != nil {
				return nil, fmt.Errorf("%w: %q is not a page range", ErrInvalidPageSpec, token)
			}
			b, err := strconv.Atoi(strings.TrimSpace(to))
			if err != nil {
				return nil, fmt.Errorf("%w: %q is not a page range", ErrInvalidPageSpec, token)
			}
			for i := a; i <= b; i++ {
				if i >= 1 && i <= totalPages {
					seen[i] = true
				}
			}
			continue
		}

		n, err := strconv.Atoi(token)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a page number", ErrInvalidPageSpec, token)
		}
		if n >= 1 && n <= totalPages {
			seen[n] = true
		}
	}

	out := make([]int, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Ints(out)
	return out, nil
}

// ParseOrder parses a comma-separated list of page numbers that must form an
// exact permutation of 1..totalPages. Any duplicate, omission or out-of-range
// value rejects the whole spec; no partial result is returned.
func ParseOrder(spec string, totalPages int) ([]int, error) {
	parts := strings.Split(spec, ",")
	order := make([]int, 0, len(parts))
	for _, token := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a page number", ErrInvalidPageSpec, token)
		}
		order = append(order, n)
	}

	if len(order) != totalPages {
		return nil, fmt.Errorf("%w: %d pages listed, document has %d", ErrInvalidPageOrder, len(order), totalPages)
	}

	seen := make([]bool, totalPages+1)
	for _, n := range order {
		if n < 1 || n > totalPages {
			return nil, fmt.Errorf("%w: page %d out of range", ErrInvalidPageOrder, n)
		}
		if seen[n] {
			return nil, fmt.Errorf("%w: page %d listed twice", ErrInvalidPageOrder, n)
		}
		seen[n] = true
	}
	return order, nil
}
