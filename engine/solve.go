package engine

import (
	"fmt"
	"time"
)

// ErrTimeout is returned when the search deadline elapses before a result
// (solvable or not) is found.
var ErrTimeout = fmt.Errorf("engine: search deadline exceeded")

// ErrInvalidInput is returned for semantically impossible input — a
// programmer error per spec.md §4.3 ("Failure semantics").
var ErrInvalidInput = fmt.Errorf("engine: invalid input")

// searchResult is a cached outcome: either a witness partition or a
// recorded failure.
type searchResult struct {
	groups [][]Card
	ok     bool
}

// search holds the state of one enumerator invocation: the memo table and
// the deadline. It is discarded when the call returns (spec.md §5 — no
// state survives between invocations).
type search struct {
	memo     map[Signature]searchResult
	deadline time.Time
	hasDL    bool
}

// newSearch creates a fresh search context. hasDeadline == false means no
// timeout, and deadline is then ignored.
func newSearch(deadline time.Time, hasDeadline bool) *search {
	return &search{memo: make(map[Signature]searchResult), deadline: deadline, hasDL: hasDeadline}
}

func (s *search) timedOut() bool {
	return s.hasDL && time.Now().After(s.deadline)
}

// Partition attempts to partition the cards for which mustUse holds (plus
// whatever optional cards are needed to complete their groups) out of pool,
// leaving every optional (mustUse == false) card either placed in a group or
// untouched in the pool. It returns the chosen groups and true on success.
//
// This is the enumerator's contract from spec.md §4.3: given a pool and a
// must-use predicate, produce a partition of a subset Q containing every
// required card, or report NoSolution (ok == false, err == nil). A non-nil
// err is reserved for ErrTimeout — the only failure mode distinct from
// NoSolution (spec.md §7).
func Partition(pool Pool, mustUse func(Card) bool, deadline time.Time, hasDeadline bool) (groups [][]Card, ok bool, err error) {
	s := newSearch(deadline, hasDeadline)
	groups, ok = s.solve(pool, mustUse)
	if s.timedOut() {
		return nil, false, ErrTimeout
	}
	return groups, ok, nil
}

// solve is the recursive core described in spec.md §4.3. At each step it
// picks the smallest still-required card, enumerates every legal group
// containing it in the deterministic order of candidatesFor, and recurses
// on the remainder. The pool strictly shrinks by >= 3 cards per recursion
// step and is finite, so recursion depth is bounded by total/3.
func (s *search) solve(pool Pool, mustUse func(Card) bool) ([][]Card, bool) {
	if s.timedOut() {
		return nil, false
	}

	sig := pool.Signature()
	if cached, found := s.memo[sig]; found {
		return cached.groups, cached.ok
	}

	anchor, required := pool.smallestRequired(mustUse)
	if !required {
		// No required card remains; the rest of the pool (if any) is all
		// optional cross cards, which may be left as singletons.
		s.memo[sig] = searchResult{groups: nil, ok: true}
		return nil, true
	}

	for _, cand := range candidatesFor(anchor, &pool) {
		if !canAfford(&pool, cand.cards) {
			continue
		}
		next := pool
		next.RemoveGroup(cand.cards)

		rest, ok := s.solve(next, mustUse)
		if s.timedOut() {
			return nil, false
		}
		if ok {
			result := append([][]Card{cand.cards}, rest...)
			s.memo[sig] = searchResult{groups: result, ok: true}
			return result, true
		}
	}

	s.memo[sig] = searchResult{groups: nil, ok: false}
	return nil, false
}

// canAfford reports whether pool holds at least the multiplicity of every
// card the candidate group needs (guards against a degenerate candidate
// that, due to rank/suit aliasing, would double-spend a single copy).
func canAfford(pool *Pool, group []Card) bool {
	var need [NumRanks][NumSuits]uint8
	for _, c := range group {
		need[c.Rank()-1][c.Suit()]++
	}
	for r := 0; r < NumRanks; r++ {
		for su := 0; su < NumSuits; su++ {
			if need[r][su] > pool.counts[r][su] {
				return false
			}
		}
	}
	return true
}
