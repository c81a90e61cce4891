package engine

import (
	"fmt"
	"sort"
	"time"
)

// maxCrossCards is the table's anchor capacity (spec.md glossary: "Cross —
// up to four anchor cards").
const maxCrossCards = 4

// Validate checks the semantic preconditions of spec.md §7 before any
// search begins. It assumes codes have already been parsed into Cards.
//
// The spec's Open Question on floor-group legality (spec.md §9) is resolved
// here in favor of the stricter reading: an invalid floor group is rejected
// with InvalidInput rather than silently pooled, since a malformed floor
// can never have arisen from a legal prior turn.
func Validate(hand, cross []Card, floorGroups [][]Card) error {
	if len(cross) > maxCrossCards {
		return fmt.Errorf("%w: cross has %d cards, max is %d", ErrInvalidInput, len(cross), maxCrossCards)
	}

	counts := map[Card]int{}
	for _, c := range hand {
		counts[c]++
	}
	for _, c := range cross {
		counts[c]++
	}
	for _, g := range floorGroups {
		if len(g) < 3 {
			return fmt.Errorf("%w: floor group %v has fewer than 3 cards", ErrInvalidInput, displayOrder(g))
		}
		if !IsValidGroup(g) {
			return fmt.Errorf("%w: floor group %v is not a valid set or run", ErrInvalidInput, displayOrder(g))
		}
		for _, c := range g {
			counts[c]++
		}
	}
	for c, n := range counts {
		if n > 2 {
			return fmt.Errorf("%w: %s appears %d times, at most 2 copies exist across two decks", ErrInvalidInput, c.Code(), n)
		}
	}
	return nil
}

// relevance scores a floor group by its cards' overlap with the hand: two
// points per card sharing a rank with the hand, plus one per card sharing
// a suit — a proxy for "how likely this group needs to be
// dissolved to place the hand", adapted from the original implementation's
// _relevance_scores.
func relevance(group []Card, handRanks map[uint8]bool, handSuits map[uint8]bool) int {
	score := 0
	for _, c := range group {
		if handRanks[c.Rank()] {
			score += 2
		}
		if handSuits[c.Suit()] {
			score++
		}
	}
	return score
}

// relevanceOrder returns floor-group indices sorted most-relevant-first,
// ties broken by original index for determinism.
func relevanceOrder(hand []Card, floorGroups [][]Card) []int {
	handRanks := map[uint8]bool{}
	handSuits := map[uint8]bool{}
	for _, c := range hand {
		handRanks[c.Rank()] = true
		handSuits[c.Suit()] = true
	}
	idx := make([]int, len(floorGroups))
	scores := make([]int, len(floorGroups))
	for i, g := range floorGroups {
		idx[i] = i
		scores[i] = relevance(g, handRanks, handSuits)
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if scores[idx[a]] != scores[idx[b]] {
			return scores[idx[a]] > scores[idx[b]]
		}
		return idx[a] < idx[b]
	})
	return idx
}

// Solve is the core's single entry point (spec.md §6): given hand, floor,
// and cross card codes, it decides whether the hand can be fully emptied
// this turn and, if so, returns the target partition and a step-by-step
// plan to reach it.
func Solve(in Input) Output {
	start := time.Now()

	hand, err := ParseCards(in.Hand)
	if err != nil {
		return errOutput(start, KindMalformedCode, err)
	}
	cross, err := ParseCards(in.Cross)
	if err != nil {
		return errOutput(start, KindMalformedCode, err)
	}
	floorGroups := make([][]Card, len(in.FloorGroups))
	for i, codes := range in.FloorGroups {
		g, err := ParseCards(codes)
		if err != nil {
			return errOutput(start, KindMalformedCode, err)
		}
		floorGroups[i] = g
	}

	if err := Validate(hand, cross, floorGroups); err != nil {
		return errOutput(start, KindInvalidInput, err)
	}

	var deadline time.Time
	hasDeadline := in.DeadlineMS != 0
	switch {
	case in.DeadlineMS > 0:
		deadline = start.Add(time.Duration(in.DeadlineMS) * time.Millisecond)
	case in.DeadlineMS < 0:
		// A negative budget models a deadline that has already elapsed —
		// used by tests to force a deterministic Timeout regardless of
		// machine speed (spec.md §8 S6).
		deadline = start.Add(-time.Millisecond)
	}

	target, solvable, err := solveIncremental(hand, cross, floorGroups, deadline, hasDeadline)
	if err != nil {
		return errOutput(start, KindTimeout, err)
	}
	if !solvable {
		return Output{Solvable: false, ElapsedSeconds: time.Since(start).Seconds()}
	}

	steps, err := Reconstruct(floorGroups, cross, hand, target)
	if err != nil {
		return errOutput(start, KindReconstructionFailure, err)
	}

	return Output{
		Solvable:       true,
		ElapsedSeconds: time.Since(start).Seconds(),
		TargetGroups:   viewGroups(target),
		Steps:          steps,
		RemainingCross: viewCards(remainingCross(cross, target)),
	}
}

// solveIncremental tries to place the hand while keeping as many floor
// groups intact as possible, dissolving the most hand-relevant groups
// first and widening the dissolved set one group at a time — a simplified,
// deterministic form of the original implementation's iterative-deepening
// search (original_source/solver.py `_solve_incremental`), which tried
// every combination of a given dissolution size. Trying only the single
// most-relevant prefix at each size keeps the same "cheap repartitions
// first" behavior without an attempt cap, at the cost of occasionally
// falling through to a larger prefix than the original's combinatorial
// sweep would have needed; the final prefix (the whole floor) is always a
// complete from-scratch solve, so completeness is unaffected.
func solveIncremental(hand, cross []Card, floorGroups [][]Card, deadline time.Time, hasDeadline bool) ([][]Card, bool, error) {
	if len(floorGroups) == 0 {
		return solveOverPool(hand, cross, nil, deadline, hasDeadline)
	}

	order := relevanceOrder(hand, floorGroups)
	for k := 0; k <= len(order); k++ {
		dissolve := order[:k]
		dissolveSet := make(map[int]bool, k)
		for _, i := range dissolve {
			dissolveSet[i] = true
		}

		var toDissolve [][]Card
		var untouched [][]Card
		for i, g := range floorGroups {
			if dissolveSet[i] {
				toDissolve = append(toDissolve, g)
			} else {
				untouched = append(untouched, g)
			}
		}

		result, ok, err := solveOverPool(hand, cross, toDissolve, deadline, hasDeadline)
		if err != nil {
			return nil, false, err
		}
		if ok {
			full := append([][]Card{}, result...)
			full = append(full, untouched...)
			return full, true, nil
		}
	}
	return nil, false, nil
}

// solveOverPool runs the enumerator over hand ∪ cross ∪ dissolvedFloor, with
// every hand and dissolved-floor card required and every cross card
// optional — the driver-level instantiation of the enumerator contract in
// spec.md §4.3.
func solveOverPool(hand, cross []Card, dissolvedFloor [][]Card, deadline time.Time, hasDeadline bool) ([][]Card, bool, error) {
	required := map[Card]bool{}
	var pool Pool
	for _, c := range hand {
		pool.Add(c)
		required[c] = true
	}
	for _, g := range dissolvedFloor {
		for _, c := range g {
			pool.Add(c)
			required[c] = true
		}
	}
	for _, c := range cross {
		pool.Add(c)
	}

	mustUse := func(c Card) bool { return required[c] }
	return Partition(pool, mustUse, deadline, hasDeadline)
}

// remainingCross returns the cross cards not present in target, accounting
// for multiplicity.
func remainingCross(cross []Card, target [][]Card) []Card {
	used := map[Card]int{}
	for _, g := range target {
		for _, c := range g {
			used[c]++
		}
	}
	var out []Card
	for _, c := range cross {
		if used[c] > 0 {
			used[c]--
			continue
		}
		out = append(out, c)
	}
	return out
}

func viewGroups(groups [][]Card) [][]CardView {
	out := make([][]CardView, len(groups))
	for i, g := range groups {
		out[i] = viewCards(displayOrder(g))
	}
	return out
}

func viewCards(cards []Card) []CardView {
	out := make([]CardView, len(cards))
	for i, c := range cards {
		out[i] = cardView(c)
	}
	return out
}

func errOutput(start time.Time, kind ErrorKind, err error) Output {
	return Output{
		Solvable:       false,
		ElapsedSeconds: time.Since(start).Seconds(),
		Error:          newSolveError(kind, err),
	}
}

// VerifySolution re-checks that groups form a valid partition of allCards,
// independent of how they were produced — usable by tests, and by a
// service layer before trusting a cached result (original_source/solver.py
// `verify_solution`).
func VerifySolution(allCards []Card, groups [][]Card) error {
	for _, g := range groups {
		if !IsValidGroup(g) {
			return fmt.Errorf("invalid group: %v", displayOrder(g))
		}
	}

	groupCounts := map[Card]int{}
	for _, g := range groups {
		for _, c := range g {
			groupCounts[c]++
		}
	}
	cardCounts := map[Card]int{}
	for _, c := range allCards {
		cardCounts[c]++
	}
	if len(groupCounts) != len(cardCounts) {
		return fmt.Errorf("card counts don't match")
	}
	for c, n := range cardCounts {
		if groupCounts[c] != n {
			return fmt.Errorf("card counts don't match for %s: have %d, want %d", c.Code(), groupCounts[c], n)
		}
	}
	return nil
}
