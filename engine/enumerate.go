package engine

import "sort"

// candidate is one candidate group generated for a fixed anchor card.
type candidate struct {
	cards []Card
	isRun bool // runs are tried before sets, per spec.md §4.3 ordering rule (i)
}

// setsContaining returns every valid Set that includes (rank, suit): one
// representative card at `rank` from each non-empty subset (size >= 2) of
// the other three suits, plus the anchor suit itself.
func setsContaining(rank, suit uint8, p *Pool) [][]Card {
	var others []uint8
	for _, s := range suitOrder {
		if s != suit && p.Get(rank, s) > 0 {
			others = append(others, s)
		}
	}

	var results [][]Card
	n := len(others)
	// Enumerate every non-empty subset of `others`, size 1..n (a subset of
	// size 1 gives a 2-card "set", which is invalid and excluded by the
	// >= 3 total-card check below).
	for mask := 1; mask < (1 << n); mask++ {
		size := popcount(mask)
		if size+1 < 3 {
			continue
		}
		group := make([]Card, 0, size+1)
		group = append(group, NewCard(rank, suit))
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				group = append(group, NewCard(rank, others[i]))
			}
		}
		sortCardsTotalOrder(group)
		results = append(results, group)
	}
	return results
}

func sortCardsTotalOrder(cards []Card) {
	sort.Slice(cards, func(i, j int) bool { return cards[i].Less(cards[j]) })
}

func popcount(x int) int {
	n := 0
	for x != 0 {
		n += x & 1
		x >>= 1
	}
	return n
}

// runsContaining returns every valid Run within `suit` that includes
// (rank, suit): every sub-interval of length >= 3 of the maximal contiguous
// window around rank, plus every Ace-high window containing rank when both
// Ace and King of that suit are present.
func runsContaining(rank, suit uint8, p *Pool) [][]Card {
	avail := [NumRanks + 1]bool{} // index by rank, 1-13
	for r := uint8(1); r <= NumRanks; r++ {
		avail[r] = p.Get(r, suit) > 0
	}
	if !avail[rank] {
		return nil
	}

	var results [][]Card

	lo, hi := rank, rank
	for lo > 1 && avail[lo-1] {
		lo--
	}
	for hi < NumRanks && avail[hi+1] {
		hi++
	}

	for start := lo; start <= rank; start++ {
		endMin := rank
		if start+2 > endMin {
			endMin = start + 2
		}
		for end := endMin; end <= hi; end++ {
			if end < start+2 {
				continue
			}
			group := make([]Card, 0, end-start+1)
			for r := start; r <= end; r++ {
				group = append(group, NewCard(r, suit))
			}
			results = append(results, group)
		}
	}

	// Ace-high runs: sequences ending Q,K,A (ranks ..., 12, 13, 1).
	if avail[1] && avail[13] {
		aceLo := uint8(13)
		for aceLo > 2 && avail[aceLo-1] {
			aceLo--
		}
		for start := aceLo; start < 13; start++ {
			runRanks := make([]uint8, 0, 13-int(start)+2)
			inRun := false
			for r := start; r <= 13; r++ {
				runRanks = append(runRanks, r)
				if r == rank {
					inRun = true
				}
			}
			runRanks = append(runRanks, 1)
			if rank == 1 {
				inRun = true
			}
			if !inRun || len(runRanks) < 3 {
				continue
			}
			group := make([]Card, 0, len(runRanks))
			for _, r := range runRanks {
				group = append(group, NewCard(r, suit))
			}
			sortCardsTotalOrder(group)
			results = append(results, group)
		}
	}

	return results
}

// candidatesFor returns every candidate group containing `c`, ordered per
// spec.md §4.3: runs before sets, larger groups before smaller, and
// lexicographically smaller group before larger under Card.Less, within
// each tier. This order is observable — it is what makes the enumerator and
// therefore the whole solver deterministic for a given input (spec.md §5).
func candidatesFor(c Card, p *Pool) []candidate {
	runs := runsContaining(c.Rank(), c.Suit(), p)
	sets := setsContaining(c.Rank(), c.Suit(), p)

	out := make([]candidate, 0, len(runs)+len(sets))
	for _, g := range runs {
		out = append(out, candidate{cards: g, isRun: true})
	}
	for _, g := range sets {
		out = append(out, candidate{cards: g, isRun: false})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.isRun != b.isRun {
			return a.isRun // runs first
		}
		if len(a.cards) != len(b.cards) {
			return len(a.cards) > len(b.cards) // larger first
		}
		return lessGroup(a.cards, b.cards)
	})
	return out
}

// lessGroup compares two equal-length, already-sorted-by-construction card
// slices lexicographically under Card.Less.
func lessGroup(a, b []Card) bool {
	for i := range a {
		if a[i] == b[i] {
			continue
		}
		return a[i].Less(b[i])
	}
	return false
}
