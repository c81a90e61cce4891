package engine

import "sort"

// Pool tracks available cards as a rank x suit count matrix. Each
// (rank, suit) pair can appear 0, 1, or 2 times — the game is played with
// two decks. Pool is a flat value type; copying a Pool copies its counts.
type Pool struct {
	counts [NumRanks][NumSuits]uint8
	total  int
}

// NewPool returns an empty Pool.
func NewPool() Pool { return Pool{} }

// PoolFromCards builds a Pool from a flat list of cards.
func PoolFromCards(cards []Card) Pool {
	var p Pool
	for _, c := range cards {
		p.Add(c)
	}
	return p
}

// Add adds one copy of c to the pool.
func (p *Pool) Add(c Card) {
	p.counts[c.Rank()-1][c.Suit()]++
	p.total++
}

// Remove removes one copy of c from the pool. It panics if the count is
// already zero — callers must only remove cards known to be present, which
// the enumerator guarantees by construction.
func (p *Pool) Remove(c Card) {
	ri, si := c.Rank()-1, c.Suit()
	if p.counts[ri][si] == 0 {
		panic("engine: Remove of absent card " + c.Code())
	}
	p.counts[ri][si]--
	p.total--
}

// Get returns the count (0, 1, or 2) of the given rank/suit.
func (p *Pool) Get(rank, suit uint8) uint8 { return p.counts[rank-1][suit] }

// CountOf returns the count of a specific card.
func (p *Pool) CountOf(c Card) uint8 { return p.Get(c.Rank(), c.Suit()) }

// Total returns the number of cards currently in the pool.
func (p *Pool) Total() int { return p.total }

// IsEmpty reports whether the pool holds no cards.
func (p *Pool) IsEmpty() bool { return p.total == 0 }

// RemoveGroup removes every card of a group from the pool.
func (p *Pool) RemoveGroup(group []Card) {
	for _, c := range group {
		p.Remove(c)
	}
}

// AddGroup adds every card of a group to the pool.
func (p *Pool) AddGroup(group []Card) {
	for _, c := range group {
		p.Add(c)
	}
}

// Cards returns the pool's contents as a flat, canonically-ordered slice
// (suit-major, then rank, with duplicate cards appearing twice).
func (p *Pool) Cards() []Card {
	out := make([]Card, 0, p.total)
	for _, s := range suitOrder {
		for r := uint8(1); r <= NumRanks; r++ {
			n := p.counts[r-1][s]
			for i := uint8(0); i < n; i++ {
				out = append(out, NewCard(r, s))
			}
		}
	}
	return out
}

// signatureEntry is one (rank, suit, count) triple in a canonical signature.
type signatureEntry struct {
	rank, suit, count uint8
}

// Signature is the canonical, order-independent fingerprint of a pool used
// as the enumerator's memoization key (spec.md §4.3 item 5): the sorted
// tuple of (rank, suit, count) entries with count > 0. Two pools equal as
// multisets always produce an equal Signature.
type Signature string

// Signature computes the pool's canonical signature.
func (p *Pool) Signature() Signature {
	entries := make([]signatureEntry, 0, NumRanks*NumSuits)
	for _, s := range suitOrder {
		for r := uint8(1); r <= NumRanks; r++ {
			if n := p.counts[r-1][s]; n > 0 {
				entries = append(entries, signatureEntry{r, s, n})
			}
		}
	}
	// Already produced in (suit, rank) order, which is the canonical total
	// order; sort defensively so the signature is robust to iteration-order
	// changes elsewhere.
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.suit != b.suit {
			return a.suit < b.suit
		}
		return a.rank < b.rank
	})

	buf := make([]byte, 0, len(entries)*3)
	for _, e := range entries {
		buf = append(buf, e.rank, e.suit, e.count)
	}
	return Signature(buf)
}

// smallestRequired returns the smallest card (by canonical order) for which
// must_use holds and which is still present in the pool, and true if one
// exists. This is the "current card" of spec.md §4.3 step 1.
func (p *Pool) smallestRequired(mustUse func(Card) bool) (Card, bool) {
	for _, s := range suitOrder {
		for r := uint8(1); r <= NumRanks; r++ {
			if p.counts[r-1][s] == 0 {
				continue
			}
			c := NewCard(r, s)
			if mustUse(c) {
				return c, true
			}
		}
	}
	return 0, false
}
