package engine

import "sort"

// IsValidSet reports whether cards form a valid Set: 3 or 4 cards, all the
// same rank, all different suits.
func IsValidSet(cards []Card) bool {
	if len(cards) < 3 {
		return false
	}
	rank := cards[0].Rank()
	seenSuit := [NumSuits]bool{}
	for _, c := range cards {
		if c.Rank() != rank {
			return false
		}
		if seenSuit[c.Suit()] {
			return false
		}
		seenSuit[c.Suit()] = true
	}
	return true
}

// IsValidRun reports whether cards form a valid Run: 3 or more cards, all
// the same suit, distinct ranks, forming a contiguous interval with Ace
// either low (before 2) or high (after King) but never both in the same run
// — a sorted rank list of K, A, 2 is rejected, not accepted as wrapping.
func IsValidRun(cards []Card) bool {
	if len(cards) < 3 {
		return false
	}
	suit := cards[0].Suit()
	ranks := make([]int, len(cards))
	seenRank := map[uint8]bool{}
	for i, c := range cards {
		if c.Suit() != suit {
			return false
		}
		if seenRank[c.Rank()] {
			return false
		}
		seenRank[c.Rank()] = true
		ranks[i] = int(c.Rank())
	}
	sort.Ints(ranks)

	if isConsecutive(ranks) {
		return true
	}

	// Ace-high remap: only applicable if both Ace (1) and King (13) present.
	if seenRank[1] && seenRank[13] {
		high := make([]int, len(ranks))
		for i, r := range ranks {
			if r == 1 {
				high[i] = 14
			} else {
				high[i] = r
			}
		}
		sort.Ints(high)
		return isConsecutive(high)
	}

	return false
}

func isConsecutive(sorted []int) bool {
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1]+1 {
			return false
		}
	}
	return true
}

// IsValidGroup reports whether cards form a legal group: a Set or a Run of
// at least 3 cards.
func IsValidGroup(cards []Card) bool {
	return IsValidSet(cards) || IsValidRun(cards)
}
