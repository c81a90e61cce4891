package engine

import (
	"fmt"
	"sort"
	"strings"
)

// ErrReconstructionFailure indicates the reconstructor's hard contract was
// violated: its emitted steps, replayed, must reach a state with the hand
// empty. Seeing this error means a bug in the enumerator/driver contract,
// not a bad player input (spec.md §4.4 item 4, §7).
var ErrReconstructionFailure = fmt.Errorf("engine: reconstruction failure")

// Step is one human-readable move in the reconstructed plan.
type Step struct {
	Description string `json:"description"`
}

// cardCounter is a (rank,suit) -> count multiset, the Go analogue of the
// Python original's collections.Counter usage in step_planner.py.
type cardCounter map[Card]int

func counterOf(cards []Card) cardCounter {
	c := make(cardCounter, len(cards))
	for _, card := range cards {
		c[card]++
	}
	return c
}

func (c cardCounter) sub(other cardCounter) cardCounter {
	out := make(cardCounter, len(c))
	for k, v := range c {
		rem := v - other[k]
		if rem > 0 {
			out[k] = rem
		}
	}
	return out
}

func (c cardCounter) and(other cardCounter) cardCounter {
	out := make(cardCounter, len(c))
	for k, v := range c {
		if ov := other[k]; ov > 0 {
			m := v
			if ov < m {
				m = ov
			}
			out[k] = m
		}
	}
	return out
}

func (c cardCounter) total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

func (c cardCounter) cards() []Card {
	out := make([]Card, 0, c.total())
	for card, n := range c {
		for i := 0; i < n; i++ {
			out = append(out, card)
		}
	}
	sortCardsTotalOrder(out)
	return out
}

func cardsJoin(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.Display()
	}
	return strings.Join(parts, ", ")
}

func formatGroup(cards []Card) string {
	if len(cards) == 0 {
		return "[]"
	}
	ordered := displayOrder(cards)
	parts := make([]string, len(ordered))
	for i, c := range ordered {
		parts[i] = c.Display()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// displayOrder sorts a group for display: Ace-high runs show Ace last
// (Q, K, A); everything else sorts by (rank, suit), matching card.py's
// format_group in the original implementation.
func displayOrder(cards []Card) []Card {
	out := append([]Card(nil), cards...)
	suits := map[uint8]bool{}
	ranks := map[uint8]bool{}
	for _, c := range out {
		suits[c.Suit()] = true
		ranks[c.Rank()] = true
	}
	aceHigh := len(suits) == 1 && ranks[1] && ranks[13] && !ranks[2]
	sort.Slice(out, func(i, j int) bool {
		ri, rj := int(out[i].Rank()), int(out[j].Rank())
		if aceHigh {
			if ri == 1 {
				ri = 14
			}
			if rj == 1 {
				rj = 14
			}
			return ri < rj
		}
		if ri != rj {
			return ri < rj
		}
		return out[i].Suit() < out[j].Suit()
	})
	return out
}

// Reconstruct compares the initial floor partition (plus cross singletons)
// to the solver's target partition and produces an ordered, human-readable
// sequence of steps describing the transformation (spec.md §4.4).
//
// floorGroups is the table as it was before the turn; cross is the full set
// of anchor cards offered to the solver (used or not); hand is the player's
// starting hand; target is the enumerator's chosen partition over
// hand ∪ floor ∪ usedCross.
func Reconstruct(floorGroups [][]Card, cross, hand []Card, target [][]Card) ([]Step, error) {
	// Sources = floor groups, then each cross card as a one-card "group".
	sources := make([][]Card, 0, len(floorGroups)+len(cross))
	sources = append(sources, floorGroups...)
	for _, c := range cross {
		sources = append(sources, []Card{c})
	}

	sourceCtrs := make([]cardCounter, len(sources))
	for i, g := range sources {
		sourceCtrs[i] = counterOf(g)
	}
	targetCtrs := make([]cardCounter, len(target))
	for i, g := range target {
		targetCtrs[i] = counterOf(g)
	}
	handCtr := counterOf(hand)

	// --- Greedy overlap matching (step 1 of spec.md §4.4) ---
	type overlapPair struct {
		overlap, ti, si int
	}
	var pairs []overlapPair
	for ti, tc := range targetCtrs {
		for si, sc := range sourceCtrs {
			ov := tc.and(sc).total()
			if ov > 0 {
				pairs = append(pairs, overlapPair{ov, ti, si})
			}
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].overlap != pairs[j].overlap {
			return pairs[i].overlap > pairs[j].overlap
		}
		if pairs[i].ti != pairs[j].ti {
			return pairs[i].ti < pairs[j].ti
		}
		return pairs[i].si < pairs[j].si
	})

	matchT2S := map[int]int{}
	usedSource := map[int]bool{}
	for _, p := range pairs {
		if _, taken := matchT2S[p.ti]; taken {
			continue
		}
		if usedSource[p.si] {
			continue
		}
		matchT2S[p.ti] = p.si
		usedSource[p.si] = true
	}

	// Cards staying in a matched target from their original source, and the
	// cards released (freed) from each source.
	sourceStaying := make([]cardCounter, len(sources))
	for ti, si := range matchT2S {
		sourceStaying[si] = targetCtrs[ti].and(sourceCtrs[si])
	}
	released := make([]cardCounter, len(sources))
	for si, sc := range sourceCtrs {
		staying := sourceStaying[si]
		released[si] = sc.sub(staying)
	}

	var steps []Step
	remainingHand := cardCounter{}
	for k, v := range handCtr {
		remainingHand[k] = v
	}

	for ti, tc := range targetCtrs {
		if si, matched := matchT2S[ti]; matched {
			staying := sourceStaying[si]
			needed := tc.sub(staying)
			if needed.total() == 0 {
				continue // UNCHANGED
			}

			fromHand := needed.and(remainingHand)
			remainingHand = remainingHand.sub(fromHand)
			fromSources := needed.sub(fromHand)

			var parts []string
			if fromHand.total() > 0 {
				parts = append(parts, fmt.Sprintf("play %s from hand", cardsJoin(fromHand.cards())))
			}
			if fromSources.total() > 0 {
				desc := describeSources(fromSources, released, floorGroups)
				parts = append(parts, desc)
			}

			oldStr := "[]"
			if si < len(floorGroups) {
				oldStr = formatGroup(floorGroups[si])
			} else {
				oldStr = formatGroup(sources[si])
			}
			newStr := formatGroup(target[ti])
			steps = append(steps, Step{Description: fmt.Sprintf("%s → %s becomes %s (EXTENDED #%d)", strings.Join(parts, " + "), oldStr, newStr, si)})
			continue
		}

		// SYNTHESIZED (or a wholly-new group built only from hand).
		fromHand := tc.and(remainingHand)
		remainingHand = remainingHand.sub(fromHand)
		fromSources := tc.sub(fromHand)

		var parts []string
		if fromHand.total() > 0 {
			parts = append(parts, fmt.Sprintf("%s from hand", cardsJoin(fromHand.cards())))
		}
		if fromSources.total() > 0 {
			parts = append(parts, describeSources(fromSources, released, floorGroups))
		}
		source := strings.Join(parts, " + ")
		newStr := formatGroup(target[ti])
		steps = append(steps, Step{Description: fmt.Sprintf("new group %s ← %s", newStr, source)})
	}

	if remainingHand.total() != 0 {
		return nil, fmt.Errorf("%w: %d hand cards unaccounted for", ErrReconstructionFailure, remainingHand.total())
	}
	return steps, nil
}

// describeSources attributes a needed set of cards to the floor/cross
// sources they were released from, mutating released to consume what it
// attributes (mirrors step_planner.py's _find_sources).
func describeSources(needed cardCounter, released []cardCounter, floorGroups [][]Card) string {
	remaining := cardCounter{}
	for k, v := range needed {
		remaining[k] = v
	}

	var parts []string
	for si := range released {
		overlap := remaining.and(released[si])
		if overlap.total() == 0 {
			continue
		}
		label := fmt.Sprintf("group %d", si)
		if si >= len(floorGroups) {
			label = "cross"
		}
		parts = append(parts, fmt.Sprintf("%s from %s", cardsJoin(overlap.cards()), label))
		released[si] = released[si].sub(overlap)
		remaining = remaining.sub(overlap)
		if remaining.total() == 0 {
			break
		}
	}
	if remaining.total() > 0 {
		parts = append(parts, fmt.Sprintf("%s from floor", cardsJoin(remaining.cards())))
	}
	return "move " + strings.Join(parts, ", ")
}
