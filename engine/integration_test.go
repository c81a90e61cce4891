package engine

import (
	"testing"
	"time"
)

// The scenarios below mirror spec.md §8's seed corpus (S1-S6) verbatim.

func TestScenarioS1CrossIncorporation(t *testing.T) {
	out := Solve(Input{
		Hand:        []string{"3S", "4S", "5S"},
		Cross:       []string{"2S"},
		FloorGroups: [][]string{{"7H", "7D", "7C"}},
	})
	if !out.Solvable {
		t.Fatalf("expected solvable, got error %+v", out.Error)
	}
	if len(out.RemainingCross) != 0 {
		t.Errorf("expected no remaining cross, got %v", out.RemainingCross)
	}
	if !anyGroupHasCodes(out.TargetGroups, "2S", "3S", "4S", "5S") {
		t.Errorf("expected a [2S,3S,4S,5S] run among target groups, got %v", out.TargetGroups)
	}
	if !anyGroupHasCodes(out.TargetGroups, "7H", "7D", "7C") {
		t.Errorf("expected the unchanged [7H,7D,7C] set among target groups, got %v", out.TargetGroups)
	}
}

func TestScenarioS2AceHighNonWrap(t *testing.T) {
	out := Solve(Input{
		Hand:  []string{"QS", "KS"},
		Cross: []string{"AS"},
	})
	if !out.Solvable {
		t.Fatalf("expected solvable, got error %+v", out.Error)
	}
	if !anyGroupHasCodes(out.TargetGroups, "QS", "KS", "AS") {
		t.Errorf("expected the Ace-high run among target groups, got %v", out.TargetGroups)
	}

	// A pool of [KS, AS, 2S] must never be treated as a valid wrap-around run.
	pool := PoolFromCards(mustParse(t, "KS", "AS", "2S"))
	_, ok, err := Partition(pool, func(Card) bool { return true }, time.Time{}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("[KS,AS,2S] must be NoSolution: a run must never wrap")
	}
}

func TestScenarioS3Unsolvable(t *testing.T) {
	out := Solve(Input{Hand: []string{"2H"}})
	if out.Solvable {
		t.Fatal("a lone 2H can never be discarded in one turn")
	}
	if out.Error != nil {
		t.Fatalf("NoSolution is not an error; got %+v", out.Error)
	}
}

func TestScenarioS4SplitAndRecombine(t *testing.T) {
	out := Solve(Input{
		Hand:        []string{"5H"},
		FloorGroups: [][]string{{"5S", "5D", "5C"}, {"3H", "4H", "6H", "7H"}},
	})
	if !out.Solvable {
		t.Fatalf("expected solvable, got error %+v", out.Error)
	}
	if !anyGroupHasCodes(out.TargetGroups, "5H", "5S", "5D", "5C") {
		t.Errorf("expected the extended set [5H,5S,5D,5C], got %v", out.TargetGroups)
	}
	// 5H must appear exactly once across the whole solution.
	count := 0
	for _, g := range out.TargetGroups {
		for _, c := range g {
			if c.Code == "5H" {
				count++
			}
		}
	}
	if count != 1 {
		t.Errorf("5H must appear exactly once, appeared %d times", count)
	}
}

func TestScenarioS5TwoDeckMultiplicity(t *testing.T) {
	out := Solve(Input{
		Hand:        []string{"7S", "7S"},
		FloorGroups: [][]string{{"7H", "7D", "7C"}},
	})
	if out.Solvable {
		t.Fatalf("expected NoSolution: second 7S has no legal set/run to join, got %+v", out.TargetGroups)
	}
	if out.Error != nil {
		t.Fatalf("NoSolution is not an error; got %+v", out.Error)
	}
}

func TestScenarioS6TimeoutBehavior(t *testing.T) {
	// A 20-card pool of heavily overlapping runs, with a deadline already
	// expired: deterministic regardless of how fast the search actually is.
	hand := []string{
		"2S", "3S", "4S", "5S", "6S", "7S", "8S", "9S", "10S",
		"2H", "3H", "4H", "5H", "6H", "7H", "8H", "9H", "10H",
		"2D", "3D",
	}
	out := Solve(Input{Hand: hand, DeadlineMS: -1})
	if out.Error == nil || out.Error.Kind != KindTimeout {
		t.Fatalf("expected Timeout error, got %+v", out.Error)
	}
}

func anyGroupHasCodes(groups [][]CardView, codes ...string) bool {
	for _, g := range groups {
		if len(g) != len(codes) {
			continue
		}
		want := map[string]int{}
		for _, c := range codes {
			want[c]++
		}
		have := map[string]int{}
		for _, cv := range g {
			have[cv.Code]++
		}
		if len(want) != len(have) {
			continue
		}
		match := true
		for k, v := range want {
			if have[k] != v {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// --- Property tests (spec.md §8 items 1-5) ---

func TestPropertyGroupsAreValid(t *testing.T) {
	pools := []Input{
		{Hand: []string{"3S", "4S", "5S"}, Cross: []string{"2S"}, FloorGroups: [][]string{{"7H", "7D", "7C"}}},
		{Hand: []string{"5H"}, FloorGroups: [][]string{{"5S", "5D", "5C"}, {"3H", "4H", "6H", "7H"}}},
		{Hand: []string{"QS", "KS"}, Cross: []string{"AS"}},
	}
	for _, in := range pools {
		out := Solve(in)
		if !out.Solvable {
			continue
		}
		for _, g := range out.TargetGroups {
			cards := make([]Card, len(g))
			for i, cv := range g {
				c, err := ParseCard(cv.Code)
				if err != nil {
					t.Fatalf("bad code in output: %v", err)
				}
				cards[i] = c
			}
			if !IsValidGroup(cards) {
				t.Errorf("target group %v is not a valid group", g)
			}
		}
	}
}

func TestPropertyCardConservation(t *testing.T) {
	in := Input{
		Hand:        []string{"3S", "4S", "5S"},
		Cross:       []string{"2S"},
		FloorGroups: [][]string{{"7H", "7D", "7C"}},
	}
	out := Solve(in)
	if !out.Solvable {
		t.Fatal("expected solvable")
	}

	inputCounts := map[string]int{}
	for _, c := range in.Hand {
		inputCounts[c]++
	}
	for _, c := range in.Cross {
		inputCounts[c]++
	}
	for _, g := range in.FloorGroups {
		for _, c := range g {
			inputCounts[c]++
		}
	}

	outputCounts := map[string]int{}
	for _, g := range out.TargetGroups {
		for _, cv := range g {
			outputCounts[cv.Code]++
		}
	}
	for _, cv := range out.RemainingCross {
		outputCounts[cv.Code]++
	}

	if len(inputCounts) != len(outputCounts) {
		t.Fatalf("distinct-card-code mismatch: input %v, output %v", inputCounts, outputCounts)
	}
	for code, n := range inputCounts {
		if outputCounts[code] != n {
			t.Errorf("card %s: input count %d, output count %d", code, n, outputCounts[code])
		}
	}
}

func TestPropertyDeterminism(t *testing.T) {
	in := Input{
		Hand:        []string{"3S", "4S", "5S"},
		Cross:       []string{"2S"},
		FloorGroups: [][]string{{"7H", "7D", "7C"}},
	}
	a := Solve(in)
	b := Solve(in)
	if a.Solvable != b.Solvable {
		t.Fatal("determinism violated: solvability differs across calls")
	}
	if len(a.TargetGroups) != len(b.TargetGroups) {
		t.Fatal("determinism violated: target group count differs across calls")
	}
	for i := range a.TargetGroups {
		if len(a.TargetGroups[i]) != len(b.TargetGroups[i]) {
			t.Fatalf("determinism violated at group %d", i)
		}
		for j := range a.TargetGroups[i] {
			if a.TargetGroups[i][j].Code != b.TargetGroups[i][j].Code {
				t.Fatalf("determinism violated at group %d card %d", i, j)
			}
		}
	}
}

func TestPropertySolvableImpliesEveryHandCardPlaced(t *testing.T) {
	in := Input{Hand: []string{"3S", "4S", "5S"}}
	out := Solve(in)
	if !out.Solvable {
		t.Fatal("expected solvable")
	}
	placed := map[string]int{}
	for _, g := range out.TargetGroups {
		for _, cv := range g {
			placed[cv.Code]++
		}
	}
	for _, code := range in.Hand {
		if placed[code] == 0 {
			t.Errorf("hand card %s missing from target groups", code)
			continue
		}
		placed[code]--
	}
}
