package engine

import "testing"

func mustParse(t *testing.T, codes ...string) []Card {
	t.Helper()
	cards, err := ParseCards(codes)
	if err != nil {
		t.Fatalf("ParseCards(%v): %v", codes, err)
	}
	return cards
}

func TestIsValidSet(t *testing.T) {
	cases := []struct {
		name string
		cds  []string
		want bool
	}{
		{"three suits", []string{"7S", "7H", "7D"}, true},
		{"four suits", []string{"7S", "7H", "7D", "7C"}, true},
		{"too short", []string{"7S", "7H"}, false},
		{"duplicate suit", []string{"7S", "7S", "7H"}, false},
		{"mixed rank", []string{"7S", "8H", "7D"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := IsValidSet(mustParse(t, tc.cds...))
			if got != tc.want {
				t.Errorf("IsValidSet(%v) = %v, want %v", tc.cds, got, tc.want)
			}
		})
	}
}

func TestIsValidRun(t *testing.T) {
	cases := []struct {
		name string
		cds  []string
		want bool
	}{
		{"low run", []string{"3S", "4S", "5S"}, true},
		{"ace low", []string{"AS", "2S", "3S"}, true},
		{"ace high", []string{"QS", "KS", "AS"}, true},
		{"wrap forbidden", []string{"KS", "AS", "2S"}, false},
		{"mixed suit", []string{"3S", "4H", "5S"}, false},
		{"gap", []string{"3S", "5S", "6S"}, false},
		{"duplicate rank", []string{"3S", "3S", "4S"}, false},
		{"too short", []string{"3S", "4S"}, false},
		{"long run", []string{"2H", "3H", "4H", "5H", "6H"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := IsValidRun(mustParse(t, tc.cds...))
			if got != tc.want {
				t.Errorf("IsValidRun(%v) = %v, want %v", tc.cds, got, tc.want)
			}
		})
	}
}

func TestIsValidGroupRejectsSmall(t *testing.T) {
	if IsValidGroup(mustParse(t, "3S", "4S")) {
		t.Error("a 2-card group must never be valid")
	}
	if IsValidGroup(nil) {
		t.Error("an empty group must never be valid")
	}
}

// TestGroupValidatorRoundTrip is the property test of spec.md §8 item 7:
// every generated valid run/set is accepted, and perturbing it (here, the
// K,A,2 wrap) is rejected.
func TestGroupValidatorRoundTrip(t *testing.T) {
	valid := [][]string{
		{"AS", "2S", "3S"},
		{"QS", "KS", "AS"},
		{"5H", "5D", "5C"},
		{"5H", "5D", "5C", "5S"},
	}
	for _, g := range valid {
		if !IsValidGroup(mustParse(t, g...)) {
			t.Errorf("expected %v to be valid", g)
		}
	}

	wraps := [][]string{
		{"KS", "AS", "2S"},
		{"KH", "AH", "2H", "3H"},
	}
	for _, g := range wraps {
		if IsValidGroup(mustParse(t, g...)) {
			t.Errorf("expected %v (wrap) to be rejected", g)
		}
	}
}
