package engine

import "testing"

func TestReconstructUnchangedGroupEmitsNoStepForIt(t *testing.T) {
	floor := [][]Card{mustParse(t, "7H", "7D", "7C")}
	hand := mustParse(t, "3S", "4S", "5S")
	cross := mustParse(t, "2S")
	target := [][]Card{
		mustParse(t, "2S", "3S", "4S", "5S"),
		mustParse(t, "7H", "7D", "7C"),
	}

	steps, err := Reconstruct(floor, cross, hand, target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(steps) != 1 {
		t.Fatalf("expected exactly one step (the new/extended run), got %d: %v", len(steps), steps)
	}
}

func TestReconstructDetectsLeftoverHand(t *testing.T) {
	floor := [][]Card{}
	hand := mustParse(t, "2H")
	target := [][]Card{} // solver found nothing to place 2H into

	_, err := Reconstruct(floor, nil, hand, target)
	if err == nil {
		t.Fatal("expected ErrReconstructionFailure when hand cards are left unplaced")
	}
}

func TestReconstructExtendedSetEmitsStep(t *testing.T) {
	// Extending a floor set with a hand card must reconstruct without error
	// and describe at least one step. The step text is not inspected, so
	// this does not check that replaying the steps reaches the target.
	floor := [][]Card{
		mustParse(t, "5S", "5D", "5C"),
		mustParse(t, "3H", "4H", "6H", "7H"),
	}
	hand := mustParse(t, "5H")
	target := [][]Card{
		mustParse(t, "5H", "5S", "5D", "5C"),
		mustParse(t, "3H", "4H", "6H", "7H"),
	}

	steps, err := Reconstruct(floor, nil, hand, target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(steps) == 0 {
		t.Fatal("expected at least one step describing the extension")
	}
}
