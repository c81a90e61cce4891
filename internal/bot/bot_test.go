package bot

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestDecidePlaysWholeHandWhenSolvable(t *testing.T) {
	d := New(testLogger(), "test-bot")
	move, err := d.Decide([]string{"3S", "4S", "5S"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, ActionPlay, move.Action)
	assert.ElementsMatch(t, []string{"3S", "4S", "5S"}, move.CardsPlayed)
}

func TestDecideFallsBackToGreedyHandGroup(t *testing.T) {
	d := New(testLogger(), "test-bot")
	// 7H,7D,7C form a set; 2H cannot join anything — whole hand is
	// unsolvable, but the greedy step should still find the set.
	move, err := d.Decide([]string{"7H", "7D", "7C", "2H"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, ActionPlay, move.Action)
	assert.Len(t, move.CardsPlayed, 3)
}

func TestDecideDrawsWhenNothingPlayable(t *testing.T) {
	d := New(testLogger(), "test-bot")
	move, err := d.Decide([]string{"2H"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, ActionDraw, move.Action)
}
