// Package bot is a thin heuristic driver around engine.Solve, adapted
// from original_source/game/bot.py's bot_turn. It is explicitly an
// external collaborator, not part of the core: its play policy is a
// simple three-step heuristic, not a specified algorithm.
package bot

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/CrzPhil/Makiaveli/engine"
)

// Action names a bot move, mirroring bot.py's BotMove.action.
type Action string

const (
	ActionPlay Action = "play"
	ActionDraw Action = "draw"
)

// Move is the bot's decision for one turn.
type Move struct {
	Action         Action
	CardsPlayed    []string
	NewFloorGroups [][]string
	Steps          []string
}

// Driver wraps the fields a bot needs across turns: nothing stateful
// beyond a logger, since every decision is a fresh Solve call.
type Driver struct {
	log *logrus.Entry
}

// New builds a Driver that logs through log, tagged with name for
// multi-bot deployments.
func New(log *logrus.Logger, name string) *Driver {
	return &Driver{log: log.WithField("bot", name)}
}

// Decide chooses the bot's move for one turn, given its hand, the
// table's floor groups, and the active cross cards.
//
// Strategy (original_source/game/bot.py bot_turn, steps 1-2 and 4; step
// 3's combinatorial subset search over partial hands is not
// reproduced here — see DESIGN.md):
//  1. Try to play the whole hand via engine.Solve — a win.
//  2. Otherwise try direct sets/runs playable from hand alone, ignoring
//     the floor entirely (no solver call needed).
//  3. Otherwise draw.
func (d *Driver) Decide(hand []string, floorGroups [][]string, cross []string) (Move, error) {
	out := engine.Solve(engine.Input{Hand: hand, FloorGroups: floorGroups, Cross: cross})
	if out.Error != nil {
		return Move{}, fmt.Errorf("bot solve attempt: %w", out.Error)
	}
	if out.Solvable {
		d.log.WithField("hand_size", len(hand)).Info("bot empties hand and wins")
		return Move{
			Action:         ActionPlay,
			CardsPlayed:    hand,
			NewFloorGroups: codesOf(out.TargetGroups),
			Steps:          descriptionsOf(out.Steps),
		}, nil
	}

	if play, newFloor, ok := greedyHandPlay(hand); ok {
		d.log.WithField("cards_played", len(play)).Info("bot plays a group directly from hand")
		return Move{
			Action:         ActionPlay,
			CardsPlayed:    play,
			NewFloorGroups: append(floorGroups, newFloor),
		}, nil
	}

	d.log.Debug("bot finds no play, draws")
	return Move{Action: ActionDraw}, nil
}

func codesOf(groups [][]engine.CardView) [][]string {
	out := make([][]string, len(groups))
	for i, g := range groups {
		codes := make([]string, len(g))
		for j, cv := range g {
			codes[j] = cv.Code
		}
		out[i] = codes
	}
	return out
}

func descriptionsOf(steps []engine.Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.Description
	}
	return out
}

// greedyHandPlay looks for the largest valid set or run playable from
// hand cards alone, without touching the floor (bot.py's
// _find_hand_groups, simplified to "first, largest group found" rather
// than enumerating every sub-run/sub-set).
func greedyHandPlay(handCodes []string) (played []string, remainingGroup []string, ok bool) {
	hand, err := engine.ParseCards(handCodes)
	if err != nil {
		return nil, nil, false
	}

	var best []engine.Card
	for size := len(hand); size >= 3; size-- {
		for _, combo := range combinations(hand, size) {
			if engine.IsValidGroup(combo) {
				best = combo
				break
			}
		}
		if best != nil {
			break
		}
	}
	if best == nil {
		return nil, nil, false
	}

	codes := make([]string, len(best))
	for i, c := range best {
		codes[i] = c.Code()
	}
	return codes, codes, true
}

// combinations returns every size-length subset of cards, in index
// order. Hands are small (at most 14-16 cards) so this is cheap enough
// for a heuristic bot; the core's enumerator never uses this helper.
func combinations(cards []engine.Card, size int) [][]engine.Card {
	if size == 0 || size > len(cards) {
		return nil
	}
	var out [][]engine.Card
	idx := make([]int, size)
	for i := range idx {
		idx[i] = i
	}
	for {
		combo := make([]engine.Card, size)
		for i, j := range idx {
			combo[i] = cards[j]
		}
		out = append(out, combo)

		i := size - 1
		for i >= 0 && idx[i] == len(cards)-size+i {
			i--
		}
		if i < 0 {
			break
		}
		idx[i]++
		for j := i + 1; j < size; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
	return out
}
