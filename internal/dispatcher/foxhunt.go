package dispatcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/davrell/codecity/internal/models"
)

// foxHuntSpots are the possible hiding places, in the order shown to the
// player.
var foxHuntSpots = []string{"clocktower", "archive", "foundry", "docks", "rooftops"}

const foxHuntGuesses = 3

// foxHunt is the state of one game. The hiding spot is chosen once at game
// start, so the game is winnable; guessing does not reshuffle it.
type foxHunt struct {
	spot      string
	remaining int
}

func (d *Dispatcher) handleFoxHunt(ctx context.Context, res models.ClassificationResult) {
	action := strings.ToLower(res.Param("action"))

	switch action {
	case "start":
		d.foxHuntStart()
	case "guess":
		d.foxHuntGuess(ctx, res.Param("spot"))
	case "quit":
		d.foxHuntQuit()
	default:
		d.appendGame("Fox hunt: say start, guess a spot, or quit.")
	}
}

func (d *Dispatcher) foxHuntStart() {
	d.mu.Lock()
	if d.hunt != nil {
		d.mu.Unlock()
		d.appendGame("A hunt is already underway. The fox is still out there.")
		return
	}
	d.hunt = &foxHunt{
		spot:      foxHuntSpots[d.rng.Intn(len(foxHuntSpots))],
		remaining: foxHuntGuesses,
	}
	d.mu.Unlock()

	d.appendGame(fmt.Sprintf(
		"A fox has slipped into the city. It is hiding in one of: %s. You have %d guesses.",
		strings.Join(foxHuntSpots, ", "), foxHuntGuesses))
}

func (d *Dispatcher) foxHuntGuess(ctx context.Context, spot string) {
	spot = strings.ToLower(strings.TrimSpace(spot))

	d.mu.Lock()
	hunt := d.hunt
	d.mu.Unlock()

	if hunt == nil {
		d.appendGame("No hunt is running. Start one first.")
		return
	}
	if spot == "" {
		d.appendGame("Guess where? Name a spot.")
		return
	}

	if spot == hunt.spot {
		d.mu.Lock()
		d.hunt = nil
		d.mu.Unlock()
		d.appendGame(fmt.Sprintf("You found the fox in the %s! The city cheers.", spot))

		// Victory lap re-enters the public dispatch path with a synthesized
		// command rather than calling the engine handler directly.
		d.Dispatch(ctx, models.ClassificationResult{
			Intent:     models.IntentConceptualBackend,
			Parameters: map[string]string{"script_name": "echo_chamber"},
		}, "fox hunt victory lap")
		return
	}

	d.mu.Lock()
	hunt.remaining--
	remaining := hunt.remaining
	if remaining == 0 {
		d.hunt = nil
	}
	d.mu.Unlock()

	if remaining == 0 {
		d.appendGame(fmt.Sprintf("The trail goes cold. The fox was in the %s all along.", hunt.spot))
		return
	}
	d.appendGame(fmt.Sprintf("Not the %s. %d guesses left.", spot, remaining))
}

func (d *Dispatcher) foxHuntQuit() {
	d.mu.Lock()
	active := d.hunt != nil
	d.hunt = nil
	d.mu.Unlock()

	if !active {
		d.appendGame("No hunt to call off.")
		return
	}
	d.appendGame("Hunt called off. Somewhere, a fox relaxes.")
}

func (d *Dispatcher) appendGame(text string) {
	d.log.Append(models.NewMessage(models.SenderGame, text, models.CategoryGame))
}
