package votes

import (
	"encoding/json"
	"fmt"

	"github.com/emilythestrangee/reddit-clone/api/internal/apperrors"
)

// Direction is the polarity of a vote. The zero value means no vote.
type Direction string

const (
	None Direction = ""
	Up   Direction = "UP"
	Down Direction = "DOWN"
)

// ParseDirection accepts exactly "UP" or "DOWN".
func ParseDirection(s string) (Direction, error) {
	d := Direction(s)
	if !d.Valid() {
		return None, fmt.Errorf("direction %q must be UP or DOWN: %w", s, apperrors.ErrInvalidInput)
	}
	return d, nil
}

// Valid reports whether d is a castable direction. None is not.
func (d Direction) Valid() bool {
	return d == Up || d == Down
}

// Value is the contribution of a single vote to a score.
func (d Direction) Value() int {
	switch d {
	case Up:
		return 1
	case Down:
		return -1
	default:
		return 0
	}
}

// MarshalJSON renders None as null.
func (d Direction) MarshalJSON() ([]byte, error) {
	if d == None {
		return []byte("null"), nil
	}
	return json.Marshal(string(d))
}

func (d *Direction) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = None
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("direction: %w", apperrors.ErrInvalidInput)
	}
	parsed, err := ParseDirection(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Action is the store mutation a vote request resolves to.
type Action int

const (
	ActionCreate Action = iota
	ActionDelete
	ActionFlip
)

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionDelete:
		return "delete"
	case ActionFlip:
		return "flip"
	default:
		return "unknown"
	}
}

// Transition applies the toggle rule to the actor's previous direction and
// the requested one. It returns the mutation to perform and the direction
// the actor holds afterwards.
//
//	none     + X -> create, X
//	X        + X -> delete, none
//	opposite + X -> flip,   X
func Transition(prev, requested Direction) (Action, Direction) {
	switch prev {
	case None:
		return ActionCreate, requested
	case requested:
		return ActionDelete, None
	default:
		return ActionFlip, requested
	}
}

// Delta is the score change caused by the actor moving from prev to next.
// A client holding a score and its previous direction can project the new
// score from the reconciled direction with it.
func Delta(prev, next Direction) int {
	return next.Value() - prev.Value()
}

// Tally folds a full vote set into a score: ups minus downs.
func Tally(dirs []Direction) int {
	score := 0
	for _, d := range dirs {
		score += d.Value()
	}
	return score
}
