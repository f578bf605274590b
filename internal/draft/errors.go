package draft

import (
	"errors"
	"fmt"

	"github.com/edvart/cupkeeper/internal/locale"
)

var (
	ErrSequenceOver    = errors.New("pick and ban sequence is over")
	ErrWrongTurnOwner  = errors.New("not your turn")
	ErrWrongActionKind = errors.New("wrong action for this turn")
	ErrUnknownSide     = errors.New("unknown side")
	ErrUnknownMap      = errors.New("unknown map")
	ErrAlreadyBanned   = errors.New("map already banned")
	ErrAlreadyPicked   = errors.New("map already picked")
	ErrNothingToUndo   = errors.New("nothing to undo")
)

// Construction errors.
var (
	ErrUnknownFormat = errors.New("unknown match format")
	ErrPoolTooSmall  = errors.New("map pool too small")
	ErrDuplicateMap  = errors.New("duplicate map in pool")
	ErrInvalidState  = errors.New("invalid match state")
)

// ActionError is a rejected ban, pick, side or undo. It unwraps to one of the
// rule sentinels above.
type ActionError struct {
	Err       error
	Attempted Action
	Expected  Action
	Input     string
}

func (e *ActionError) Error() string {
	switch {
	case errors.Is(e.Err, ErrWrongActionKind):
		return fmt.Sprintf("%v: attempted %s, expected %s", e.Err, e.Attempted, e.Expected)
	case e.Input != "":
		return fmt.Sprintf("%s %q: %v", e.Attempted, e.Input, e.Err)
	case e.Attempted != "":
		return fmt.Sprintf("%s: %v", e.Attempted, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

var messageIDs = []struct {
	err error
	id  string
}{
	{ErrSequenceOver, "match.sequence_over"},
	{ErrWrongTurnOwner, "match.not_your_turn"},
	{ErrWrongActionKind, "match.invalid_turn"},
	{ErrUnknownSide, "match.invalid_side"},
	{ErrUnknownMap, "match.invalid_map"},
	{ErrAlreadyBanned, "match.already_banned"},
	{ErrAlreadyPicked, "match.already_picked"},
	{ErrNothingToUndo, "match.nothing_to_undo"},
}

// Describe renders a rule violation for the user who caused it. Errors that
// are not rule violations are returned as is.
func Describe(err error, loc Localizer) string {
	if loc == nil {
		loc = identityLocalizer{}
	}
	var ae *ActionError
	errors.As(err, &ae)

	for _, m := range messageIDs {
		if !errors.Is(err, m.err) {
			continue
		}
		args := map[string]string{}
		if ae != nil {
			args["action"] = loc.T("action." + string(ae.Attempted))
			args["expected"] = loc.T("action." + string(ae.Expected))
		}
		return locale.Fill(loc.T(m.id), args)
	}
	return err.Error()
}
