package draft

import (
	"fmt"

	"github.com/elliotchance/pie/v2"
)

// MatchState is the serializable part of a match. Everything needed to resume
// a draft lives here; parties and notifiers are attached on restore.
type MatchState struct {
	Format            Format     `json:"format"`
	Maps              []string   `json:"maps"`
	Sequence          []TurnStep `json:"sequence"`
	BannedMaps        []string   `json:"bannedMaps"`
	PickedMaps        []string   `json:"pickedMaps"`
	PickedSides       []Side     `json:"pickedSides"`
	Cursor            int        `json:"cursor"`
	ForceClosed       bool       `json:"forceClosed"`
	LastMapAutoPicked bool       `json:"lastMapAutoPicked"`
	ResultURL         string     `json:"resultUrl,omitempty"`
}

// IsDone reports whether the sequence is finished or was closed by a referee.
func (s MatchState) IsDone() bool {
	return s.ForceClosed || s.Cursor >= len(s.Sequence)
}

// Remaining lists the maps neither banned nor picked, in pool order.
func (s MatchState) Remaining() []string {
	return pie.Filter(s.Maps, func(m string) bool {
		return !pie.Contains(s.BannedMaps, m) && !pie.Contains(s.PickedMaps, m)
	})
}

// Clone returns a deep copy.
func (s MatchState) Clone() MatchState {
	c := s
	c.Maps = append([]string(nil), s.Maps...)
	c.Sequence = append([]TurnStep(nil), s.Sequence...)
	c.BannedMaps = append([]string(nil), s.BannedMaps...)
	c.PickedMaps = append([]string(nil), s.PickedMaps...)
	c.PickedSides = append([]Side(nil), s.PickedSides...)
	return c
}

// Validate checks the invariants a restored state must satisfy.
func (s MatchState) Validate() error {
	if _, err := SpecFor(s.Format); err != nil {
		return err
	}
	if len(pie.Unique(s.Maps)) != len(s.Maps) {
		return ErrDuplicateMap
	}
	if s.Cursor < 0 || s.Cursor > len(s.Sequence) {
		return fmt.Errorf("%w: cursor %d outside sequence of %d", ErrInvalidState, s.Cursor, len(s.Sequence))
	}
	if len(s.BannedMaps)+len(s.PickedMaps) > len(s.Maps) {
		return fmt.Errorf("%w: more maps decided than in the pool", ErrInvalidState)
	}
	for _, m := range s.BannedMaps {
		if !pie.Contains(s.Maps, m) {
			return fmt.Errorf("%w: banned map %q not in pool", ErrInvalidState, m)
		}
		if pie.Contains(s.PickedMaps, m) {
			return fmt.Errorf("%w: map %q both banned and picked", ErrInvalidState, m)
		}
	}
	for _, m := range s.PickedMaps {
		if !pie.Contains(s.Maps, m) {
			return fmt.Errorf("%w: picked map %q not in pool", ErrInvalidState, m)
		}
	}
	sideSteps := 0
	for _, step := range s.Sequence[:s.Cursor] {
		if step.Action == ActionSide {
			sideSteps++
		}
	}
	if len(s.PickedSides) > sideSteps {
		return fmt.Errorf("%w: %d sides chosen for %d side steps", ErrInvalidState, len(s.PickedSides), sideSteps)
	}
	return nil
}
