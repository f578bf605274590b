package draft

import (
	"fmt"
	"strings"
)

// Slot identifies one of the two parties of a match. A always acts first.
type Slot int

const (
	SlotA Slot = 0
	SlotB Slot = 1
)

func (s Slot) Other() Slot {
	return 1 - s
}

func (s Slot) String() string {
	if s == SlotA {
		return "A"
	}
	return "B"
}

type Action string

const (
	ActionBan  Action = "ban"
	ActionPick Action = "pick"
	ActionSide Action = "side"
)

type Side string

const (
	SideAttacking Side = "attacking"
	SideDefending Side = "defending"
)

// TurnStep is one entry of a match sequence.
type TurnStep struct {
	Slot   Slot   `json:"slot"`
	Action Action `json:"action"`
}

type Format string

const (
	FormatBo1 Format = "bo1"
	FormatBo2 Format = "bo2"
	FormatBo3 Format = "bo3"
	FormatBo5 Format = "bo5"
	FormatFFA Format = "ffa"
)

// ParseFormat accepts the format names used by chat commands and the API.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := formats[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
	return f, nil
}

// Member is a chat user as seen by the engine.
type Member struct {
	ID    string   `json:"id"`
	Roles []string `json:"roles,omitempty"`
}

// Localizer resolves display strings by id.
type Localizer interface {
	T(id string) string
}

type identityLocalizer struct{}

func (identityLocalizer) T(id string) string { return id }
