package coordinator

import (
	"time"

	"github.com/edvart/cupkeeper/internal/draft"
)

// Command is the interface for all commands sent to the coordinator.
type Command interface {
	command() // marker method
}

// Target names a match either by its ID or by the channel it is played in.
type Target struct {
	MatchID   string
	ChannelID string
}

func ByID(id string) Target { return Target{MatchID: id} }

func InChannel(channelID string) Target { return Target{ChannelID: channelID} }

// CreateMatch starts a new match in a channel.
type CreateMatch struct {
	ChannelID string
	Cup       string
	Format    draft.Format
	PartyA    draft.Party
	PartyB    draft.Party
	CaptainsA []string
	CaptainsB []string
	Maps      []string
	ResultURL string
	// FlipCoin randomly swaps A and B before the sequence is generated.
	FlipCoin bool
	// Replace drops a match already running in the channel instead of failing.
	Replace  bool
	Response chan CreateMatchResult
}

func (CreateMatch) command() {}

type CreateMatchResult struct {
	Match MatchInfo
	Intro draft.Intro
	Err   error
}

// RestoreMatch puts a saved match back under coordination.
type RestoreMatch struct {
	ID        string
	ChannelID string
	Cup       string
	PartyA    draft.Party
	PartyB    draft.Party
	CaptainsA []string
	CaptainsB []string
	State     draft.MatchState
	Streamed  bool
	CreatedAt time.Time
	Response  chan error
}

func (RestoreMatch) command() {}

// SubmitAction applies a ban, pick or side choice.
type SubmitAction struct {
	Target
	Action draft.Action
	Actor  draft.Member
	Input  string
	// Force lets a referee act for the party on turn.
	Force    bool
	Response chan error
}

func (SubmitAction) command() {}

// UndoAction reverts the last action, or reopens a closed match.
type UndoAction struct {
	Target
	Response chan error
}

func (UndoAction) command() {}

type CloseMatch struct {
	Target
	Response chan error
}

func (CloseMatch) command() {}

// RemoveMatch drops a match from coordination for good.
type RemoveMatch struct {
	Target
	Response chan error
}

func (RemoveMatch) command() {}

// RemoveCupMatches drops every live match of a cup. The removed matches are
// sent back, oldest first.
type RemoveCupMatches struct {
	Cup      string
	Response chan []MatchInfo
}

func (RemoveCupMatches) command() {}

// MarkStreamed flags a match as streamed and announces it.
type MarkStreamed struct {
	Target
	URL      string
	Response chan error
}

func (MarkStreamed) command() {}
