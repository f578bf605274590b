package coordinator

import "github.com/edvart/cupkeeper/internal/draft"

type Event interface {
	event() // marker method
}

type MatchCreated struct {
	Match MatchInfo
	Intro draft.Intro
}

func (MatchCreated) event() {}

type MatchRestored struct {
	Match MatchInfo
}

func (MatchRestored) event() {}

type StatusUpdated struct {
	MatchID   string
	ChannelID string
	Status    draft.Status
	State     draft.MatchState
}

func (StatusUpdated) event() {}

// TurnPrompted carries the captains of the acting party in UserIDs.
type TurnPrompted struct {
	MatchID   string
	ChannelID string
	TeamA     string
	TeamB     string
	Prompt    draft.TurnPrompt
	UserIDs   []string
}

func (TurnPrompted) event() {}

type SequenceFinished struct {
	MatchID   string
	ChannelID string
	Summary   draft.Summary
	UserIDs   []string
}

func (SequenceFinished) event() {}

type BroadcastRequested struct {
	MatchID      string
	ChannelID    string
	Announcement draft.Announcement
}

func (BroadcastRequested) event() {}

type MatchRemoved struct {
	MatchID   string
	ChannelID string
}

func (MatchRemoved) event() {}

type StreamAnnounced struct {
	MatchID   string
	ChannelID string
	TeamA     string
	TeamB     string
	URL       string
}

func (StreamAnnounced) event() {}
