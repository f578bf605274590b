package coordinator

import (
	"time"

	"github.com/edvart/cupkeeper/internal/draft"
)

// Session is a live match: its draft engine plus the room it is played in.
type Session struct {
	ID         string
	ChannelID  string
	Cup        string
	CaptainIDs [2][]string
	Engine     *draft.Engine
	Streamed   bool
	StreamURL  string
	CreatedAt  time.Time
}

func (s *Session) TeamNames() (string, string) {
	p := s.Engine.Parties()
	return p[draft.SlotA].Name(), p[draft.SlotB].Name()
}

// MatchInfo is a read-only view of a session, safe to hand out of the loop.
type MatchInfo struct {
	ID        string               `json:"id"`
	ChannelID string               `json:"channelId"`
	Cup       string               `json:"cup"`
	TeamA     string               `json:"teamA"`
	TeamB     string               `json:"teamB"`
	Format    draft.Format         `json:"format"`
	Status    draft.Status         `json:"status"`
	Prompt    *draft.TurnPrompt    `json:"prompt,omitempty"`
	Summary   *draft.Summary       `json:"summary,omitempty"`
	State     draft.MatchState     `json:"state"`
	Sequence  []draft.SequenceLine `json:"sequence"`
	Streamed  bool                 `json:"streamed"`
	StreamURL string               `json:"streamUrl,omitempty"`
	CreatedAt time.Time            `json:"createdAt"`
}

func (s *Session) Info() MatchInfo {
	a, b := s.TeamNames()
	info := MatchInfo{
		ID:        s.ID,
		ChannelID: s.ChannelID,
		Cup:       s.Cup,
		TeamA:     a,
		TeamB:     b,
		Format:    s.Engine.Format(),
		Status:    s.Engine.Status(),
		State:     s.Engine.State(),
		Sequence:  s.Engine.Intro().Sequence,
		Streamed:  s.Streamed,
		StreamURL: s.StreamURL,
		CreatedAt: s.CreatedAt,
	}
	if p, ok := s.Engine.TurnPrompt(); ok {
		info.Prompt = &p
	}
	if st := info.State; !st.ForceClosed && st.IsDone() && len(st.Sequence) > 0 {
		summary := s.Engine.Summary()
		info.Summary = &summary
	}
	return info
}

type State struct {
	Sessions  map[string]*Session // keyed by match ID
	byChannel map[string]string
}

func NewState() *State {
	return &State{
		Sessions:  make(map[string]*Session),
		byChannel: make(map[string]string),
	}
}

func (s *State) Add(sess *Session) {
	s.Sessions[sess.ID] = sess
	s.byChannel[sess.ChannelID] = sess.ID
}

func (s *State) Remove(id string) *Session {
	sess, ok := s.Sessions[id]
	if !ok {
		return nil
	}
	delete(s.Sessions, id)
	if s.byChannel[sess.ChannelID] == id {
		delete(s.byChannel, sess.ChannelID)
	}
	return sess
}

func (s *State) Get(id string) *Session {
	return s.Sessions[id]
}

func (s *State) InChannel(channelID string) *Session {
	id, ok := s.byChannel[channelID]
	if !ok {
		return nil
	}
	return s.Sessions[id]
}

// Find resolves a target by match ID first, then by channel.
func (s *State) Find(t Target) *Session {
	if t.MatchID != "" {
		return s.Get(t.MatchID)
	}
	if t.ChannelID != "" {
		return s.InChannel(t.ChannelID)
	}
	return nil
}
