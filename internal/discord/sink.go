package discord

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/edvart/cupkeeper/internal/coordinator"
	"github.com/edvart/cupkeeper/internal/draft"
)

// roomMessages tracks the bot's live messages in one match room.
type roomMessages struct {
	statusID string
	promptID string
}

// Sink posts coordinator events to the match rooms and broadcast rooms.
type Sink struct {
	client   chatClient
	render   *Renderer
	log      *logrus.Entry
	rooms    map[string]*roomMessages
	names    map[string]string
	mu       sync.Mutex
	enabled  atomic.Bool
	channels map[string][]string
}

// BroadcastConfig lists the broadcast rooms per announcement kind.
type BroadcastConfig struct {
	Enabled       bool
	MatchCreated  []string
	MatchStarting []string
}

func NewSink(client chatClient, render *Renderer, cfg BroadcastConfig, log *logrus.Entry) *Sink {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &Sink{
		client: client,
		render: render,
		log:    log.WithField("component", "discord"),
		rooms:  make(map[string]*roomMessages),
		names:  make(map[string]string),
	}
	s.channels = map[string][]string{
		draft.BroadcastMatchCreated:  cfg.MatchCreated,
		draft.BroadcastMatchStarting: cfg.MatchStarting,
	}
	s.enabled.Store(cfg.Enabled)
	return s
}

// SetBroadcast turns the broadcast rooms on or off at runtime.
func (s *Sink) SetBroadcast(on bool) {
	s.enabled.Store(on)
	s.log.Infof("Broadcast mode set to %v", on)
}

func (s *Sink) BroadcastEnabled() bool {
	return s.enabled.Load()
}

// RememberRoom records a room name so announcements need no lookup.
func (s *Sink) RememberRoom(channelID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names[channelID] = name
}

// Run starts listening to coordinator events.
func (s *Sink) Run(ctx context.Context, events <-chan coordinator.Event) {
	s.log.Info("Discord sink started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info("Discord sink stopped")
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			s.handleEvent(event)
		}
	}
}

func (s *Sink) handleEvent(event coordinator.Event) {
	switch e := event.(type) {
	case coordinator.MatchCreated:
		s.resetRoom(e.Match.ChannelID)
		if _, err := s.client.ChannelMessageSendEmbed(e.Match.ChannelID, s.render.IntroEmbed(e.Intro)); err != nil {
			s.log.WithError(err).WithField("channel", e.Match.ChannelID).Error("Failed to post intro")
		}
	case coordinator.MatchRestored:
		s.resetRoom(e.Match.ChannelID)
	case coordinator.StatusUpdated:
		s.postStatus(e)
	case coordinator.TurnPrompted:
		s.postPrompt(e)
	case coordinator.SequenceFinished:
		s.send(e.ChannelID, s.render.Summary(e.Summary))
	case coordinator.BroadcastRequested:
		s.broadcast(e)
	case coordinator.StreamAnnounced:
		s.send(e.ChannelID, s.render.StreamNotice(e.URL))
		if s.BroadcastEnabled() {
			msg := s.render.StreamBroadcast(s.roomName(e.ChannelID), e.TeamA, e.TeamB, e.URL)
			for _, ch := range s.channels[draft.BroadcastMatchStarting] {
				s.send(ch, msg)
			}
		}
	case coordinator.MatchRemoved:
		s.mu.Lock()
		delete(s.rooms, e.ChannelID)
		s.mu.Unlock()
	}
}

func (s *Sink) room(channelID string) *roomMessages {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[channelID]
	if !ok {
		r = &roomMessages{}
		s.rooms[channelID] = r
	}
	return r
}

func (s *Sink) resetRoom(channelID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[channelID] = &roomMessages{}
}

// postStatus edits the room's status embed in place and drops the previous
// turn prompt.
func (s *Sink) postStatus(e coordinator.StatusUpdated) {
	room := s.room(e.ChannelID)
	log := s.log.WithFields(logrus.Fields{"match": e.MatchID, "channel": e.ChannelID})

	if room.promptID != "" {
		if err := s.client.ChannelMessageDelete(e.ChannelID, room.promptID); err != nil {
			log.WithError(err).Warn("Failed to delete turn prompt")
		}
		room.promptID = ""
	}

	embed := s.render.StatusEmbed(e.Status)
	if room.statusID != "" {
		_, err := s.client.ChannelMessageEditEmbed(e.ChannelID, room.statusID, embed)
		if err == nil {
			return
		}
		log.WithError(err).Warn("Failed to edit status, posting a new one")
	}
	msg, err := s.client.ChannelMessageSendEmbed(e.ChannelID, embed)
	if err != nil {
		log.WithError(err).Error("Failed to post status")
		return
	}
	room.statusID = msg.ID
}

func (s *Sink) postPrompt(e coordinator.TurnPrompted) {
	msg, err := s.client.ChannelMessageSend(e.ChannelID, s.render.TurnPrompt(e.Prompt))
	if err != nil {
		s.log.WithError(err).WithField("channel", e.ChannelID).Error("Failed to post turn prompt")
		return
	}
	s.room(e.ChannelID).promptID = msg.ID
}

func (s *Sink) broadcast(e coordinator.BroadcastRequested) {
	if !s.BroadcastEnabled() {
		return
	}
	channels := s.channels[e.Announcement.Event]
	if len(channels) == 0 {
		s.log.Debugf("No broadcast rooms for %q", e.Announcement.Event)
		return
	}
	msg := s.render.Announcement(e.Announcement, s.roomName(e.ChannelID))
	for _, ch := range channels {
		s.send(ch, msg)
	}
}

func (s *Sink) roomName(channelID string) string {
	s.mu.Lock()
	name, ok := s.names[channelID]
	s.mu.Unlock()
	if ok {
		return name
	}
	ch, err := s.client.Channel(channelID)
	if err != nil || ch == nil {
		return channelID
	}
	s.RememberRoom(channelID, ch.Name)
	return ch.Name
}

func (s *Sink) send(channelID, content string) {
	if _, err := s.client.ChannelMessageSend(channelID, content); err != nil {
		s.log.WithError(err).WithField("channel", channelID).Error("Failed to send message")
	}
}
