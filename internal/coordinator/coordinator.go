package coordinator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/elliotchance/pie/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/edvart/cupkeeper/internal/draft"
	"github.com/edvart/cupkeeper/internal/metrics"
)

var (
	ErrMatchNotFound  = errors.New("match not found")
	ErrChannelBusy    = errors.New("a match is already running in this channel")
	ErrAlreadyRunning = errors.New("match is already running")
	ErrUnknownAction  = errors.New("unknown action")
)

// Coordinator owns every live match and processes commands sequentially, so
// actions on the same match never interleave.
type Coordinator struct {
	commands    chan Command
	events      chan Event
	subscribers []chan Event
	state       *State

	loc       draft.Localizer
	threshold float64
	metrics   metrics.DraftMetrics
	log       *logrus.Entry
	flip      func() bool
}

type Option func(*Coordinator)

func WithLocalizer(l draft.Localizer) Option {
	return func(c *Coordinator) { c.loc = l }
}

// WithThreshold sets the fuzzy map matching threshold of new engines.
func WithThreshold(t float64) Option {
	return func(c *Coordinator) { c.threshold = t }
}

func WithMetrics(m metrics.DraftMetrics) Option {
	return func(c *Coordinator) {
		if m != nil {
			c.metrics = m
		}
	}
}

func WithLogger(l *logrus.Entry) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.log = l
		}
	}
}

// WithCoin replaces the coin used by CreateMatch.FlipCoin.
func WithCoin(flip func() bool) Option {
	return func(c *Coordinator) { c.flip = flip }
}

// New creates a new Coordinator.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		commands:    make(chan Command, 100),
		events:      make(chan Event, 100),
		subscribers: make([]chan Event, 0),
		state:       NewState(),
		threshold:   draft.DefaultThreshold,
		metrics:     metrics.Nop{},
		log:         logrus.NewEntry(logrus.StandardLogger()),
		flip:        func() bool { return rand.Intn(2) == 1 },
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithField("component", "coordinator")
	return c
}

// Send submits a command to the coordinator.
func (c *Coordinator) Send(cmd Command) {
	c.commands <- cmd
}

// Events returns the main event channel for consumers.
func (c *Coordinator) Events() <-chan Event {
	return c.events
}

// Subscribe creates a new event channel for a consumer. It must be called
// before Run.
func (c *Coordinator) Subscribe() <-chan Event {
	ch := make(chan Event, 100)
	c.subscribers = append(c.subscribers, ch)
	return ch
}

// Run starts the coordinator loop. It blocks until ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context) {
	c.log.Info("Coordinator started")
	for {
		select {
		case <-ctx.Done():
			c.log.Info("Coordinator shutting down")
			return
		case cmd := <-c.commands:
			c.handleCommand(cmd)
		}
	}
}

func (c *Coordinator) emit(e Event) {
	select {
	case c.events <- e:
	default:
		c.log.Warnf("Main event channel full, dropping %T", e)
	}

	for _, ch := range c.subscribers {
		select {
		case ch <- e:
		default:
			c.log.Warnf("Subscriber event channel full, dropping %T", e)
		}
	}
}

func (c *Coordinator) handleCommand(cmd Command) {
	switch cmd := cmd.(type) {
	case CreateMatch:
		res := c.handleCreateMatch(cmd)
		if cmd.Response != nil {
			cmd.Response <- res
		}
	case RestoreMatch:
		reply(cmd.Response, c.handleRestoreMatch(cmd))
	case SubmitAction:
		reply(cmd.Response, c.handleSubmitAction(cmd))
	case UndoAction:
		reply(cmd.Response, c.handleUndo(cmd))
	case CloseMatch:
		reply(cmd.Response, c.handleCloseMatch(cmd))
	case RemoveMatch:
		reply(cmd.Response, c.handleRemoveMatch(cmd))
	case MarkStreamed:
		reply(cmd.Response, c.handleMarkStreamed(cmd))
	case RemoveCupMatches:
		removed := c.handleRemoveCupMatches(cmd)
		if cmd.Response != nil {
			cmd.Response <- removed
		}
	case getMatchesCmd:
		infos := make([]MatchInfo, 0, len(c.state.Sessions))
		for _, s := range c.state.Sessions {
			infos = append(infos, s.Info())
		}
		cmd.Response <- pie.SortUsing(infos, func(a, b MatchInfo) bool {
			return a.CreatedAt.Before(b.CreatedAt)
		})
	case getMatchCmd:
		if s := c.state.Find(cmd.Target); s != nil {
			info := s.Info()
			cmd.Response <- &info
		} else {
			cmd.Response <- nil
		}
	case isInMatchCmd:
		s := c.state.Find(cmd.Target)
		cmd.Response <- s != nil && s.Engine.IsInMatch(cmd.Member)
	}
}

func reply(ch chan error, err error) {
	if ch != nil {
		ch <- err
	}
}

func (c *Coordinator) sessionLogger(s *Session) *logrus.Entry {
	return c.log.WithFields(logrus.Fields{"match": s.ID, "channel": s.ChannelID})
}

func (c *Coordinator) engineOptions(s *Session, resultURL string) []draft.Option {
	return []draft.Option{
		draft.WithNotifier(&eventNotifier{c: c, s: s}),
		draft.WithLocalizer(c.loc),
		draft.WithThreshold(c.threshold),
		draft.WithLogger(c.sessionLogger(s)),
		draft.WithResultURL(resultURL),
	}
}

func (c *Coordinator) handleCreateMatch(cmd CreateMatch) CreateMatchResult {
	existing := c.state.InChannel(cmd.ChannelID)
	if existing != nil && !cmd.Replace {
		return CreateMatchResult{Err: ErrChannelBusy}
	}

	a, b := cmd.PartyA, cmd.PartyB
	capsA, capsB := cmd.CaptainsA, cmd.CaptainsB
	if cmd.FlipCoin && c.flip() {
		a, b = b, a
		capsA, capsB = capsB, capsA
	}

	sess := &Session{
		ID:         uuid.New().String(),
		ChannelID:  cmd.ChannelID,
		Cup:        cmd.Cup,
		CaptainIDs: [2][]string{capsA, capsB},
		CreatedAt:  time.Now(),
	}
	engine, err := draft.New(cmd.Format, a, b, cmd.Maps, c.engineOptions(sess, cmd.ResultURL)...)
	if err != nil {
		return CreateMatchResult{Err: err}
	}
	// the running match is only dropped once its replacement is valid
	if existing != nil {
		c.removeSession(existing)
	}
	sess.Engine = engine
	c.state.Add(sess)
	c.metrics.LiveMatches(len(c.state.Sessions))

	intro := engine.Intro()
	c.emit(MatchCreated{Match: sess.Info(), Intro: intro})
	engine.Begin()

	return CreateMatchResult{Match: sess.Info(), Intro: intro}
}

func (c *Coordinator) handleRestoreMatch(cmd RestoreMatch) error {
	if c.state.Get(cmd.ID) != nil {
		return ErrAlreadyRunning
	}
	if c.state.InChannel(cmd.ChannelID) != nil {
		return ErrChannelBusy
	}

	sess := &Session{
		ID:         cmd.ID,
		ChannelID:  cmd.ChannelID,
		Cup:        cmd.Cup,
		CaptainIDs: [2][]string{cmd.CaptainsA, cmd.CaptainsB},
		Streamed:   cmd.Streamed,
		CreatedAt:  cmd.CreatedAt,
	}
	engine, err := draft.Restore(cmd.State, cmd.PartyA, cmd.PartyB, c.engineOptions(sess, cmd.State.ResultURL)...)
	if err != nil {
		return fmt.Errorf("failed to restore match %s: %w", cmd.ID, err)
	}
	sess.Engine = engine
	c.state.Add(sess)
	c.metrics.LiveMatches(len(c.state.Sessions))

	c.sessionLogger(sess).Info("Match restored")
	c.emit(MatchRestored{Match: sess.Info()})
	engine.Refresh()
	return nil
}

func (c *Coordinator) handleSubmitAction(cmd SubmitAction) error {
	sess := c.state.Find(cmd.Target)
	if sess == nil {
		return ErrMatchNotFound
	}

	var err error
	switch cmd.Action {
	case draft.ActionBan:
		err = sess.Engine.Ban(cmd.Actor, cmd.Input, cmd.Force)
	case draft.ActionPick:
		err = sess.Engine.Pick(cmd.Actor, cmd.Input, cmd.Force)
	case draft.ActionSide:
		err = sess.Engine.ChooseSide(cmd.Actor, cmd.Input, cmd.Force)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
	}
	if err != nil {
		c.metrics.ActionRejected(string(cmd.Action), rejectReason(err))
		return err
	}
	c.metrics.ActionApplied(string(sess.Engine.Format()), string(cmd.Action))
	return nil
}

func (c *Coordinator) handleUndo(cmd UndoAction) error {
	sess := c.state.Find(cmd.Target)
	if sess == nil {
		return ErrMatchNotFound
	}
	return sess.Engine.Undo()
}

func (c *Coordinator) handleCloseMatch(cmd CloseMatch) error {
	sess := c.state.Find(cmd.Target)
	if sess == nil {
		return ErrMatchNotFound
	}
	sess.Engine.CloseMatch()
	return nil
}

func (c *Coordinator) handleRemoveMatch(cmd RemoveMatch) error {
	sess := c.state.Find(cmd.Target)
	if sess == nil {
		return ErrMatchNotFound
	}
	c.removeSession(sess)
	return nil
}

func (c *Coordinator) handleRemoveCupMatches(cmd RemoveCupMatches) []MatchInfo {
	removed := make([]MatchInfo, 0)
	for _, sess := range c.state.Sessions {
		if strings.EqualFold(sess.Cup, cmd.Cup) {
			removed = append(removed, sess.Info())
		}
	}
	removed = pie.SortUsing(removed, func(a, b MatchInfo) bool {
		return a.CreatedAt.Before(b.CreatedAt)
	})
	for _, info := range removed {
		c.removeSession(c.state.Get(info.ID))
	}
	c.log.WithField("cup", cmd.Cup).Infof("Removed %d matches", len(removed))
	return removed
}

func (c *Coordinator) removeSession(sess *Session) {
	c.state.Remove(sess.ID)
	c.metrics.LiveMatches(len(c.state.Sessions))
	c.sessionLogger(sess).Info("Match removed")
	c.emit(MatchRemoved{MatchID: sess.ID, ChannelID: sess.ChannelID})
}

func (c *Coordinator) handleMarkStreamed(cmd MarkStreamed) error {
	sess := c.state.Find(cmd.Target)
	if sess == nil {
		return ErrMatchNotFound
	}
	sess.Streamed = true
	sess.StreamURL = cmd.URL
	a, b := sess.TeamNames()
	c.sessionLogger(sess).Infof("Match %s vs %s is streamed", a, b)
	c.emit(StreamAnnounced{MatchID: sess.ID, ChannelID: sess.ChannelID, TeamA: a, TeamB: b, URL: cmd.URL})
	return nil
}

var rejectReasons = []struct {
	err    error
	reason string
}{
	{draft.ErrSequenceOver, "sequence_over"},
	{draft.ErrWrongTurnOwner, "wrong_turn_owner"},
	{draft.ErrWrongActionKind, "wrong_action_kind"},
	{draft.ErrUnknownSide, "unknown_side"},
	{draft.ErrUnknownMap, "unknown_map"},
	{draft.ErrAlreadyBanned, "already_banned"},
	{draft.ErrAlreadyPicked, "already_picked"},
}

func rejectReason(err error) string {
	for _, r := range rejectReasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return "other"
}

// GetMatches returns a view of every live match, oldest first.
func (c *Coordinator) GetMatches() []MatchInfo {
	respCh := make(chan []MatchInfo, 1)
	c.commands <- getMatchesCmd{Response: respCh}
	return <-respCh
}

// GetMatch returns a view of one match, or nil.
func (c *Coordinator) GetMatch(t Target) *MatchInfo {
	respCh := make(chan *MatchInfo, 1)
	c.commands <- getMatchCmd{Target: t, Response: respCh}
	return <-respCh
}

// IsInMatch reports whether m acts for a party of the targeted match.
func (c *Coordinator) IsInMatch(t Target, m draft.Member) bool {
	respCh := make(chan bool, 1)
	c.commands <- isInMatchCmd{Target: t, Member: m, Response: respCh}
	return <-respCh
}

type getMatchesCmd struct {
	Response chan []MatchInfo
}

func (getMatchesCmd) command() {}

type getMatchCmd struct {
	Target   Target
	Response chan *MatchInfo
}

func (getMatchCmd) command() {}

type isInMatchCmd struct {
	Target   Target
	Member   draft.Member
	Response chan bool
}

func (isInMatchCmd) command() {}

// eventNotifier turns what an engine publishes into coordinator events.
type eventNotifier struct {
	c *Coordinator
	s *Session
}

func (n *eventNotifier) SendStatus(st draft.Status) {
	n.c.emit(StatusUpdated{
		MatchID:   n.s.ID,
		ChannelID: n.s.ChannelID,
		Status:    st,
		State:     n.s.Engine.State(),
	})
}

func (n *eventNotifier) SendTurnPrompt(p draft.TurnPrompt) {
	a, b := n.s.TeamNames()
	n.c.emit(TurnPrompted{
		MatchID:   n.s.ID,
		ChannelID: n.s.ChannelID,
		TeamA:     a,
		TeamB:     b,
		Prompt:    p,
		UserIDs:   n.s.CaptainIDs[p.Slot],
	})
}

func (n *eventNotifier) SendSummary(summary draft.Summary) {
	n.c.metrics.SequenceFinished(string(summary.Format), time.Since(n.s.CreatedAt))
	n.c.emit(SequenceFinished{
		MatchID:   n.s.ID,
		ChannelID: n.s.ChannelID,
		Summary:   summary,
		UserIDs:   append(append([]string(nil), n.s.CaptainIDs[0]...), n.s.CaptainIDs[1]...),
	})
}

func (n *eventNotifier) Broadcast(a draft.Announcement) {
	n.c.emit(BroadcastRequested{MatchID: n.s.ID, ChannelID: n.s.ChannelID, Announcement: a})
}
