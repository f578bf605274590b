package draft

import (
	"fmt"
	"strings"

	"github.com/edvart/cupkeeper/internal/locale"
	"github.com/elliotchance/pie/v2"
	"github.com/sirupsen/logrus"
)

// Engine runs the pick and ban sequence of one match. It is not safe for
// concurrent use: callers serialize every call for a given match.
type Engine struct {
	spec      FormatSpec
	parties   [2]Party
	state     MatchState
	notifier  Notifier
	loc       Localizer
	resolver  *Resolver
	threshold float64
	resultURL string
	log       *logrus.Entry
}

type Option func(*Engine)

// WithNotifier sets where status, prompts and summaries are published.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) {
		if n != nil {
			e.notifier = n
		}
	}
}

// WithLocalizer sets the localizer used for map names and the intro.
func WithLocalizer(l Localizer) Option {
	return func(e *Engine) {
		if l != nil {
			e.loc = l
		}
	}
}

func WithLogger(l *logrus.Entry) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithThreshold overrides DefaultThreshold for map name resolution.
func WithThreshold(t float64) Option {
	return func(e *Engine) { e.threshold = t }
}

// WithResultURL adds the result upload link to the intro and the summary.
func WithResultURL(url string) Option {
	return func(e *Engine) { e.resultURL = url }
}

func newEngine(spec FormatSpec, a, b Party, opts []Option) (*Engine, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: both parties are required", ErrInvalidState)
	}
	e := &Engine{
		spec:      spec,
		parties:   [2]Party{a, b},
		notifier:  nopNotifier{},
		loc:       identityLocalizer{},
		threshold: DefaultThreshold,
		log:       logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.resolver = NewResolver(e.loc, e.threshold)
	e.log = e.log.WithField("format", spec.Format)
	return e, nil
}

// New creates the engine of a fresh match between a and b over maps.
func New(f Format, a, b Party, maps []string, opts ...Option) (*Engine, error) {
	spec, err := SpecFor(f)
	if err != nil {
		return nil, err
	}
	if len(pie.Unique(maps)) != len(maps) {
		return nil, ErrDuplicateMap
	}
	seq, err := GenerateSequence(f, len(maps))
	if err != nil {
		return nil, err
	}

	e, err := newEngine(spec, a, b, opts)
	if err != nil {
		return nil, err
	}
	e.state = MatchState{
		Format:      f,
		Maps:        append([]string(nil), maps...),
		Sequence:    seq,
		BannedMaps:  []string{},
		PickedMaps:  []string{},
		PickedSides: []Side{},
		ResultURL:   e.resultURL,
	}
	return e, nil
}

// Restore rebuilds the engine of a match from a saved state. Nothing is
// published until Refresh is called.
func Restore(state MatchState, a, b Party, opts ...Option) (*Engine, error) {
	spec, err := SpecFor(state.Format)
	if err != nil {
		return nil, err
	}
	state = state.Clone()
	if len(state.Sequence) == 0 {
		if state.Sequence, err = GenerateSequence(state.Format, len(state.Maps)); err != nil {
			return nil, err
		}
	}
	if err := state.Validate(); err != nil {
		return nil, err
	}

	e, err := newEngine(spec, a, b, opts)
	if err != nil {
		return nil, err
	}
	if e.resultURL != "" {
		state.ResultURL = e.resultURL
	}
	e.state = state
	return e, nil
}

// Begin publishes the first status and announces the match. It returns the
// welcome text with the generated sequence.
func (e *Engine) Begin() Intro {
	intro := e.Intro()
	e.publish()
	e.notifier.Broadcast(Announcement{
		Event: BroadcastMatchCreated,
		TeamA: e.parties[SlotA].Name(),
		TeamB: e.parties[SlotB].Name(),
	})
	e.log.Infof("Match %s vs %s started with %d maps", e.parties[SlotA].Name(), e.parties[SlotB].Name(), len(e.state.Maps))
	return intro
}

// Refresh republishes the current status, e.g. after a restore.
func (e *Engine) Refresh() {
	e.publish()
}

func (e *Engine) Intro() Intro {
	a, b := e.parties[SlotA], e.parties[SlotB]
	upload := ""
	if e.state.ResultURL != "" {
		upload = locale.Fill(e.loc.T("match.result_upload"), map[string]string{"url": e.state.ResultURL})
	}
	rules := locale.Fill(e.loc.T(e.spec.IntroID), map[string]string{
		"m_teamA":             a.Mention(),
		"m_teamB":             b.Mention(),
		"m_players":           a.Mention() + " " + b.Mention(),
		"teamA":               codeSpan(a.Name()),
		"teamB":               codeSpan(b.Name()),
		"match_result_upload": upload,
	})
	return Intro{
		Title: e.loc.T(e.spec.TitleID),
		Rules: rules,
		Sequence: pie.Map(e.state.Sequence, func(s TurnStep) SequenceLine {
			return SequenceLine{Party: e.parties[s.Slot].Name(), Action: s.Action}
		}),
	}
}

// Check validates an action without applying it and returns the resolved
// map id or side.
func (e *Engine) Check(action Action, actor Member, input string, force bool) (string, error) {
	if e.state.IsDone() {
		return "", &ActionError{Err: ErrSequenceOver, Attempted: action, Input: input}
	}

	step := e.state.Sequence[e.state.Cursor]
	if !force && !e.parties[step.Slot].IsMember(actor) {
		return "", &ActionError{Err: ErrWrongTurnOwner, Attempted: action, Expected: step.Action, Input: input}
	}
	if action != step.Action {
		return "", &ActionError{Err: ErrWrongActionKind, Attempted: action, Expected: step.Action, Input: input}
	}

	if action == ActionSide {
		side, ok := ResolveSide(input)
		if !ok {
			return "", &ActionError{Err: ErrUnknownSide, Attempted: action, Input: input}
		}
		return string(side), nil
	}

	id, ok := e.resolver.Map(e.state.Maps, input)
	if !ok {
		return "", &ActionError{Err: ErrUnknownMap, Attempted: action, Input: input}
	}
	if pie.Contains(e.state.BannedMaps, id) {
		return "", &ActionError{Err: ErrAlreadyBanned, Attempted: action, Input: input}
	}
	if pie.Contains(e.state.PickedMaps, id) {
		return "", &ActionError{Err: ErrAlreadyPicked, Attempted: action, Input: input}
	}
	return id, nil
}

func (e *Engine) Ban(actor Member, input string, force bool) error {
	id, err := e.Check(ActionBan, actor, input, force)
	if err != nil {
		e.log.WithError(err).Debug("Ban rejected")
		return err
	}
	who := e.actorName(actor)
	e.state.BannedMaps = append(e.state.BannedMaps, id)
	e.log.WithField("map", id).Infof("%s banned map %s", who, id)
	e.advance()
	return nil
}

func (e *Engine) Pick(actor Member, input string, force bool) error {
	id, err := e.Check(ActionPick, actor, input, force)
	if err != nil {
		e.log.WithError(err).Debug("Pick rejected")
		return err
	}
	who := e.actorName(actor)
	e.state.PickedMaps = append(e.state.PickedMaps, id)
	e.log.WithField("map", id).Infof("%s picked map %s", who, id)
	e.advance()
	return nil
}

func (e *Engine) ChooseSide(actor Member, input string, force bool) error {
	side, err := e.Check(ActionSide, actor, input, force)
	if err != nil {
		e.log.WithError(err).Debug("Side rejected")
		return err
	}
	who := e.actorName(actor)
	e.state.PickedSides = append(e.state.PickedSides, Side(side))
	e.log.WithField("side", side).Infof("%s chose side %s", who, side)
	e.advance()
	return nil
}

// Undo reverts the last action, or reopens a closed match. A failed undo
// leaves the state untouched.
func (e *Engine) Undo() error {
	if e.state.ForceClosed {
		e.state.ForceClosed = false
		e.log.Info("Referee reopened match")
		e.publish()
		return nil
	}
	if len(e.state.Sequence) == 0 {
		return &ActionError{Err: ErrNothingToUndo}
	}

	cursor := max(0, e.state.Cursor-1)
	step := e.state.Sequence[cursor]
	s := &e.state
	auto := 0
	if s.LastMapAutoPicked {
		auto = 1
	}

	switch step.Action {
	case ActionSide:
		if len(s.PickedSides) == 0 {
			return &ActionError{Err: ErrNothingToUndo, Attempted: step.Action}
		}
		s.PickedSides = s.PickedSides[:len(s.PickedSides)-1]
	case ActionPick:
		if len(s.PickedMaps) < 1+auto {
			return &ActionError{Err: ErrNothingToUndo, Attempted: step.Action}
		}
		s.PickedMaps = s.PickedMaps[:len(s.PickedMaps)-1-auto]
		s.LastMapAutoPicked = false
	case ActionBan:
		if len(s.BannedMaps) == 0 || len(s.PickedMaps) < auto {
			return &ActionError{Err: ErrNothingToUndo, Attempted: step.Action}
		}
		s.BannedMaps = s.BannedMaps[:len(s.BannedMaps)-1]
		s.PickedMaps = s.PickedMaps[:len(s.PickedMaps)-auto]
		s.LastMapAutoPicked = false
	}

	s.Cursor = cursor
	e.log.WithField("action", step.Action).Info("Referee used undo")
	e.publish()
	return nil
}

// CloseMatch ends the sequence early. Undo reopens it.
func (e *Engine) CloseMatch() {
	e.state.ForceClosed = true
	e.log.Info("Match closed")
	e.publish()
}

func (e *Engine) IsDone() bool {
	return e.state.IsDone()
}

// IsInMatch reports whether m acts for either party.
func (e *Engine) IsInMatch(m Member) bool {
	return e.parties[SlotA].IsMember(m) || e.parties[SlotB].IsMember(m)
}

func (e *Engine) Format() Format {
	return e.spec.Format
}

func (e *Engine) Parties() [2]Party {
	return e.parties
}

// State returns a copy of the match state.
func (e *Engine) State() MatchState {
	return e.state.Clone()
}

func (e *Engine) Status() Status {
	return Status{
		Format: e.spec.Format,
		Turn:   e.state.Cursor,
		Total:  len(e.state.Sequence),
		Maps: pie.Map(e.state.Maps, func(id string) MapLine {
			status := MapOpen
			switch {
			case pie.Contains(e.state.BannedMaps, id):
				status = MapBanned
			case pie.Contains(e.state.PickedMaps, id):
				status = MapPicked
			}
			return MapLine{MapID: id, Name: e.loc.T(id), Status: status}
		}),
		Done:        e.state.IsDone(),
		ForceClosed: e.state.ForceClosed,
	}
}

// TurnPrompt describes the expected next action, if the match is still open.
func (e *Engine) TurnPrompt() (TurnPrompt, bool) {
	if e.state.IsDone() {
		return TurnPrompt{}, false
	}
	step := e.state.Sequence[e.state.Cursor]
	party := e.parties[step.Slot]
	p := TurnPrompt{
		Turn:      e.state.Cursor,
		Slot:      step.Slot,
		PartyName: party.Name(),
		Mention:   party.Mention(),
		Action:    step.Action,
		Hint:      mapHint,
	}
	if step.Action == ActionSide {
		p.Hint = sideHint
		if n := len(e.state.PickedSides); n < len(e.state.PickedMaps) {
			p.MapOrdinal = n + 1
			p.MapID = e.state.PickedMaps[n]
			p.MapName = e.loc.T(p.MapID)
		}
	}
	return p, true
}

// Summary lays out the played maps with their sides. The party of entry i is
// the owner of the matching trailing side step.
func (e *Engine) Summary() Summary {
	layout := e.spec.Layout
	base := len(e.state.Sequence) - len(layout)
	entries := make([]SummaryEntry, 0, len(layout))
	for i, label := range layout {
		entry := SummaryEntry{Ordinal: i + 1, Label: label}
		if i < len(e.state.PickedMaps) {
			entry.MapID = e.state.PickedMaps[i]
			entry.MapName = e.loc.T(entry.MapID)
		}
		if i < len(e.state.PickedSides) {
			entry.Side = e.state.PickedSides[i]
		}
		if j := base + i; j >= 0 && j < len(e.state.Sequence) {
			entry.Party = e.parties[e.state.Sequence[j].Slot].Name()
		}
		entries = append(entries, entry)
	}
	return Summary{
		Format:    e.spec.Format,
		TeamA:     e.parties[SlotA].Name(),
		TeamB:     e.parties[SlotB].Name(),
		Entries:   entries,
		ResultURL: e.state.ResultURL,
	}
}

func (e *Engine) advance() {
	e.state.Cursor++
	e.publish()
	if e.state.Cursor >= len(e.state.Sequence) {
		summary := e.Summary()
		e.notifier.SendSummary(summary)
		e.notifier.Broadcast(Announcement{
			Event:   BroadcastMatchStarting,
			TeamA:   summary.TeamA,
			TeamB:   summary.TeamB,
			Summary: &summary,
		})
	}
}

func (e *Engine) publish() {
	e.applyAutoPick()
	e.notifier.SendStatus(e.Status())
	if p, ok := e.TurnPrompt(); ok {
		e.notifier.SendTurnPrompt(p)
	}
}

// applyAutoPick turns the only undecided map into a pick without using a step.
func (e *Engine) applyAutoPick() {
	if !e.spec.LastIsAPick || e.state.LastMapAutoPicked {
		return
	}
	remaining := e.state.Remaining()
	if len(remaining) != 1 {
		return
	}
	e.state.PickedMaps = append(e.state.PickedMaps, remaining[0])
	e.state.LastMapAutoPicked = true
	e.log.WithField("map", remaining[0]).Debug("Last map picked implicitly")
}

func (e *Engine) actorName(m Member) string {
	for _, p := range e.parties {
		if p.IsMember(m) {
			return p.Name()
		}
	}
	return "<referee>"
}

// codeSpan wraps s in an inline code span that survives backticks in s.
func codeSpan(s string) string {
	if strings.Count(s, "`")%2 == 0 {
		return "`" + s + "`"
	}
	return "``" + s + "``"
}
