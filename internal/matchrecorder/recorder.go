package matchrecorder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/edvart/cupkeeper/internal/coordinator"
	"github.com/edvart/cupkeeper/internal/draft"
	"github.com/edvart/cupkeeper/internal/roster"
	"github.com/edvart/cupkeeper/internal/store"
)

// Recorder keeps a snapshot of every live match in the database so matches
// survive a restart.
type Recorder struct {
	store store.Store
	log   *logrus.Entry
	now   func() time.Time
}

// New creates a new match recorder.
func New(s store.Store, log *logrus.Entry) *Recorder {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Recorder{store: s, log: log.WithField("component", "matchrecorder"), now: time.Now}
}

// Run listens for match events and records them.
func (r *Recorder) Run(ctx context.Context, events <-chan coordinator.Event) {
	r.log.Info("Match recorder started")
	for {
		select {
		case <-ctx.Done():
			r.log.Info("Match recorder shutting down")
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			r.handleEvent(ctx, event)
		}
	}
}

func (r *Recorder) handleEvent(ctx context.Context, event coordinator.Event) {
	var err error
	switch e := event.(type) {
	case coordinator.MatchCreated:
		err = r.recordCreated(ctx, e.Match)
	case coordinator.StatusUpdated:
		err = r.recordStatus(ctx, e)
	case coordinator.StreamAnnounced:
		err = r.update(ctx, e.MatchID, func(m *store.Match) { m.Streamed = true })
	case coordinator.MatchRemoved:
		err = r.store.MarkMatchRemoved(ctx, e.MatchID, r.now())
	}
	if err != nil {
		r.log.WithError(err).Errorf("Failed to record %T", event)
	}
}

func (r *Recorder) recordCreated(ctx context.Context, info coordinator.MatchInfo) error {
	state, err := json.Marshal(info.State)
	if err != nil {
		return err
	}
	now := r.now()
	match := &store.Match{
		ID:        info.ID,
		ChannelID: info.ChannelID,
		Cup:       info.Cup,
		TeamA:     info.TeamA,
		TeamB:     info.TeamB,
		Format:    string(info.Format),
		State:     string(state),
		Streamed:  info.Streamed,
		CreatedAt: info.CreatedAt,
		UpdatedAt: now,
	}
	if err := r.store.CreateMatch(ctx, match); err != nil {
		return err
	}
	r.log.WithField("match", info.ID).Infof("Recorded match %s vs %s", info.TeamA, info.TeamB)
	return nil
}

func (r *Recorder) recordStatus(ctx context.Context, e coordinator.StatusUpdated) error {
	state, err := json.Marshal(e.State)
	if err != nil {
		return err
	}
	return r.update(ctx, e.MatchID, func(m *store.Match) {
		m.State = string(state)
		switch {
		case e.State.IsDone() && m.FinishedAt == nil:
			now := r.now()
			m.FinishedAt = &now
		case !e.State.IsDone():
			m.FinishedAt = nil
		}
	})
}

func (r *Recorder) update(ctx context.Context, matchID string, change func(*store.Match)) error {
	m, err := r.store.GetMatch(ctx, matchID)
	if err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("match %s: %w", matchID, store.ErrNotFound)
	}
	change(m)
	m.UpdatedAt = r.now()
	return r.store.UpdateMatch(ctx, m)
}

// MatchupFinder resolves the teams of a saved match.
type MatchupFinder interface {
	Matchup(ctx context.Context, cup, teamA, teamB string) (roster.Matchup, error)
}

// Resume hands every match that was live at shutdown back to the coordinator.
// It returns how many matches were restored.
func (r *Recorder) Resume(ctx context.Context, c *coordinator.Coordinator, finder MatchupFinder) (int, error) {
	matches, err := r.store.ListActiveMatches(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active matches: %w", err)
	}

	restored := 0
	for _, m := range matches {
		log := r.log.WithFields(logrus.Fields{"match": m.ID, "channel": m.ChannelID})

		var state draft.MatchState
		if err := json.Unmarshal([]byte(m.State), &state); err != nil {
			log.WithError(err).Error("Skipping match with unreadable state")
			continue
		}

		cmd := coordinator.RestoreMatch{
			ID:        m.ID,
			ChannelID: m.ChannelID,
			Cup:       m.Cup,
			PartyA:    draft.CaptainParty{TeamName: m.TeamA},
			PartyB:    draft.CaptainParty{TeamName: m.TeamB},
			State:     state,
			Streamed:  m.Streamed,
			CreatedAt: m.CreatedAt,
			Response:  make(chan error, 1),
		}
		if mu, err := finder.Matchup(ctx, m.Cup, m.TeamA, m.TeamB); err == nil {
			cmd.PartyA, cmd.PartyB = mu.PartyA, mu.PartyB
			cmd.CaptainsA, cmd.CaptainsB = mu.CaptainsA, mu.CaptainsB
		} else {
			log.WithError(err).Warn("Teams left the roster, only referees can act")
		}

		c.Send(cmd)
		if err := <-cmd.Response; err != nil {
			log.WithError(err).Error("Failed to restore match")
			continue
		}
		restored++
	}
	return restored, nil
}
