package push

import (
	"context"
	"strings"

	"github.com/elliotchance/pie/v2"
	"github.com/sirupsen/logrus"

	"github.com/edvart/cupkeeper/internal/coordinator"
	"github.com/edvart/cupkeeper/internal/draft"
	"github.com/edvart/cupkeeper/internal/locale"
)

// Sender delivers a payload to a set of users.
type Sender interface {
	SendToMultipleUsers(ctx context.Context, userIDs []string, payload NotificationPayload)
}

// Notifier pings captains when their party is on turn and when the maps are set.
type Notifier struct {
	sender Sender
	loc    *locale.Localizer
	log    *logrus.Entry
}

func NewNotifier(sender Sender, loc *locale.Localizer, log *logrus.Entry) *Notifier {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	if loc == nil {
		loc = locale.MustNew(locale.English)
	}
	return &Notifier{sender: sender, loc: loc, log: log.WithField("component", "push")}
}

// Run starts listening to coordinator events.
func (n *Notifier) Run(ctx context.Context, events <-chan coordinator.Event) {
	n.log.Info("Push notifier started")
	for {
		select {
		case <-ctx.Done():
			n.log.Info("Push notifier stopped")
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			n.handleEvent(ctx, event)
		}
	}
}

func (n *Notifier) handleEvent(ctx context.Context, event coordinator.Event) {
	switch e := event.(type) {
	case coordinator.TurnPrompted:
		n.handleTurnPrompted(ctx, e)
	case coordinator.SequenceFinished:
		n.handleSequenceFinished(ctx, e)
	}
}

func (n *Notifier) handleTurnPrompted(ctx context.Context, e coordinator.TurnPrompted) {
	if len(e.UserIDs) == 0 {
		return
	}
	args := map[string]string{
		"teamA":  e.TeamA,
		"teamB":  e.TeamB,
		"party":  e.Prompt.PartyName,
		"action": n.loc.T("action." + string(e.Prompt.Action)),
	}
	n.sender.SendToMultipleUsers(ctx, e.UserIDs, NotificationPayload{
		Title: n.loc.Format("push.turn_title", args),
		Body:  n.loc.Format("push.turn_body", args),
		Icon:  "/static/favicon.ico",
		Tag:   "turn-" + e.MatchID,
		Data: map[string]interface{}{
			"matchID": e.MatchID,
			"url":     "/matches/" + e.MatchID,
		},
	})
}

func (n *Notifier) handleSequenceFinished(ctx context.Context, e coordinator.SequenceFinished) {
	if len(e.UserIDs) == 0 {
		return
	}
	maps := pie.Map(e.Summary.Entries, func(en draft.SummaryEntry) string { return en.MapName })
	args := map[string]string{
		"teamA": e.Summary.TeamA,
		"teamB": e.Summary.TeamB,
		"maps":  strings.Join(maps, ", "),
	}
	n.log.WithField("match", e.MatchID).Infof("Notifying %d captains that the maps are set", len(e.UserIDs))
	n.sender.SendToMultipleUsers(ctx, e.UserIDs, NotificationPayload{
		Title: n.loc.Format("push.finished_title", args),
		Body:  n.loc.Format("push.finished_body", args),
		Icon:  "/static/favicon.ico",
		Tag:   "turn-" + e.MatchID,
		Data: map[string]interface{}{
			"matchID": e.MatchID,
			"url":     "/matches/" + e.MatchID,
		},
	})
}
