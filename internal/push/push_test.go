package push

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvart/cupkeeper/internal/coordinator"
	"github.com/edvart/cupkeeper/internal/draft"
	"github.com/edvart/cupkeeper/internal/locale"
	"github.com/edvart/cupkeeper/internal/store"
)

func newTestService(t *testing.T, status map[string]int) (*Service, *store.SQLiteStore, *[]string) {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "push.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	var sent []string
	s := NewService(st, Config{VAPIDPublicKey: "pub", VAPIDPrivateKey: "priv", VAPIDSubject: "mailto:ref@example.com"}, nil)
	s.send = func(message []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error) {
		sent = append(sent, sub.Endpoint)
		return &http.Response{StatusCode: status[sub.Endpoint], Body: io.NopCloser(strings.NewReader(""))}, nil
	}
	return s, st, &sent
}

func TestSendToUserDropsExpiredSubscriptions(t *testing.T) {
	ctx := context.Background()
	s, st, sent := newTestService(t, map[string]int{
		"https://push/ok":   http.StatusCreated,
		"https://push/gone": http.StatusGone,
	})
	require.NoError(t, st.SavePushSubscription(ctx, &store.PushSubscription{UserID: "a1", Endpoint: "https://push/ok", P256dh: "k", Auth: "a"}))
	require.NoError(t, st.SavePushSubscription(ctx, &store.PushSubscription{UserID: "a1", Endpoint: "https://push/gone", P256dh: "k", Auth: "a"}))

	require.NoError(t, s.SendToUser(ctx, "a1", NotificationPayload{Title: "t"}))
	assert.ElementsMatch(t, []string{"https://push/ok", "https://push/gone"}, *sent)

	subs, err := st.GetPushSubscriptions(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "https://push/ok", subs[0].Endpoint)
}

func TestSendToUserReportsFailures(t *testing.T) {
	ctx := context.Background()
	s, st, _ := newTestService(t, map[string]int{"https://push/err": http.StatusBadRequest})
	require.NoError(t, st.SavePushSubscription(ctx, &store.PushSubscription{UserID: "a1", Endpoint: "https://push/err", P256dh: "k", Auth: "a"}))

	assert.Error(t, s.SendToUser(ctx, "a1", NotificationPayload{Title: "t"}))
	assert.NoError(t, s.SendToUser(ctx, "nobody", NotificationPayload{Title: "t"}))
	assert.True(t, s.Enabled())
}

type recordedPush struct {
	users   []string
	payload NotificationPayload
}

type fakeSender struct {
	pushes []recordedPush
}

func (f *fakeSender) SendToMultipleUsers(_ context.Context, userIDs []string, payload NotificationPayload) {
	f.pushes = append(f.pushes, recordedPush{users: userIDs, payload: payload})
}

func TestNotifierPingsCaptainsOnTurn(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, locale.MustNew(locale.English), nil)

	n.handleEvent(context.Background(), coordinator.TurnPrompted{
		MatchID: "m1",
		TeamA:   "Alpha",
		TeamB:   "Bravo",
		Prompt:  draft.TurnPrompt{PartyName: "Bravo", Action: draft.ActionBan},
		UserIDs: []string{"b1", "b2"},
	})
	n.handleEvent(context.Background(), coordinator.TurnPrompted{MatchID: "m1"})

	require.Len(t, sender.pushes, 1)
	assert.Equal(t, []string{"b1", "b2"}, sender.pushes[0].users)
	assert.Equal(t, "Your turn: Alpha vs Bravo", sender.pushes[0].payload.Title)
	assert.Equal(t, "Bravo, time to ban.", sender.pushes[0].payload.Body)
}

func TestNotifierAnnouncesMaps(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, nil, nil)

	n.handleEvent(context.Background(), coordinator.SequenceFinished{
		MatchID: "m1",
		Summary: draft.Summary{
			TeamA: "Alpha",
			TeamB: "Bravo",
			Entries: []draft.SummaryEntry{
				{Ordinal: 1, MapName: "Pyramid"},
				{Ordinal: 2, MapName: "D-17"},
			},
		},
		UserIDs: []string{"a1", "b1"},
	})

	require.Len(t, sender.pushes, 1)
	assert.Equal(t, "Maps are set: Alpha vs Bravo", sender.pushes[0].payload.Title)
	assert.Equal(t, "Pyramid, D-17. Good luck!", sender.pushes[0].payload.Body)
}
