package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvart/cupkeeper/internal/locale"
)

type recorder struct {
	statuses  []Status
	prompts   []TurnPrompt
	summaries []Summary
	broadcast []Announcement
}

func (r *recorder) SendStatus(s Status)         { r.statuses = append(r.statuses, s) }
func (r *recorder) SendTurnPrompt(p TurnPrompt) { r.prompts = append(r.prompts, p) }
func (r *recorder) SendSummary(s Summary)       { r.summaries = append(r.summaries, s) }
func (r *recorder) Broadcast(a Announcement)    { r.broadcast = append(r.broadcast, a) }

func (r *recorder) lastPrompt(t *testing.T) TurnPrompt {
	t.Helper()
	require.NotEmpty(t, r.prompts)
	return r.prompts[len(r.prompts)-1]
}

var (
	alpha   = CaptainParty{TeamName: "Alpha", CaptainIDs: []string{"a1"}}
	bravo   = CaptainParty{TeamName: "Bravo", CaptainIDs: []string{"b1"}}
	capA    = Member{ID: "a1"}
	capB    = Member{ID: "b1"}
	referee = Member{ID: "ref"}
)

func newTestEngine(t *testing.T, f Format, maps ...string) (*Engine, *recorder) {
	t.Helper()
	rec := &recorder{}
	e, err := New(f, alpha, bravo, maps,
		WithNotifier(rec),
		WithLocalizer(locale.MustNew(locale.English)),
	)
	require.NoError(t, err)
	e.Begin()
	return e, rec
}

func TestBestOf1ThreeMaps(t *testing.T) {
	e, rec := newTestEngine(t, FormatBo1, "M1", "M2", "M3")

	require.Len(t, rec.broadcast, 1)
	assert.Equal(t, BroadcastMatchCreated, rec.broadcast[0].Event)
	assert.Equal(t, ActionBan, rec.lastPrompt(t).Action)

	require.NoError(t, e.Ban(capA, "M1", false))
	require.NoError(t, e.Ban(capB, "m2", false))

	st := e.State()
	assert.Equal(t, []string{"M3"}, st.PickedMaps)
	assert.True(t, st.LastMapAutoPicked)
	assert.Equal(t, 2, st.Cursor)

	prompt := rec.lastPrompt(t)
	assert.Equal(t, "Alpha", prompt.PartyName)
	assert.Equal(t, ActionSide, prompt.Action)
	assert.Equal(t, "attack/defense", prompt.Hint)
	assert.Equal(t, 1, prompt.MapOrdinal)
	assert.Equal(t, "M3", prompt.MapID)

	require.NoError(t, e.ChooseSide(capA, "attack", false))
	assert.True(t, e.IsDone())

	require.Len(t, rec.summaries, 1)
	assert.Equal(t, []SummaryEntry{
		{Ordinal: 1, Label: LabelMap, MapID: "M3", MapName: "M3", Side: SideAttacking, Party: "Alpha"},
	}, rec.summaries[0].Entries)

	require.Len(t, rec.broadcast, 2)
	assert.Equal(t, BroadcastMatchStarting, rec.broadcast[1].Event)
	require.NotNil(t, rec.broadcast[1].Summary)

	last := rec.statuses[len(rec.statuses)-1]
	assert.True(t, last.Done)
	assert.Equal(t, 3, last.Turn)
	assert.Equal(t, 3, last.Total)
	assert.Equal(t, []MapStatus{MapBanned, MapBanned, MapPicked}, []MapStatus{last.Maps[0].Status, last.Maps[1].Status, last.Maps[2].Status})
}

func TestBestOf3TieBreaker(t *testing.T) {
	e, rec := newTestEngine(t, FormatBo3, "M1", "M2", "M3", "M4", "M5")

	require.NoError(t, e.Pick(capA, "M1", false))
	require.NoError(t, e.Pick(capB, "M2", false))
	require.NoError(t, e.Ban(capA, "M3", false))
	require.NoError(t, e.Ban(capB, "M4", false))

	st := e.State()
	assert.Equal(t, []string{"M1", "M2", "M5"}, st.PickedMaps)
	assert.True(t, st.LastMapAutoPicked)
	assert.Equal(t, 4, st.Cursor, "implicit pick must not consume a step")

	prompt := rec.lastPrompt(t)
	assert.Equal(t, "Bravo", prompt.PartyName)
	assert.Equal(t, "M1", prompt.MapID)

	require.NoError(t, e.ChooseSide(capB, "attack", false))
	assert.Equal(t, "Alpha", rec.lastPrompt(t).PartyName)
	assert.Equal(t, "M2", rec.lastPrompt(t).MapID)
	require.NoError(t, e.ChooseSide(capA, "def", false))
	assert.Equal(t, "Alpha", rec.lastPrompt(t).PartyName)
	assert.Equal(t, 3, rec.lastPrompt(t).MapOrdinal)
	require.NoError(t, e.ChooseSide(capA, "bw", false))

	require.True(t, e.IsDone())
	require.Len(t, rec.summaries, 1)
	assert.Equal(t, []SummaryEntry{
		{Ordinal: 1, Label: LabelMap, MapID: "M1", MapName: "M1", Side: SideAttacking, Party: "Bravo"},
		{Ordinal: 2, Label: LabelMap, MapID: "M2", MapName: "M2", Side: SideDefending, Party: "Alpha"},
		{Ordinal: 3, Label: LabelTiebreaker, MapID: "M5", MapName: "M5", Side: SideAttacking, Party: "Alpha"},
	}, rec.summaries[0].Entries)
}

func TestBestOf2HasNoImplicitPick(t *testing.T) {
	e, rec := newTestEngine(t, FormatBo2, "M1", "M2", "M3", "M4", "M5")

	require.NoError(t, e.Pick(capA, "M1", false))
	require.NoError(t, e.Pick(capB, "M2", false))
	require.NoError(t, e.ChooseSide(capB, "defend", false))
	require.NoError(t, e.ChooseSide(capA, "attack", false))

	st := e.State()
	assert.Equal(t, []string{"M1", "M2"}, st.PickedMaps)
	assert.False(t, st.LastMapAutoPicked)
	require.Len(t, rec.summaries, 1)
	entries := rec.summaries[0].Entries
	require.Len(t, entries, 2)
	assert.Equal(t, "Bravo", entries[0].Party)
	assert.Equal(t, SideDefending, entries[0].Side)
	assert.Equal(t, "Alpha", entries[1].Party)
}

func TestBestOf5(t *testing.T) {
	e, rec := newTestEngine(t, FormatBo5, "M1", "M2", "M3", "M4", "M5")

	for i, m := range []string{"M1", "M2", "M3", "M4"} {
		actor := capA
		if i%2 == 1 {
			actor = capB
		}
		require.NoError(t, e.Pick(actor, m, false))
	}
	assert.Equal(t, []string{"M1", "M2", "M3", "M4", "M5"}, e.State().PickedMaps)

	for _, actor := range []Member{capB, capA, capB, capA, capA} {
		require.NoError(t, e.ChooseSide(actor, "a", false))
	}
	require.True(t, e.IsDone())
	require.Len(t, rec.summaries, 1)
	entries := rec.summaries[0].Entries
	require.Len(t, entries, 5)
	assert.Equal(t, LabelTiebreaker, entries[4].Label)
	assert.Equal(t, "M5", entries[4].MapID)
}

func TestUndoRoundTrip(t *testing.T) {
	t.Run("ban", func(t *testing.T) {
		e, _ := newTestEngine(t, FormatBo1, "M1", "M2", "M3", "M4")
		before := e.State()

		require.NoError(t, e.Ban(capA, "M1", false))
		require.NoError(t, e.Undo())
		assert.Equal(t, before, e.State())
	})

	t.Run("ban that triggered the implicit pick", func(t *testing.T) {
		e, _ := newTestEngine(t, FormatBo1, "M1", "M2", "M3")
		require.NoError(t, e.Ban(capA, "M1", false))
		before := e.State()

		require.NoError(t, e.Ban(capB, "M2", false))
		require.True(t, e.State().LastMapAutoPicked)

		require.NoError(t, e.Undo())
		assert.Equal(t, before, e.State())
	})

	t.Run("pick that triggered the implicit pick", func(t *testing.T) {
		e, _ := newTestEngine(t, FormatBo5, "M1", "M2", "M3", "M4", "M5")
		require.NoError(t, e.Pick(capA, "M1", false))
		require.NoError(t, e.Pick(capB, "M2", false))
		require.NoError(t, e.Pick(capA, "M3", false))
		before := e.State()

		require.NoError(t, e.Pick(capB, "M4", false))
		require.Len(t, e.State().PickedMaps, 5)

		require.NoError(t, e.Undo())
		assert.Equal(t, before, e.State())
	})

	t.Run("side keeps the implicit pick", func(t *testing.T) {
		e, _ := newTestEngine(t, FormatBo1, "M1", "M2", "M3")
		require.NoError(t, e.Ban(capA, "M1", false))
		require.NoError(t, e.Ban(capB, "M2", false))
		before := e.State()

		require.NoError(t, e.ChooseSide(capA, "defence", false))
		require.NoError(t, e.Undo())
		assert.Equal(t, before, e.State())
		assert.False(t, e.IsDone())
	})
}

func TestUndoNothingLeavesStateUntouched(t *testing.T) {
	e, rec := newTestEngine(t, FormatBo1, "M1", "M2", "M3")
	before := e.State()
	statuses := len(rec.statuses)

	err := e.Undo()
	assert.ErrorIs(t, err, ErrNothingToUndo)
	assert.Equal(t, before, e.State())
	assert.Len(t, rec.statuses, statuses)

	// single map bo1: the implicit pick is not an undoable step
	e, _ = newTestEngine(t, FormatBo1, "M1")
	assert.Equal(t, []string{"M1"}, e.State().PickedMaps)
	assert.ErrorIs(t, e.Undo(), ErrNothingToUndo)
	assert.Equal(t, 0, e.State().Cursor)
}

func TestCloseThenUndo(t *testing.T) {
	e, rec := newTestEngine(t, FormatBo3, "M1", "M2", "M3", "M4", "M5")
	require.NoError(t, e.Pick(capA, "M1", false))
	before := e.State()

	e.CloseMatch()
	assert.True(t, e.IsDone())
	assert.ErrorIs(t, e.Pick(capB, "M2", false), ErrSequenceOver)
	prompts := len(rec.prompts)

	require.NoError(t, e.Undo())
	after := e.State()
	assert.False(t, after.ForceClosed)
	assert.Equal(t, before.Cursor, after.Cursor)
	assert.Equal(t, before.BannedMaps, after.BannedMaps)
	assert.Equal(t, before.PickedMaps, after.PickedMaps)
	assert.Len(t, rec.prompts, prompts+1, "reopening prompts the next party again")
}

func TestFailedCheckNeverMutates(t *testing.T) {
	e, rec := newTestEngine(t, FormatBo3, "Alpine", "Bunker", "Canyon", "Dunes", "Estate")
	require.NoError(t, e.Pick(capA, "Alpine", false))

	cases := []struct {
		name string
		do   func() error
		want error
	}{
		{"wrong owner", func() error { return e.Pick(capA, "Bunker", false) }, ErrWrongTurnOwner},
		{"wrong action", func() error { return e.Ban(capB, "Bunker", false) }, ErrWrongActionKind},
		{"side on a pick turn", func() error { return e.ChooseSide(capB, "attack", false) }, ErrWrongActionKind},
		{"unknown map", func() error { return e.Pick(capB, "Volcano", false) }, ErrUnknownMap},
		{"already picked", func() error { return e.Pick(capB, "alpine", false) }, ErrAlreadyPicked},
		{"outsider", func() error { return e.Pick(referee, "Bunker", false) }, ErrWrongTurnOwner},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := e.State()
			statuses := len(rec.statuses)

			err := tc.do()
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, before, e.State())
			assert.Len(t, rec.statuses, statuses)
		})
	}
}

func TestAlreadyBannedAndUnknownSide(t *testing.T) {
	e, _ := newTestEngine(t, FormatBo1, "M1", "M2", "M3")
	require.NoError(t, e.Ban(capA, "M1", false))

	assert.ErrorIs(t, e.Ban(capB, "M1", false), ErrAlreadyBanned)
	require.NoError(t, e.Ban(capB, "M2", false))

	err := e.ChooseSide(capA, "sideways", false)
	assert.ErrorIs(t, err, ErrUnknownSide)
}

func TestForceBypassesOwnerOnly(t *testing.T) {
	e, _ := newTestEngine(t, FormatBo1, "M1", "M2", "M3")

	assert.ErrorIs(t, e.Ban(referee, "M1", false), ErrWrongTurnOwner)
	assert.ErrorIs(t, e.ChooseSide(referee, "attack", true), ErrWrongActionKind)

	require.NoError(t, e.Ban(referee, "M1", true))
	// force also lets the wrong captain act
	require.NoError(t, e.Ban(capA, "M2", true))
	assert.Equal(t, []string{"M1", "M2"}, e.State().BannedMaps)
}

func TestActionErrorCarriesKinds(t *testing.T) {
	e, _ := newTestEngine(t, FormatBo1, "M1", "M2", "M3")

	err := e.Pick(capA, "M1", false)
	var ae *ActionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, ActionPick, ae.Attempted)
	assert.Equal(t, ActionBan, ae.Expected)

	en := locale.MustNew(locale.English)
	assert.Equal(t, "Not a pick turn but a **ban** one!", Describe(err, en))
}

func TestIsInMatch(t *testing.T) {
	e, _ := newTestEngine(t, FormatBo1, "M1")

	assert.True(t, e.IsInMatch(capA))
	assert.True(t, e.IsInMatch(capB))
	assert.False(t, e.IsInMatch(referee))

	roles, err := New(FormatBo1, RoleParty{TeamName: "Alpha", RoleID: "r1"}, RoleParty{TeamName: "Bravo", RoleID: "r2"}, []string{"M1"})
	require.NoError(t, err)
	assert.True(t, roles.IsInMatch(Member{ID: "x", Roles: []string{"r2"}}))
	assert.False(t, roles.IsInMatch(Member{ID: "a1"}))
}

func TestFreeForAll(t *testing.T) {
	e, rec := newTestEngine(t, FormatFFA)

	assert.True(t, e.IsDone())
	assert.Empty(t, rec.prompts)
	assert.ErrorIs(t, e.Ban(capA, "M1", true), ErrSequenceOver)
	assert.ErrorIs(t, e.Pick(capA, "M1", true), ErrSequenceOver)
	assert.ErrorIs(t, e.ChooseSide(capA, "a", true), ErrSequenceOver)
	assert.ErrorIs(t, e.Undo(), ErrNothingToUndo)
	assert.Empty(t, rec.summaries)

	intro := e.Intro()
	assert.Equal(t, "Free-For-All", intro.Title)
	assert.Contains(t, intro.Rules, "<@a1> <@b1>")
	assert.Empty(t, intro.Sequence)
}

func TestNewRejectsBadPools(t *testing.T) {
	_, err := New(FormatBo3, alpha, bravo, []string{"M1", "M2", "M3", "M4"})
	assert.ErrorIs(t, err, ErrPoolTooSmall)

	_, err = New(FormatBo1, alpha, bravo, []string{"M1", "M1"})
	assert.ErrorIs(t, err, ErrDuplicateMap)

	_, err = New(FormatBo1, alpha, nil, []string{"M1"})
	assert.Error(t, err)
}

func TestIntro(t *testing.T) {
	rec := &recorder{}
	e, err := New(FormatBo1, alpha, bravo, []string{"ptb_pyramid", "ptb_d17", "ptb_palace"},
		WithNotifier(rec),
		WithLocalizer(locale.MustNew(locale.English)),
		WithResultURL("https://cups.example/match/1"),
	)
	require.NoError(t, err)

	intro := e.Begin()
	assert.Equal(t, "BEST OF 1", intro.Title)
	assert.Contains(t, intro.Rules, "<@a1>")
	assert.Contains(t, intro.Rules, "`Bravo`")
	assert.Contains(t, intro.Rules, "https://cups.example/match/1")
	assert.Equal(t, []SequenceLine{
		{Party: "Alpha", Action: ActionBan},
		{Party: "Bravo", Action: ActionBan},
		{Party: "Alpha", Action: ActionSide},
	}, intro.Sequence)

	require.NotEmpty(t, rec.statuses)
	assert.Equal(t, "Pyramid", rec.statuses[0].Maps[0].Name)
}

func TestRestoreContinuesMatch(t *testing.T) {
	e, _ := newTestEngine(t, FormatBo1, "M1", "M2", "M3")
	require.NoError(t, e.Ban(capA, "M1", false))
	saved := e.State()

	rec := &recorder{}
	restored, err := Restore(saved, alpha, bravo, WithNotifier(rec))
	require.NoError(t, err)
	assert.Empty(t, rec.statuses)

	restored.Refresh()
	require.Len(t, rec.prompts, 1)
	assert.Equal(t, "Bravo", rec.prompts[0].PartyName)

	require.NoError(t, restored.Ban(capB, "M2", false))
	assert.Equal(t, []string{"M3"}, restored.State().PickedMaps)

	saved.Sequence = nil
	regenerated, err := Restore(saved, alpha, bravo)
	require.NoError(t, err)
	assert.Len(t, regenerated.State().Sequence, 3)
}

func TestRestoreRejectsBrokenState(t *testing.T) {
	base := MatchState{
		Format:   FormatBo1,
		Maps:     []string{"M1", "M2", "M3"},
		Sequence: steps(SlotA, ActionBan, SlotB, ActionBan, SlotA, ActionSide),
	}

	broken := base.Clone()
	broken.Cursor = 4
	_, err := Restore(broken, alpha, bravo)
	assert.ErrorIs(t, err, ErrInvalidState)

	broken = base.Clone()
	broken.BannedMaps = []string{"M1"}
	broken.PickedMaps = []string{"M1"}
	_, err = Restore(broken, alpha, bravo)
	assert.ErrorIs(t, err, ErrInvalidState)

	broken = base.Clone()
	broken.Cursor = 1
	broken.PickedSides = []Side{SideAttacking}
	_, err = Restore(broken, alpha, bravo)
	assert.ErrorIs(t, err, ErrInvalidState)

	broken = base.Clone()
	broken.Format = "bo9"
	_, err = Restore(broken, alpha, bravo)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestInvariantsHoldThroughRandomPlay(t *testing.T) {
	maps := []string{"M1", "M2", "M3", "M4", "M5", "M6", "M7"}
	for _, f := range []Format{FormatBo1, FormatBo2, FormatBo3, FormatBo5} {
		t.Run(string(f), func(t *testing.T) {
			e, err := New(f, alpha, bravo, maps)
			require.NoError(t, err)
			e.Begin()

			for i := 0; !e.IsDone() && i < 50; i++ {
				step := e.State().Sequence[e.State().Cursor]
				switch step.Action {
				case ActionSide:
					require.NoError(t, e.ChooseSide(referee, "a", true))
				case ActionBan:
					require.NoError(t, e.Ban(referee, e.State().Remaining()[0], true))
				case ActionPick:
					require.NoError(t, e.Pick(referee, e.State().Remaining()[0], true))
				}
				// undo every third action and replay it
				if i%3 == 2 {
					require.NoError(t, e.Undo())
				}

				st := e.State()
				assert.LessOrEqual(t, len(st.BannedMaps)+len(st.PickedMaps), len(st.Maps))
				for _, b := range st.BannedMaps {
					assert.NotContains(t, st.PickedMaps, b)
				}
				assert.NoError(t, st.Validate())
			}
			assert.True(t, e.IsDone())
		})
	}
}
