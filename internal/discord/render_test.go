package discord

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edvart/cupkeeper/internal/draft"
	"github.com/edvart/cupkeeper/internal/locale"
)

func TestStatusEmbed(t *testing.T) {
	r := NewRenderer(locale.MustNew(locale.English))
	embed := r.StatusEmbed(draft.Status{
		Turn:  2,
		Total: 3,
		Maps: []draft.MapLine{
			{Name: "Pyramid", Status: draft.MapBanned},
			{Name: "D-17", Status: draft.MapPicked},
			{Name: "Afghan", Status: draft.MapOpen},
		},
	})

	assert.Equal(t, "Current sequence status (2/3):", embed.Title)
	assert.Equal(t, ":hammer: ~~Pyramid~~\n:point_right: **D-17**\n:grey_question: _Afghan_", embed.Description)
	assert.Equal(t, colorActive, embed.Color)

	closed := r.StatusEmbed(draft.Status{Done: true, ForceClosed: true})
	assert.Equal(t, colorDone, closed.Color)
	assert.Contains(t, closed.Description, "closed by a referee")
}

func TestTurnPrompt(t *testing.T) {
	r := NewRenderer(nil)
	assert.Equal(t, "Your turn <@&9>! Use `!ban xxxxx`.",
		r.TurnPrompt(draft.TurnPrompt{Mention: "<@&9>", Action: draft.ActionBan, Hint: "xxxxx"}))
	assert.Equal(t, "Your turn <@1>! Use `!side attack/defense`.   Map 2: **D-17**",
		r.TurnPrompt(draft.TurnPrompt{Mention: "<@1>", Action: draft.ActionSide, Hint: "attack/defense", MapOrdinal: 2, MapName: "D-17"}))
}

func TestSummary(t *testing.T) {
	r := NewRenderer(nil)

	bo1 := r.Summary(draft.Summary{
		Format:    draft.FormatBo1,
		Entries:   []draft.SummaryEntry{{Ordinal: 1, Label: draft.LabelMap, MapName: "Afghan", Side: draft.SideDefending, Party: "Alpha"}},
		ResultURL: "https://cups.example",
	})
	assert.Equal(t, "Ban sequence finished!\n\nMap: **Afghan** (Alpha defense)\nglhf!\n\n"+
		":warning: **And don't forget to screenshot all match results!** :warning:\nhttps://cups.example", bo1)

	bo3 := r.Summary(draft.Summary{
		Format: draft.FormatBo3,
		Entries: []draft.SummaryEntry{
			{Ordinal: 1, Label: draft.LabelMap, MapName: "Pyramid", Side: draft.SideAttacking, Party: "Bravo"},
			{Ordinal: 2, Label: draft.LabelMap, MapName: "D-17", Side: draft.SideDefending, Party: "Alpha"},
			{Ordinal: 3, Label: draft.LabelTiebreaker, MapName: "Afghan", Side: draft.SideAttacking, Party: "Alpha"},
		},
	})
	assert.Contains(t, bo3, "Pick & ban sequence finished!\n\n")
	assert.Contains(t, bo3, "Map 2: **D-17** (Alpha defense)\n")
	assert.Contains(t, bo3, "Tie-breaker map: **Afghan** (Alpha attack)\n")
}

func TestAnnouncements(t *testing.T) {
	r := NewRenderer(nil)
	created := r.Announcement(draft.Announcement{Event: draft.BroadcastMatchCreated, TeamA: "Alpha", TeamB: "Bravo"}, "match_alpha_vs_bravo")
	assert.Equal(t, ":sparkle: Match created: `match_alpha_vs_bravo`\n**Alpha** vs **Bravo**", created)

	summary := draft.Summary{Entries: []draft.SummaryEntry{{Ordinal: 1, MapName: "Afghan", Side: draft.SideAttacking, Party: "Alpha"}}}
	starting := r.Announcement(draft.Announcement{Event: draft.BroadcastMatchStarting, TeamA: "Alpha", TeamB: "Bravo", Summary: &summary}, "room")
	assert.Contains(t, starting, "\n - Map: **Afghan** (Alpha attack)")

	assert.Equal(t, ":movie_camera: This match will be streamed on <https://twitch.tv/cup>. Please be on time!", r.StreamNotice("https://twitch.tv/cup"))
	assert.Equal(t, ":movie_camera: This match will be streamed. Please be on time!", r.StreamNotice(""))
}

func TestIntroEmbed(t *testing.T) {
	r := NewRenderer(nil)
	embed := r.IntroEmbed(draft.Intro{
		Title:    "BEST OF 1",
		Rules:    "Welcome",
		Sequence: []draft.SequenceLine{{Party: "Alpha", Action: draft.ActionBan}, {Party: "Bravo", Action: draft.ActionSide}},
	})
	assert.Equal(t, "BEST OF 1", embed.Title)
	if assert.Len(t, embed.Fields, 1) {
		assert.Equal(t, "• Alpha: ban\n• Bravo: side", embed.Fields[0].Value)
	}
}

func TestErrorUsesLocale(t *testing.T) {
	r := NewRenderer(nil)
	err := &draft.ActionError{Err: draft.ErrWrongTurnOwner, Attempted: draft.ActionBan}
	assert.Equal(t, ":no_entry: Not your turn to ban!", r.Error(err))
}
