package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvart/cupkeeper/internal/coordinator"
	"github.com/edvart/cupkeeper/internal/draft"
)

func TestSinkEditsStatusInPlace(t *testing.T) {
	client := newFakeClient()
	sink := NewSink(client, NewRenderer(nil), BroadcastConfig{}, nil)
	status := draft.Status{Turn: 0, Total: 2, Maps: []draft.MapLine{{MapID: "d17", Name: "D-17"}}}

	sink.handleEvent(coordinator.StatusUpdated{MatchID: "m1", ChannelID: "room", Status: status})
	sink.handleEvent(coordinator.TurnPrompted{MatchID: "m1", ChannelID: "room", Prompt: draft.TurnPrompt{Mention: "<@1>", Action: draft.ActionBan, Hint: "xxxxx"}})
	status.Turn = 1
	sink.handleEvent(coordinator.StatusUpdated{MatchID: "m1", ChannelID: "room", Status: status})

	require.Len(t, client.messages("room"), 2)
	assert.Equal(t, []string{"msg-2"}, client.deleted)
	require.Len(t, client.edits, 1)
	assert.Equal(t, "msg-1", client.edits[0].Content)
	assert.Equal(t, "Current sequence status (1/2):", client.edits[0].Embed.Title)

	sink.handleEvent(coordinator.MatchRemoved{MatchID: "m1", ChannelID: "room"})
	sink.handleEvent(coordinator.StatusUpdated{MatchID: "m2", ChannelID: "room", Status: status})
	assert.Len(t, client.messages("room"), 3)
}

func TestSinkBroadcasts(t *testing.T) {
	client := newFakeClient()
	client.channels = []*discordgo.Channel{{ID: "room", Name: "match_alpha_vs_bravo"}}
	sink := NewSink(client, NewRenderer(nil), BroadcastConfig{
		Enabled:       true,
		MatchCreated:  []string{"news", "staff"},
		MatchStarting: []string{"news"},
	}, nil)

	created := coordinator.BroadcastRequested{
		MatchID:      "m1",
		ChannelID:    "room",
		Announcement: draft.Announcement{Event: draft.BroadcastMatchCreated, TeamA: "Alpha", TeamB: "Bravo"},
	}
	sink.handleEvent(created)
	assert.Equal(t, ":sparkle: Match created: `match_alpha_vs_bravo`\n**Alpha** vs **Bravo**", lastContent(client.messages("staff")))
	assert.Len(t, client.messages("news"), 1)

	sink.handleEvent(coordinator.StreamAnnounced{MatchID: "m1", ChannelID: "room", TeamA: "Alpha", TeamB: "Bravo"})
	assert.Equal(t, ":movie_camera: This match will be streamed. Please be on time!", lastContent(client.messages("room")))
	assert.Equal(t, ":movie_camera: `match_alpha_vs_bravo` is going live\n**Alpha** vs **Bravo**", lastContent(client.messages("news")))

	sink.SetBroadcast(false)
	sink.handleEvent(created)
	assert.Len(t, client.messages("staff"), 1)
}
