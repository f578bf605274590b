package discord

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvart/cupkeeper/internal/draft"
)

func TestParseCommand(t *testing.T) {
	cmd, ok := ParseCommand("!", "  !BAN  Pyramid of Giza ")
	require.True(t, ok)
	assert.Equal(t, "ban", cmd.Name)
	assert.Equal(t, "Pyramid of Giza", cmd.Rest)
	assert.Equal(t, []string{"Pyramid", "of", "Giza"}, cmd.Args)

	_, ok = ParseCommand("!", "ban pyramid")
	assert.False(t, ok)
	_, ok = ParseCommand("!", "!")
	assert.False(t, ok)
	_, ok = ParseCommand("", "!ban x")
	assert.False(t, ok)
}

func TestTokenizeQuotes(t *testing.T) {
	assert.Equal(t, []string{"Red Foxes", "Blue", ""}, tokenize(`"Red Foxes"  Blue ""`))
}

func TestParseMatchRequest(t *testing.T) {
	tests := []struct {
		content string
		want    MatchRequest
		err     error
	}{
		{
			content: "!bo3 Alpha Bravo",
			want:    MatchRequest{Format: draft.FormatBo3, TeamA: "Alpha", TeamB: "Bravo"},
		},
		{
			content: `!bo1 "Red Foxes" <@21> spring flip new`,
			want:    MatchRequest{Format: draft.FormatBo1, TeamA: "Red Foxes", TeamB: "<@21>", Cup: "spring", FlipCoin: true, Reuse: ReuseNew},
		},
		{
			content: "!ffa Alpha Bravo reuse",
			want:    MatchRequest{Format: draft.FormatFFA, TeamA: "Alpha", TeamB: "Bravo", Reuse: ReuseYes},
		},
		{content: "!bo2 Alpha", err: ErrUsage},
		{content: "!bo2 a b c d", err: ErrUsage},
		{content: "!bo7 a b", err: draft.ErrUnknownFormat},
	}
	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			cmd, ok := ParseCommand("!", tt.content)
			require.True(t, ok)
			got, err := ParseMatchRequest(cmd)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoomNaming(t *testing.T) {
	assert.Equal(t, "match_redfoxes_vs_medved", RoomName("Red Foxes!", "Медведь"))

	name, exists, err := PickRoom("match_a_vs_b", nil, ReuseUnknown)
	require.NoError(t, err)
	assert.Equal(t, "match_a_vs_b", name)
	assert.False(t, exists)

	existing := []string{"match_a_vs_b", "match_a_vs_b_r2"}
	_, _, err = PickRoom("match_a_vs_b", existing, ReuseUnknown)
	assert.ErrorIs(t, err, ErrRoomExists)

	name, exists, err = PickRoom("match_a_vs_b", existing, ReuseYes)
	require.NoError(t, err)
	assert.Equal(t, "match_a_vs_b", name)
	assert.True(t, exists)

	name, exists, err = PickRoom("match_a_vs_b", existing, ReuseNew)
	require.NoError(t, err)
	assert.Equal(t, "match_a_vs_b_r3", name)
	assert.False(t, exists)
}

func TestRoomAccessOverwrites(t *testing.T) {
	overwrites := RoomAccess{
		BotID:      "bot",
		EveryoneID: "guild",
		RoleIDs:    []string{"r-ref", "", "r-ref"},
		UserIDs:    []string{"11"},
	}.Overwrites()

	require.Len(t, overwrites, 4)
	assert.Equal(t, "guild", overwrites[0].ID)
	assert.NotZero(t, overwrites[0].Deny)
	assert.Zero(t, overwrites[0].Allow)
	for _, o := range overwrites[1:] {
		assert.NotZero(t, o.Allow&0x400, o.ID)
	}
}
