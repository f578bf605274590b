package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func steps(spec ...any) []TurnStep {
	out := make([]TurnStep, 0, len(spec)/2)
	for i := 0; i < len(spec); i += 2 {
		out = append(out, TurnStep{Slot: spec[i].(Slot), Action: spec[i+1].(Action)})
	}
	return out
}

func TestGenerateSequence(t *testing.T) {
	A, B := SlotA, SlotB
	ban, pick, side := ActionBan, ActionPick, ActionSide

	cases := []struct {
		name   string
		format Format
		maps   int
		want   []TurnStep
	}{
		{
			name:   "bo1 single map is only a side step",
			format: FormatBo1,
			maps:   1,
			want:   steps(A, side),
		},
		{
			name:   "bo1 three maps",
			format: FormatBo1,
			maps:   3,
			want:   steps(A, ban, B, ban, A, side),
		},
		{
			name:   "bo1 side goes to the party that did not ban last",
			format: FormatBo1,
			maps:   4,
			want:   steps(A, ban, B, ban, A, ban, B, side),
		},
		{
			name:   "bo2 five maps",
			format: FormatBo2,
			maps:   5,
			want:   steps(A, pick, B, pick, B, side, A, side),
		},
		{
			name:   "bo2 seven maps bans first",
			format: FormatBo2,
			maps:   7,
			want:   steps(A, ban, B, ban, A, pick, B, pick, B, side, A, side),
		},
		{
			name:   "bo3 five maps",
			format: FormatBo3,
			maps:   5,
			want:   steps(A, pick, B, pick, A, ban, B, ban, B, side, A, side, A, side),
		},
		{
			name:   "bo3 seven maps",
			format: FormatBo3,
			maps:   7,
			want:   steps(A, ban, B, ban, A, pick, B, pick, A, ban, B, ban, B, side, A, side, A, side),
		},
		{
			name:   "bo5 five maps",
			format: FormatBo5,
			maps:   5,
			want:   steps(A, pick, B, pick, A, pick, B, pick, B, side, A, side, B, side, A, side, A, side),
		},
		{
			name:   "ffa has no sequence",
			format: FormatFFA,
			maps:   0,
			want:   nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := GenerateSequence(tc.format, tc.maps)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSequenceLengths(t *testing.T) {
	for n := 5; n <= 12; n++ {
		last := n - 1

		bo1, err := GenerateSequence(FormatBo1, n)
		require.NoError(t, err)
		assert.Len(t, bo1, n)

		bo2, err := GenerateSequence(FormatBo2, n)
		require.NoError(t, err)
		assert.Len(t, bo2, n-5+4)

		bo3, err := GenerateSequence(FormatBo3, n)
		require.NoError(t, err)
		assert.Len(t, bo3, last+3)

		bo5, err := GenerateSequence(FormatBo5, n)
		require.NoError(t, err)
		assert.Len(t, bo5, last+5)
	}
}

func TestSequenceDecidesEveryMap(t *testing.T) {
	// every map is banned, picked explicitly or left as the implicit pick
	for _, f := range []Format{FormatBo1, FormatBo3, FormatBo5} {
		spec, err := SpecFor(f)
		require.NoError(t, err)
		for n := spec.MinMaps; n <= 10; n++ {
			seq, err := GenerateSequence(f, n)
			require.NoError(t, err)

			decided, sides := 0, 0
			for _, s := range seq {
				switch s.Action {
				case ActionBan, ActionPick:
					decided++
				case ActionSide:
					sides++
				}
			}
			assert.Equal(t, n-1, decided, "%s with %d maps", f, n)
			assert.Equal(t, len(spec.Layout), sides, "%s with %d maps", f, n)
		}
	}
}

func TestGenerateSequenceRejectsSmallPools(t *testing.T) {
	cases := []struct {
		format Format
		maps   int
	}{
		{FormatBo1, 0},
		{FormatBo2, 1},
		{FormatBo3, 4},
		{FormatBo5, 4},
	}
	for _, tc := range cases {
		_, err := GenerateSequence(tc.format, tc.maps)
		assert.ErrorIs(t, err, ErrPoolTooSmall, "%s with %d maps", tc.format, tc.maps)
	}

	_, err := GenerateSequence("bo7", 9)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" BO3 ")
	require.NoError(t, err)
	assert.Equal(t, FormatBo3, f)

	_, err = ParseFormat("bo4")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
