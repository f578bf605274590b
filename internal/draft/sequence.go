package draft

import "fmt"

// SummaryLabel names an entry of a finished sequence summary.
type SummaryLabel string

const (
	LabelMap        SummaryLabel = "map"
	LabelTiebreaker SummaryLabel = "tiebreaker"
)

// FormatSpec describes how a match format drafts its maps.
type FormatSpec struct {
	Format  Format
	TitleID string
	IntroID string
	MinMaps int
	// LastIsAPick turns the single undecided map into an implicit pick.
	LastIsAPick bool
	// Layout lists the summary entries, one per played map, matched in order
	// with the trailing side steps of the sequence.
	Layout   []SummaryLabel
	generate func(n int) []TurnStep
}

var formats = map[Format]FormatSpec{
	FormatBo1: {
		Format:      FormatBo1,
		TitleID:     "bo1.title",
		IntroID:     "bo1.intro",
		MinMaps:     1,
		LastIsAPick: true,
		Layout:      []SummaryLabel{LabelMap},
		generate:    bo1Sequence,
	},
	FormatBo2: {
		Format:   FormatBo2,
		TitleID:  "bo2.title",
		IntroID:  "bo2.intro",
		MinMaps:  2,
		Layout:   []SummaryLabel{LabelMap, LabelMap},
		generate: bo2Sequence,
	},
	FormatBo3: {
		Format:      FormatBo3,
		TitleID:     "bo3.title",
		IntroID:     "bo3.intro",
		MinMaps:     5,
		LastIsAPick: true,
		Layout:      []SummaryLabel{LabelMap, LabelMap, LabelTiebreaker},
		generate:    bo3Sequence,
	},
	FormatBo5: {
		Format:      FormatBo5,
		TitleID:     "bo5.title",
		IntroID:     "bo5.intro",
		MinMaps:     5,
		LastIsAPick: true,
		Layout:      []SummaryLabel{LabelMap, LabelMap, LabelMap, LabelMap, LabelTiebreaker},
		generate:    bo5Sequence,
	},
	FormatFFA: {
		Format:   FormatFFA,
		TitleID:  "ffa.title",
		IntroID:  "ffa.intro",
		generate: func(int) []TurnStep { return nil },
	},
}

// SpecFor returns the drafting rules of a format.
func SpecFor(f Format) (FormatSpec, error) {
	spec, ok := formats[f]
	if !ok {
		return FormatSpec{}, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	return spec, nil
}

// GenerateSequence builds the turn order of a format for a pool of poolLen maps.
func GenerateSequence(f Format, poolLen int) ([]TurnStep, error) {
	spec, err := SpecFor(f)
	if err != nil {
		return nil, err
	}
	if poolLen < spec.MinMaps {
		return nil, fmt.Errorf("%w: %s needs at least %d maps, got %d", ErrPoolTooSmall, f, spec.MinMaps, poolLen)
	}
	return spec.generate(poolLen), nil
}

// slotByParity gives A the even steps, or the odd ones once flipped.
func slotByParity(i int, flipped bool) Slot {
	want := 0
	if flipped {
		want = 1
	}
	if i%2 == want {
		return SlotA
	}
	return SlotB
}

// bo1Sequence bans down to one map. The last step picks the side on the
// surviving map and falls to the party that did not ban last.
func bo1Sequence(n int) []TurnStep {
	seq := make([]TurnStep, 0, n)
	for i := 0; i < n; i++ {
		action := ActionBan
		if i >= n-1 {
			action = ActionSide
		}
		seq = append(seq, TurnStep{Slot: slotByParity(i, false), Action: action})
	}
	return seq
}

// bo2Sequence bans extra maps, then each party picks once and chooses the
// side on the map picked by its opponent.
func bo2Sequence(n int) []TurnStep {
	last := n - 1
	steps := max(0, n-5) + 4
	picks := 0

	seq := make([]TurnStep, 0, steps)
	for i := 0; i < steps; i++ {
		action := ActionBan
		switch {
		case picks == 2:
			action = ActionSide
		case i >= last-4:
			action = ActionPick
		}
		seq = append(seq, TurnStep{Slot: slotByParity(i, picks == 2), Action: action})
		if action == ActionPick {
			picks++
		}
	}
	return seq
}

// bo3Sequence picks two maps, bans down to the tie-breaker and ends with
// three side steps. The final extra step belongs to the previous party.
func bo3Sequence(n int) []TurnStep {
	last := n - 1
	seq := make([]TurnStep, 0, last+3)
	for i := 0; i < last+2; i++ {
		action := ActionBan
		switch {
		case i >= last:
			action = ActionSide
		case i == last-3 || i == last-4:
			action = ActionPick
		}
		seq = append(seq, TurnStep{Slot: slotByParity(i, i >= last), Action: action})
	}
	return append(seq, TurnStep{Slot: seq[len(seq)-1].Slot, Action: ActionSide})
}

// bo5Sequence picks four maps right before the side steps, leaving the
// tie-breaker, then chooses sides on all five.
func bo5Sequence(n int) []TurnStep {
	last := n - 1
	seq := make([]TurnStep, 0, last+5)
	for i := 0; i < last+4; i++ {
		action := ActionBan
		switch {
		case i >= last:
			action = ActionSide
		case i >= last-4:
			action = ActionPick
		}
		seq = append(seq, TurnStep{Slot: slotByParity(i, i >= last), Action: action})
	}
	return append(seq, TurnStep{Slot: seq[len(seq)-1].Slot, Action: ActionSide})
}
