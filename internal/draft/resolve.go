package draft

import (
	"strings"

	"github.com/mozillazg/go-unidecode"
	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultThreshold is the similarity a map name must exceed to match.
const DefaultThreshold = 0.8

var lower = cases.Lower(language.Und)

// Normalize transliterates s to latin, lower-cases it and drops everything
// that is not a letter or a digit.
func Normalize(s string) string {
	s = lower.String(unidecode.Unidecode(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Similarity is the ratio of matching characters between a and b, from 0 to 1.
func Similarity(a, b string) float64 {
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}

// Resolver maps free text onto a map pool.
type Resolver struct {
	threshold float64
	loc       Localizer
}

func NewResolver(loc Localizer, threshold float64) *Resolver {
	if loc == nil {
		loc = identityLocalizer{}
	}
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultThreshold
	}
	return &Resolver{threshold: threshold, loc: loc}
}

// Map returns the first map of pool whose display name, or failing that its
// id, is similar enough to input. Pool order wins over a better score later on.
func (r *Resolver) Map(pool []string, input string) (string, bool) {
	in := Normalize(input)
	if in == "" {
		return "", false
	}
	for _, id := range pool {
		if Similarity(Normalize(r.loc.T(id)), in) > r.threshold {
			return id, true
		}
		if Similarity(Normalize(id), in) > r.threshold {
			return id, true
		}
	}
	return "", false
}

var sideSynonyms = map[string]Side{}

func init() {
	for _, w := range []string{"defending", "defends", "defend", "defense", "defence", "warface", "wf", "def", "d", "zashchita"} {
		sideSynonyms[w] = SideDefending
	}
	for _, w := range []string{"attacking", "attacks", "attack", "atk", "blackwood", "offense", "offence", "bw", "att", "a", "ataka"} {
		sideSynonyms[w] = SideAttacking
	}
}

// ResolveSide maps a side keyword onto a Side.
func ResolveSide(input string) (Side, bool) {
	side, ok := sideSynonyms[Normalize(input)]
	return side, ok
}
