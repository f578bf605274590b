package locale

import (
	"fmt"
	"sort"
	"strings"
)

type Language string

const (
	English Language = "english"
	Russian Language = "russian"
)

var tables = map[Language]map[string]string{
	English: english,
	Russian: russian,
}

// Localizer resolves string ids for one language. Ids missing from the
// selected language fall back to english, then to the id itself.
type Localizer struct {
	lang  Language
	table map[string]string
}

// New returns a Localizer for the named language.
func New(lang string) (*Localizer, error) {
	l := Language(strings.ToLower(strings.TrimSpace(lang)))
	if l == "" {
		l = English
	}
	table, ok := tables[l]
	if !ok {
		return nil, fmt.Errorf("unsupported language %q (supported: %s)", lang, strings.Join(Supported(), ", "))
	}
	return &Localizer{lang: l, table: table}, nil
}

// MustNew is New for languages known at compile time.
func MustNew(lang Language) *Localizer {
	l, err := New(string(lang))
	if err != nil {
		panic(err)
	}
	return l
}

// Supported lists the available language names.
func Supported() []string {
	names := make([]string, 0, len(tables))
	for l := range tables {
		names = append(names, string(l))
	}
	sort.Strings(names)
	return names
}

func (l *Localizer) Language() Language {
	return l.lang
}

// T returns the translation for id.
func (l *Localizer) T(id string) string {
	if s, ok := l.table[id]; ok {
		return s
	}
	if s, ok := english[id]; ok {
		return s
	}
	return id
}

// Format translates id and substitutes {name} placeholders from args.
func (l *Localizer) Format(id string, args map[string]string) string {
	return Fill(l.T(id), args)
}

// Fill substitutes {name} placeholders in text. Unknown placeholders are kept.
func Fill(text string, args map[string]string) string {
	if len(args) == 0 {
		return text
	}
	pairs := make([]string, 0, len(args)*2)
	for k, v := range args {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
