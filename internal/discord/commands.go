package discord

import (
	"errors"
	"strings"

	"github.com/edvart/cupkeeper/internal/draft"
)

var (
	ErrUsage       = errors.New("usage")
	ErrRoomExists  = errors.New("room already exists")
	ErrNotReferee  = errors.New("only referees can do that")
	ErrNoMatchHere = errors.New("no match is running in this room")
)

// RoomReuse says what to do when the room of a new match already exists.
type RoomReuse int

const (
	ReuseUnknown RoomReuse = iota
	ReuseYes
	ReuseNew
)

// Command is a parsed chat command.
type Command struct {
	Name string
	Args []string
	// Rest is everything after the command name, untokenized.
	Rest string
}

// ParseCommand splits a message into a command. It returns false for
// messages that do not start with prefix.
func ParseCommand(prefix, content string) (Command, bool) {
	content = strings.TrimSpace(content)
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return Command{}, false
	}
	body := strings.TrimPrefix(content, prefix)
	name, rest, _ := strings.Cut(body, " ")
	if name == "" {
		return Command{}, false
	}
	rest = strings.TrimSpace(rest)
	return Command{Name: strings.ToLower(name), Args: tokenize(rest), Rest: rest}, true
}

// tokenize splits on spaces; double quotes group words.
func tokenize(s string) []string {
	var (
		out     []string
		cur     strings.Builder
		quoted  bool
		pending bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			quoted = !quoted
			pending = true
		case r == ' ' && !quoted:
			if pending {
				out = append(out, cur.String())
				cur.Reset()
				pending = false
			}
		default:
			cur.WriteRune(r)
			pending = true
		}
	}
	if pending {
		out = append(out, cur.String())
	}
	return out
}

// MatchRequest is a parsed !bo1 .. !ffa command.
type MatchRequest struct {
	Format   draft.Format
	TeamA    string
	TeamB    string
	Cup      string
	FlipCoin bool
	Reuse    RoomReuse
}

// ParseMatchRequest reads "<teamA> <teamB> [cup] [flip] [reuse|new]".
func ParseMatchRequest(cmd Command) (MatchRequest, error) {
	format, err := draft.ParseFormat(cmd.Name)
	if err != nil {
		return MatchRequest{}, err
	}
	req := MatchRequest{Format: format}

	var positional []string
	for _, arg := range cmd.Args {
		switch strings.ToLower(arg) {
		case "flip":
			req.FlipCoin = true
		case "reuse":
			req.Reuse = ReuseYes
		case "new":
			req.Reuse = ReuseNew
		default:
			positional = append(positional, arg)
		}
	}
	if len(positional) < 2 || len(positional) > 3 {
		return MatchRequest{}, ErrUsage
	}
	req.TeamA, req.TeamB = positional[0], positional[1]
	if len(positional) == 3 {
		req.Cup = positional[2]
	}
	return req, nil
}

// IsMatchFormat reports whether a command name starts a match.
func IsMatchFormat(name string) bool {
	_, err := draft.ParseFormat(name)
	return err == nil
}
