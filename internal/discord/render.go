package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/elliotchance/pie/v2"

	"github.com/edvart/cupkeeper/internal/draft"
	"github.com/edvart/cupkeeper/internal/locale"
)

const (
	colorActive = 0x2ecc71
	colorDone   = 0x992d22
	colorIntro  = 0x3498db
)

// Renderer turns what a match publishes into chat messages.
type Renderer struct {
	loc *locale.Localizer
}

func NewRenderer(loc *locale.Localizer) *Renderer {
	if loc == nil {
		loc = locale.MustNew(locale.English)
	}
	return &Renderer{loc: loc}
}

// IntroEmbed is the welcome message posted when a match starts.
func (r *Renderer) IntroEmbed(intro draft.Intro) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       intro.Title,
		Description: intro.Rules,
		Color:       colorIntro,
	}
	if len(intro.Sequence) > 0 {
		lines := pie.Map(intro.Sequence, func(l draft.SequenceLine) string {
			return fmt.Sprintf("• %s: %s", l.Party, r.loc.T("action."+string(l.Action)))
		})
		embed.Fields = []*discordgo.MessageEmbedField{{
			Name:  r.loc.T("match.sequence_title"),
			Value: strings.Join(lines, "\n"),
		}}
	}
	return embed
}

// StatusEmbed lists the pool with each map's state.
func (r *Renderer) StatusEmbed(st draft.Status) *discordgo.MessageEmbed {
	lines := pie.Map(st.Maps, func(m draft.MapLine) string {
		switch m.Status {
		case draft.MapBanned:
			return ":hammer: ~~" + m.Name + "~~"
		case draft.MapPicked:
			return ":point_right: **" + m.Name + "**"
		default:
			return ":grey_question: _" + m.Name + "_"
		}
	})
	color := colorActive
	if st.Done {
		color = colorDone
	}
	description := strings.Join(lines, "\n")
	if st.ForceClosed {
		description += "\n\n" + r.loc.T("match.closed")
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s (%d/%d):", r.loc.T("match.status_title"), st.Turn, st.Total),
		Description: description,
		Color:       color,
	}
}

// TurnPrompt pings the party on turn with the command to use.
func (r *Renderer) TurnPrompt(p draft.TurnPrompt) string {
	msg := fmt.Sprintf("%s %s! %s `!%s %s`.", r.loc.T("match.turn"), p.Mention, r.loc.T("match.use"), p.Action, p.Hint)
	if p.Action == draft.ActionSide && p.MapName != "" {
		msg += fmt.Sprintf("   %s %d: **%s**", r.loc.T("match.map"), p.MapOrdinal, p.MapName)
	}
	return msg
}

// Summary is the final message of a finished sequence.
func (r *Renderer) Summary(s draft.Summary) string {
	title := r.loc.T("match.sequence_finished")
	if s.Format == draft.FormatBo1 {
		title = r.loc.T("match.ban_sequence_finished")
	}

	var b strings.Builder
	b.WriteString(title + "\n\n")
	for _, line := range r.summaryLines(s) {
		b.WriteString(line + "\n")
	}
	b.WriteString(r.loc.T("match.good_luck") + "\n\n")
	b.WriteString(":warning: **" + r.loc.T("match.warning") + "** :warning:\n")
	b.WriteString(s.ResultURL)
	return b.String()
}

func (r *Renderer) summaryLines(s draft.Summary) []string {
	return pie.Map(s.Entries, func(e draft.SummaryEntry) string {
		label := fmt.Sprintf("%s %d", r.loc.T("match.map"), e.Ordinal)
		switch {
		case e.Label == draft.LabelTiebreaker:
			label = r.loc.T("match.tiebreaker")
		case len(s.Entries) == 1:
			label = r.loc.T("match.map")
		}
		return fmt.Sprintf("%s: **%s** (%s %s)", label, e.MapName, e.Party, r.loc.T("side."+string(e.Side)))
	})
}

// Announcement renders a broadcast for the tournament rooms. room is the
// name of the match room.
func (r *Renderer) Announcement(a draft.Announcement, room string) string {
	args := map[string]string{
		"match": room,
		"teamA": "**" + a.TeamA + "**",
		"teamB": "**" + a.TeamB + "**",
	}
	msg := r.loc.Format("broadcast."+a.Event, args)
	if a.Summary != nil {
		for _, line := range r.summaryLines(*a.Summary) {
			msg += "\n - " + line
		}
	}
	return msg
}

// StreamNotice is posted in the room of a streamed match.
func (r *Renderer) StreamNotice(url string) string {
	return r.loc.Format("match.stream_notice", map[string]string{"url": streamSuffix(url)})
}

// StreamBroadcast announces a streamed match to the broadcast rooms.
func (r *Renderer) StreamBroadcast(room, teamA, teamB, url string) string {
	return r.loc.Format("broadcast.stream", map[string]string{
		"match": room,
		"teamA": "**" + teamA + "**",
		"teamB": "**" + teamB + "**",
		"url":   streamSuffix(url),
	})
}

// Error renders a rejected command for the user who sent it.
func (r *Renderer) Error(err error) string {
	return ":no_entry: " + draft.Describe(err, r.loc)
}

func streamSuffix(url string) string {
	if url == "" {
		return ""
	}
	return " on <" + url + ">"
}
