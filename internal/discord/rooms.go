package discord

import (
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"github.com/elliotchance/pie/v2"

	"github.com/edvart/cupkeeper/internal/draft"
)

// RoomName is the base room name of a match between two teams.
func RoomName(teamA, teamB string) string {
	return fmt.Sprintf("match_%s_vs_%s", draft.Normalize(teamA), draft.Normalize(teamB))
}

// PickRoom chooses the room name for a new match given the names already in
// use. It returns the name and whether that room already exists.
func PickRoom(base string, existing []string, reuse RoomReuse) (string, bool, error) {
	name := base
	for index := 1; ; index++ {
		if index > 1 {
			name = base + "_r" + strconv.Itoa(index)
		}
		if !pie.Contains(existing, name) {
			return name, false, nil
		}
		switch reuse {
		case ReuseYes:
			return name, true, nil
		case ReuseUnknown:
			return name, true, fmt.Errorf("%w: %s", ErrRoomExists, name)
		}
	}
}

// RoomAccess lists who may see a match room besides the bot.
type RoomAccess struct {
	BotID      string
	EveryoneID string
	RoleIDs    []string
	UserIDs    []string
}

// Overwrites hides the room from everyone but the listed roles and users.
func (a RoomAccess) Overwrites() []*discordgo.PermissionOverwrite {
	const allow = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionReadMessageHistory

	out := []*discordgo.PermissionOverwrite{{
		ID:   a.EveryoneID,
		Type: discordgo.PermissionOverwriteTypeRole,
		Deny: discordgo.PermissionViewChannel,
	}}
	if a.BotID != "" {
		out = append(out, &discordgo.PermissionOverwrite{ID: a.BotID, Type: discordgo.PermissionOverwriteTypeMember, Allow: allow})
	}
	for _, id := range pie.Unique(pie.Filter(a.RoleIDs, func(s string) bool { return s != "" })) {
		out = append(out, &discordgo.PermissionOverwrite{ID: id, Type: discordgo.PermissionOverwriteTypeRole, Allow: allow})
	}
	for _, id := range pie.Unique(pie.Filter(a.UserIDs, func(s string) bool { return s != "" })) {
		out = append(out, &discordgo.PermissionOverwrite{ID: id, Type: discordgo.PermissionOverwriteTypeMember, Allow: allow})
	}
	return out
}
