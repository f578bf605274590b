package draft

import (
	"strings"

	"github.com/elliotchance/pie/v2"
)

// Party is one side of a match.
type Party interface {
	Name() string
	IsMember(m Member) bool
	Mention() string
}

// RoleParty is a team backed by a chat role: every holder of the role acts for it.
type RoleParty struct {
	TeamName string
	RoleID   string
}

func (p RoleParty) Name() string { return p.TeamName }

func (p RoleParty) IsMember(m Member) bool {
	return p.RoleID != "" && pie.Contains(m.Roles, p.RoleID)
}

func (p RoleParty) Mention() string {
	return "<@&" + p.RoleID + ">"
}

// CaptainParty is a team represented by a list of captain user ids.
type CaptainParty struct {
	TeamName   string
	CaptainIDs []string
}

func (p CaptainParty) Name() string { return p.TeamName }

func (p CaptainParty) IsMember(m Member) bool {
	return pie.Contains(p.CaptainIDs, m.ID)
}

// Mention pings every captain, or falls back to the team name when there are none.
func (p CaptainParty) Mention() string {
	if len(p.CaptainIDs) == 0 {
		return p.TeamName
	}
	return strings.Join(pie.Map(p.CaptainIDs, func(id string) string {
		return "<@" + id + ">"
	}), " ")
}
