package roster

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/elliotchance/pie/v2"
	"github.com/sirupsen/logrus"

	"github.com/edvart/cupkeeper/internal/coordinator"
	"github.com/edvart/cupkeeper/internal/draft"
	"github.com/edvart/cupkeeper/internal/store"
)

var (
	ErrUnknownCup   = errors.New("unknown cup")
	ErrUnknownTeam  = errors.New("unknown team")
	ErrCupRequired  = errors.New("several cups are running, name one")
	ErrSameTeam     = errors.New("a team cannot play against itself")
	ErrInvalidEntry = errors.New("invalid roster entry")
)

// Matchup is a resolved pairing ready to be turned into a match.
type Matchup struct {
	Cup       store.Cup
	TeamA     store.Team
	TeamB     store.Team
	PartyA    draft.Party
	PartyB    draft.Party
	CaptainsA []string
	CaptainsB []string
}

// Swap exchanges the A and B sides, e.g. after a coin flip.
func (m Matchup) Swap() Matchup {
	m.TeamA, m.TeamB = m.TeamB, m.TeamA
	m.PartyA, m.PartyB = m.PartyB, m.PartyA
	m.CaptainsA, m.CaptainsB = m.CaptainsB, m.CaptainsA
	return m
}

// CreateCommand builds the coordinator command that starts this matchup in a
// channel. The caller sets the response channel.
func (m Matchup) CreateCommand(channelID string, f draft.Format) coordinator.CreateMatch {
	return coordinator.CreateMatch{
		ChannelID: channelID,
		Cup:       m.Cup.Name,
		Format:    f,
		PartyA:    m.PartyA,
		PartyB:    m.PartyB,
		CaptainsA: m.CaptainsA,
		CaptainsB: m.CaptainsB,
		Maps:      m.Cup.Maps,
		ResultURL: m.Cup.BracketURL,
	}
}

// Service answers roster questions on top of the store.
type Service struct {
	store store.Store
	log   *logrus.Entry
}

func New(st store.Store, log *logrus.Entry) *Service {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Service{store: st, log: log.WithField("component", "roster")}
}

// Cup returns the named cup. An empty name selects the only cup when there is one.
func (s *Service) Cup(ctx context.Context, name string) (*store.Cup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		cups, err := s.store.ListCups(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list cups: %w", err)
		}
		switch len(cups) {
		case 0:
			return nil, ErrUnknownCup
		case 1:
			return &cups[0], nil
		default:
			return nil, ErrCupRequired
		}
	}

	cup, err := s.store.GetCup(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load cup %s: %w", name, err)
	}
	if cup == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCup, name)
	}
	return cup, nil
}

func (s *Service) SaveCup(ctx context.Context, cup store.Cup) error {
	cup.Name = strings.TrimSpace(cup.Name)
	if cup.Name == "" {
		return fmt.Errorf("%w: cup name is empty", ErrInvalidEntry)
	}
	maps := pie.Filter(pie.Map(cup.Maps, strings.TrimSpace), func(m string) bool { return m != "" })
	if len(pie.Unique(maps)) != len(maps) {
		return fmt.Errorf("%w: %v", draft.ErrDuplicateMap, maps)
	}
	cup.Maps = maps
	if err := s.store.UpsertCup(ctx, &cup); err != nil {
		return fmt.Errorf("failed to save cup: %w", err)
	}
	s.log.WithField("cup", cup.Name).Infof("Cup saved with %d maps", len(maps))
	return nil
}

func (s *Service) AddGroup(ctx context.Context, cupName, group string) error {
	cup, err := s.Cup(ctx, cupName)
	if err != nil {
		return err
	}
	group = strings.TrimSpace(group)
	if group == "" {
		return fmt.Errorf("%w: group name is empty", ErrInvalidEntry)
	}
	return s.store.AddGroup(ctx, &store.Group{Cup: cup.Name, Name: group})
}

// RemoveGroup deletes a group; its teams and captains stay registered without one.
func (s *Service) RemoveGroup(ctx context.Context, cupName, group string) error {
	cup, err := s.Cup(ctx, cupName)
	if err != nil {
		return err
	}
	if err := s.store.RemoveGroup(ctx, cup.Name, group); err != nil {
		return err
	}
	s.log.WithField("cup", cup.Name).Infof("Group %s removed", group)
	return nil
}

func (s *Service) SaveTeam(ctx context.Context, team store.Team) error {
	cup, err := s.Cup(ctx, team.Cup)
	if err != nil {
		return err
	}
	team.Cup = cup.Name
	team.Name = strings.TrimSpace(team.Name)
	if team.Name == "" {
		return fmt.Errorf("%w: team name is empty", ErrInvalidEntry)
	}
	if team.Group != "" {
		if err := s.store.AddGroup(ctx, &store.Group{Cup: cup.Name, Name: team.Group}); err != nil {
			return err
		}
	}
	return s.store.UpsertTeam(ctx, &team)
}

// AddCaptain registers a captain, creating the team if needed. A user that is
// already a captain in the cup is moved to the new team.
func (s *Service) AddCaptain(ctx context.Context, captain store.Captain) error {
	cup, err := s.Cup(ctx, captain.Cup)
	if err != nil {
		return err
	}
	captain.Cup = cup.Name
	captain.UserID = strings.TrimSpace(captain.UserID)
	captain.Team = strings.TrimSpace(captain.Team)
	if captain.UserID == "" || captain.Team == "" {
		return fmt.Errorf("%w: captain needs a user id and a team", ErrInvalidEntry)
	}

	team, err := s.store.GetTeam(ctx, cup.Name, captain.Team)
	if err != nil {
		return err
	}
	if team == nil {
		if err := s.SaveTeam(ctx, store.Team{Cup: cup.Name, Name: captain.Team, Group: captain.Group}); err != nil {
			return err
		}
	} else {
		captain.Team = team.Name
	}
	if captain.Group != "" {
		if err := s.store.AddGroup(ctx, &store.Group{Cup: cup.Name, Name: captain.Group}); err != nil {
			return err
		}
	}

	if old, err := s.store.GetCaptain(ctx, cup.Name, captain.UserID); err == nil && old != nil {
		s.log.WithField("cup", cup.Name).Infof("Captain %s moves from %s to %s", captain.UserID, old.Team, captain.Team)
	}
	return s.store.UpsertCaptain(ctx, &captain)
}

func (s *Service) RemoveCaptain(ctx context.Context, cupName, userID string) error {
	cup, err := s.Cup(ctx, cupName)
	if err != nil {
		return err
	}
	return s.store.DeleteCaptain(ctx, cup.Name, userID)
}

var mentionRe = regexp.MustCompile(`^<@!?(\d+)>$`)

// Team finds a team by name, or by the mention or id of one of its captains.
func (s *Service) Team(ctx context.Context, cup, ref string) (*store.Team, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty name", ErrUnknownTeam)
	}

	team, err := s.store.GetTeam(ctx, cup, ref)
	if err != nil {
		return nil, err
	}
	if team != nil {
		return team, nil
	}

	userID := ref
	if m := mentionRe.FindStringSubmatch(ref); m != nil {
		userID = m[1]
	}
	captain, err := s.store.GetCaptain(ctx, cup, userID)
	if err != nil {
		return nil, err
	}
	if captain != nil {
		team, err := s.store.GetTeam(ctx, cup, captain.Team)
		if err != nil {
			return nil, err
		}
		if team != nil {
			return team, nil
		}
		return &store.Team{Cup: cup, Name: captain.Team, Group: captain.Group}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownTeam, ref)
}

// Party builds the draft party of a team: its role when byRole is set and
// the team has one, its captains otherwise. The captain ids are returned in
// both cases.
func (s *Service) Party(ctx context.Context, team store.Team, byRole bool) (draft.Party, []string, error) {
	captains, err := s.store.ListCaptains(ctx, team.Cup, team.Name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list captains of %s: %w", team.Name, err)
	}
	ids := pie.Map(captains, func(c store.Captain) string { return c.UserID })
	if byRole && team.RoleID != "" {
		return draft.RoleParty{TeamName: team.Name, RoleID: team.RoleID}, ids, nil
	}
	return draft.CaptainParty{TeamName: team.Name, CaptainIDs: ids}, ids, nil
}

// Matchup resolves both teams of a match in a cup. Roles decide who acts
// only when both teams have one; otherwise both sides use their captains.
func (s *Service) Matchup(ctx context.Context, cupName, refA, refB string) (Matchup, error) {
	cup, err := s.Cup(ctx, cupName)
	if err != nil {
		return Matchup{}, err
	}
	a, err := s.Team(ctx, cup.Name, refA)
	if err != nil {
		return Matchup{}, err
	}
	b, err := s.Team(ctx, cup.Name, refB)
	if err != nil {
		return Matchup{}, err
	}
	if strings.EqualFold(a.Name, b.Name) {
		return Matchup{}, fmt.Errorf("%w: %s", ErrSameTeam, a.Name)
	}

	m := Matchup{Cup: *cup, TeamA: *a, TeamB: *b}
	byRole := a.RoleID != "" && b.RoleID != ""
	if m.PartyA, m.CaptainsA, err = s.Party(ctx, *a, byRole); err != nil {
		return Matchup{}, err
	}
	if m.PartyB, m.CaptainsB, err = s.Party(ctx, *b, byRole); err != nil {
		return Matchup{}, err
	}
	return m, nil
}
