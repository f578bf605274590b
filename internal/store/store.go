package store

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

type Cup struct {
	Name       string    `json:"name"`
	Maps       []string  `json:"maps"`
	BracketURL string    `json:"bracketUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Group struct {
	Cup  string `json:"cup"`
	Name string `json:"name"`
}

type Team struct {
	Cup    string `json:"cup"`
	Name   string `json:"name"`
	RoleID string `json:"roleId,omitempty"`
	Group  string `json:"group,omitempty"`
}

type Captain struct {
	Cup      string `json:"cup"`
	UserID   string `json:"userId"`
	Nickname string `json:"nickname,omitempty"`
	Team     string `json:"team"`
	Group    string `json:"group,omitempty"`
}

type Match struct {
	ID        string `json:"id"`
	ChannelID string `json:"channelId"`
	Cup       string `json:"cup"`
	TeamA     string `json:"teamA"`
	TeamB     string `json:"teamB"`
	Format    string `json:"format"`
	// State is the JSON snapshot of the draft.
	State      string     `json:"state"`
	Streamed   bool       `json:"streamed"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	RemovedAt  *time.Time `json:"removedAt,omitempty"`
}

type PushSubscription struct {
	ID        int       `json:"id"`
	UserID    string    `json:"userId"`
	Endpoint  string    `json:"endpoint"`
	P256dh    string    `json:"p256dh"`
	Auth      string    `json:"auth"`
	CreatedAt time.Time `json:"createdAt"`
}

type Store interface {
	UpsertCup(ctx context.Context, cup *Cup) error
	GetCup(ctx context.Context, name string) (*Cup, error)
	ListCups(ctx context.Context) ([]Cup, error)
	DeleteCup(ctx context.Context, name string) error

	AddGroup(ctx context.Context, group *Group) error
	ListGroups(ctx context.Context, cup string) ([]Group, error)
	// RemoveGroup deletes a group and detaches its teams and captains.
	RemoveGroup(ctx context.Context, cup, name string) error

	UpsertTeam(ctx context.Context, team *Team) error
	GetTeam(ctx context.Context, cup, name string) (*Team, error)
	ListTeams(ctx context.Context, cup string) ([]Team, error)
	DeleteTeam(ctx context.Context, cup, name string) error

	// UpsertCaptain replaces any earlier registration of the same user in the cup.
	UpsertCaptain(ctx context.Context, captain *Captain) error
	GetCaptain(ctx context.Context, cup, userID string) (*Captain, error)
	ListCaptains(ctx context.Context, cup, team string) ([]Captain, error)
	DeleteCaptain(ctx context.Context, cup, userID string) error

	CreateMatch(ctx context.Context, match *Match) error
	UpdateMatch(ctx context.Context, match *Match) error
	GetMatch(ctx context.Context, matchID string) (*Match, error)
	MarkMatchRemoved(ctx context.Context, matchID string, at time.Time) error
	ListActiveMatches(ctx context.Context) ([]Match, error)
	ListMatches(ctx context.Context, limit int) ([]Match, error)

	// Push subscriptions
	SavePushSubscription(ctx context.Context, sub *PushSubscription) error
	GetPushSubscriptions(ctx context.Context, userID string) ([]PushSubscription, error)
	DeletePushSubscription(ctx context.Context, endpoint string) error

	Close() error
}
