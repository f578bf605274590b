package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/elliotchance/pie/v2"
	"github.com/sirupsen/logrus"

	"github.com/edvart/cupkeeper/internal/coordinator"
	"github.com/edvart/cupkeeper/internal/draft"
	"github.com/edvart/cupkeeper/internal/roster"
)

const replyTimeout = 10 * time.Second

var errTimeout = errors.New("coordinator did not answer in time")

// Config holds bot configuration.
type Config struct {
	GuildID string
	Prefix  string
	// RefereeRole and StreamerRole accept a role id or a role name.
	RefereeRole  string
	StreamerRole string
	CategoryID   string
}

// Message is the part of a chat message the bot reacts to.
type Message struct {
	GuildID   string
	ChannelID string
	AuthorID  string
	Roles     []string
	Content   string
}

// Bot turns chat commands into coordinator commands.
type Bot struct {
	client chatClient
	coord  *coordinator.Coordinator
	roster *roster.Service
	sink   *Sink
	render *Renderer
	cfg    Config
	log    *logrus.Entry

	mu      sync.Mutex
	botID   string
	roleIDs map[string]string
}

// NewSession opens a gateway session with the intents the bot needs.
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent
	return session, nil
}

func NewBot(client chatClient, coord *coordinator.Coordinator, rs *roster.Service, sink *Sink, render *Renderer, cfg Config, log *logrus.Entry) *Bot {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "!"
	}
	return &Bot{
		client:  client,
		coord:   coord,
		roster:  rs,
		sink:    sink,
		render:  render,
		cfg:     cfg,
		log:     log.WithField("component", "discord"),
		roleIDs: make(map[string]string),
	}
}

// Register installs the bot's gateway handlers. Call it before session.Open.
func (b *Bot) Register(session *discordgo.Session) {
	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.mu.Lock()
		b.botID = r.User.ID
		b.mu.Unlock()
		b.log.Infof("Logged in as %s", r.User.Username)
	})
	session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil || m.Author.Bot || m.GuildID == "" {
			return
		}
		msg := Message{GuildID: m.GuildID, ChannelID: m.ChannelID, AuthorID: m.Author.ID, Content: m.Content}
		if m.Member != nil {
			msg.Roles = m.Member.Roles
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*replyTimeout)
		defer cancel()
		b.HandleMessage(ctx, msg)
	})
}

// HandleMessage runs one chat command.
func (b *Bot) HandleMessage(ctx context.Context, m Message) {
	if b.cfg.GuildID != "" && m.GuildID != b.cfg.GuildID {
		return
	}
	cmd, ok := ParseCommand(b.cfg.Prefix, m.Content)
	if !ok {
		return
	}
	log := b.log.WithFields(logrus.Fields{"channel": m.ChannelID, "user": m.AuthorID, "command": cmd.Name})

	var err error
	switch {
	case IsMatchFormat(cmd.Name):
		err = b.refereeOnly(m, func() error { return b.createMatch(ctx, m, cmd) })
	case cmd.Name == "ban" || cmd.Name == "pick" || cmd.Name == "side":
		err = b.submit(m, draft.Action(cmd.Name), cmd.Rest)
	case cmd.Name == "undo":
		err = b.refereeOnly(m, func() error {
			return b.send(coordinator.UndoAction{Target: coordinator.InChannel(m.ChannelID)})
		})
	case cmd.Name == "close":
		err = b.refereeOnly(m, func() error {
			return b.send(coordinator.CloseMatch{Target: coordinator.InChannel(m.ChannelID)})
		})
	case cmd.Name == "wipe":
		err = b.refereeOnly(m, func() error {
			if len(cmd.Args) > 0 && strings.EqualFold(cmd.Args[0], "cup") {
				return b.wipeCup(ctx, m, strings.Join(cmd.Args[1:], " "))
			}
			return b.wipe(m)
		})
	case cmd.Name == "stream":
		if !b.hasRole(m, b.cfg.RefereeRole) && !b.hasRole(m, b.cfg.StreamerRole) {
			err = ErrNotReferee
			break
		}
		err = b.send(coordinator.MarkStreamed{Target: coordinator.InChannel(m.ChannelID), URL: strings.Trim(cmd.Rest, "<>")})
	case cmd.Name == "broadcast":
		err = b.refereeOnly(m, func() error { return b.toggleBroadcast(m, cmd) })
	default:
		return
	}

	if err != nil {
		log.WithError(err).Debug("Command rejected")
		b.reply(m.ChannelID, b.describe(err))
	}
}

func (b *Bot) refereeOnly(m Message, fn func() error) error {
	if !b.hasRole(m, b.cfg.RefereeRole) {
		return ErrNotReferee
	}
	return fn()
}

func (b *Bot) submit(m Message, action draft.Action, input string) error {
	return b.send(coordinator.SubmitAction{
		Target: coordinator.InChannel(m.ChannelID),
		Action: action,
		Actor:  draft.Member{ID: m.AuthorID, Roles: m.Roles},
		Input:  input,
		Force:  b.hasRole(m, b.cfg.RefereeRole),
	})
}

// send fills in the response channel of cmd, submits it and waits.
func (b *Bot) send(cmd coordinator.Command) error {
	resp := make(chan error, 1)
	switch c := cmd.(type) {
	case coordinator.SubmitAction:
		c.Response = resp
		cmd = c
	case coordinator.UndoAction:
		c.Response = resp
		cmd = c
	case coordinator.CloseMatch:
		c.Response = resp
		cmd = c
	case coordinator.RemoveMatch:
		c.Response = resp
		cmd = c
	case coordinator.MarkStreamed:
		c.Response = resp
		cmd = c
	default:
		return fmt.Errorf("unsupported command %T", cmd)
	}
	b.coord.Send(cmd)

	select {
	case err := <-resp:
		if errors.Is(err, coordinator.ErrMatchNotFound) {
			return ErrNoMatchHere
		}
		return err
	case <-time.After(replyTimeout):
		return errTimeout
	}
}

func (b *Bot) createMatch(ctx context.Context, m Message, cmd Command) error {
	req, err := ParseMatchRequest(cmd)
	if err != nil {
		return err
	}
	matchup, err := b.roster.Matchup(ctx, req.Cup, req.TeamA, req.TeamB)
	if err != nil {
		return err
	}

	channelID, name, reused, err := b.openRoom(m.GuildID, matchup, req.Reuse)
	if err != nil {
		return err
	}
	b.sink.RememberRoom(channelID, name)

	create := matchup.CreateCommand(channelID, req.Format)
	create.FlipCoin = req.FlipCoin
	create.Replace = reused
	resp := make(chan coordinator.CreateMatchResult, 1)
	create.Response = resp
	b.coord.Send(create)

	select {
	case res := <-resp:
		if res.Err != nil {
			return res.Err
		}
		b.log.WithField("match", res.Match.ID).Infof("Match %s vs %s created in %s", res.Match.TeamA, res.Match.TeamB, name)
		if channelID != m.ChannelID {
			b.reply(m.ChannelID, fmt.Sprintf(":white_check_mark: Match room <#%s> is ready.", channelID))
		}
		return nil
	case <-time.After(replyTimeout):
		return errTimeout
	}
}

// openRoom finds or creates the text channel of a match.
func (b *Bot) openRoom(guildID string, match roster.Matchup, reuse RoomReuse) (string, string, bool, error) {
	channels, err := b.client.GuildChannels(guildID)
	if err != nil {
		return "", "", false, fmt.Errorf("failed to list channels: %w", err)
	}
	names := pie.Map(channels, func(c *discordgo.Channel) string { return c.Name })

	name, exists, err := PickRoom(RoomName(match.TeamA.Name, match.TeamB.Name), names, reuse)
	if err != nil {
		return "", "", false, err
	}
	if exists {
		for _, c := range channels {
			if c.Name == name {
				return c.ID, name, true, nil
			}
		}
	}

	access := RoomAccess{
		BotID:      b.selfID(),
		EveryoneID: guildID,
		RoleIDs:    []string{b.roleID(guildID, b.cfg.RefereeRole), b.roleID(guildID, b.cfg.StreamerRole), match.TeamA.RoleID, match.TeamB.RoleID},
		UserIDs:    append(append([]string(nil), match.CaptainsA...), match.CaptainsB...),
	}
	ch, err := b.client.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                fmt.Sprintf("Match %s vs %s", match.TeamA.Name, match.TeamB.Name),
		ParentID:             b.cfg.CategoryID,
		PermissionOverwrites: access.Overwrites(),
	})
	if err != nil {
		return "", "", false, fmt.Errorf("failed to create room %s: %w", name, err)
	}
	b.log.WithField("channel", ch.ID).Infof("Created room %s", name)
	return ch.ID, name, false, nil
}

// wipe drops the match of a room and deletes the room.
func (b *Bot) wipe(m Message) error {
	if err := b.send(coordinator.RemoveMatch{Target: coordinator.InChannel(m.ChannelID)}); err != nil {
		return err
	}
	if _, err := b.client.ChannelDelete(m.ChannelID); err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	return nil
}

// wipeCup drops every match of a cup and deletes their rooms.
func (b *Bot) wipeCup(ctx context.Context, m Message, cupName string) error {
	cup, err := b.roster.Cup(ctx, cupName)
	if err != nil {
		return err
	}
	resp := make(chan []coordinator.MatchInfo, 1)
	b.coord.Send(coordinator.RemoveCupMatches{Cup: cup.Name, Response: resp})

	var removed []coordinator.MatchInfo
	select {
	case removed = <-resp:
	case <-time.After(replyTimeout):
		return errTimeout
	}

	deletedHere := false
	for _, match := range removed {
		if _, err := b.client.ChannelDelete(match.ChannelID); err != nil {
			b.log.WithError(err).WithField("channel", match.ChannelID).Warn("Failed to delete room")
			continue
		}
		deletedHere = deletedHere || match.ChannelID == m.ChannelID
	}
	b.log.WithField("cup", cup.Name).Infof("Wiped %d matches", len(removed))
	if !deletedHere {
		b.reply(m.ChannelID, fmt.Sprintf(":wastebasket: Wiped %d matches of cup %s.", len(removed), cup.Name))
	}
	return nil
}

func (b *Bot) toggleBroadcast(m Message, cmd Command) error {
	switch strings.ToLower(cmd.Rest) {
	case "on":
		b.sink.SetBroadcast(true)
	case "off":
		b.sink.SetBroadcast(false)
	case "":
	default:
		return ErrUsage
	}
	state := "off"
	if b.sink.BroadcastEnabled() {
		state = "on"
	}
	b.reply(m.ChannelID, fmt.Sprintf(":loudspeaker: Broadcast is %s.", state))
	return nil
}

func (b *Bot) selfID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.botID
}

// roleID resolves a configured role given by id or name. Unknown roles
// resolve to "".
func (b *Bot) roleID(guildID, role string) string {
	if role == "" {
		return ""
	}
	b.mu.Lock()
	id, ok := b.roleIDs[role]
	b.mu.Unlock()
	if ok {
		return id
	}

	roles, err := b.client.GuildRoles(guildID)
	if err != nil {
		b.log.WithError(err).Warn("Failed to list roles")
		return ""
	}
	for _, r := range roles {
		if r.ID == role || strings.EqualFold(r.Name, role) {
			id = r.ID
			break
		}
	}
	if id == "" {
		b.log.Warnf("Role %q not found", role)
	}
	b.mu.Lock()
	b.roleIDs[role] = id
	b.mu.Unlock()
	return id
}

func (b *Bot) hasRole(m Message, role string) bool {
	id := b.roleID(m.GuildID, role)
	return id != "" && pie.Contains(m.Roles, id)
}

func (b *Bot) describe(err error) string {
	switch {
	case errors.Is(err, ErrUsage):
		return ":no_entry: Usage: `" + b.cfg.Prefix + "bo1|bo2|bo3|bo5|ffa <teamA> <teamB> [cup] [flip] [reuse|new]`, `" + b.cfg.Prefix + "wipe [cup <name>]`, `" + b.cfg.Prefix + "broadcast on|off`"
	case errors.Is(err, ErrRoomExists):
		return ":no_entry: " + err.Error() + "! Add `reuse` to the command to reuse it or `new` to create a new one."
	default:
		return b.render.Error(err)
	}
}

func (b *Bot) reply(channelID, content string) {
	if _, err := b.client.ChannelMessageSend(channelID, content); err != nil {
		b.log.WithError(err).WithField("channel", channelID).Error("Failed to reply")
	}
}
