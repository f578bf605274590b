package discord

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
)

type sentMessage struct {
	ChannelID string
	Content   string
	Embed     *discordgo.MessageEmbed
}

type fakeClient struct {
	mu       sync.Mutex
	nextID   int
	sent     []sentMessage
	edits    []sentMessage
	deleted  []string
	channels []*discordgo.Channel
	created  []discordgo.GuildChannelCreateData
	roles    []*discordgo.Role
	removed  []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		roles: []*discordgo.Role{
			{ID: "r-ref", Name: "Referee"},
			{ID: "r-stream", Name: "Streamer"},
		},
	}
}

func (f *fakeClient) id() string {
	f.nextID++
	return fmt.Sprintf("msg-%d", f.nextID)
}

func (f *fakeClient) Channel(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.channels {
		if c.ID == channelID {
			return c, nil
		}
	}
	return nil, fmt.Errorf("unknown channel %s", channelID)
}

func (f *fakeClient) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{ChannelID: channelID, Content: content})
	return &discordgo.Message{ID: f.id(), ChannelID: channelID}, nil
}

func (f *fakeClient) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{ChannelID: channelID, Embed: embed})
	return &discordgo.Message{ID: f.id(), ChannelID: channelID}, nil
}

func (f *fakeClient) ChannelMessageEditEmbed(channelID, messageID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, sentMessage{ChannelID: channelID, Content: messageID, Embed: embed})
	return &discordgo.Message{ID: messageID, ChannelID: channelID}, nil
}

func (f *fakeClient) ChannelMessageDelete(channelID, messageID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeClient) GuildChannels(guildID string, _ ...discordgo.RequestOption) ([]*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*discordgo.Channel(nil), f.channels...), nil
}

func (f *fakeClient) GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := &discordgo.Channel{ID: fmt.Sprintf("ch-%d", len(f.channels)+1), GuildID: guildID, Name: data.Name}
	f.channels = append(f.channels, ch)
	f.created = append(f.created, data)
	return ch, nil
}

func (f *fakeClient) GuildRoles(guildID string, _ ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	return f.roles, nil
}

func (f *fakeClient) ChannelDelete(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, channelID)
	return &discordgo.Channel{ID: channelID}, nil
}

func (f *fakeClient) messages(channelID string) []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMessage
	for _, m := range f.sent {
		if m.ChannelID == channelID {
			out = append(out, m)
		}
	}
	return out
}
