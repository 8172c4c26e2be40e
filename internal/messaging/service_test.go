package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	convs        map[string]*Conversation
	participants map[string][]string
	messages     []*Message
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{convs: map[string]*Conversation{}, participants: map[string][]string{}}
}

func (f *fakeRepo) GetDirectConversation(_ context.Context, a, b string) (*Conversation, error) {
	for id, users := range f.participants {
		if len(users) == 2 && ((users[0] == a && users[1] == b) || (users[0] == b && users[1] == a)) {
			return f.convs[id], nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) CreateConversation(_ context.Context, c *Conversation) error {
	f.convs[c.ID] = c
	return nil
}

func (f *fakeRepo) AddParticipant(_ context.Context, p *Participant) error {
	f.participants[p.ConversationID] = append(f.participants[p.ConversationID], p.UserID)
	return nil
}

func (f *fakeRepo) CreateMessage(_ context.Context, m *Message) error {
	f.messages = append(f.messages, m)
	return nil
}

func (f *fakeRepo) UpdateConversationLastMessage(_ context.Context, id string, at time.Time, preview string) error {
	f.convs[id].LastMessageAt = &at
	f.convs[id].LastMessagePreview = &preview
	return nil
}

func TestStartWithSystemMessage(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	repo := newFakeRepo()
	starter := NewStarter(func() time.Time { return now })
	ctx := context.Background()

	conv, msg, err := starter.StartWithSystemMessage(ctx, repo, "a", "b", "You matched!", map[string]string{"suggestion_id": "s1"})
	require.NoError(t, err)

	assert.Equal(t, ConversationDirect, conv.Type)
	assert.Len(t, conv.Participants, 2)
	assert.Equal(t, MessageTypeSystem, msg.MessageType)
	assert.Nil(t, msg.SenderID)
	assert.JSONEq(t, `{"suggestion_id":"s1"}`, string(msg.Metadata))
	require.NotNil(t, repo.convs[conv.ID].LastMessagePreview)
	assert.Equal(t, "You matched!", *repo.convs[conv.ID].LastMessagePreview)

	// the existing conversation is reused from either side
	again, _, err := starter.StartWithSystemMessage(ctx, repo, "b", "a", "Hello again", nil)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, again.ID)
	assert.Len(t, repo.convs, 1)
	assert.Len(t, repo.messages, 2)
}
