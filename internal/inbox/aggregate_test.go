package inbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/models"
)

func ts(sec int) time.Time {
	return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(sec) * time.Second)
}

func TestAggregateGroupsAndOrders(t *testing.T) {
	me := "me"
	messages := []models.Message{
		{ID: "m1", SenderID: "a", RecipientID: me, SentAt: ts(10), IsRead: false},
		{ID: "m2", SenderID: me, RecipientID: "a", SentAt: ts(20), IsRead: true},
		{ID: "m3", SenderID: "b", RecipientID: me, SentAt: ts(5), IsRead: true},
	}
	directory := Directory{"a": "Alice", "b": "Ben"}

	conversations := Aggregate(messages, me, directory, nil)

	require.Len(t, conversations, 2)
	require.Equal(t, "a", conversations[0].PartnerID)
	require.Equal(t, "b", conversations[1].PartnerID)

	assert.Equal(t, "Alice", conversations[0].DisplayName)
	assert.True(t, conversations[0].HasUnread)
	assert.False(t, conversations[1].HasUnread)

	require.Len(t, conversations[0].Messages, 2)
	assert.Equal(t, "m1", conversations[0].Messages[0].ID)
	assert.Equal(t, "m2", conversations[0].Messages[1].ID)
}

func TestAggregateSkipsMessagesMissingParticipant(t *testing.T) {
	me := "me"
	messages := []models.Message{
		{ID: "m1", SenderID: "a", RecipientID: "", SentAt: ts(1), IsRead: false},
		{ID: "m2", SenderID: "", RecipientID: me, SentAt: ts(2), IsRead: false},
		{ID: "m3", SenderID: "a", RecipientID: me, SentAt: ts(3), IsRead: true},
	}

	var skipped []string
	conversations := Aggregate(messages, me, nil, func(msg models.Message) {
		skipped = append(skipped, msg.ID)
	})

	require.Len(t, conversations, 1)
	require.Len(t, conversations[0].Messages, 1)
	assert.Equal(t, "m3", conversations[0].Messages[0].ID)
	assert.False(t, conversations[0].HasUnread)
	assert.Equal(t, []string{"m1", "m2"}, skipped)
}

func TestAggregateEmptyInput(t *testing.T) {
	assert.Empty(t, Aggregate(nil, "me", nil, nil))
	assert.Empty(t, Aggregate([]models.Message{}, "me", Directory{}, nil))
}

func TestAggregateDisplayNamePrecedence(t *testing.T) {
	me := "me"

	// Directory entry wins over the embedded username.
	convs := Aggregate([]models.Message{
		{ID: "m1", SenderID: "a", SenderUsername: "old-name", RecipientID: me, SentAt: ts(1)},
	}, me, Directory{"a": "Alice"}, nil)
	require.Len(t, convs, 1)
	assert.Equal(t, "Alice", convs[0].DisplayName)

	// No directory entry falls back to the message's embedded username,
	// taken from the side matching the partner.
	convs = Aggregate([]models.Message{
		{ID: "m1", SenderID: me, RecipientID: "b", RecipientUsername: "Ben", SentAt: ts(1)},
	}, me, nil, nil)
	require.Len(t, convs, 1)
	assert.Equal(t, "Ben", convs[0].DisplayName)

	// Nothing resolvable yields the placeholder.
	convs = Aggregate([]models.Message{
		{ID: "m1", SenderID: "c", RecipientID: me, SentAt: ts(1)},
	}, me, nil, nil)
	require.Len(t, convs, 1)
	assert.Equal(t, "Unknown User", convs[0].DisplayName)
}

func TestAggregateZeroTimestampSortsLast(t *testing.T) {
	me := "me"
	messages := []models.Message{
		{ID: "m1", SenderID: "a", RecipientID: me},
		{ID: "m2", SenderID: "b", RecipientID: me, SentAt: ts(1)},
	}

	conversations := Aggregate(messages, me, nil, nil)

	require.Len(t, conversations, 2)
	assert.Equal(t, "b", conversations[0].PartnerID)
	assert.Equal(t, "a", conversations[1].PartnerID)
}

func TestAggregateIsDeterministicAndDoesNotMutateInput(t *testing.T) {
	me := "me"
	messages := []models.Message{
		{ID: "m2", SenderID: "a", RecipientID: me, SentAt: ts(20)},
		{ID: "m1", SenderID: "a", RecipientID: me, SentAt: ts(10)},
	}
	directory := Directory{"a": "Alice"}

	first := Aggregate(messages, me, directory, nil)
	second := Aggregate(messages, me, directory, nil)

	assert.Equal(t, first, second)
	// Input order is preserved even though the conversation is sorted.
	assert.Equal(t, "m2", messages[0].ID)
	assert.Equal(t, "m1", messages[1].ID)
}

func TestUnreadMessageIDs(t *testing.T) {
	me := "me"
	messages := []models.Message{
		{ID: "m1", SenderID: "a", RecipientID: me, IsRead: false},
		{ID: "m2", SenderID: me, RecipientID: "a", IsRead: false},
		{ID: "m3", SenderID: "a", RecipientID: me, IsRead: true},
		{ID: "m4", SenderID: "a", RecipientID: "", IsRead: false},
		{ID: "", SenderID: "b", RecipientID: me, IsRead: false},
	}

	assert.Equal(t, []string{"m1"}, UnreadMessageIDs(messages, me))
	assert.Empty(t, UnreadMessageIDs(nil, me))
}

func TestNewDirectoryIncludesSelf(t *testing.T) {
	members := []models.User{
		{ID: "a", Username: "Alice"},
		{ID: "", Username: "ghost"},
	}

	directory := NewDirectory(members, models.User{ID: "me", Username: "Mia"})
	assert.Equal(t, "Alice", directory["a"])
	assert.Equal(t, "Mia", directory["me"])
	assert.NotContains(t, directory, "")

	// A self entry without a username still resolves.
	directory = NewDirectory(nil, models.User{ID: "me"})
	assert.Equal(t, "Me", directory["me"])
}
