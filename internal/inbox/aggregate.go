package inbox

import (
	"sort"
	"time"

	"messaging-service/internal/models"
)

const (
	selfDisplayName    = "Me"
	unknownDisplayName = "Unknown User"
	missingPartnerName = "Family Member"
)

// Directory maps user ids to display names.
type Directory map[string]string

// NewDirectory builds a lookup from the family roster plus the caller's own
// identity. The caller's id always resolves to a name.
func NewDirectory(members []models.User, self models.User) Directory {
	directory := make(Directory, len(members)+1)
	for _, member := range members {
		if member.ID == "" {
			continue
		}
		directory[member.ID] = member.Username
	}
	if self.ID != "" {
		name := self.Username
		if name == "" {
			name = selfDisplayName
		}
		directory[self.ID] = name
	}
	return directory
}

// Aggregate groups a flat message list into per-partner conversations. The
// partner of a message is the endpoint that is not the current user. Messages
// missing either endpoint are skipped and reported through onSkip if set;
// they never contribute to a conversation or its unread state.
//
// Within a conversation messages are ordered ascending by send time, with the
// zero time sorting first. Conversations are ordered descending by the send
// time of their last message, so the most recently active partner comes
// first; ties keep first-seen order. The input slice is never mutated and
// identical input always yields identical output.
func Aggregate(messages []models.Message, currentUserID string, directory Directory, onSkip func(models.Message)) []models.Conversation {
	byPartner := make(map[string]*models.Conversation)
	order := make([]string, 0)

	for _, msg := range messages {
		if msg.SenderID == "" || msg.RecipientID == "" {
			if onSkip != nil {
				onSkip(msg)
			}
			continue
		}
		partnerID := msg.SenderID
		if msg.SenderID == currentUserID {
			partnerID = msg.RecipientID
		}
		conv, ok := byPartner[partnerID]
		if !ok {
			conv = &models.Conversation{
				PartnerID:   partnerID,
				DisplayName: resolveDisplayName(directory, partnerID, msg),
			}
			byPartner[partnerID] = conv
			order = append(order, partnerID)
		}
		conv.Messages = append(conv.Messages, msg)
		if !msg.IsRead && msg.SenderID != currentUserID {
			conv.HasUnread = true
		}
	}

	result := make([]models.Conversation, 0, len(order))
	for _, partnerID := range order {
		conv := byPartner[partnerID]
		sort.SliceStable(conv.Messages, func(i, j int) bool {
			return conv.Messages[i].SentAt.Before(conv.Messages[j].SentAt)
		})
		result = append(result, *conv)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return lastSentAt(result[i]).After(lastSentAt(result[j]))
	})
	return result
}

// UnreadMessageIDs returns the ids of messages addressed to the user that are
// still unread. Messages missing either endpoint or an id are excluded, using
// the same rule as Aggregate.
func UnreadMessageIDs(messages []models.Message, currentUserID string) []string {
	var ids []string
	for _, msg := range messages {
		if msg.SenderID == "" || msg.RecipientID == "" || msg.ID == "" {
			continue
		}
		if !msg.IsRead && msg.SenderID != currentUserID {
			ids = append(ids, msg.ID)
		}
	}
	return ids
}

// resolveDisplayName picks a partner name with precedence: directory entry,
// then the username embedded on the message side matching the partner, then a
// literal placeholder.
func resolveDisplayName(directory Directory, partnerID string, msg models.Message) string {
	if partnerID == "" {
		return missingPartnerName
	}
	if name, ok := directory[partnerID]; ok && name != "" {
		return name
	}
	if msg.SenderID == partnerID && msg.SenderUsername != "" {
		return msg.SenderUsername
	}
	if msg.RecipientID == partnerID && msg.RecipientUsername != "" {
		return msg.RecipientUsername
	}
	return unknownDisplayName
}

func lastSentAt(conv models.Conversation) time.Time {
	if len(conv.Messages) == 0 {
		return time.Time{}
	}
	return conv.Messages[len(conv.Messages)-1].SentAt
}
