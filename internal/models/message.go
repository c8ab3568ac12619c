package models

import "time"

// Message is a direct message between two members of the same family.
// The JSON field names follow the wire contract of the original famjam API,
// which is what deployed inbox clients still expect.
type Message struct {
	ID                string    `db:"id" json:"_id"`
	FamilyID          string    `db:"family_id" json:"family_id,omitempty"`
	SenderID          string    `db:"sender_id" json:"sender_id"`
	SenderUsername    string    `db:"sender_username" json:"sender_username,omitempty"`
	RecipientID       string    `db:"recipient_id" json:"recipient_id"`
	RecipientUsername string    `db:"recipient_username" json:"recipient_username,omitempty"`
	Content           string    `db:"content" json:"message_content"`
	SentAt            time.Time `db:"sent_at" json:"sent_at"`
	IsRead            bool      `db:"is_read" json:"is_read"`
}

// InboxEvent is broadcasted through websockets to a user's inbox connections.
type InboxEvent struct {
	Type       string   `json:"type"`
	Message    *Message `json:"message,omitempty"`
	MessageIDs []string `json:"message_ids,omitempty"`
}
