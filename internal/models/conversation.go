package models

// Conversation is a per-partner view over a user's direct messages. It is
// derived on every sync and never persisted.
type Conversation struct {
	PartnerID   string    `json:"partner_id"`
	DisplayName string    `json:"display_name"`
	Messages    []Message `json:"messages"`
	HasUnread   bool      `json:"has_unread"`
}
