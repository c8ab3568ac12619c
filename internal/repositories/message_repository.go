package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"messaging-service/internal/models"
)

// MessageRepository defines persistence for direct messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, msg models.Message) (models.Message, error)
	ListMessagesForUser(ctx context.Context, familyID, userID string) ([]models.Message, error)
	MarkMessagesRead(ctx context.Context, ids []string, recipientID string) (int64, error)
	HasUnreadMessages(ctx context.Context, userID string) (bool, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage stores a direct message, assigning its id and send time.
func (r *MessageRepo) CreateMessage(ctx context.Context, msg models.Message) (models.Message, error) {
	var stored models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO direct_messages
        (id, family_id, sender_id, sender_username, recipient_id, recipient_username, content, is_read)
        VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE)
        RETURNING id, family_id, sender_id, sender_username, recipient_id, recipient_username, content, sent_at, is_read`,
		uuid.NewString(), msg.FamilyID, msg.SenderID, msg.SenderUsername, msg.RecipientID, msg.RecipientUsername, msg.Content).
		StructScan(&stored)
	return stored, err
}

// ListMessagesForUser returns the user's direct messages, both sent and
// received, in chronological order.
func (r *MessageRepo) ListMessagesForUser(ctx context.Context, familyID, userID string) ([]models.Message, error) {
	query := `SELECT id, family_id, sender_id, sender_username, recipient_id, recipient_username, content, sent_at, is_read
        FROM direct_messages
        WHERE family_id=$1 AND (sender_id=$2 OR recipient_id=$2)
        ORDER BY sent_at ASC`
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, query, familyID, userID)
	return msgs, err
}

// MarkMessagesRead flips the read flag for the given ids, but only on rows
// addressed to the recipient that are still unread. Returns the number of
// rows actually modified.
func (r *MessageRepo) MarkMessagesRead(ctx context.Context, ids []string, recipientID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE direct_messages SET is_read = TRUE
        WHERE id = ANY($1) AND recipient_id=$2 AND is_read = FALSE`, pq.Array(ids), recipientID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// HasUnreadMessages reports whether any message addressed to the user is
// still unread, which drives the inbox badge.
func (r *MessageRepo) HasUnreadMessages(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM direct_messages WHERE recipient_id=$1 AND is_read = FALSE)`, userID)
	return exists, err
}
