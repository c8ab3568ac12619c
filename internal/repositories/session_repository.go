package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository resolves bearer tokens to authenticated users.
type SessionRepository interface {
	UserForToken(ctx context.Context, token string) (models.User, error)
}

// SessionRepo is a sqlx implementation of SessionRepository.
type SessionRepo struct {
	db *sqlx.DB
}

// NewSessionRepo constructs a SessionRepo.
func NewSessionRepo(db *sqlx.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// UserForToken looks up the user owning a session token.
func (r *SessionRepo) UserForToken(ctx context.Context, token string) (models.User, error) {
	var user models.User
	query := `SELECT u.id, u.family_id, u.username, u.role, u.created_at
        FROM sessions s JOIN users u ON u.id = s.user_id
        WHERE s.token=$1`
	err := r.db.GetContext(ctx, &user, query, token)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrSessionNotFound
	}
	return user, err
}
