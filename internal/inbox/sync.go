package inbox

import (
	"context"
	"log"
	"sync"

	"messaging-service/internal/models"
)

// Renderer receives the aggregated conversation list. Implementations own
// presentation; the controller only hands over plain data.
type Renderer interface {
	RenderConversations(conversations []models.Conversation)
}

// BadgeSink is notified once a mark-read round trip succeeds, so the
// surrounding UI can clear its unread indicator.
type BadgeSink interface {
	ClearUnreadBadge()
}

// MessageAPI is the remote surface the controller drives.
type MessageAPI interface {
	FetchMessages(ctx context.Context) ([]models.Message, error)
	MarkRead(ctx context.Context, ids []string) error
}

// SyncController runs the fetch, aggregate, render, mark-read cycle for one
// inbox view. Identity and directory are supplied by the caller at
// construction, not looked up ambiently.
type SyncController struct {
	api       MessageAPI
	renderer  Renderer
	badge     BadgeSink
	userID    string
	directory func() Directory

	mu       sync.Mutex
	inFlight bool
	closed   bool
}

// NewSyncController builds a controller. renderer and badge may be nil;
// directory is invoked once per refresh so a caller can keep the roster
// current between cycles.
func NewSyncController(api MessageAPI, renderer Renderer, badge BadgeSink, currentUserID string, directory func() Directory) *SyncController {
	return &SyncController{
		api:       api,
		renderer:  renderer,
		badge:     badge,
		userID:    currentUserID,
		directory: directory,
	}
}

// Refresh performs one sync cycle and returns the rendered conversation
// list. A fetch or decode failure aborts the cycle and leaves whatever the
// renderer last showed untouched. A refresh started while another is still
// in flight is rejected with ErrRefreshInFlight rather than raced. A failed
// mark-read is logged and swallowed: the user already sees the messages, and
// the server flag catches up on the next cycle.
func (s *SyncController) Refresh(ctx context.Context) ([]models.Conversation, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrControllerClosed
	}
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrRefreshInFlight
	}
	s.inFlight = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	messages, err := s.api.FetchMessages(ctx)
	if err != nil {
		return nil, err
	}

	var directory Directory
	if s.directory != nil {
		directory = s.directory()
	}
	conversations := Aggregate(messages, s.userID, directory, func(msg models.Message) {
		log.Printf("inbox: skipping message %q with missing participant", msg.ID)
	})

	// The view may have been torn down while the fetch was in flight; a late
	// response must not reach the renderer.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, ErrControllerClosed
	}

	if s.renderer != nil {
		s.renderer.RenderConversations(conversations)
	}

	unread := UnreadMessageIDs(messages, s.userID)
	if len(unread) > 0 {
		if err := s.api.MarkRead(ctx, unread); err != nil {
			log.Printf("inbox: mark-read failed: %v", err)
		} else if s.badge != nil {
			s.badge.ClearUnreadBadge()
		}
	}

	return conversations, nil
}

// Close tears the controller down. In-flight responses are discarded on
// arrival and later Refresh calls fail with ErrControllerClosed.
func (s *SyncController) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
