package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	redisclient "github.com/campushub/campushub-backend/internal/clients/redis"
	"github.com/campushub/campushub-backend/internal/logger"
	pkgerrors "github.com/campushub/campushub-backend/internal/pkg/errors"
	"github.com/campushub/campushub-backend/internal/repos"
	"github.com/campushub/campushub-backend/internal/types"
)

// DiscussionService gates chat access and lazily materializes the per-section
// room on first use. Message bytes live in the redis store; the engine only
// decides who may reach the room.
type DiscussionService interface {
	OpenRoom(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) (*types.DiscussionRoom, error)
	PostMessage(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID, body string) (*redisclient.ChatMessage, error)
	ListMessages(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID, limit int64) ([]redisclient.ChatMessage, error)
}

type discussionService struct {
	db            *gorm.DB
	log           *logger.Logger
	roomRepo      repos.DiscussionRoomRepo
	accessService AccessService
	chatStore     redisclient.ChatStore
}

func NewDiscussionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	roomRepo repos.DiscussionRoomRepo,
	accessService AccessService,
	chatStore redisclient.ChatStore,
) DiscussionService {
	serviceLog := baseLog.With("service", "DiscussionService")
	return &discussionService{
		db:            db,
		log:           serviceLog,
		roomRepo:      roomRepo,
		accessService: accessService,
		chatStore:     chatStore,
	}
}

// OpenRoom is idempotent: N concurrent first accesses all land on the same room.
func (ds *discussionService) OpenRoom(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) (*types.DiscussionRoom, error) {
	transaction := tx
	if transaction == nil {
		transaction = ds.db
	}

	if err := ds.accessService.AuthorizeSectionRead(ctx, transaction, sectionID); err != nil {
		return nil, err
	}

	room, err := ds.roomRepo.GetOrCreate(ctx, transaction, sectionID)
	if err != nil {
		return nil, fmt.Errorf("open room: %w", err)
	}
	return room, nil
}

func (ds *discussionService) PostMessage(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID, body string) (*redisclient.ChatMessage, error) {
	rd, err := identityFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if body == "" {
		return nil, fmt.Errorf("post message: empty body")
	}

	room, err := ds.OpenRoom(ctx, tx, sectionID)
	if err != nil {
		return nil, err
	}

	msg := redisclient.ChatMessage{
		ID:       uuid.New(),
		AuthorID: rd.UserID,
		Body:     body,
		SentAt:   time.Now(),
	}
	if err := ds.chatStore.Append(ctx, room.ID, msg); err != nil {
		ds.log.Error("Chat append failed", "error", err, "room_id", room.ID)
		return nil, fmt.Errorf("post message: %w", pkgerrors.Store(err))
	}
	return &msg, nil
}

func (ds *discussionService) ListMessages(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID, limit int64) ([]redisclient.ChatMessage, error) {
	room, err := ds.OpenRoom(ctx, tx, sectionID)
	if err != nil {
		return nil, err
	}

	msgs, err := ds.chatStore.List(ctx, room.ID, limit)
	if err != nil {
		ds.log.Error("Chat list failed", "error", err, "room_id", room.ID)
		return nil, fmt.Errorf("list messages: %w", pkgerrors.Store(err))
	}
	return msgs, nil
}
