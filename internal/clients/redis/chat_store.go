package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/campushub/campushub-backend/internal/logger"
)

// ChatMessage is one discussion post. The engine gates room access only; message
// content is stored and returned as-is.
type ChatMessage struct {
	ID       uuid.UUID `json:"id"`
	AuthorID uuid.UUID `json:"author_id"`
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sent_at"`
}

// ChatStore appends and reads discussion messages keyed by room id.
type ChatStore interface {
	Append(ctx context.Context, roomID uuid.UUID, msg ChatMessage) error
	List(ctx context.Context, roomID uuid.UUID, limit int64) ([]ChatMessage, error)
	Close() error
}

type chatStore struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewChatStore(log *logger.Logger) (ChatStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &chatStore{
		log: log.With("service", "RedisChatStore"),
		rdb: rdb,
	}, nil
}

func roomKey(roomID uuid.UUID) string {
	return "chat:room:" + roomID.String()
}

func (cs *chatStore) Append(ctx context.Context, roomID uuid.UUID, msg ChatMessage) error {
	if cs == nil || cs.rdb == nil {
		return fmt.Errorf("redis chat store not initialized")
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return cs.rdb.RPush(ctx, roomKey(roomID), raw).Err()
}

// List returns the newest messages in send order, up to limit.
func (cs *chatStore) List(ctx context.Context, roomID uuid.UUID, limit int64) ([]ChatMessage, error) {
	if cs == nil || cs.rdb == nil {
		return nil, fmt.Errorf("redis chat store not initialized")
	}
	if limit <= 0 {
		limit = 50
	}
	raws, err := cs.rdb.LRange(ctx, roomKey(roomID), -limit, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange: %w", err)
	}
	msgs := make([]ChatMessage, 0, len(raws))
	for _, raw := range raws {
		var msg ChatMessage
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			cs.log.Warn("Dropping undecodable chat message", "error", err, "room_id", roomID)
			continue
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func (cs *chatStore) Close() error {
	if cs == nil || cs.rdb == nil {
		return nil
	}
	return cs.rdb.Close()
}
