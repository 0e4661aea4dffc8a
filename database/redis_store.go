package database

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/CUknot/videocall_backend/config"
	"github.com/CUknot/videocall_backend/models"
	"github.com/CUknot/videocall_backend/rooms"
)

const (
	redisRoomsKey   = "videocall:rooms"
	redisRetiredKey = "videocall:rooms:retired"
)

// RedisStore keeps one hash field per room and a set of deleted room ids.
type RedisStore struct {
	client *redis.Client
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) LoadAll(ctx context.Context) (*rooms.Snapshot, error) {
	fields, err := s.client.HGetAll(ctx, redisRoomsKey).Result()
	if err != nil {
		return nil, err
	}
	retired, err := s.client.SMembers(ctx, redisRetiredKey).Result()
	if err != nil {
		return nil, err
	}

	snap := &rooms.Snapshot{Documents: make([][]byte, 0, len(fields)), Retired: retired}
	for _, doc := range fields {
		snap.Documents = append(snap.Documents, []byte(doc))
	}
	return snap, nil
}

func (s *RedisStore) SaveRoom(ctx context.Context, rec models.RoomRecord) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.HSet(ctx, redisRoomsKey, rec.ID, doc).Err()
}

func (s *RedisStore) DeleteRoom(ctx context.Context, roomID string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, redisRoomsKey, roomID)
		pipe.SAdd(ctx, redisRetiredKey, roomID)
		return nil
	})
	return err
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
