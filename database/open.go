package database

import (
	"context"

	"github.com/CUknot/videocall_backend/config"
	"github.com/CUknot/videocall_backend/rooms"
)

// Backend bundles the room persistence selected by configuration with the
// resources it owns.
type Backend struct {
	Rooms rooms.Persistence
	// Invites is nil for backends without a relational store.
	Invites *InviteLog
	closers []func() error
}

func (b *Backend) Close() error {
	var first error
	for _, c := range b.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open builds the persistence backend named by cfg.Persistence.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	switch cfg.Persistence {
	case config.PersistenceFile:
		return &Backend{Rooms: NewFileStore(cfg.RoomsFile)}, nil

	case config.PersistenceRedis:
		client := NewRedisClient(cfg.Redis)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, err
		}
		store := NewRedisStore(client)
		return &Backend{Rooms: store, closers: []func() error{store.Close}}, nil

	default:
		db, err := Connect(cfg)
		if err != nil {
			return nil, err
		}
		if err := Migrate(db); err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		return &Backend{
			Rooms:   NewGormStore(db),
			Invites: NewInviteLog(db),
			closers: []func() error{sqlDB.Close},
		}, nil
	}
}
